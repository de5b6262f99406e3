package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veeduria/obras-service/internal/model"
)

// allowAllGate is used where the test exercises engine logic, not access
// control.
type allowAllGate struct{}

func (allowAllGate) Authorize(context.Context, model.Principal, uuid.UUID, Action) error {
	return nil
}

type denyGate struct{ err error }

func (g denyGate) Authorize(context.Context, model.Principal, uuid.UUID, Action) error {
	return g.err
}

// clock hands out strictly increasing creation timestamps so fake stores
// reproduce the (created_at, id) ordering of the real repositories.
type clock struct {
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *clock) next() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

// fakeAdditionStore mirrors the atomic semantics of AdditionRepository: the
// row change and the committed-value delta are applied together.
type fakeAdditionStore struct {
	contract  *model.Contract
	additions map[uuid.UUID]model.Addition
	clock     *clock
}

func newFakeAdditionStore(contract *model.Contract) *fakeAdditionStore {
	return &fakeAdditionStore{
		contract:  contract,
		additions: make(map[uuid.UUID]model.Addition),
		clock:     newClock(),
	}
}

func (f *fakeAdditionStore) GetContract(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	if f.contract == nil || f.contract.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	c := *f.contract
	return &c, nil
}

func (f *fakeAdditionStore) GetAddition(_ context.Context, id uuid.UUID) (*model.Addition, error) {
	a, ok := f.additions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (f *fakeAdditionStore) ListByContract(_ context.Context, contractID uuid.UUID) ([]model.Addition, error) {
	var result []model.Addition
	for _, a := range f.additions {
		if a.ContractID == contractID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (f *fakeAdditionStore) Create(_ context.Context, a model.Addition) (*model.Addition, error) {
	if f.contract == nil || f.contract.ID != a.ContractID {
		return nil, gorm.ErrRecordNotFound
	}
	a.ID = uuid.New()
	a.CreatedAt = f.clock.next()
	f.additions[a.ID] = a
	f.contract.CommittedValue += a.Amount
	saved := a
	return &saved, nil
}

func (f *fakeAdditionStore) Update(_ context.Context, a model.Addition, delta int64) (*model.Addition, error) {
	if _, ok := f.additions[a.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	f.additions[a.ID] = a
	f.contract.CommittedValue += delta
	saved := a
	return &saved, nil
}

func (f *fakeAdditionStore) Delete(_ context.Context, a model.Addition) error {
	if _, ok := f.additions[a.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.additions, a.ID)
	f.contract.CommittedValue -= a.Amount
	return nil
}

// fakeModificationStore mirrors ModificationRepository: row changes and
// current-end-date shifts happen together.
type fakeModificationStore struct {
	contract      *model.Contract
	modifications map[uuid.UUID]model.Modification
	clock         *clock
}

func newFakeModificationStore(contract *model.Contract) *fakeModificationStore {
	return &fakeModificationStore{
		contract:      contract,
		modifications: make(map[uuid.UUID]model.Modification),
		clock:         newClock(),
	}
}

func (f *fakeModificationStore) GetContract(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	if f.contract == nil || f.contract.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	c := *f.contract
	return &c, nil
}

func (f *fakeModificationStore) GetModification(_ context.Context, id uuid.UUID) (*model.Modification, error) {
	m, ok := f.modifications[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (f *fakeModificationStore) ListByContract(_ context.Context, contractID uuid.UUID) ([]model.Modification, error) {
	var result []model.Modification
	for _, m := range f.modifications {
		if m.ContractID == contractID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (f *fakeModificationStore) ListSuspensions(_ context.Context, contractID uuid.UUID, exclude uuid.UUID) ([]model.Modification, error) {
	var result []model.Modification
	for _, m := range f.modifications {
		if m.ContractID == contractID && m.Kind == model.ModificationSuspension && m.ID != exclude {
			result = append(result, m)
		}
	}
	return result, nil
}

func (f *fakeModificationStore) Create(_ context.Context, m model.Modification) (*model.Modification, error) {
	if f.contract == nil || f.contract.ID != m.ContractID {
		return nil, gorm.ErrRecordNotFound
	}
	if err := f.checkSuspensionConflict(m, uuid.Nil); err != nil {
		return nil, err
	}
	m.ID = uuid.New()
	m.CreatedAt = f.clock.next()
	f.modifications[m.ID] = m
	f.contract.CurrentEndDate = f.contract.CurrentEndDate.AddDate(0, 0, m.DurationDays)
	saved := m
	return &saved, nil
}

func (f *fakeModificationStore) Update(_ context.Context, m model.Modification, shiftDays int) (*model.Modification, error) {
	if _, ok := f.modifications[m.ID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if err := f.checkSuspensionConflict(m, m.ID); err != nil {
		return nil, err
	}
	f.modifications[m.ID] = m
	f.contract.CurrentEndDate = f.contract.CurrentEndDate.AddDate(0, 0, shiftDays)
	saved := m
	return &saved, nil
}

// checkSuspensionConflict mirrors the write-time overlap re-check the
// repository runs under the contract row lock.
func (f *fakeModificationStore) checkSuspensionConflict(m model.Modification, exclude uuid.UUID) error {
	if m.Kind != model.ModificationSuspension {
		return nil
	}
	for _, other := range f.modifications {
		if other.ContractID != m.ContractID || other.Kind != model.ModificationSuspension || other.ID == exclude {
			continue
		}
		if !m.StartDate.After(other.EndDate) && !m.EndDate.Before(other.StartDate) {
			return ErrOverlappingSuspension
		}
	}
	return nil
}

func (f *fakeModificationStore) Delete(_ context.Context, m model.Modification) error {
	if _, ok := f.modifications[m.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.modifications, m.ID)
	f.contract.CurrentEndDate = f.contract.CurrentEndDate.AddDate(0, 0, -m.DurationDays)
	return nil
}

// fakeProgressStore keeps reports in insertion order, matching the
// ascending (created_at, id) order of ProgressRepository, and re-checks the
// activity ceiling on create the way the repository transaction does.
type fakeProgressStore struct {
	contract        *model.Contract
	activity        *model.Activity
	contractReports []model.ContractProgress
	activityReports []model.ActivityProgress
	clock           *clock
}

func newFakeProgressStore(contract *model.Contract, activity *model.Activity) *fakeProgressStore {
	return &fakeProgressStore{
		contract: contract,
		activity: activity,
		clock:    newClock(),
	}
}

func (f *fakeProgressStore) GetContract(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	if f.contract == nil || f.contract.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	c := *f.contract
	return &c, nil
}

func (f *fakeProgressStore) GetActivity(_ context.Context, id uuid.UUID) (*model.Activity, error) {
	if f.activity == nil || f.activity.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	a := *f.activity
	return &a, nil
}

func (f *fakeProgressStore) ListContractReports(_ context.Context, contractID uuid.UUID) ([]model.ContractProgress, error) {
	var result []model.ContractProgress
	for _, r := range f.contractReports {
		if r.ContractID == contractID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeProgressStore) CreateContractReport(_ context.Context, r model.ContractProgress) (*model.ContractProgress, error) {
	r.ID = uuid.New()
	r.CreatedAt = f.clock.next()
	f.contractReports = append(f.contractReports, r)
	saved := r
	return &saved, nil
}

func (f *fakeProgressStore) ListActivityReports(_ context.Context, activityID uuid.UUID) ([]model.ActivityProgress, error) {
	var result []model.ActivityProgress
	for _, r := range f.activityReports {
		if r.ActivityID == activityID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (f *fakeProgressStore) CreateActivityReport(_ context.Context, r model.ActivityProgress, target float64) (*model.ActivityProgress, error) {
	accumulated := 0.0
	for _, existing := range f.activityReports {
		if existing.ActivityID == r.ActivityID {
			accumulated += existing.Quantity
		}
	}
	if target > 0 && accumulated+r.Quantity > target+1e-9 {
		return nil, ErrCeilingExceeded
	}
	r.ID = uuid.New()
	r.CreatedAt = f.clock.next()
	f.activityReports = append(f.activityReports, r)
	saved := r
	return &saved, nil
}

func testContract() *model.Contract {
	return &model.Contract{
		ID:              uuid.New(),
		ContractorOrgID: uuid.New(),
		Name:            "Mejoramiento vial sector norte",
		InitialValue:    1_000_000_000,
		CommittedValue:  1_000_000_000,
		StartDate:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		InitialEndDate:  time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		CurrentEndDate:  time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

func testPrincipal() model.Principal {
	return model.Principal{
		UserID: uuid.New(),
		OrgID:  uuid.New(),
		Role:   model.RoleSupervisor,
	}
}
