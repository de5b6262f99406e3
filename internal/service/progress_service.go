package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/veeduria/obras-service/internal/model"
)

// statusBand is the tolerance, in percentage points, between accumulated
// physical and financial progress before a contract is classified as ahead
// or delayed. Fixed business constant, not configurable per contract.
const statusBand = 5.0

// ProgressStore persists append-only progress reports. List methods return
// reports in ascending (created_at, id) order; the id tiebreak keeps
// accumulation stable when creation timestamps collide.
type ProgressStore interface {
	GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	GetActivity(ctx context.Context, id uuid.UUID) (*model.Activity, error)
	ListContractReports(ctx context.Context, contractID uuid.UUID) ([]model.ContractProgress, error)
	CreateContractReport(ctx context.Context, r model.ContractProgress) (*model.ContractProgress, error)
	ListActivityReports(ctx context.Context, activityID uuid.UUID) ([]model.ActivityProgress, error)
	// CreateActivityReport re-checks the quantity ceiling against target
	// inside its transaction, so concurrent reports cannot jointly exceed
	// the activity target.
	CreateActivityReport(ctx context.Context, r model.ActivityProgress, target float64) (*model.ActivityProgress, error)
}

type ProgressService struct {
	store ProgressStore
	gate  AccessGate
}

func NewProgressService(store ProgressStore, gate AccessGate) *ProgressService {
	return &ProgressService{store: store, gate: gate}
}

type CreateContractProgressInput struct {
	ContractID      uuid.UUID
	Value           int64
	PhysicalPercent float64
	Note            string
	Principal       model.Principal
}

type CreateActivityProgressInput struct {
	ActivityID  uuid.UUID
	Quantity    float64
	Cost        int64
	WorkDone    string
	WorkPlanned string
	Principal   model.Principal
}

func (s *ProgressService) CreateContractReport(ctx context.Context, in CreateContractProgressInput) (*model.ContractProgressEntry, error) {
	if err := s.gate.Authorize(ctx, in.Principal, in.ContractID, ActionReportProgress); err != nil {
		return nil, err
	}

	if in.Value < 0 {
		return nil, fmt.Errorf("%w: value must not be negative", ErrInvalidInput)
	}
	if in.PhysicalPercent < 0 || in.PhysicalPercent > 100 {
		return nil, fmt.Errorf("%w: physical_percent must be between 0 and 100", ErrInvalidInput)
	}

	contract, err := s.store.GetContract(ctx, in.ContractID)
	if err != nil {
		return nil, notFound(err, "contract")
	}

	saved, err := s.store.CreateContractReport(ctx, model.ContractProgress{
		ContractID:      in.ContractID,
		Value:           in.Value,
		PhysicalPercent: in.PhysicalPercent,
		Note:            in.Note,
	})
	if err != nil {
		return nil, notFound(err, "contract")
	}

	reports, err := s.store.ListContractReports(ctx, in.ContractID)
	if err != nil {
		return nil, err
	}
	for _, entry := range buildContractEntries(*contract, reports) {
		if entry.Report.ID == saved.ID {
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("created report %s missing from history", saved.ID)
}

func (s *ProgressService) ListContractReports(ctx context.Context, contractID uuid.UUID, p model.Principal) ([]model.ContractProgressEntry, error) {
	if err := s.gate.Authorize(ctx, p, contractID, ActionRead); err != nil {
		return nil, err
	}

	contract, err := s.store.GetContract(ctx, contractID)
	if err != nil {
		return nil, notFound(err, "contract")
	}

	reports, err := s.store.ListContractReports(ctx, contractID)
	if err != nil {
		return nil, err
	}

	entries := buildContractEntries(*contract, reports)
	reverseEntries(entries)
	return entries, nil
}

func (s *ProgressService) CreateActivityReport(ctx context.Context, in CreateActivityProgressInput) (*model.ActivityProgressEntry, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if in.Cost < 0 {
		return nil, fmt.Errorf("%w: cost must not be negative", ErrInvalidInput)
	}

	activity, err := s.store.GetActivity(ctx, in.ActivityID)
	if err != nil {
		return nil, notFound(err, "activity")
	}

	if err := s.gate.Authorize(ctx, in.Principal, activity.ContractID, ActionReportProgress); err != nil {
		return nil, err
	}

	existing, err := s.store.ListActivityReports(ctx, in.ActivityID)
	if err != nil {
		return nil, err
	}
	prior := 0.0
	for _, r := range existing {
		prior += r.Quantity
	}
	if exceedsCeiling(prior+in.Quantity, activity.PhysicalTarget) {
		return nil, fmt.Errorf("%w: activity target %.3f %s", ErrCeilingExceeded, activity.PhysicalTarget, activity.Unit)
	}

	saved, err := s.store.CreateActivityReport(ctx, model.ActivityProgress{
		ActivityID:  in.ActivityID,
		Quantity:    in.Quantity,
		Cost:        in.Cost,
		WorkDone:    in.WorkDone,
		WorkPlanned: in.WorkPlanned,
	}, activity.PhysicalTarget)
	if err != nil {
		return nil, notFound(err, "activity")
	}

	reports, err := s.store.ListActivityReports(ctx, in.ActivityID)
	if err != nil {
		return nil, err
	}
	for _, entry := range buildActivityEntries(*activity, reports) {
		if entry.Report.ID == saved.ID {
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("created report %s missing from history", saved.ID)
}

func (s *ProgressService) ListActivityReports(ctx context.Context, activityID uuid.UUID, p model.Principal) ([]model.ActivityProgressEntry, error) {
	activity, err := s.store.GetActivity(ctx, activityID)
	if err != nil {
		return nil, notFound(err, "activity")
	}

	if err := s.gate.Authorize(ctx, p, activity.ContractID, ActionRead); err != nil {
		return nil, err
	}

	reports, err := s.store.ListActivityReports(ctx, activityID)
	if err != nil {
		return nil, err
	}

	entries := buildActivityEntries(*activity, reports)
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// buildContractEntries walks reports in ascending creation order and derives
// the accumulated figures as of each report. The financial percentage is
// computed against the contract's committed value at query time; nothing is
// ever read from a stored total.
func buildContractEntries(contract model.Contract, reports []model.ContractProgress) []model.ContractProgressEntry {
	entries := make([]model.ContractProgressEntry, 0, len(reports))
	var accValue int64
	var accPhysical float64

	for _, r := range reports {
		accValue += r.Value
		accPhysical += r.PhysicalPercent

		financial := 0.0
		if contract.CommittedValue != 0 {
			financial = round2(float64(accValue) / float64(contract.CommittedValue) * 100)
		}
		physical := round2(accPhysical)
		delta := round2(physical - financial)

		entries = append(entries, model.ContractProgressEntry{
			Report:                     r,
			AccumulatedValue:           accValue,
			AccumulatedPhysicalPercent: physical,
			FinancialPercent:           financial,
			Delta:                      delta,
			Status:                     classifyDelta(delta),
		})
	}
	return entries
}

func buildActivityEntries(activity model.Activity, reports []model.ActivityProgress) []model.ActivityProgressEntry {
	entries := make([]model.ActivityProgressEntry, 0, len(reports))
	var accQuantity float64
	var accCost int64

	for _, r := range reports {
		accQuantity += r.Quantity
		accCost += r.Cost

		physical := 0.0
		if activity.PhysicalTarget != 0 {
			physical = round2(accQuantity / activity.PhysicalTarget * 100)
		}
		financial := 0.0
		if activity.FinancialTarget != 0 {
			financial = round2(float64(accCost) / float64(activity.FinancialTarget) * 100)
		}

		entries = append(entries, model.ActivityProgressEntry{
			Report:              r,
			AccumulatedQuantity: accQuantity,
			AccumulatedCost:     accCost,
			PhysicalPercent:     physical,
			FinancialPercent:    financial,
		})
	}
	return entries
}

func classifyDelta(delta float64) model.ProgressStatus {
	switch {
	case delta < -statusBand:
		return model.ProgressDelayed
	case delta > statusBand:
		return model.ProgressAhead
	default:
		return model.ProgressOnTrack
	}
}

// exceedsCeiling compares accumulated quantity against the target with a
// small tolerance so float summation noise does not reject an exact fill.
func exceedsCeiling(accumulated, target float64) bool {
	if target <= 0 {
		return false
	}
	return accumulated > target+1e-9
}

func reverseEntries(entries []model.ContractProgressEntry) {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
}
