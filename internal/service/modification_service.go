package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/veeduria/obras-service/internal/model"
)

// ModificationStore persists modifications. Create, Update and Delete are
// single atomic units: the modification row change and the contract
// current-end-date shift commit or roll back together.
type ModificationStore interface {
	GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	GetModification(ctx context.Context, id uuid.UUID) (*model.Modification, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Modification, error)
	ListSuspensions(ctx context.Context, contractID uuid.UUID, exclude uuid.UUID) ([]model.Modification, error)
	// Create inserts m and shifts the contract end date forward by
	// m.DurationDays.
	Create(ctx context.Context, m model.Modification) (*model.Modification, error)
	// Update persists m and shifts the contract end date by shiftDays
	// (new duration minus old).
	Update(ctx context.Context, m model.Modification, shiftDays int) (*model.Modification, error)
	// Delete removes m and shifts the contract end date back by
	// m.DurationDays.
	Delete(ctx context.Context, m model.Modification) error
}

type ModificationService struct {
	store ModificationStore
	gate  AccessGate
}

func NewModificationService(store ModificationStore, gate AccessGate) *ModificationService {
	return &ModificationService{store: store, gate: gate}
}

type CreateModificationInput struct {
	ContractID uuid.UUID
	Kind       model.ModificationKind
	StartDate  time.Time
	EndDate    time.Time
	Note       string
	Principal  model.Principal
}

type UpdateModificationInput struct {
	ID        uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
	Note      *string
	Principal model.Principal
}

func (s *ModificationService) Create(ctx context.Context, in CreateModificationInput) (*model.Modification, error) {
	if err := s.gate.Authorize(ctx, in.Principal, in.ContractID, ActionMutateLedger); err != nil {
		return nil, err
	}

	if in.Kind != model.ModificationSuspension && in.Kind != model.ModificationExtension {
		return nil, fmt.Errorf("%w: invalid modification kind", ErrInvalidInput)
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: start_date and end_date are required", ErrInvalidInput)
	}

	start := dateOnly(in.StartDate)
	end := dateOnly(in.EndDate)
	if start.After(end) {
		return nil, fmt.Errorf("%w: start_date must not be after end_date", ErrInvalidInput)
	}

	if _, err := s.store.GetContract(ctx, in.ContractID); err != nil {
		return nil, notFound(err, "contract")
	}

	if in.Kind == model.ModificationSuspension {
		if err := s.checkSuspensionOverlap(ctx, in.ContractID, uuid.Nil, start, end); err != nil {
			return nil, err
		}
	}

	saved, err := s.store.Create(ctx, model.Modification{
		ContractID:   in.ContractID,
		Kind:         in.Kind,
		StartDate:    start,
		EndDate:      end,
		DurationDays: inclusiveDays(start, end),
		Note:         in.Note,
	})
	if err != nil {
		return nil, notFound(err, "contract")
	}
	return saved, nil
}

func (s *ModificationService) Update(ctx context.Context, in UpdateModificationInput) (*model.Modification, error) {
	mod, err := s.store.GetModification(ctx, in.ID)
	if err != nil {
		return nil, notFound(err, "modification")
	}

	if err := s.gate.Authorize(ctx, in.Principal, mod.ContractID, ActionMutateLedger); err != nil {
		return nil, err
	}

	shift := 0
	if in.StartDate != nil || in.EndDate != nil {
		start := mod.StartDate
		end := mod.EndDate
		if in.StartDate != nil {
			start = dateOnly(*in.StartDate)
		}
		if in.EndDate != nil {
			end = dateOnly(*in.EndDate)
		}
		if start.After(end) {
			return nil, fmt.Errorf("%w: start_date must not be after end_date", ErrInvalidInput)
		}
		if mod.Kind == model.ModificationSuspension {
			if err := s.checkSuspensionOverlap(ctx, mod.ContractID, mod.ID, start, end); err != nil {
				return nil, err
			}
		}
		newDuration := inclusiveDays(start, end)
		shift = newDuration - mod.DurationDays
		mod.StartDate = start
		mod.EndDate = end
		mod.DurationDays = newDuration
	}
	if in.Note != nil {
		mod.Note = *in.Note
	}

	saved, err := s.store.Update(ctx, *mod, shift)
	if err != nil {
		return nil, notFound(err, "modification")
	}
	return saved, nil
}

func (s *ModificationService) Delete(ctx context.Context, id uuid.UUID, p model.Principal) error {
	mod, err := s.store.GetModification(ctx, id)
	if err != nil {
		return notFound(err, "modification")
	}

	if err := s.gate.Authorize(ctx, p, mod.ContractID, ActionMutateLedger); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, *mod); err != nil {
		return notFound(err, "modification")
	}
	return nil
}

func (s *ModificationService) List(ctx context.Context, contractID uuid.UUID, p model.Principal) ([]model.Modification, error) {
	if err := s.gate.Authorize(ctx, p, contractID, ActionRead); err != nil {
		return nil, err
	}

	if _, err := s.store.GetContract(ctx, contractID); err != nil {
		return nil, notFound(err, "contract")
	}

	return s.store.ListByContract(ctx, contractID)
}

func (s *ModificationService) checkSuspensionOverlap(ctx context.Context, contractID, exclude uuid.UUID, start, end time.Time) error {
	existing, err := s.store.ListSuspensions(ctx, contractID, exclude)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if rangesOverlap(start, end, other.StartDate, other.EndDate) {
			return fmt.Errorf("%w: conflicts with suspension %s", ErrOverlappingSuspension, other.ID)
		}
	}
	return nil
}
