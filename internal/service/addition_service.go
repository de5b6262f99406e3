package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/veeduria/obras-service/internal/model"
)

// AdditionStore persists budget additions. Create, Update and Delete are
// single atomic units: the addition row change and the contract
// committed-value delta commit or roll back together, with the contract row
// locked for the duration of the transaction.
type AdditionStore interface {
	GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	GetAddition(ctx context.Context, id uuid.UUID) (*model.Addition, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Addition, error)
	// Create inserts a and adds a.Amount to the contract's committed value.
	Create(ctx context.Context, a model.Addition) (*model.Addition, error)
	// Update persists a and adds delta (new amount minus old) to the
	// contract's committed value.
	Update(ctx context.Context, a model.Addition, delta int64) (*model.Addition, error)
	// Delete removes a and subtracts a.Amount from the contract's
	// committed value.
	Delete(ctx context.Context, a model.Addition) error
}

type AdditionService struct {
	store AdditionStore
	gate  AccessGate
}

func NewAdditionService(store AdditionStore, gate AccessGate) *AdditionService {
	return &AdditionService{store: store, gate: gate}
}

type CreateAdditionInput struct {
	ContractID    uuid.UUID
	Amount        int64
	EffectiveDate time.Time
	Note          string
	Principal     model.Principal
}

type UpdateAdditionInput struct {
	ID            uuid.UUID
	Amount        *int64
	EffectiveDate *time.Time
	Note          *string
	Principal     model.Principal
}

func (s *AdditionService) Create(ctx context.Context, in CreateAdditionInput) (*model.Addition, error) {
	if err := s.gate.Authorize(ctx, in.Principal, in.ContractID, ActionMutateLedger); err != nil {
		return nil, err
	}

	if in.Amount == 0 {
		return nil, fmt.Errorf("%w: amount must not be zero", ErrInvalidInput)
	}
	if in.EffectiveDate.IsZero() {
		return nil, fmt.Errorf("%w: effective_date is required", ErrInvalidInput)
	}

	if _, err := s.store.GetContract(ctx, in.ContractID); err != nil {
		return nil, notFound(err, "contract")
	}

	saved, err := s.store.Create(ctx, model.Addition{
		ContractID:    in.ContractID,
		Amount:        in.Amount,
		EffectiveDate: dateOnly(in.EffectiveDate),
		Note:          in.Note,
	})
	if err != nil {
		return nil, notFound(err, "contract")
	}
	return saved, nil
}

func (s *AdditionService) Update(ctx context.Context, in UpdateAdditionInput) (*model.Addition, error) {
	addition, err := s.store.GetAddition(ctx, in.ID)
	if err != nil {
		return nil, notFound(err, "addition")
	}

	if err := s.gate.Authorize(ctx, in.Principal, addition.ContractID, ActionMutateLedger); err != nil {
		return nil, err
	}

	var delta int64
	if in.Amount != nil {
		if *in.Amount == 0 {
			return nil, fmt.Errorf("%w: amount must not be zero", ErrInvalidInput)
		}
		delta = *in.Amount - addition.Amount
		addition.Amount = *in.Amount
	}
	if in.EffectiveDate != nil {
		addition.EffectiveDate = dateOnly(*in.EffectiveDate)
	}
	if in.Note != nil {
		addition.Note = *in.Note
	}

	saved, err := s.store.Update(ctx, *addition, delta)
	if err != nil {
		return nil, notFound(err, "addition")
	}
	return saved, nil
}

func (s *AdditionService) Delete(ctx context.Context, id uuid.UUID, p model.Principal) error {
	addition, err := s.store.GetAddition(ctx, id)
	if err != nil {
		return notFound(err, "addition")
	}

	if err := s.gate.Authorize(ctx, p, addition.ContractID, ActionMutateLedger); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, *addition); err != nil {
		return notFound(err, "addition")
	}
	return nil
}

func (s *AdditionService) List(ctx context.Context, contractID uuid.UUID, p model.Principal) ([]model.Addition, error) {
	if err := s.gate.Authorize(ctx, p, contractID, ActionRead); err != nil {
		return nil, err
	}

	if _, err := s.store.GetContract(ctx, contractID); err != nil {
		return nil, notFound(err, "contract")
	}

	return s.store.ListByContract(ctx, contractID)
}
