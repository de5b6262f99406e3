package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/veeduria/obras-service/internal/model"
)

func TestAdditionLedgerScenario(t *testing.T) {
	ctx := context.Background()
	contract := testContract()
	store := newFakeAdditionStore(contract)
	svc := NewAdditionService(store, allowAllGate{})
	p := testPrincipal()

	first, err := svc.Create(ctx, CreateAdditionInput{
		ContractID:    contract.ID,
		Amount:        300_000_000,
		EffectiveDate: date(2024, 3, 1),
		Principal:     p,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1_300_000_000, contract.CommittedValue)

	_, err = svc.Create(ctx, CreateAdditionInput{
		ContractID:    contract.ID,
		Amount:        200_000_000,
		EffectiveDate: date(2024, 4, 1),
		Principal:     p,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1_500_000_000, contract.CommittedValue)

	require.NoError(t, svc.Delete(ctx, first.ID, p))
	require.EqualValues(t, 1_200_000_000, contract.CommittedValue)
}

func TestAdditionUpdateAppliesDelta(t *testing.T) {
	ctx := context.Background()
	contract := testContract()
	store := newFakeAdditionStore(contract)
	svc := NewAdditionService(store, allowAllGate{})
	p := testPrincipal()

	addition, err := svc.Create(ctx, CreateAdditionInput{
		ContractID:    contract.ID,
		Amount:        100_000_000,
		EffectiveDate: date(2024, 3, 1),
		Principal:     p,
	})
	require.NoError(t, err)

	newAmount := int64(250_000_000)
	updated, err := svc.Update(ctx, UpdateAdditionInput{
		ID:        addition.ID,
		Amount:    &newAmount,
		Principal: p,
	})
	require.NoError(t, err)
	require.EqualValues(t, 250_000_000, updated.Amount)
	require.EqualValues(t, 1_250_000_000, contract.CommittedValue)

	// note-only patch must not touch the ledger
	note := "ajuste por mayor cantidad de obra"
	_, err = svc.Update(ctx, UpdateAdditionInput{ID: addition.ID, Note: &note, Principal: p})
	require.NoError(t, err)
	require.EqualValues(t, 1_250_000_000, contract.CommittedValue)
}

func TestAdditionCreateThenDeleteRestoresLedger(t *testing.T) {
	ctx := context.Background()
	contract := testContract()
	before := contract.CommittedValue
	store := newFakeAdditionStore(contract)
	svc := NewAdditionService(store, allowAllGate{})
	p := testPrincipal()

	addition, err := svc.Create(ctx, CreateAdditionInput{
		ContractID:    contract.ID,
		Amount:        -50_000_000,
		EffectiveDate: date(2024, 5, 1),
		Principal:     p,
	})
	require.NoError(t, err)
	require.EqualValues(t, before-50_000_000, contract.CommittedValue)

	require.NoError(t, svc.Delete(ctx, addition.ID, p))
	require.EqualValues(t, before, contract.CommittedValue)
}

func TestAdditionValidation(t *testing.T) {
	ctx := context.Background()
	contract := testContract()
	svc := NewAdditionService(newFakeAdditionStore(contract), allowAllGate{})
	p := testPrincipal()

	_, err := svc.Create(ctx, CreateAdditionInput{
		ContractID:    contract.ID,
		Amount:        0,
		EffectiveDate: date(2024, 3, 1),
		Principal:     p,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, CreateAdditionInput{
		ContractID:    contract.ID,
		Amount:        1000,
		EffectiveDate: time.Time{},
		Principal:     p,
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, CreateAdditionInput{
		ContractID:    uuid.New(),
		Amount:        1000,
		EffectiveDate: date(2024, 3, 1),
		Principal:     p,
	})
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, svc.Delete(ctx, uuid.New(), p), ErrNotFound)
}

func TestAdditionGateDenialAbortsBeforeWrite(t *testing.T) {
	ctx := context.Background()
	contract := testContract()
	store := newFakeAdditionStore(contract)
	svc := NewAdditionService(store, denyGate{err: ErrPermissionDenied})

	_, err := svc.Create(ctx, CreateAdditionInput{
		ContractID:    contract.ID,
		Amount:        1000,
		EffectiveDate: date(2024, 3, 1),
		Principal:     model.Principal{Role: model.RoleAuditor},
	})
	require.ErrorIs(t, err, ErrPermissionDenied)
	require.EqualValues(t, 1_000_000_000, contract.CommittedValue)
	require.Empty(t, store.additions)
}

// vanishedAdditionStore fails the delete transaction the way the repository
// does when the row disappears between the service's read and the lock.
type vanishedAdditionStore struct {
	*fakeAdditionStore
}

func (s vanishedAdditionStore) Delete(context.Context, model.Addition) error {
	return gorm.ErrRecordNotFound
}

func TestAdditionDeleteVanishedRowMapsToNotFound(t *testing.T) {
	ctx := context.Background()
	contract := testContract()
	store := newFakeAdditionStore(contract)
	p := testPrincipal()

	addition, err := NewAdditionService(store, allowAllGate{}).Create(ctx, CreateAdditionInput{
		ContractID:    contract.ID,
		Amount:        300_000_000,
		EffectiveDate: date(2024, 3, 1),
		Principal:     p,
	})
	require.NoError(t, err)

	svc := NewAdditionService(vanishedAdditionStore{store}, allowAllGate{})
	err = svc.Delete(ctx, addition.ID, p)
	require.ErrorIs(t, err, ErrNotFound)
}
