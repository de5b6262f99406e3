package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veeduria/obras-service/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	return getContract(ctx, r.db, id)
}

// GetContractorOrgID resolves the contractor organization that owns a
// contract. Used by the access gate for contractor-scoped checks.
func (r *ContractRepository) GetContractorOrgID(ctx context.Context, contractID uuid.UUID) (uuid.UUID, error) {
	var orgID uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		SELECT contractor_org_id
		FROM contracts
		WHERE id = ?
		LIMIT 1
	`, contractID).Scan(&orgID).Error
	if err != nil {
		return uuid.Nil, err
	}
	if orgID == uuid.Nil {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return orgID, nil
}

func getContract(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	err := db.WithContext(ctx).Raw(`
		SELECT
			id,
			contractor_org_id,
			name,
			initial_value,
			committed_value,
			start_date,
			initial_end_date,
			current_end_date,
			created_at
		FROM contracts
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&contract).Error
	if err != nil {
		return nil, err
	}
	if contract.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}

func getActivity(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.Activity, error) {
	var activity model.Activity
	err := db.WithContext(ctx).Raw(`
		SELECT
			a.id,
			a.work_point_id,
			wp.contract_id,
			a.description,
			a.unit,
			a.physical_target,
			a.financial_target,
			a.created_at
		FROM activities a
		JOIN work_points wp ON wp.id = a.work_point_id
		WHERE a.id = ?
		LIMIT 1
	`, id).Scan(&activity).Error
	if err != nil {
		return nil, err
	}
	if activity.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &activity, nil
}

// lockContract takes a row lock on the contract inside tx so concurrent
// ledger mutations against the same contract serialize instead of losing an
// update.
func lockContract(tx *gorm.DB, id uuid.UUID) error {
	var locked uuid.UUID
	if err := tx.Raw(`
		SELECT id FROM contracts WHERE id = ? FOR UPDATE
	`, id).Scan(&locked).Error; err != nil {
		return err
	}
	if locked == uuid.Nil {
		return gorm.ErrRecordNotFound
	}
	return nil
}
