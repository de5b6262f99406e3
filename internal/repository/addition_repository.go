package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veeduria/obras-service/internal/model"
)

type AdditionRepository struct {
	db *gorm.DB
}

func NewAdditionRepository(db *gorm.DB) *AdditionRepository {
	return &AdditionRepository{db: db}
}

func (r *AdditionRepository) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	return getContract(ctx, r.db, id)
}

func (r *AdditionRepository) GetAddition(ctx context.Context, id uuid.UUID) (*model.Addition, error) {
	var addition model.Addition
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, amount, effective_date, note, created_at
		FROM additions
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&addition).Error
	if err != nil {
		return nil, err
	}
	if addition.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &addition, nil
}

func (r *AdditionRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Addition, error) {
	var additions []model.Addition
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, amount, effective_date, note, created_at
		FROM additions
		WHERE contract_id = ?
		ORDER BY created_at DESC, id DESC
	`, contractID).Scan(&additions).Error
	if err != nil {
		return nil, err
	}
	return additions, nil
}

func (r *AdditionRepository) Create(ctx context.Context, a model.Addition) (*model.Addition, error) {
	var saved model.Addition
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockContract(tx, a.ContractID); err != nil {
			return err
		}
		if err := tx.Raw(`
			INSERT INTO additions (contract_id, amount, effective_date, note)
			VALUES (?, ?, ?, ?)
			RETURNING id, contract_id, amount, effective_date, note, created_at
		`, a.ContractID, a.Amount, a.EffectiveDate, a.Note).Scan(&saved).Error; err != nil {
			return err
		}
		return tx.Exec(`
			UPDATE contracts SET committed_value = committed_value + ? WHERE id = ?
		`, a.Amount, a.ContractID).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *AdditionRepository) Update(ctx context.Context, a model.Addition, delta int64) (*model.Addition, error) {
	var saved model.Addition
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockContract(tx, a.ContractID); err != nil {
			return err
		}
		if err := tx.Raw(`
			UPDATE additions
			SET amount = ?, effective_date = ?, note = ?
			WHERE id = ?
			RETURNING id, contract_id, amount, effective_date, note, created_at
		`, a.Amount, a.EffectiveDate, a.Note, a.ID).Scan(&saved).Error; err != nil {
			return err
		}
		if saved.ID == uuid.Nil {
			return gorm.ErrRecordNotFound
		}
		if delta == 0 {
			return nil
		}
		return tx.Exec(`
			UPDATE contracts SET committed_value = committed_value + ? WHERE id = ?
		`, delta, a.ContractID).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *AdditionRepository) Delete(ctx context.Context, a model.Addition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockContract(tx, a.ContractID); err != nil {
			return err
		}
		result := tx.Exec(`DELETE FROM additions WHERE id = ?`, a.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Exec(`
			UPDATE contracts SET committed_value = committed_value - ? WHERE id = ?
		`, a.Amount, a.ContractID).Error
	})
}
