package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veeduria/obras-service/internal/model"
	"github.com/veeduria/obras-service/internal/service"
)

type ModificationRepository struct {
	db *gorm.DB
}

func NewModificationRepository(db *gorm.DB) *ModificationRepository {
	return &ModificationRepository{db: db}
}

func (r *ModificationRepository) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	return getContract(ctx, r.db, id)
}

func (r *ModificationRepository) GetModification(ctx context.Context, id uuid.UUID) (*model.Modification, error) {
	var mod model.Modification
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, kind, start_date, end_date, duration_days, note, created_at
		FROM modifications
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&mod).Error
	if err != nil {
		return nil, err
	}
	if mod.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &mod, nil
}

func (r *ModificationRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Modification, error) {
	var mods []model.Modification
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, kind, start_date, end_date, duration_days, note, created_at
		FROM modifications
		WHERE contract_id = ?
		ORDER BY created_at DESC, id DESC
	`, contractID).Scan(&mods).Error
	if err != nil {
		return nil, err
	}
	return mods, nil
}

// ListSuspensions returns all suspensions on the contract except exclude,
// used for the overlap check when creating or re-dating a suspension.
func (r *ModificationRepository) ListSuspensions(ctx context.Context, contractID uuid.UUID, exclude uuid.UUID) ([]model.Modification, error) {
	var mods []model.Modification
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, kind, start_date, end_date, duration_days, note, created_at
		FROM modifications
		WHERE contract_id = ?
			AND kind = 'SUSPENSION'
			AND id <> ?
		ORDER BY start_date ASC
	`, contractID, exclude).Scan(&mods).Error
	if err != nil {
		return nil, err
	}
	return mods, nil
}

func (r *ModificationRepository) Create(ctx context.Context, m model.Modification) (*model.Modification, error) {
	var saved model.Modification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockContract(tx, m.ContractID); err != nil {
			return err
		}
		if m.Kind == model.ModificationSuspension {
			if err := checkSuspensionConflict(tx, m.ContractID, uuid.Nil, m.StartDate, m.EndDate); err != nil {
				return err
			}
		}
		if err := tx.Raw(`
			INSERT INTO modifications (contract_id, kind, start_date, end_date, duration_days, note)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id, contract_id, kind, start_date, end_date, duration_days, note, created_at
		`, m.ContractID, m.Kind, m.StartDate, m.EndDate, m.DurationDays, m.Note).Scan(&saved).Error; err != nil {
			return err
		}
		return shiftContractEndDate(tx, m.ContractID, m.DurationDays)
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ModificationRepository) Update(ctx context.Context, m model.Modification, shiftDays int) (*model.Modification, error) {
	var saved model.Modification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockContract(tx, m.ContractID); err != nil {
			return err
		}
		if m.Kind == model.ModificationSuspension {
			if err := checkSuspensionConflict(tx, m.ContractID, m.ID, m.StartDate, m.EndDate); err != nil {
				return err
			}
		}
		if err := tx.Raw(`
			UPDATE modifications
			SET start_date = ?, end_date = ?, duration_days = ?, note = ?
			WHERE id = ?
			RETURNING id, contract_id, kind, start_date, end_date, duration_days, note, created_at
		`, m.StartDate, m.EndDate, m.DurationDays, m.Note, m.ID).Scan(&saved).Error; err != nil {
			return err
		}
		if saved.ID == uuid.Nil {
			return gorm.ErrRecordNotFound
		}
		if shiftDays == 0 {
			return nil
		}
		return shiftContractEndDate(tx, m.ContractID, shiftDays)
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ModificationRepository) Delete(ctx context.Context, m model.Modification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockContract(tx, m.ContractID); err != nil {
			return err
		}
		result := tx.Exec(`DELETE FROM modifications WHERE id = ?`, m.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return shiftContractEndDate(tx, m.ContractID, -m.DurationDays)
	})
}

// checkSuspensionConflict re-runs the overlap check under the contract row
// lock. The service validates against a snapshot before the transaction
// starts, so a racing create on the same contract can slip past it; this
// query sees rows committed since that snapshot.
func checkSuspensionConflict(tx *gorm.DB, contractID uuid.UUID, exclude uuid.UUID, start, end time.Time) error {
	var conflict uuid.UUID
	err := tx.Raw(`
		SELECT id
		FROM modifications
		WHERE contract_id = ?
			AND kind = 'SUSPENSION'
			AND id <> ?
			AND start_date <= ?
			AND end_date >= ?
		LIMIT 1
	`, contractID, exclude, end, start).Scan(&conflict).Error
	if err != nil {
		return err
	}
	if conflict != uuid.Nil {
		return fmt.Errorf("%w: conflicts with suspension %s", service.ErrOverlappingSuspension, conflict)
	}
	return nil
}

func shiftContractEndDate(tx *gorm.DB, contractID uuid.UUID, days int) error {
	return tx.Exec(`
		UPDATE contracts
		SET current_end_date = current_end_date + ?::int
		WHERE id = ?
	`, days, contractID).Error
}
