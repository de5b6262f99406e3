package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veeduria/obras-service/internal/model"
	"github.com/veeduria/obras-service/internal/service"
)

type ProgressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

func (r *ProgressRepository) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	return getContract(ctx, r.db, id)
}

func (r *ProgressRepository) GetActivity(ctx context.Context, id uuid.UUID) (*model.Activity, error) {
	return getActivity(ctx, r.db, id)
}

func (r *ProgressRepository) ListContractReports(ctx context.Context, contractID uuid.UUID) ([]model.ContractProgress, error) {
	var reports []model.ContractProgress
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, contract_id, value, physical_percent, note, created_at
		FROM contract_progress
		WHERE contract_id = ?
		ORDER BY created_at ASC, id ASC
	`, contractID).Scan(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *ProgressRepository) CreateContractReport(ctx context.Context, report model.ContractProgress) (*model.ContractProgress, error) {
	var saved model.ContractProgress
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO contract_progress (contract_id, value, physical_percent, note)
		VALUES (?, ?, ?, ?)
		RETURNING id, contract_id, value, physical_percent, note, created_at
	`, report.ContractID, report.Value, report.PhysicalPercent, report.Note).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ProgressRepository) ListActivityReports(ctx context.Context, activityID uuid.UUID) ([]model.ActivityProgress, error) {
	var reports []model.ActivityProgress
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, activity_id, quantity, cost, work_done, work_planned, created_at
		FROM activity_progress
		WHERE activity_id = ?
		ORDER BY created_at ASC, id ASC
	`, activityID).Scan(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// CreateActivityReport appends an activity report. The ceiling is re-checked
// under a row lock on the activity, so two concurrent reports cannot jointly
// push the accumulated quantity past the target.
func (r *ProgressRepository) CreateActivityReport(ctx context.Context, report model.ActivityProgress, target float64) (*model.ActivityProgress, error) {
	var saved model.ActivityProgress
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked uuid.UUID
		if err := tx.Raw(`
			SELECT id FROM activities WHERE id = ? FOR UPDATE
		`, report.ActivityID).Scan(&locked).Error; err != nil {
			return err
		}
		if locked == uuid.Nil {
			return gorm.ErrRecordNotFound
		}

		var accumulated float64
		if err := tx.Raw(`
			SELECT COALESCE(SUM(quantity), 0)
			FROM activity_progress
			WHERE activity_id = ?
		`, report.ActivityID).Scan(&accumulated).Error; err != nil {
			return err
		}
		if target > 0 && accumulated+report.Quantity > target+1e-9 {
			return service.ErrCeilingExceeded
		}

		return tx.Raw(`
			INSERT INTO activity_progress (activity_id, quantity, cost, work_done, work_planned)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id, activity_id, quantity, cost, work_done, work_planned, created_at
		`, report.ActivityID, report.Quantity, report.Cost, report.WorkDone, report.WorkPlanned).Scan(&saved).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}
