// Package storage implements the quota cycle repository on an embedded
// per-guild GORM store.
package storage

import (
	"errors"

	"gorm.io/gorm"

	cycleDatamodel "github.com/dutytrack/dutytrack/internal/core/datamodel/quotacycle"
	"github.com/dutytrack/dutytrack/internal/quotacycle"
)

type CycleRepository struct {
	db *gorm.DB
}

func NewCycleRepository(db *gorm.DB) quotacycle.Repository {
	return &CycleRepository{db: db}
}

func (r *CycleRepository) GetActive() (*quotacycle.QuotaCycle, error) {
	var dm cycleDatamodel.QuotaCycle
	err := r.db.Where("is_active = ?", true).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return quotacycle.FromDataModel(&dm), nil
}

func (r *CycleRepository) Create(startDate, endDate int64) (*quotacycle.QuotaCycle, error) {
	dm := &cycleDatamodel.QuotaCycle{
		StartDate: startDate,
		EndDate:   endDate,
		IsActive:  true,
	}
	if err := r.db.Create(dm).Error; err != nil {
		return nil, err
	}
	return quotacycle.FromDataModel(dm), nil
}

func (r *CycleRepository) DeactivateAll() error {
	return r.db.Model(&cycleDatamodel.QuotaCycle{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}

// Reset runs deactivate-all plus create as a single transaction so the
// single-active-cycle invariant holds at every observable point.
func (r *CycleRepository) Reset(startDate, endDate int64) (*quotacycle.QuotaCycle, error) {
	dm := &cycleDatamodel.QuotaCycle{
		StartDate: startDate,
		EndDate:   endDate,
		IsActive:  true,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&cycleDatamodel.QuotaCycle{}).
			Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(dm).Error
	})
	if err != nil {
		return nil, err
	}
	return quotacycle.FromDataModel(dm), nil
}
