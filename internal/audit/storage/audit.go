package storage

import (
	"gorm.io/gorm"

	"github.com/dutytrack/dutytrack/internal/audit"
	auditDatamodel "github.com/dutytrack/dutytrack/internal/core/datamodel/audit"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(e *audit.Entry) error {
	dm := audit.ToDataModel(e)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	e.ID = dm.ID
	return nil
}

func (r *AuditRepository) Recent(limit int) ([]*audit.Entry, error) {
	var dms []*auditDatamodel.Entry
	err := r.db.Order("timestamp DESC").Limit(limit).Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return audit.FromDataModelSlice(dms), nil
}

func (r *AuditRepository) RecentForUser(userID string, limit int) ([]*audit.Entry, error) {
	var dms []*auditDatamodel.Entry
	err := r.db.Where("target_user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return audit.FromDataModelSlice(dms), nil
}
