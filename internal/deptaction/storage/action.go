// Package storage implements the department action repository on an
// embedded per-guild GORM store.
package storage

import (
	"errors"

	"gorm.io/gorm"

	actionDatamodel "github.com/dutytrack/dutytrack/internal/core/datamodel/deptaction"
	"github.com/dutytrack/dutytrack/internal/deptaction"
)

type ActionRepository struct {
	db *gorm.DB
}

func NewActionRepository(db *gorm.DB) deptaction.Repository {
	return &ActionRepository{db: db}
}

func durableTypeStrings() []string {
	types := deptaction.DurableTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

// Create inserts a personnel action. For durable types the
// one-active-status-per-user check runs in the same transaction as the
// insert, with the partial unique index on (target_user_id) WHERE is_active
// as the backstop against writers racing across connections.
func (r *ActionRepository) Create(a *deptaction.DepartmentAction) error {
	dm := deptaction.ToDataModel(a)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if a.ActionType.Durable() {
			var active int64
			if err := tx.Model(&actionDatamodel.DepartmentAction{}).
				Where("target_user_id = ? AND is_active = ? AND action_type IN ?",
					a.TargetUserID, true, durableTypeStrings()).
				Count(&active).Error; err != nil {
				return err
			}
			if active > 0 {
				return deptaction.ErrLeaveAlreadyActive
			}
		}
		return tx.Create(dm).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return deptaction.ErrLeaveAlreadyActive
		}
		return err
	}

	a.ID = dm.ID
	return nil
}

func (r *ActionRepository) GetByID(actionID int64) (*deptaction.DepartmentAction, error) {
	var dm actionDatamodel.DepartmentAction
	err := r.db.Where("id = ?", actionID).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, deptaction.ErrActionNotFound
		}
		return nil, err
	}
	return deptaction.FromDataModel(&dm), nil
}

// GetActiveLeaveForUser returns nil without error when the user carries no
// active durable status.
func (r *ActionRepository) GetActiveLeaveForUser(userID string) (*deptaction.DepartmentAction, error) {
	var dm actionDatamodel.DepartmentAction
	err := r.db.Where("target_user_id = ? AND is_active = ? AND action_type IN ?",
		userID, true, durableTypeStrings()).
		First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return deptaction.FromDataModel(&dm), nil
}

func (r *ActionRepository) GetAllActiveLeaves() ([]*deptaction.DepartmentAction, error) {
	var dms []*actionDatamodel.DepartmentAction
	err := r.db.Where("is_active = ? AND action_type IN ?", true, durableTypeStrings()).
		Order("created_at DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return deptaction.FromDataModelSlice(dms), nil
}

// GetExpiredLeaves covers every durable type with an end date, so the expiry
// sweep never strands a probation or suspension the way a LOA-only filter
// would. Already-inactive rows are excluded, which is what makes the sweep
// idempotent.
func (r *ActionRepository) GetExpiredLeaves(nowMillis int64) ([]*deptaction.DepartmentAction, error) {
	var dms []*actionDatamodel.DepartmentAction
	err := r.db.Where("is_active = ? AND action_type IN ? AND end_date IS NOT NULL AND end_date <= ?",
		true, durableTypeStrings(), nowMillis).
		Order("end_date ASC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return deptaction.FromDataModelSlice(dms), nil
}

// Remove deactivates an action, stamping removal time and remover identity.
// Nil remover columns mark a system (expiry) removal. Only active rows
// match, so a second removal is a no-op.
func (r *ActionRepository) Remove(actionID, removedAt int64, removerUserID, removerUsername *string) (bool, error) {
	res := r.db.Model(&actionDatamodel.DepartmentAction{}).
		Where("id = ? AND is_active = ?", actionID, true).
		Updates(map[string]interface{}{
			"is_active":           false,
			"removed_at":          removedAt,
			"removed_by_user_id":  removerUserID,
			"removed_by_username": removerUsername,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *ActionRepository) UpdateMessageID(actionID int64, messageID string) (bool, error) {
	res := r.db.Model(&actionDatamodel.DepartmentAction{}).
		Where("id = ?", actionID).
		Update("message_id", messageID)
	return res.RowsAffected > 0, res.Error
}

func (r *ActionRepository) GetUserHistory(userID string, limit int) ([]*deptaction.DepartmentAction, error) {
	var dms []*actionDatamodel.DepartmentAction
	err := r.db.Where("target_user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return deptaction.FromDataModelSlice(dms), nil
}
