// Package storage implements the shift repository on an embedded per-guild
// GORM store.
package storage

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dutytrack/dutytrack/internal"
	shiftDatamodel "github.com/dutytrack/dutytrack/internal/core/datamodel/shift"
	"github.com/dutytrack/dutytrack/internal/shift"
	"github.com/dutytrack/dutytrack/internal/timeclock"
)

type ShiftRepository struct {
	db *gorm.DB
}

func NewShiftRepository(db *gorm.DB) shift.Repository {
	return &ShiftRepository{db: db}
}

// Create inserts a new active shift. The no-second-active-shift check runs
// inside the same transaction as the insert, with the partial unique index
// on (user_id) WHERE is_active as the backstop for writers racing across
// connections. A duplicate-key failure after the check passed can only be
// the shift code, so it maps to ErrCodeCollision for the caller to retry.
func (r *ShiftRepository) Create(s *shift.Shift) error {
	dm := shift.ToDataModel(s)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&shiftDatamodel.Shift{}).
			Where("user_id = ? AND is_active = ?", s.UserID, true).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return shift.ErrShiftAlreadyActive
		}
		return tx.Create(dm).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shift.ErrCodeCollision
		}
		return err
	}

	s.ID = dm.ID
	return nil
}

// End closes a shift as one read-compute-update transaction. A missing or
// already-ended shift returns ErrShiftNotFound without touching the row, so
// double invocation never rewrites a duration.
func (r *ShiftRepository) End(shiftID int64, endPictureLink string) (*shift.Shift, error) {
	var dm shiftDatamodel.Shift

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", shiftID).First(&dm).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shift.ErrShiftNotFound
			}
			return err
		}
		if !dm.IsActive {
			return shift.ErrShiftNotFound
		}

		endTime := time.Now().UnixMilli()
		duration := timeclock.MinutesBetween(dm.StartTime, endTime)

		if err := tx.Model(&shiftDatamodel.Shift{}).
			Where("id = ?", shiftID).
			Updates(map[string]interface{}{
				"end_time":         endTime,
				"duration_minutes": duration,
				"end_picture_link": endPictureLink,
				"is_active":        false,
			}).Error; err != nil {
			return err
		}

		dm.EndTime = &endTime
		dm.DurationMinutes = decimal.NewNullDecimal(duration)
		dm.EndPictureLink = &endPictureLink
		dm.IsActive = false
		return nil
	})
	if err != nil {
		return nil, err
	}

	return shift.FromDataModel(&dm), nil
}

func (r *ShiftRepository) GetByID(shiftID int64) (*shift.Shift, error) {
	var dm shiftDatamodel.Shift
	err := r.db.Where("id = ?", shiftID).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shift.ErrShiftNotFound
		}
		return nil, err
	}
	return shift.FromDataModel(&dm), nil
}

func (r *ShiftRepository) GetByCode(code string) (*shift.Shift, error) {
	var dm shiftDatamodel.Shift
	err := r.db.Where("shift_code = ?", strings.ToUpper(code)).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shift.ErrShiftNotFound
		}
		return nil, err
	}
	return shift.FromDataModel(&dm), nil
}

// GetActiveForUser returns nil without error when the user is off duty;
// absence is the normal case here, not a failure.
func (r *ShiftRepository) GetActiveForUser(userID string) (*shift.Shift, error) {
	var dm shiftDatamodel.Shift
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return shift.FromDataModel(&dm), nil
}

func (r *ShiftRepository) GetAllActive() ([]*shift.Shift, error) {
	var dms []*shiftDatamodel.Shift
	err := r.db.Where("is_active = ?", true).
		Order("start_time DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return shift.FromDataModelSlice(dms), nil
}

func (r *ShiftRepository) GetUserShiftsInCycle(userID string, cycleID int64) ([]*shift.Shift, error) {
	var dms []*shiftDatamodel.Shift
	err := r.db.Where("user_id = ? AND quota_cycle_id = ?", userID, cycleID).
		Order("start_time DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return shift.FromDataModelSlice(dms), nil
}

func (r *ShiftRepository) GetUnitShiftsInCycle(unitRole string, cycleID int64) ([]*shift.Shift, error) {
	var dms []*shiftDatamodel.Shift
	err := r.db.Where("unit_role = ? AND quota_cycle_id = ?", unitRole, cycleID).
		Order("start_time DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return shift.FromDataModelSlice(dms), nil
}

// TotalMinutesForUserInCycle sums durations in Go with decimal arithmetic
// rather than in SQL, so fractional minutes survive SQLite's numeric
// affinity. An ended row with a null duration is external corruption and is
// reported as such, never folded into the total as zero.
func (r *ShiftRepository) TotalMinutesForUserInCycle(userID string, cycleID int64) (decimal.Decimal, error) {
	var dms []*shiftDatamodel.Shift
	err := r.db.Where("user_id = ? AND quota_cycle_id = ?", userID, cycleID).
		Find(&dms).Error
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, dm := range dms {
		if dm.IsActive {
			continue
		}
		if !dm.DurationMinutes.Valid {
			return decimal.Zero, internal.NewIntegrityError(
				shift.ErrShiftCorrupted.Error(), internal.ErrCodeShiftCorrupted)
		}
		total = total.Add(dm.DurationMinutes.Decimal)
	}
	return total, nil
}

// UpdateDuration only touches completed shifts: an active row never carries
// a duration, corrections included.
func (r *ShiftRepository) UpdateDuration(shiftID int64, minutes decimal.Decimal) (bool, error) {
	res := r.db.Model(&shiftDatamodel.Shift{}).
		Where("id = ? AND is_active = ?", shiftID, false).
		Update("duration_minutes", minutes)
	return res.RowsAffected > 0, res.Error
}

func (r *ShiftRepository) Delete(shiftID int64) (bool, error) {
	res := r.db.Where("id = ?", shiftID).Delete(&shiftDatamodel.Shift{})
	return res.RowsAffected > 0, res.Error
}

func (r *ShiftRepository) DeleteForUserInCycle(userID string, cycleID int64) (int64, error) {
	res := r.db.Where("user_id = ? AND quota_cycle_id = ?", userID, cycleID).
		Delete(&shiftDatamodel.Shift{})
	return res.RowsAffected, res.Error
}

func (r *ShiftRepository) DeleteForUnitInCycle(unitRole string, cycleID int64) (int64, error) {
	res := r.db.Where("unit_role = ? AND quota_cycle_id = ?", unitRole, cycleID).
		Delete(&shiftDatamodel.Shift{})
	return res.RowsAffected, res.Error
}

func (r *ShiftRepository) DeleteAllInCycle(cycleID int64) (int64, error) {
	res := r.db.Where("quota_cycle_id = ?", cycleID).
		Delete(&shiftDatamodel.Shift{})
	return res.RowsAffected, res.Error
}
