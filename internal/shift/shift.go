package shift

import (
	"errors"

	"github.com/shopspring/decimal"

	shiftDatamodel "github.com/dutytrack/dutytrack/internal/core/datamodel/shift"
)

// Shift is one work session. Instants are epoch milliseconds; EndTime and
// DurationMinutes are nil while the shift is running.
type Shift struct {
	ID               int64            `json:"id"`
	ShiftCode        string           `json:"shift_code"`
	UserID           string           `json:"user_id"`
	Username         string           `json:"username"`
	UnitRole         string           `json:"unit_role"`
	StartTime        int64            `json:"start_time"`
	EndTime          *int64           `json:"end_time,omitempty"`
	DurationMinutes  *decimal.Decimal `json:"duration_minutes,omitempty"`
	StartPictureLink string           `json:"start_picture_link"`
	EndPictureLink   *string          `json:"end_picture_link,omitempty"`
	QuotaCycleID     int64            `json:"quota_cycle_id"`
	IsActive         bool             `json:"is_active"`
}

// Domain errors
var (
	ErrShiftNotFound = errors.New("shift not found")

	// ErrShiftAlreadyActive rejects a second concurrent shift for a user.
	// Callers gate on ActiveShiftForUser first; the store re-checks inside
	// the insert transaction so a race cannot produce two active rows.
	ErrShiftAlreadyActive = errors.New("user already has an active shift")

	// ErrCodeCollision is internal to the start path: the generated shift
	// code already exists and a fresh one must be drawn.
	ErrCodeCollision = errors.New("shift code already in use")

	// ErrShiftCorrupted flags an ended shift with no recorded duration.
	// Normal operation cannot produce that state, so it is reported as
	// data corruption rather than formatted as zero.
	ErrShiftCorrupted = errors.New("shift record is inconsistent: ended without a duration")
)

// CheckConsistent validates the active/duration invariant on a row read back
// from storage.
func (s *Shift) CheckConsistent() error {
	if !s.IsActive && (s.EndTime == nil || s.DurationMinutes == nil) {
		return ErrShiftCorrupted
	}
	return nil
}

// Completed reports whether the shift has ended with a recorded duration.
func (s *Shift) Completed() bool {
	return !s.IsActive && s.DurationMinutes != nil
}

func ToDataModel(s *Shift) *shiftDatamodel.Shift {
	dm := &shiftDatamodel.Shift{
		ID:               s.ID,
		ShiftCode:        s.ShiftCode,
		UserID:           s.UserID,
		Username:         s.Username,
		UnitRole:         s.UnitRole,
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		StartPictureLink: s.StartPictureLink,
		EndPictureLink:   s.EndPictureLink,
		QuotaCycleID:     s.QuotaCycleID,
		IsActive:         s.IsActive,
	}
	if s.DurationMinutes != nil {
		dm.DurationMinutes = decimal.NewNullDecimal(*s.DurationMinutes)
	}
	return dm
}

func FromDataModel(dm *shiftDatamodel.Shift) *Shift {
	s := &Shift{
		ID:               dm.ID,
		ShiftCode:        dm.ShiftCode,
		UserID:           dm.UserID,
		Username:         dm.Username,
		UnitRole:         dm.UnitRole,
		StartTime:        dm.StartTime,
		EndTime:          dm.EndTime,
		StartPictureLink: dm.StartPictureLink,
		EndPictureLink:   dm.EndPictureLink,
		QuotaCycleID:     dm.QuotaCycleID,
		IsActive:         dm.IsActive,
	}
	if dm.DurationMinutes.Valid {
		d := dm.DurationMinutes.Decimal
		s.DurationMinutes = &d
	}
	return s
}

func FromDataModelSlice(dms []*shiftDatamodel.Shift) []*Shift {
	result := make([]*Shift, len(dms))
	for i, dm := range dms {
		result[i] = FromDataModel(dm)
	}
	return result
}
