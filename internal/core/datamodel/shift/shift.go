package shift

import "github.com/shopspring/decimal"

// Shift is the persistence model for one work session. Instants are epoch
// milliseconds; duration is a decimal so fractional minutes survive the
// round trip.
type Shift struct {
	ID               int64               `gorm:"primaryKey"`
	ShiftCode        string              `gorm:"column:shift_code;uniqueIndex;not null"`
	UserID           string              `gorm:"column:user_id;index;not null"`
	Username         string              `gorm:"column:username;not null"`
	UnitRole         string              `gorm:"column:unit_role;index;not null"`
	StartTime        int64               `gorm:"column:start_time;not null"`
	EndTime          *int64              `gorm:"column:end_time"`
	DurationMinutes  decimal.NullDecimal `gorm:"column:duration_minutes;type:numeric"`
	StartPictureLink string              `gorm:"column:start_picture_link;not null"`
	EndPictureLink   *string             `gorm:"column:end_picture_link"`
	QuotaCycleID     int64               `gorm:"column:quota_cycle_id;index;not null"`
	IsActive         bool                `gorm:"column:is_active;index;not null;default:true"`
}

func (Shift) TableName() string {
	return "shifts"
}
