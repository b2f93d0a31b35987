package quotacycle

// QuotaCycle is the persistence model for a recurring accounting window.
type QuotaCycle struct {
	ID        int64 `gorm:"primaryKey"`
	StartDate int64 `gorm:"column:start_date;not null"`
	EndDate   int64 `gorm:"column:end_date;not null"`
	IsActive  bool  `gorm:"column:is_active;index;not null;default:true"`
}

func (QuotaCycle) TableName() string {
	return "quota_cycles"
}
