package audit

// Entry is the persistence model for one audit-log row. Append-only.
type Entry struct {
	ID            int64   `gorm:"primaryKey"`
	Timestamp     int64   `gorm:"column:timestamp;index;not null"`
	AdminID       string  `gorm:"column:admin_id;not null"`
	AdminUsername string  `gorm:"column:admin_username;not null"`
	Action        string  `gorm:"column:action;not null"`
	TargetUserID  *string `gorm:"column:target_user_id"`
	Details       string  `gorm:"column:details;not null"`
}

func (Entry) TableName() string {
	return "audit_logs"
}
