package deptaction

// DepartmentAction is the persistence model for a personnel event or durable
// status. Point-in-time rows are inserted inactive and never change except
// for the deferred message reference; durable-status rows flip inactive on
// removal or expiry.
type DepartmentAction struct {
	ID                int64   `gorm:"primaryKey"`
	ActionType        string  `gorm:"column:action_type;index;not null"`
	TargetUserID      string  `gorm:"column:target_user_id;index;not null"`
	TargetUsername    string  `gorm:"column:target_username;not null"`
	AdminUserID       string  `gorm:"column:admin_user_id;not null"`
	AdminUsername     string  `gorm:"column:admin_username;not null"`
	Notes             *string `gorm:"column:notes"`
	IsActive          bool    `gorm:"column:is_active;index;not null;default:false"`
	CreatedAt         int64   `gorm:"column:created_at;not null"`
	EndDate           *int64  `gorm:"column:end_date"`
	RemovedAt         *int64  `gorm:"column:removed_at"`
	RemovedByUserID   *string `gorm:"column:removed_by_user_id"`
	RemovedByUsername *string `gorm:"column:removed_by_username"`
	PreviousRank      *string `gorm:"column:previous_rank"`
	NewRank           *string `gorm:"column:new_rank"`
	PreviousUnit      *string `gorm:"column:previous_unit"`
	NewUnit           *string `gorm:"column:new_unit"`
	DischargeType     *string `gorm:"column:discharge_type"`
	MessageID         *string `gorm:"column:message_id"`
}

func (DepartmentAction) TableName() string {
	return "department_actions"
}
