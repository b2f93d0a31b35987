package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeShiftStarted  = "shift.started"
	EventTypeShiftEnded    = "shift.ended"
	EventTypeActionCreated = "action.created"
	EventTypeLeaveRemoved  = "leave.removed"
)

type ShiftStartedEvent struct {
	BaseEvent
	GuildID   string `json:"guild_id"`
	ShiftID   int64  `json:"shift_id"`
	ShiftCode string `json:"shift_code"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	UnitRole  string `json:"unit_role"`
	StartTime int64  `json:"start_time"`
}

func NewShiftStartedEvent(guildID string, shiftID int64, shiftCode, userID, username, unitRole string, startTime int64) *ShiftStartedEvent {
	return &ShiftStartedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeShiftStarted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"guild_id":   guildID,
				"shift_id":   shiftID,
				"shift_code": shiftCode,
				"user_id":    userID,
				"username":   username,
				"unit_role":  unitRole,
				"start_time": startTime,
			},
		},
		GuildID:   guildID,
		ShiftID:   shiftID,
		ShiftCode: shiftCode,
		UserID:    userID,
		Username:  username,
		UnitRole:  unitRole,
		StartTime: startTime,
	}
}

type ShiftEndedEvent struct {
	BaseEvent
	GuildID         string          `json:"guild_id"`
	ShiftID         int64           `json:"shift_id"`
	ShiftCode       string          `json:"shift_code"`
	UserID          string          `json:"user_id"`
	Username        string          `json:"username"`
	UnitRole        string          `json:"unit_role"`
	DurationMinutes decimal.Decimal `json:"duration_minutes"`
	AutoEnded       bool            `json:"auto_ended"`
}

func NewShiftEndedEvent(guildID string, shiftID int64, shiftCode, userID, username, unitRole string, durationMinutes decimal.Decimal, autoEnded bool) *ShiftEndedEvent {
	return &ShiftEndedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeShiftEnded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"guild_id":         guildID,
				"shift_id":         shiftID,
				"shift_code":       shiftCode,
				"user_id":          userID,
				"username":         username,
				"unit_role":        unitRole,
				"duration_minutes": durationMinutes.String(),
				"auto_ended":       autoEnded,
			},
		},
		GuildID:         guildID,
		ShiftID:         shiftID,
		ShiftCode:       shiftCode,
		UserID:          userID,
		Username:        username,
		UnitRole:        unitRole,
		DurationMinutes: durationMinutes,
		AutoEnded:       autoEnded,
	}
}

type ActionCreatedEvent struct {
	BaseEvent
	GuildID        string `json:"guild_id"`
	ActionID       int64  `json:"action_id"`
	ActionType     string `json:"action_type"`
	TargetUserID   string `json:"target_user_id"`
	TargetUsername string `json:"target_username"`
	AdminUserID    string `json:"admin_user_id"`
}

func NewActionCreatedEvent(guildID string, actionID int64, actionType, targetUserID, targetUsername, adminUserID string) *ActionCreatedEvent {
	return &ActionCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeActionCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"guild_id":        guildID,
				"action_id":       actionID,
				"action_type":     actionType,
				"target_user_id":  targetUserID,
				"target_username": targetUsername,
				"admin_user_id":   adminUserID,
			},
		},
		GuildID:        guildID,
		ActionID:       actionID,
		ActionType:     actionType,
		TargetUserID:   targetUserID,
		TargetUsername: targetUsername,
		AdminUserID:    adminUserID,
	}
}

type LeaveRemovedEvent struct {
	BaseEvent
	GuildID      string `json:"guild_id"`
	ActionID     int64  `json:"action_id"`
	ActionType   string `json:"action_type"`
	TargetUserID string `json:"target_user_id"`
	AutoExpired  bool   `json:"auto_expired"`
}

func NewLeaveRemovedEvent(guildID string, actionID int64, actionType, targetUserID string, autoExpired bool) *LeaveRemovedEvent {
	return &LeaveRemovedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLeaveRemoved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"guild_id":       guildID,
				"action_id":      actionID,
				"action_type":    actionType,
				"target_user_id": targetUserID,
				"auto_expired":   autoExpired,
			},
		},
		GuildID:      guildID,
		ActionID:     actionID,
		ActionType:   actionType,
		TargetUserID: targetUserID,
		AutoExpired:  autoExpired,
	}
}
