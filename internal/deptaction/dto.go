package deptaction

import (
	"errors"
	"time"
)

// CreateActionInput is the payload for recording a personnel action.
// Optional fields apply only to particular action types; Validate rejects
// combinations the type cannot carry.
type CreateActionInput struct {
	ActionType     ActionType     `json:"action_type"`
	TargetUserID   string         `json:"target_user_id"`
	TargetUsername string         `json:"target_username"`
	AdminUserID    string         `json:"admin_user_id"`
	AdminUsername  string         `json:"admin_username"`
	Notes          *string        `json:"notes,omitempty"`
	EndDate        *int64         `json:"end_date,omitempty"`
	PreviousRank   *string        `json:"previous_rank,omitempty"`
	NewRank        *string        `json:"new_rank,omitempty"`
	PreviousUnit   *string        `json:"previous_unit,omitempty"`
	NewUnit        *string        `json:"new_unit,omitempty"`
	DischargeType  *DischargeType `json:"discharge_type,omitempty"`
}

func (in CreateActionInput) Validate() error {
	if !in.ActionType.Valid() {
		return errors.New("unknown action type")
	}
	if in.TargetUserID == "" {
		return errors.New("target user id is required")
	}
	if in.TargetUsername == "" {
		return errors.New("target username is required")
	}
	if in.AdminUserID == "" {
		return errors.New("admin user id is required")
	}
	if in.AdminUsername == "" {
		return errors.New("admin username is required")
	}
	if in.EndDate != nil {
		if !in.ActionType.Durable() {
			return errors.New("end date applies only to durable statuses")
		}
		if *in.EndDate <= time.Now().UnixMilli() {
			return errors.New("end date must be in the future")
		}
	}
	if in.DischargeType != nil && in.ActionType != ActionDischarge {
		return errors.New("discharge type applies only to discharges")
	}
	if in.ActionType == ActionDischarge && in.DischargeType != nil {
		switch *in.DischargeType {
		case DischargeHonorable, DischargeResignation, DischargeTermination:
		default:
			return errors.New("unknown discharge type")
		}
	}
	return nil
}
