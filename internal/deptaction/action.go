package deptaction

import (
	"errors"

	actionDatamodel "github.com/dutytrack/dutytrack/internal/core/datamodel/deptaction"
)

// ActionType classifies a personnel record. Durable types represent a status
// a member carries until removal or expiry; the rest are point-in-time log
// entries that are born inactive and never transition.
type ActionType string

const (
	ActionLOA        ActionType = "LOA"
	ActionAdminLeave ActionType = "ADMIN_LEAVE"
	ActionPromotion  ActionType = "PROMOTION"
	ActionDemotion   ActionType = "DEMOTION"
	ActionTransfer   ActionType = "TRANSFER"
	ActionDischarge  ActionType = "DISCHARGE"
	ActionHire       ActionType = "HIRE"
	ActionProbation  ActionType = "PROBATION"
	ActionSuspension ActionType = "SUSPENSION"
	ActionZTP        ActionType = "ZTP"
	ActionWarning    ActionType = "WARNING"
)

// DischargeType qualifies a DISCHARGE record.
type DischargeType string

const (
	DischargeHonorable   DischargeType = "HONORABLE"
	DischargeResignation DischargeType = "RESIGNATION"
	DischargeTermination DischargeType = "TERMINATION"
)

var actionTypes = map[ActionType]bool{
	ActionLOA:        true,
	ActionAdminLeave: true,
	ActionPromotion:  true,
	ActionDemotion:   true,
	ActionTransfer:   true,
	ActionDischarge:  true,
	ActionHire:       true,
	ActionProbation:  true,
	ActionSuspension: true,
	ActionZTP:        true,
	ActionWarning:    true,
}

var durableTypes = map[ActionType]bool{
	ActionLOA:        true,
	ActionAdminLeave: true,
	ActionProbation:  true,
	ActionSuspension: true,
	ActionZTP:        true,
}

func (t ActionType) Valid() bool {
	return actionTypes[t]
}

// Durable reports whether the type is a carried status subject to the
// one-active-status-per-user invariant and expiry. All five durable types
// activate uniformly at creation.
func (t ActionType) Durable() bool {
	return durableTypes[t]
}

// DurableTypes lists the carried-status types, for IN clauses.
func DurableTypes() []ActionType {
	return []ActionType{ActionLOA, ActionAdminLeave, ActionProbation, ActionSuspension, ActionZTP}
}

// DepartmentAction is one personnel event or status.
type DepartmentAction struct {
	ID                int64          `json:"id"`
	ActionType        ActionType     `json:"action_type"`
	TargetUserID      string         `json:"target_user_id"`
	TargetUsername    string         `json:"target_username"`
	AdminUserID       string         `json:"admin_user_id"`
	AdminUsername     string         `json:"admin_username"`
	Notes             *string        `json:"notes,omitempty"`
	IsActive          bool           `json:"is_active"`
	CreatedAt         int64          `json:"created_at"`
	EndDate           *int64         `json:"end_date,omitempty"`
	RemovedAt         *int64         `json:"removed_at,omitempty"`
	RemovedByUserID   *string        `json:"removed_by_user_id,omitempty"`
	RemovedByUsername *string        `json:"removed_by_username,omitempty"`
	PreviousRank      *string        `json:"previous_rank,omitempty"`
	NewRank           *string        `json:"new_rank,omitempty"`
	PreviousUnit      *string        `json:"previous_unit,omitempty"`
	NewUnit           *string        `json:"new_unit,omitempty"`
	DischargeType     *DischargeType `json:"discharge_type,omitempty"`
	MessageID         *string        `json:"message_id,omitempty"`
}

// Domain errors
var (
	ErrActionNotFound = errors.New("department action not found")

	// ErrLeaveAlreadyActive rejects a second concurrent durable status for
	// a user. Callers gate on ActiveLeaveForUser first; the store re-checks
	// inside the insert transaction.
	ErrLeaveAlreadyActive = errors.New("user already has an active status")
)

func ToDataModel(a *DepartmentAction) *actionDatamodel.DepartmentAction {
	dm := &actionDatamodel.DepartmentAction{
		ID:                a.ID,
		ActionType:        string(a.ActionType),
		TargetUserID:      a.TargetUserID,
		TargetUsername:    a.TargetUsername,
		AdminUserID:       a.AdminUserID,
		AdminUsername:     a.AdminUsername,
		Notes:             a.Notes,
		IsActive:          a.IsActive,
		CreatedAt:         a.CreatedAt,
		EndDate:           a.EndDate,
		RemovedAt:         a.RemovedAt,
		RemovedByUserID:   a.RemovedByUserID,
		RemovedByUsername: a.RemovedByUsername,
		PreviousRank:      a.PreviousRank,
		NewRank:           a.NewRank,
		PreviousUnit:      a.PreviousUnit,
		NewUnit:           a.NewUnit,
		MessageID:         a.MessageID,
	}
	if a.DischargeType != nil {
		dt := string(*a.DischargeType)
		dm.DischargeType = &dt
	}
	return dm
}

func FromDataModel(dm *actionDatamodel.DepartmentAction) *DepartmentAction {
	a := &DepartmentAction{
		ID:                dm.ID,
		ActionType:        ActionType(dm.ActionType),
		TargetUserID:      dm.TargetUserID,
		TargetUsername:    dm.TargetUsername,
		AdminUserID:       dm.AdminUserID,
		AdminUsername:     dm.AdminUsername,
		Notes:             dm.Notes,
		IsActive:          dm.IsActive,
		CreatedAt:         dm.CreatedAt,
		EndDate:           dm.EndDate,
		RemovedAt:         dm.RemovedAt,
		RemovedByUserID:   dm.RemovedByUserID,
		RemovedByUsername: dm.RemovedByUsername,
		PreviousRank:      dm.PreviousRank,
		NewRank:           dm.NewRank,
		PreviousUnit:      dm.PreviousUnit,
		NewUnit:           dm.NewUnit,
		MessageID:         dm.MessageID,
	}
	if dm.DischargeType != nil {
		dt := DischargeType(*dm.DischargeType)
		a.DischargeType = &dt
	}
	return a
}

func FromDataModelSlice(dms []*actionDatamodel.DepartmentAction) []*DepartmentAction {
	result := make([]*DepartmentAction, len(dms))
	for i, dm := range dms {
		result[i] = FromDataModel(dm)
	}
	return result
}
