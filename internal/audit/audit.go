// Package audit keeps an append-only trail of administrative commands.
package audit

import (
	auditDatamodel "github.com/dutytrack/dutytrack/internal/core/datamodel/audit"
)

type Entry struct {
	ID            int64   `json:"id"`
	Timestamp     int64   `json:"timestamp"`
	AdminID       string  `json:"admin_id"`
	AdminUsername string  `json:"admin_username"`
	Action        string  `json:"action"`
	TargetUserID  *string `json:"target_user_id,omitempty"`
	Details       string  `json:"details"`
}

func ToDataModel(e *Entry) *auditDatamodel.Entry {
	return &auditDatamodel.Entry{
		ID:            e.ID,
		Timestamp:     e.Timestamp,
		AdminID:       e.AdminID,
		AdminUsername: e.AdminUsername,
		Action:        e.Action,
		TargetUserID:  e.TargetUserID,
		Details:       e.Details,
	}
}

func FromDataModel(dm *auditDatamodel.Entry) *Entry {
	return &Entry{
		ID:            dm.ID,
		Timestamp:     dm.Timestamp,
		AdminID:       dm.AdminID,
		AdminUsername: dm.AdminUsername,
		Action:        dm.Action,
		TargetUserID:  dm.TargetUserID,
		Details:       dm.Details,
	}
}

func FromDataModelSlice(dms []*auditDatamodel.Entry) []*Entry {
	entries := make([]*Entry, len(dms))
	for i, dm := range dms {
		entries[i] = FromDataModel(dm)
	}
	return entries
}
