package shift

import (
	"errors"
	"net/url"

	"github.com/shopspring/decimal"
)

// StartShiftInput is the payload for opening a shift. The caller has already
// resolved the user's unit and the active quota cycle.
type StartShiftInput struct {
	UserID           string `json:"user_id"`
	Username         string `json:"username"`
	UnitRole         string `json:"unit_role"`
	StartPictureLink string `json:"start_picture_link"`
	QuotaCycleID     int64  `json:"quota_cycle_id"`
}

func (in StartShiftInput) Validate() error {
	if in.UserID == "" {
		return errors.New("user id is required")
	}
	if in.Username == "" {
		return errors.New("username is required")
	}
	if in.UnitRole == "" {
		return errors.New("unit role is required")
	}
	if !validURL(in.StartPictureLink) {
		return errors.New("start picture link must be a valid URL")
	}
	if in.QuotaCycleID <= 0 {
		return errors.New("quota cycle id is required")
	}
	return nil
}

func validURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// ActivityReport is the per-user quota snapshot consumed by the ops surface:
// total completed minutes against the unit quota for a cycle.
type ActivityReport struct {
	UserID       string          `json:"user_id"`
	Username     string          `json:"username"`
	UnitRole     string          `json:"unit_role"`
	TotalMinutes decimal.Decimal `json:"total_minutes"`
	QuotaMinutes int             `json:"quota_minutes"`
	QuotaMet     bool            `json:"quota_met"`
	Shifts       []*Shift        `json:"shifts"`
}
