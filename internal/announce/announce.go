// Package announce turns committed ledger transitions into duty events on
// the bus. Rendering those events into guild channels is a subscriber
// concern; this package only guarantees that a transition that committed
// gets announced once, after the fact.
package announce

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/dutytrack/dutytrack/internal/core/events"
	"github.com/dutytrack/dutytrack/internal/deptaction"
	"github.com/dutytrack/dutytrack/internal/shift"
)

// Bus is the slice of the event bus the announcer needs.
type Bus interface {
	Publish(ctx context.Context, event events.Event) error
	PublishSync(ctx context.Context, event events.Event) error
}

type EventAnnouncer struct {
	bus    Bus
	logger *slog.Logger
}

func NewEventAnnouncer(bus Bus, logger *slog.Logger) *EventAnnouncer {
	return &EventAnnouncer{
		bus:    bus,
		logger: logger,
	}
}

func (a *EventAnnouncer) ShiftStarted(ctx context.Context, guildID string, s *shift.Shift) error {
	ev := events.NewShiftStartedEvent(guildID, s.ID, s.ShiftCode, s.UserID, s.Username, s.UnitRole, s.StartTime)
	return a.bus.Publish(ctx, ev)
}

func (a *EventAnnouncer) ShiftEnded(ctx context.Context, guildID string, s *shift.Shift) error {
	minutes := decimal.Zero
	if s.DurationMinutes != nil {
		minutes = *s.DurationMinutes
	}
	autoEnded := s.EndPictureLink != nil && *s.EndPictureLink == shift.AutoEndNote
	ev := events.NewShiftEndedEvent(guildID, s.ID, s.ShiftCode, s.UserID, s.Username, s.UnitRole, minutes, autoEnded)
	return a.bus.Publish(ctx, ev)
}

// ActionCreated publishes synchronously and hands back the event id as the
// message reference for the second phase of the action write. If no
// subscriber renders a message the reference still names the announcement
// that carried the action.
func (a *EventAnnouncer) ActionCreated(ctx context.Context, guildID string, act *deptaction.DepartmentAction) (string, error) {
	ev := events.NewActionCreatedEvent(guildID, act.ID, string(act.ActionType), act.TargetUserID, act.TargetUsername, act.AdminUserID)
	if err := a.bus.PublishSync(ctx, ev); err != nil {
		return "", err
	}
	return ev.EventID(), nil
}

func (a *EventAnnouncer) LeaveRemoved(ctx context.Context, guildID string, act *deptaction.DepartmentAction, autoExpired bool) error {
	ev := events.NewLeaveRemovedEvent(guildID, act.ID, string(act.ActionType), act.TargetUserID, autoExpired)
	return a.bus.Publish(ctx, ev)
}
