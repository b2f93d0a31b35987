package announce

import (
	"context"
	"log/slog"

	"github.com/dutytrack/dutytrack/internal/core/events"
)

// DutyEventTypes lists every event type the announcer publishes.
var DutyEventTypes = []string{
	events.EventTypeShiftStarted,
	events.EventTypeShiftEnded,
	events.EventTypeActionCreated,
	events.EventTypeLeaveRemoved,
}

// Subscriber is the registration slice of the event bus.
type Subscriber interface {
	Subscribe(eventType string, handler events.Handler)
}

// NewLogSink returns a handler that writes one structured log line per duty
// event. A chat renderer subscribes alongside it in a full deployment; the
// sink keeps every announced transition observable either way.
func NewLogSink(logger *slog.Logger) events.Handler {
	return func(_ context.Context, ev events.Event) error {
		logger.Info("duty event",
			"event_type", ev.EventType(),
			"event_id", ev.EventID(),
			"payload", ev.Payload())
		return nil
	}
}

// RegisterLogSink subscribes the log sink to every duty event type.
func RegisterLogSink(bus Subscriber, logger *slog.Logger) {
	sink := NewLogSink(logger)
	for _, eventType := range DutyEventTypes {
		bus.Subscribe(eventType, sink)
	}
}
