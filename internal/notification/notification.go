// Package notification delivers alarm events to external channels. The
// delivery worker drains a bounded queue and pushes each event to every
// configured notifier; the webhook notifier is the production channel.
package notification

import (
	"context"
	"log/slog"

	"monitoring-systemv1/internal/logger"
)

// Event types understood by the delivery worker.
const (
	TypeAlarmEvent = "alarm_event"
	TypeStop       = "__stop__"
)

// Event is the transport message handed to notifiers. It says what should
// be communicated, not how it is delivered.
type Event struct {
	Type     string
	Payload  map[string]any
	Severity string
	Source   string
	TS       string
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers one event. Returns an error if delivery fails.
	Send(ctx context.Context, ev Event) error
}

// LogNotifier writes events to a structured JSON audit log instead of
// delivering them. Useful when running without a reachable webhook endpoint,
// or alongside one as a local audit trail.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.Init("notifications")}
}

func (n *LogNotifier) Send(ctx context.Context, ev Event) error {
	n.log.Info("alarm notification",
		"type", ev.Type,
		"severity", ev.Severity,
		"source", ev.Source,
		"ts", ev.TS,
		"payload", ev.Payload,
	)
	return nil
}
