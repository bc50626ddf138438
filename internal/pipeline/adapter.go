package pipeline

import (
	"context"
	"log"

	"monitoring-systemv1/internal/model"
	"monitoring-systemv1/internal/notification"
)

// Adapter bridges alarm events to the notification worker. For each event
// it snapshots the store totals into a webhook payload and emits a
// delivery request. A failure on one event is logged and never stops the
// drain.
type Adapter struct {
	store    notification.StateReader
	notifier *notification.Worker
}

// NewAdapter creates an adapter reading totals from st and emitting into
// notifier.
func NewAdapter(st notification.StateReader, notifier *notification.Worker) *Adapter {
	return &Adapter{store: st, notifier: notifier}
}

// Run drains in until ctx is cancelled or in is closed.
func (a *Adapter) Run(ctx context.Context, in <-chan model.AlarmEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-in:
			if !ok {
				return
			}
			a.forward(ev)
		}
	}
}

func (a *Adapter) forward(ev model.AlarmEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[notify-adapter] payload build panicked: %v", r)
		}
	}()

	payload := notification.BuildAlarmPayload(a.store, ev)
	a.notifier.Emit(notification.NewAlarmEvent(ev, payload))
}
