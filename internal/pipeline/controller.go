// Package pipeline connects the ingest stream to the alarm engine and the
// notification layer. The receiver fills the readings queue, a single alarm
// worker evaluates each reading through the controller, and the notify
// adapter bridges the resulting alarm events to delivery.
package pipeline

import (
	"fmt"
	"time"

	"monitoring-systemv1/internal/alarm"
	"monitoring-systemv1/internal/model"
	"monitoring-systemv1/internal/store"
)

// Controller orchestrates one reading: update the store, run one alarm
// evaluation cycle, publish the emitted events. Rule logic lives in the
// criteria, lifecycle logic in the engine.
type Controller struct {
	store  *store.Store
	engine *alarm.Engine
	events chan<- model.AlarmEvent

	// OnPublishDrop is called when the events channel is full and an
	// event is dropped.
	OnPublishDrop func()

	// OnEvent is called for each emitted alarm event.
	OnEvent func(ev model.AlarmEvent)
}

// NewController creates a controller publishing into events.
func NewController(st *store.Store, engine *alarm.Engine, events chan<- model.AlarmEvent) *Controller {
	return &Controller{store: st, engine: engine, events: events}
}

// HandleMessage processes one decoded reading and returns the alarm events
// it caused. The store is updated before evaluation, so an emitted event
// can never precede the reading that caused it. A zero now means wall
// clock. Publishing never blocks; events are dropped when the channel is
// full.
func (c *Controller) HandleMessage(msg any, now time.Time) ([]model.AlarmEvent, error) {
	ts := now
	if ts.IsZero() {
		ts = time.Now()
	}

	switch m := msg.(type) {
	case model.SensorReading:
		c.store.UpdateScalar(m)
	case model.FtirReading:
		c.store.UpdateSpectrum(m)
	default:
		return nil, fmt.Errorf("unhandled message type %T", msg)
	}

	events := c.engine.RunOnce(c.store, ts)

	for _, ev := range events {
		select {
		case c.events <- ev:
		default:
			if c.OnPublishDrop != nil {
				c.OnPublishDrop()
			}
		}
		if c.OnEvent != nil {
			c.OnEvent(ev)
		}
	}
	return events, nil
}

// Store returns the state store the controller writes to.
func (c *Controller) Store() *store.Store { return c.store }
