package alarm

import (
	"math"
	"time"

	"monitoring-systemv1/internal/model"
)

// valueChanged compares two optional values with a tolerance. It gates
// UPDATED events so jitter at or below eps stays quiet.
func valueChanged(a, b *float64, eps float64) bool {
	if a == nil && b == nil {
		return false
	}
	if a == nil || b == nil {
		return true
	}
	return math.Abs(*a-*b) > eps
}

// Engine owns the lifecycle state for every alarm id it has ever seen and
// turns stateless criterion decisions into ordered lifecycle events. It
// holds no rule logic of its own. Not safe for concurrent use; the alarm
// worker goroutine is its only caller.
type Engine struct {
	criteria []Criteria
	valueEps float64
	states   map[model.AlarmID]model.AlarmState
}

// NewEngine builds an engine over criteria, evaluated in the given order.
func NewEngine(criteria []Criteria, valueEps float64) *Engine {
	return &Engine{
		criteria: criteria,
		valueEps: valueEps,
		states:   make(map[model.AlarmID]model.AlarmState),
	}
}

// RunOnce evaluates every criterion once against the store and applies the
// decisions to the state machine. Emitted events are appended to the store
// first, then every touched state is mirrored. A zero now means wall clock.
// Alarm ids absent from this cycle's decisions are left untouched; silence
// never synthesizes a CLEARED.
func (e *Engine) RunOnce(store Store, now time.Time) []model.AlarmEvent {
	ts := now
	if ts.IsZero() {
		ts = time.Now()
	}
	ctx := Context{Now: ts}

	var decisions []Decision
	for _, c := range e.criteria {
		decisions = append(decisions, c.Evaluate(store, ctx)...)
	}

	events, touched := e.apply(decisions, ts)

	for _, ev := range events {
		store.AddAlarmEvent(ev)
	}
	for _, id := range touched {
		store.SetAlarmState(id, e.states[id])
	}
	return events
}

// ActiveAlarms returns the currently active states.
func (e *Engine) ActiveAlarms() []model.AlarmState {
	var out []model.AlarmState
	for _, st := range e.states {
		if st.Active {
			out = append(out, st)
		}
	}
	return out
}

func (e *Engine) apply(decisions []Decision, ts time.Time) ([]model.AlarmEvent, []model.AlarmID) {
	var events []model.AlarmEvent
	var touched []model.AlarmID

	for _, d := range decisions {
		touched = append(touched, d.ID)
		prev, seen := e.states[d.ID]

		if !seen {
			e.states[d.ID] = model.AlarmState{
				Source:    d.ID.Source,
				Type:      d.ID.Type,
				Severity:  d.Severity,
				Active:    d.ShouldBeActive,
				FirstSeen: ts,
				LastSeen:  ts,
				Message:   d.Message,
				LastValue: d.Value,
			}
			// Only an alarm that starts active emits an event.
			if d.ShouldBeActive {
				events = append(events, newEvent(d, d.Severity, model.TransitionRaised, ts))
			}
			continue
		}

		switch {
		case !prev.Active && d.ShouldBeActive:
			// A re-raise is a fresh incident, so first_seen restarts.
			e.states[d.ID] = model.AlarmState{
				Source:    prev.Source,
				Type:      prev.Type,
				Severity:  d.Severity,
				Active:    true,
				FirstSeen: ts,
				LastSeen:  ts,
				Message:   d.Message,
				LastValue: d.Value,
			}
			events = append(events, newEvent(d, d.Severity, model.TransitionRaised, ts))

		case prev.Active && !d.ShouldBeActive:
			e.states[d.ID] = model.AlarmState{
				Source:    prev.Source,
				Type:      prev.Type,
				Severity:  prev.Severity,
				Active:    false,
				FirstSeen: prev.FirstSeen,
				LastSeen:  ts,
				Message:   d.Message,
				LastValue: d.Value,
			}
			// CLEARED carries the severity the alarm was raised with.
			events = append(events, newEvent(d, prev.Severity, model.TransitionCleared, ts))

		case prev.Active && d.ShouldBeActive:
			changed := prev.Message != d.Message || valueChanged(prev.LastValue, d.Value, e.valueEps)
			e.states[d.ID] = model.AlarmState{
				Source:    prev.Source,
				Type:      prev.Type,
				Severity:  prev.Severity,
				Active:    true,
				FirstSeen: prev.FirstSeen,
				LastSeen:  ts,
				Message:   d.Message,
				LastValue: d.Value,
			}
			if changed {
				events = append(events, newEvent(d, prev.Severity, model.TransitionUpdated, ts))
			}

		default:
			// Inactive and staying inactive: refresh state, no event.
			e.states[d.ID] = model.AlarmState{
				Source:    prev.Source,
				Type:      prev.Type,
				Severity:  prev.Severity,
				Active:    false,
				FirstSeen: prev.FirstSeen,
				LastSeen:  ts,
				Message:   d.Message,
				LastValue: d.Value,
			}
		}
	}
	return events, touched
}

func newEvent(d Decision, sev model.AlarmSeverity, tr model.AlarmTransition, ts time.Time) model.AlarmEvent {
	return model.AlarmEvent{
		Source:     d.ID.Source,
		Type:       d.ID.Type,
		Severity:   sev,
		Transition: tr,
		Timestamp:  ts,
		Message:    d.Message,
		Value:      d.Value,
		Details:    "rule=" + d.ID.RuleName,
	}
}
