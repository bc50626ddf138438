package notification

import (
	"monitoring-systemv1/internal/model"
)

// isoSeconds renders payload timestamps with second precision.
const isoSeconds = "2006-01-02T15:04:05"

// StateReader is the store view needed to compute payload totals.
type StateReader interface {
	AlarmStates() map[model.AlarmID]model.AlarmState
	AlarmEvents() []model.AlarmEvent
}

// BuildAlarmPayload assembles the webhook body for one alarm event: the
// event fields plus counters computed from the current store snapshots.
// Enum-valued fields and counter keys use their qualified form, for example
// "AlarmType.LOW_LIMIT".
func BuildAlarmPayload(store StateReader, ev model.AlarmEvent) map[string]any {
	states := store.AlarmStates()
	events := store.AlarmEvents()

	active := 0
	statesBySeverity := map[string]int{}
	statesByType := map[string]int{}
	for _, s := range states {
		if s.Active {
			active++
		}
		statesBySeverity[s.Severity.Qualified()]++
		statesByType[s.Type.Qualified()]++
	}

	eventsByTransition := map[string]int{}
	eventsBySeverity := map[string]int{}
	eventsByType := map[string]int{}
	for _, e := range events {
		eventsByTransition[e.Transition.Qualified()]++
		eventsBySeverity[e.Severity.Qualified()]++
		eventsByType[e.Type.Qualified()]++
	}

	return map[string]any{
		"type": TypeAlarmEvent,
		"event": map[string]any{
			"source":     ev.Source,
			"alarm_type": ev.Type.Qualified(),
			"severity":   ev.Severity.Qualified(),
			"transition": ev.Transition.Qualified(),
			"timestamp":  ev.Timestamp.Format(isoSeconds),
			"message":    ev.Message,
			"value":      ev.Value,
			"details":    ev.Details,
		},
		"totals": map[string]any{
			"alarm_states_total":         len(states),
			"alarm_states_active":        active,
			"alarm_events_total":         len(events),
			"state_counts_by_severity":   statesBySeverity,
			"state_counts_by_type":       statesByType,
			"event_counts_by_transition": eventsByTransition,
			"event_counts_by_severity":   eventsBySeverity,
			"event_counts_by_type":       eventsByType,
		},
	}
}

// NewAlarmEvent wraps an alarm event and its payload as a delivery request.
func NewAlarmEvent(ev model.AlarmEvent, payload map[string]any) Event {
	return Event{
		Type:     TypeAlarmEvent,
		Payload:  payload,
		Severity: ev.Severity.Qualified(),
		Source:   ev.Source,
		TS:       ev.Timestamp.Format(isoSeconds),
	}
}
