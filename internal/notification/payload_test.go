package notification

import (
	"testing"
	"time"

	"monitoring-systemv1/internal/model"
)

// fakeState is a canned StateReader.
type fakeState struct {
	states map[model.AlarmID]model.AlarmState
	events []model.AlarmEvent
}

func (f fakeState) AlarmStates() map[model.AlarmID]model.AlarmState { return f.states }
func (f fakeState) AlarmEvents() []model.AlarmEvent                 { return f.events }

func TestBuildAlarmPayloadEventFields(t *testing.T) {
	v := 0.5
	ev := model.AlarmEvent{
		Source:     "Pressure",
		Type:       model.AlarmLowLimit,
		Severity:   model.SeverityWarning,
		Transition: model.TransitionRaised,
		Timestamp:  time.Date(2026, 1, 1, 10, 0, 5, 123456789, time.UTC),
		Message:    "Pressure LOW: 0.500 < 1.0 bar",
		Value:      &v,
		Details:    "rule=config_low_limit",
	}

	p := BuildAlarmPayload(fakeState{}, ev)
	if p["type"] != TypeAlarmEvent {
		t.Errorf("type = %v", p["type"])
	}

	e := p["event"].(map[string]any)
	if e["source"] != "Pressure" {
		t.Errorf("source = %v", e["source"])
	}
	if e["alarm_type"] != "AlarmType.LOW_LIMIT" {
		t.Errorf("alarm_type = %v", e["alarm_type"])
	}
	if e["severity"] != "AlarmSeverity.WARNING" {
		t.Errorf("severity = %v", e["severity"])
	}
	if e["transition"] != "AlarmTransition.RAISED" {
		t.Errorf("transition = %v", e["transition"])
	}
	// Second precision, no fractional part.
	if e["timestamp"] != "2026-01-01T10:00:05" {
		t.Errorf("timestamp = %v", e["timestamp"])
	}
	if e["details"] != "rule=config_low_limit" {
		t.Errorf("details = %v", e["details"])
	}
}

func TestBuildAlarmPayloadTotals(t *testing.T) {
	idLow := model.AlarmID{Source: "Pressure", Type: model.AlarmLowLimit, RuleName: "config_low_limit"}
	idHigh := model.AlarmID{Source: "Vibration", Type: model.AlarmHighLimit, RuleName: "config_high_limit"}

	st := fakeState{
		states: map[model.AlarmID]model.AlarmState{
			idLow: {
				Source: "Pressure", Type: model.AlarmLowLimit,
				Severity: model.SeverityWarning, Active: true,
			},
			idHigh: {
				Source: "Vibration", Type: model.AlarmHighLimit,
				Severity: model.SeverityCritical, Active: false,
			},
		},
		events: []model.AlarmEvent{
			{Type: model.AlarmLowLimit, Severity: model.SeverityWarning, Transition: model.TransitionRaised},
			{Type: model.AlarmLowLimit, Severity: model.SeverityWarning, Transition: model.TransitionCleared},
			{Type: model.AlarmHighLimit, Severity: model.SeverityCritical, Transition: model.TransitionRaised},
		},
	}

	p := BuildAlarmPayload(st, model.AlarmEvent{Transition: model.TransitionRaised})
	totals := p["totals"].(map[string]any)

	if totals["alarm_states_total"] != 2 {
		t.Errorf("alarm_states_total = %v", totals["alarm_states_total"])
	}
	if totals["alarm_states_active"] != 1 {
		t.Errorf("alarm_states_active = %v", totals["alarm_states_active"])
	}
	if totals["alarm_events_total"] != 3 {
		t.Errorf("alarm_events_total = %v", totals["alarm_events_total"])
	}

	bySev := totals["state_counts_by_severity"].(map[string]int)
	if bySev["AlarmSeverity.WARNING"] != 1 || bySev["AlarmSeverity.CRITICAL"] != 1 {
		t.Errorf("state_counts_by_severity = %v", bySev)
	}
	byTr := totals["event_counts_by_transition"].(map[string]int)
	if byTr["AlarmTransition.RAISED"] != 2 || byTr["AlarmTransition.CLEARED"] != 1 {
		t.Errorf("event_counts_by_transition = %v", byTr)
	}
	byType := totals["event_counts_by_type"].(map[string]int)
	if byType["AlarmType.LOW_LIMIT"] != 2 || byType["AlarmType.HIGH_LIMIT"] != 1 {
		t.Errorf("event_counts_by_type = %v", byType)
	}
}
