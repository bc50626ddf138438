package model

import "time"

// AlarmTransition is the edge an alarm crossed when an event was emitted.
type AlarmTransition string

const (
	TransitionRaised  AlarmTransition = "RAISED"
	TransitionUpdated AlarmTransition = "UPDATED"
	TransitionCleared AlarmTransition = "CLEARED"
)

// Qualified returns the type-prefixed form used on notification payloads,
// e.g. "AlarmTransition.RAISED".
func (t AlarmTransition) Qualified() string { return "AlarmTransition." + string(t) }

// AlarmEvent records one alarm transition at evaluation time. Value carries
// the reading that drove the decision and may be absent. Details is a short
// provenance string, currently always "rule=<rule_name>".
type AlarmEvent struct {
	Source     string          `json:"source"`
	Type       AlarmType       `json:"alarm_type"`
	Severity   AlarmSeverity   `json:"severity"`
	Transition AlarmTransition `json:"transition"`
	Timestamp  time.Time       `json:"timestamp"`
	Message    string          `json:"message"`
	Value      *float64        `json:"value,omitempty"`
	Details    string          `json:"details"`
}
