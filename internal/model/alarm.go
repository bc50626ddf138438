package model

import "time"

// AlarmType identifies the condition class an alarm reports on.
type AlarmType string

const (
	AlarmLowLimit        AlarmType = "LOW_LIMIT"
	AlarmHighLimit       AlarmType = "HIGH_LIMIT"
	AlarmWavelengthShift AlarmType = "WAVELENGTH_SHIFT"
	AlarmTempDiff        AlarmType = "DIFF_BETWEEN_TEMP_SENSORS"
)

// Qualified returns the type-prefixed form used on notification payloads,
// e.g. "AlarmType.LOW_LIMIT".
func (t AlarmType) Qualified() string { return "AlarmType." + string(t) }

// AlarmSeverity grades an alarm. Only two levels exist.
type AlarmSeverity string

const (
	SeverityWarning  AlarmSeverity = "WARNING"
	SeverityCritical AlarmSeverity = "CRITICAL"
)

// Qualified returns the type-prefixed form used on notification payloads,
// e.g. "AlarmSeverity.WARNING".
func (s AlarmSeverity) Qualified() string { return "AlarmSeverity." + string(s) }

// AlarmID is the identity of one alarm lifecycle: a sensor source, a
// condition type, and the rule that evaluates it. It is comparable and used
// as the state-table key.
type AlarmID struct {
	Source   string    `json:"source"`
	Type     AlarmType `json:"alarm_type"`
	RuleName string    `json:"rule_name"`
}

// AlarmState is the stored lifecycle record for one AlarmID. Severity is the
// severity the alarm carried when it was last created or re-raised; it is
// not overwritten while the alarm stays active.
type AlarmState struct {
	Source    string        `json:"source"`
	Type      AlarmType     `json:"alarm_type"`
	Severity  AlarmSeverity `json:"severity"`
	Active    bool          `json:"active"`
	FirstSeen time.Time     `json:"first_seen"`
	LastSeen  time.Time     `json:"last_seen"`
	Message   string        `json:"message"`
	LastValue *float64      `json:"last_value,omitempty"`
}
