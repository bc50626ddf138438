// Package alarm contains the stateless rule criteria and the stateful
// lifecycle engine that folds their decisions into RAISED, UPDATED and
// CLEARED events.
package alarm

import (
	"strconv"
	"strings"
	"time"

	"monitoring-systemv1/internal/model"
)

// Rule names recorded in event details as "rule=<name>".
const (
	RuleLowLimit  = "config_low_limit"
	RuleHighLimit = "config_high_limit"
	RuleTempDiff  = "config_high_temp_diff"
	RulePeakShift = "ftir_peak_shift_hardcoded_axis"
)

// Context carries the shared inputs for one evaluation cycle. Criteria must
// use ctx.Now rather than the wall clock so a cycle sees a single timestamp.
type Context struct {
	Now time.Time
}

// Decision is one criterion's stateless verdict for a single alarm id. The
// engine compares it against stored lifecycle state to decide whether an
// event is due.
type Decision struct {
	ID             model.AlarmID
	Severity       model.AlarmSeverity
	ShouldBeActive bool
	Message        string
	Value          *float64
}

// ── Store contracts ─────────────────────────────────────────────

// Reader is the read-only store view criteria evaluate against.
type Reader interface {
	ScalarConfigs() []model.SensorConfig
	Latest(sensor string) (model.SensorReading, bool)
	LatestFtir(sensor string) (model.FtirReading, bool)
}

// Sink receives engine output. Events are appended before any touched state
// is mirrored, so a consumer that sees an event also sees its state.
type Sink interface {
	AddAlarmEvent(ev model.AlarmEvent)
	SetAlarmState(id model.AlarmID, st model.AlarmState)
}

// Store is the full dependency of Engine.RunOnce.
type Store interface {
	Reader
	Sink
}

// Criteria evaluates current store state into zero or more decisions.
// Implementations must be stateless: identical store contents must yield
// identical decisions.
type Criteria interface {
	Evaluate(store Reader, ctx Context) []Decision
}

// fmtLimit renders a configured limit in its shortest decimal form, keeping
// a ".0" on whole numbers so messages read "< 1.0 bar" rather than "< 1 bar".
func fmtLimit(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// f64 returns a pointer to a copy of v.
func f64(v float64) *float64 { return &v }
