package alarm

import (
	"fmt"
	"math"

	"monitoring-systemv1/internal/model"
)

// DefaultTempMaxDelta is the allowed spread between the two chamber probes
// in degrees Celsius.
const DefaultTempMaxDelta = 3.0

// TempDiff checks that two temperature sensors track each other. It emits a
// single DIFF_BETWEEN_TEMP_SENSORS decision, or nothing when either reading
// is missing or faulty.
type TempDiff struct {
	SensorLower string
	SensorUpper string
	MaxDelta    float64
}

func (c TempDiff) Evaluate(store Reader, ctx Context) []Decision {
	lower, okL := store.Latest(c.SensorLower)
	upper, okU := store.Latest(c.SensorUpper)
	if !okL || !okU {
		return nil
	}
	if lower.Status != model.StatusOK || upper.Status != model.StatusOK {
		return nil
	}

	diff := math.Abs(lower.Value - upper.Value)
	active := diff > c.MaxDelta

	msg := fmt.Sprintf("Temp diff OK: diff=%.3f C", diff)
	if active {
		msg = fmt.Sprintf("Diff bet upper and lower MSP = %.3f C > %s C", diff, fmtLimit(c.MaxDelta))
	}

	return []Decision{{
		ID: model.AlarmID{
			Source:   c.SensorLower + "|" + c.SensorUpper,
			Type:     model.AlarmTempDiff,
			RuleName: RuleTempDiff,
		},
		Severity:       model.SeverityWarning,
		ShouldBeActive: active,
		Message:        msg,
		Value:          f64(diff),
	}}
}
