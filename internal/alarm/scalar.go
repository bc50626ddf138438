package alarm

import (
	"fmt"
	"strings"

	"monitoring-systemv1/internal/model"
)

// ScalarLimit checks every configured scalar channel against its low and
// high limits. For each channel with a usable reading it always emits two
// decisions, LOW_LIMIT and HIGH_LIMIT, active or not; the inactive ones are
// what drive the engine's CLEARED path when a value returns in range.
type ScalarLimit struct{}

func (ScalarLimit) Evaluate(store Reader, ctx Context) []Decision {
	var out []Decision

	for _, cfg := range store.ScalarConfigs() {
		r, ok := store.Latest(cfg.Name)
		if !ok || r.Status != model.StatusOK {
			continue
		}

		lowActive := r.Value < cfg.LowLimit
		lowMsg := fmt.Sprintf("%s back above low limit", cfg.Name)
		if lowActive {
			lowMsg = fmt.Sprintf("%s LOW: %.3f < %s %s", cfg.Name, r.Value, fmtLimit(cfg.LowLimit), cfg.Units)
		}
		out = append(out, Decision{
			ID:             model.AlarmID{Source: cfg.Name, Type: model.AlarmLowLimit, RuleName: RuleLowLimit},
			Severity:       model.SeverityWarning,
			ShouldBeActive: lowActive,
			Message:        strings.TrimSpace(lowMsg),
			Value:          f64(r.Value),
		})

		highActive := r.Value > cfg.HighLimit
		highMsg := fmt.Sprintf("%s back below high limit", cfg.Name)
		if highActive {
			highMsg = fmt.Sprintf("%s HIGH: %.3f > %.3f %s", cfg.Name, r.Value, cfg.HighLimit, cfg.Units)
		}
		out = append(out, Decision{
			ID:             model.AlarmID{Source: cfg.Name, Type: model.AlarmHighLimit, RuleName: RuleHighLimit},
			Severity:       model.SeverityWarning,
			ShouldBeActive: highActive,
			Message:        strings.TrimSpace(highMsg),
			Value:          f64(r.Value),
		})
	}
	return out
}
