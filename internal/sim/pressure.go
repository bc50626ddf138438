package sim

import (
	"math/rand"

	"monitoring-systemv1/internal/model"
)

const (
	pressureBaselineBar = 1.5
	pressureNoiseSigma  = 0.05
)

// Pressure models a scalar pressure sensor: Gaussian noise around a
// baseline, with occasional single-sample spikes that jump past typical
// low/high limits so the alarm pipeline has something to catch. The
// simulator does not know the configured limits; tune the spike deltas if
// yours differ.
type Pressure struct {
	SensorName  string
	BaselineBar float64
	NoiseSigma  float64

	// Spike injection
	SpikeProbability     float64 // chance per emitted sample
	SpikeHighProbability float64 // among spikes: chance it's a HIGH spike
	SpikeDeltaMinBar     float64
	SpikeDeltaMaxBar     float64
	ClampMinBar          float64

	gate emitGate
	rng  *rand.Rand
}

// NewPressure creates the sensor with stock spike settings.
func NewPressure(seed int64) *Pressure {
	return &Pressure{
		SensorName:           PressureName,
		BaselineBar:          pressureBaselineBar,
		NoiseSigma:           pressureNoiseSigma,
		SpikeProbability:     0.05,
		SpikeHighProbability: 0.5,
		SpikeDeltaMinBar:     1.0,
		SpikeDeltaMaxBar:     2.0,
		ClampMinBar:          0.0,
		gate:                 emitGate{hz: defaultScalarHz},
		rng:                  rand.New(rand.NewSource(seed)),
	}
}

func (s *Pressure) Tick(ctx Context) []any {
	if !s.gate.shouldEmit(ctx.Now) {
		return nil
	}
	if !ctx.Device.IsSensorActive(s.SensorName, ctx.Now) {
		return nil
	}

	v := s.BaselineBar + s.rng.NormFloat64()*s.NoiseSigma

	if s.SpikeProbability > 0 && s.rng.Float64() < s.SpikeProbability {
		delta := s.SpikeDeltaMinBar + s.rng.Float64()*(s.SpikeDeltaMaxBar-s.SpikeDeltaMinBar)
		if s.rng.Float64() < s.SpikeHighProbability {
			v = s.BaselineBar + delta
		} else {
			v = s.BaselineBar - delta
		}
	}

	// Pressure cannot be negative
	if v < s.ClampMinBar {
		v = s.ClampMinBar
	}

	return []any{
		model.SensorReading{Sensor: s.SensorName, Value: v, Timestamp: ctx.Now, Status: model.StatusOK},
	}
}
