package sim

import (
	"math/rand"

	"monitoring-systemv1/internal/model"
)

const (
	vibrationBaselineMmS = 0.5
	vibrationNoiseSigma  = 0.05
)

// Vibration models a vibration sensor influenced by the environment: a
// baseline, plus a fixed amount while the chamber is powered, plus the
// shaking contribution, plus Gaussian noise.
type Vibration struct {
	SensorName  string
	BaselineMmS float64
	NoiseSigma  float64

	gate emitGate
	rng  *rand.Rand
}

// NewVibration creates the sensor with stock settings.
func NewVibration(seed int64) *Vibration {
	return &Vibration{
		SensorName:  VibrationName,
		BaselineMmS: vibrationBaselineMmS,
		NoiseSigma:  vibrationNoiseSigma,
		gate:        emitGate{hz: defaultScalarHz},
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (s *Vibration) Tick(ctx Context) []any {
	if !s.gate.shouldEmit(ctx.Now) {
		return nil
	}
	if !ctx.Device.IsSensorActive(s.SensorName, ctx.Now) {
		return nil
	}

	v := s.BaselineMmS

	if ctx.Device.ChamberPowered() {
		v += ChamberOnAddMmS
	}
	v += ctx.Device.VibrationAdd()
	v += s.rng.NormFloat64() * s.NoiseSigma

	return []any{
		model.SensorReading{Sensor: s.SensorName, Value: v, Timestamp: ctx.Now, Status: model.StatusOK},
	}
}
