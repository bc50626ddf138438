package sim

import (
	"math/rand"

	"monitoring-systemv1/internal/model"
)

const (
	tempFollowOffsetC = -0.5
	tempNoiseSigma    = 0.05
)

// TempPair models two temperature sensors following the chamber
// temperature: lower reads the chamber plus a placement offset and noise,
// upper sits a fixed offset above lower. Both readings are emitted in the
// same tick so the pair stays comparable.
type TempPair struct {
	LowerName     string
	UpperName     string
	UpperOffsetC  float64
	FollowOffsetC float64
	NoiseSigma    float64

	gate emitGate
	rng  *rand.Rand
}

// NewTempPair creates the pair with stock names and offsets.
func NewTempPair(seed int64) *TempPair {
	return &TempPair{
		LowerName:     TempLowerName,
		UpperName:     TempUpperName,
		UpperOffsetC:  0.8,
		FollowOffsetC: tempFollowOffsetC,
		NoiseSigma:    tempNoiseSigma,
		gate:          emitGate{hz: defaultScalarHz},
		rng:           rand.New(rand.NewSource(seed)),
	}
}

func (s *TempPair) Tick(ctx Context) []any {
	if !s.gate.shouldEmit(ctx.Now) {
		return nil
	}
	if !ctx.Device.IsSensorActive(s.LowerName, ctx.Now) {
		return nil
	}
	if !ctx.Device.IsSensorActive(s.UpperName, ctx.Now) {
		return nil
	}

	base := ctx.Device.ChamberTemp() + s.FollowOffsetC

	lower := base + s.rng.NormFloat64()*s.NoiseSigma
	upper := lower + s.UpperOffsetC + s.rng.NormFloat64()*s.NoiseSigma/2

	return []any{
		model.SensorReading{Sensor: s.LowerName, Value: lower, Timestamp: ctx.Now, Status: model.StatusOK},
		model.SensorReading{Sensor: s.UpperName, Value: upper, Timestamp: ctx.Now, Status: model.StatusOK},
	}
}
