// Package sim implements the device simulator: a stepped environment
// (temperature chamber, shaking table) and deterministic sensor models
// that emit the same wire messages the monitoring app ingests.
package sim

import (
	"time"
)

// Sensor channel names exposed by the stock device.
const (
	TempLowerName = "TempLowerMSP"
	TempUpperName = "TempUpperMSP"
	PressureName  = "Pressure"
	VibrationName = "Vibration"
	FtnirName     = "FTNIR"
)

// Default sampling rates.
const (
	defaultScalarHz = 5.0
	defaultFtirHz   = 1.0
)

// Context is passed into each sensor tick. The engine constructs one per
// simulation step; sensors read the shared device state through it and
// never touch globals.
type Context struct {
	Now    time.Time
	Device *DeviceState
}

// SensorModel generates zero or more wire messages per simulation tick.
type SensorModel interface {
	Tick(ctx Context) []any
}

// emitGate rate-limits a sensor to its sampling frequency. The first call
// always emits.
type emitGate struct {
	hz       float64
	lastEmit time.Time
}

func (g *emitGate) shouldEmit(now time.Time) bool {
	if g.hz <= 0 {
		return false
	}
	if g.lastEmit.IsZero() {
		g.lastEmit = now
		return true
	}
	period := time.Duration(float64(time.Second) / g.hz)
	if now.Sub(g.lastEmit) >= period {
		g.lastEmit = now
		return true
	}
	return false
}

// DefaultEnabled mirrors the stock device panel: all scalar sensors on,
// FTNIR off until explicitly enabled.
func DefaultEnabled() map[string]bool {
	return map[string]bool{
		TempLowerName: true,
		TempUpperName: true,
		PressureName:  true,
		VibrationName: true,
		FtnirName:     false,
	}
}

// DefaultSensors builds the stock sensor set with the canonical seeds.
func DefaultSensors() []SensorModel {
	return []SensorModel{
		NewTempPair(123),
		NewPressure(321),
		NewVibration(999),
		NewFTNIR(42),
	}
}
