package sim

import (
	"time"
)

// Engine steps the environment and ticks every sensor, collecting the
// messages they emit. One Engine per publisher loop; it is not
// goroutine-safe.
type Engine struct {
	device  *DeviceState
	sensors []SensorModel
}

// NewEngine creates an engine over the shared device state.
func NewEngine(device *DeviceState, sensors []SensorModel) *Engine {
	return &Engine{device: device, sensors: sensors}
}

// Device returns the shared device state.
func (e *Engine) Device() *DeviceState { return e.device }

// Step advances the simulation by dt seconds at time now and returns the
// messages emitted this tick. A zero now means wall clock.
func (e *Engine) Step(now time.Time, dt float64) []any {
	if now.IsZero() {
		now = time.Now()
	}

	e.device.StepChamber(dt)

	ctx := Context{Now: now, Device: e.device}

	var out []any
	for _, s := range e.sensors {
		out = append(out, s.Tick(ctx)...)
	}
	return out
}
