package sim

import (
	"sync"
	"time"
)

// DeviceState is the single source of truth for simulator runtime state.
// It owns the sensor lifecycle (enabled flags and restart windows) and
// the environment (chamber and shaking). All access is lock-guarded;
// sensors and any control surface may call it concurrently.
//
// It does not generate readings, run the timing loop, or do networking.
type DeviceState struct {
	mu sync.Mutex

	sensorEnabled      map[string]bool
	sensorRestartUntil map[string]time.Time

	chamber *Chamber
	shaking *Shaking
}

// NewDeviceState returns a device with a fresh chamber and no shaking.
func NewDeviceState() *DeviceState {
	return &DeviceState{
		sensorEnabled:      make(map[string]bool),
		sensorRestartUntil: make(map[string]time.Time),
		chamber:            NewChamber(),
		shaking:            &Shaking{Mode: ShakeOff},
	}
}

// RegisterSensor records a sensor with its initial enabled flag. Known
// sensors keep their current flag.
func (d *DeviceState) RegisterSensor(name string, enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.sensorEnabled[name]; !ok {
		d.sensorEnabled[name] = enabled
	}
}

// SensorEnabled reports the enabled flag. Unknown sensors default to
// enabled.
func (d *DeviceState) SensorEnabled(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if v, ok := d.sensorEnabled[name]; ok {
		return v
	}
	return true
}

// SetSensorEnabled sets the enabled flag. Disabling a sensor also cancels
// any pending restart window.
func (d *DeviceState) SetSensorEnabled(name string, enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sensorEnabled[name] = enabled
	if !enabled {
		delete(d.sensorRestartUntil, name)
	}
}

// RestartSensor re-enables a sensor and silences it for the given
// duration, modelling a device reboot.
func (d *DeviceState) RestartSensor(name string, duration time.Duration, now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sensorEnabled[name] = true
	d.sensorRestartUntil[name] = now.Add(duration)
}

// IsSensorActive reports whether a sensor may emit at time now. A sensor
// inside its restart window is inactive; an elapsed window is cleared on
// first check.
func (d *DeviceState) IsSensorActive(name string, now time.Time) bool {
	if now.IsZero() {
		now = time.Now()
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if v, ok := d.sensorEnabled[name]; ok && !v {
		return false
	}

	until, ok := d.sensorRestartUntil[name]
	if !ok {
		return true
	}
	if !now.Before(until) {
		delete(d.sensorRestartUntil, name)
		return true
	}
	return false
}

// RestartRemaining returns how much of the restart window is left.
func (d *DeviceState) RestartRemaining(name string, now time.Time) time.Duration {
	if now.IsZero() {
		now = time.Now()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.sensorRestartUntil[name]
	if !ok || now.After(until) {
		return 0
	}
	return until.Sub(now)
}

// ---- Environment access ----

// StepChamber advances the chamber by dt seconds.
func (d *DeviceState) StepChamber(dt float64) float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chamber.Step(dt)
}

// ChamberTemp returns the current chamber temperature.
func (d *DeviceState) ChamberTemp() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chamber.CurrentC
}

// ChamberPowered reports the chamber power state.
func (d *DeviceState) ChamberPowered() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chamber.PoweredOn
}

// VibrationAdd returns the shaking contribution in mm/s.
func (d *DeviceState) VibrationAdd() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shaking.VibrationAdd()
}

func (d *DeviceState) SetChamberPower(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chamber.PoweredOn = on
}

func (d *DeviceState) SetChamberMode(mode ChamberMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chamber.Mode = mode
}

func (d *DeviceState) SetChamberSetpoint(c float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chamber.SetpointC = c
}

func (d *DeviceState) SetShakingMode(mode ShakeMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shaking.Mode = mode
}
