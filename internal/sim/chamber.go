package sim

// Chamber defaults.
const (
	ChamberAmbientC         = 25.0
	ChamberDefaultSetpointC = 30.0
	ChamberHeatRampCPerSec  = 0.15
	ChamberCoolRampCPerSec  = 0.15
	ChamberOffDriftCPerSec  = 0.05
)

// ChamberMode is the operating mode when the chamber is powered on.
type ChamberMode string

const (
	ChamberHeat ChamberMode = "HEAT"
	ChamberCool ChamberMode = "COOL"
)

// Chamber is a simple temperature chamber model with ramping. It tracks a
// current temperature, moves toward the setpoint while powered, and
// drifts back to ambient when powered off. Sensors read CurrentC; the
// chamber knows nothing about them.
//
// Not safe for concurrent use on its own; DeviceState guards it.
type Chamber struct {
	PoweredOn bool
	Mode      ChamberMode

	AmbientC  float64
	SetpointC float64

	HeatRampCPerS float64
	CoolRampCPerS float64
	OffDriftCPerS float64

	CurrentC float64
}

// NewChamber returns a powered-off chamber at ambient temperature.
func NewChamber() *Chamber {
	return &Chamber{
		Mode:          ChamberHeat,
		AmbientC:      ChamberAmbientC,
		SetpointC:     ChamberDefaultSetpointC,
		HeatRampCPerS: ChamberHeatRampCPerSec,
		CoolRampCPerS: ChamberCoolRampCPerSec,
		OffDriftCPerS: ChamberOffDriftCPerSec,
		CurrentC:      ChamberAmbientC,
	}
}

// TargetTemp returns the temperature the chamber is moving toward:
// the setpoint while powered, ambient otherwise.
func (c *Chamber) TargetTemp() float64 {
	if c.PoweredOn {
		return c.SetpointC
	}
	return c.AmbientC
}

// Step advances the chamber by dt seconds and returns the new
// temperature. The ramp rate depends on power state and direction.
func (c *Chamber) Step(dt float64) float64 {
	if dt <= 0 {
		return c.CurrentC
	}

	target := c.TargetTemp()

	var rate float64
	switch {
	case !c.PoweredOn:
		rate = c.OffDriftCPerS
	case target >= c.CurrentC:
		rate = c.HeatRampCPerS
	default:
		rate = c.CoolRampCPerS
	}

	maxStep := rate * dt
	diff := target - c.CurrentC

	if diff <= maxStep && -diff <= maxStep {
		c.CurrentC = target
	} else if diff > 0 {
		c.CurrentC += maxStep
	} else {
		c.CurrentC -= maxStep
	}

	return c.CurrentC
}
