package sim

// Shaking vibration contributions (mm/s).
const (
	shakeOffAddMmS    = 0.0
	shakeWeakAddMmS   = 0.8
	shakeMedAddMmS    = 1.6
	shakeStrongAddMmS = 3.5
)

// ChamberOnAddMmS is the vibration contribution of the powered chamber.
const ChamberOnAddMmS = 0.7

// ShakeMode is the mechanical shaking intensity.
type ShakeMode string

const (
	ShakeOff    ShakeMode = "OFF"
	ShakeWeak   ShakeMode = "WEAK"
	ShakeMedium ShakeMode = "MEDIUM"
	ShakeStrong ShakeMode = "STRONG"
)

// Shaking adds an extra vibration component depending on the current
// shake mode.
type Shaking struct {
	Mode ShakeMode
}

// VibrationAdd returns the vibration contribution for the current mode.
func (s *Shaking) VibrationAdd() float64 {
	switch s.Mode {
	case ShakeWeak:
		return shakeWeakAddMmS
	case ShakeMedium:
		return shakeMedAddMmS
	case ShakeStrong:
		return shakeStrongAddMmS
	default:
		return shakeOffAddMmS
	}
}
