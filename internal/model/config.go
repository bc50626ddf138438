package model

// SensorConfig holds the display units and scalar alarm limits for one
// sensor channel.
type SensorConfig struct {
	Name      string  `json:"name" yaml:"name"`
	Units     string  `json:"units" yaml:"units"`
	LowLimit  float64 `json:"low_limit" yaml:"low_limit"`
	HighLimit float64 `json:"high_limit" yaml:"high_limit"`
}
