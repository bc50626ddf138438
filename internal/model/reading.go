package model

import "time"

// SensorStatus marks a reading as trustworthy or not. FAULTY readings are
// stored like any other; criteria decide whether to skip them.
type SensorStatus string

const (
	StatusOK     SensorStatus = "OK"
	StatusFaulty SensorStatus = "FAULTY"
)

// SensorReading is one scalar sample from a device channel.
type SensorReading struct {
	Sensor    string       `json:"sensor"`
	Value     float64      `json:"value"`
	Timestamp time.Time    `json:"timestamp"`
	Status    SensorStatus `json:"status"`
}

// FtirReading is one fixed-length spectrum frame. Values are ordered along
// the descending wavelength axis (see WavelengthAxis).
type FtirReading struct {
	Sensor    string       `json:"sensor"`
	Values    []float64    `json:"values"`
	Timestamp time.Time    `json:"timestamp"`
	Status    SensorStatus `json:"status"`
}
