// Package transport moves sensor readings between processes as
// newline-delimited JSON over TCP: a receiver for the monitoring side and a
// single-client publish server for the simulator side.
package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"monitoring-systemv1/internal/model"
)

// Wire message type tags.
const (
	TypeSensorReading = "sensor_reading"
	TypeFtirSpectrum  = "ftir_spectrum"
)

// wireTime is the timestamp layout on the wire: ISO-8601 without a zone.
// Fractional seconds are accepted on decode and emitted when present.
const wireTime = "2006-01-02T15:04:05"

func parseWireTime(s string) (time.Time, error) {
	t, err := time.Parse(wireTime, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(wireTime+"Z07:00", s)
}

func formatWireTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.999999")
}

// wireMessage is the decode shape shared by both message types. Pointer
// fields distinguish absent from zero.
type wireMessage struct {
	Type      string    `json:"type"`
	Sensor    *string   `json:"sensor"`
	Value     *float64  `json:"value"`
	Values    []float64 `json:"values"`
	Timestamp *string   `json:"timestamp"`
	Status    string    `json:"status"`
}

type scalarWire struct {
	Type      string             `json:"type"`
	Sensor    string             `json:"sensor"`
	Value     float64            `json:"value"`
	Timestamp string             `json:"timestamp"`
	Status    model.SensorStatus `json:"status"`
}

type spectrumWire struct {
	Type      string             `json:"type"`
	Sensor    string             `json:"sensor"`
	Values    []float64          `json:"values"`
	Timestamp string             `json:"timestamp"`
	Status    model.SensorStatus `json:"status"`
}

// EncodeMessage renders a reading as one JSON object, without the trailing
// newline. Supported inputs are model.SensorReading and model.FtirReading.
func EncodeMessage(msg any) ([]byte, error) {
	switch m := msg.(type) {
	case model.SensorReading:
		return json.Marshal(scalarWire{
			Type:      TypeSensorReading,
			Sensor:    m.Sensor,
			Value:     m.Value,
			Timestamp: formatWireTime(m.Timestamp),
			Status:    m.Status,
		})
	case model.FtirReading:
		values := m.Values
		if values == nil {
			values = []float64{}
		}
		return json.Marshal(spectrumWire{
			Type:      TypeFtirSpectrum,
			Sensor:    m.Sensor,
			Values:    values,
			Timestamp: formatWireTime(m.Timestamp),
			Status:    m.Status,
		})
	default:
		return nil, fmt.Errorf("unsupported message type: %T", msg)
	}
}

// DecodeMessage decodes one NDJSON line into a model.SensorReading or
// model.FtirReading. A sender that concatenates several JSON objects onto a
// single line is tolerated: the first object wins. Non-object JSON values
// are skipped.
func DecodeMessage(line string) (any, error) {
	raw, ok := firstObject(line)
	if !ok {
		return nil, errors.New("no JSON object found in line")
	}

	var w wireMessage
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}

	switch w.Type {
	case TypeSensorReading:
		if w.Sensor == nil || w.Value == nil || w.Timestamp == nil {
			return nil, errors.New("sensor_reading missing sensor, value or timestamp")
		}
		ts, err := parseWireTime(*w.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp %q: %w", *w.Timestamp, err)
		}
		status, err := parseStatus(w.Status)
		if err != nil {
			return nil, err
		}
		return model.SensorReading{
			Sensor:    *w.Sensor,
			Value:     *w.Value,
			Timestamp: ts,
			Status:    status,
		}, nil

	case TypeFtirSpectrum:
		if w.Sensor == nil || w.Values == nil || w.Timestamp == nil {
			return nil, errors.New("ftir_spectrum missing sensor, values or timestamp")
		}
		ts, err := parseWireTime(*w.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp %q: %w", *w.Timestamp, err)
		}
		status, err := parseStatus(w.Status)
		if err != nil {
			return nil, err
		}
		return model.FtirReading{
			Sensor:    *w.Sensor,
			Values:    w.Values,
			Timestamp: ts,
			Status:    status,
		}, nil

	default:
		return nil, fmt.Errorf("unknown message type: %q", w.Type)
	}
}

func parseStatus(s string) (model.SensorStatus, error) {
	switch model.SensorStatus(s) {
	case model.StatusOK, model.StatusFaulty:
		return model.SensorStatus(s), nil
	case "":
		return model.StatusOK, nil
	default:
		return "", fmt.Errorf("unknown sensor status: %q", s)
	}
}

// firstObject scans a line that may hold several concatenated JSON values
// and returns the raw bytes of the first JSON object.
func firstObject(line string) (json.RawMessage, bool) {
	dec := json.NewDecoder(strings.NewReader(line))
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, false
		}
		if len(raw) > 0 && raw[0] == '{' {
			return raw, true
		}
	}
}
