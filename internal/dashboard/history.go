package dashboard

import (
	"sync"
	"time"
)

// Point is one sensor sample in a plot history series.
type Point struct {
	TS    time.Time `json:"ts"`
	Value float64   `json:"value"`
}

// History keeps a rolling per-sensor series of scalar readings, trimmed
// to a wall-of-stream time window. Trimming uses reading timestamps, so
// replayed streams produce the same plot window as live ones.
//
// Thread-safe for concurrent appends and reads.
type History struct {
	mu     sync.RWMutex
	window time.Duration
	series map[string][]Point
}

// NewHistory creates a history with the given plot window.
func NewHistory(window time.Duration) *History {
	if window <= 0 {
		window = 20 * time.Second
	}
	return &History{
		window: window,
		series: make(map[string][]Point),
	}
}

// Append records one sample. Samples at or before the newest recorded
// timestamp for the sensor are ignored, so a quiet sensor is not
// duplicated on every broadcast tick.
func (h *History) Append(sensor string, ts time.Time, value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pts := h.series[sensor]
	if n := len(pts); n > 0 && !ts.After(pts[n-1].TS) {
		return
	}
	pts = append(pts, Point{TS: ts, Value: value})

	cutoff := ts.Add(-h.window)
	i := 0
	for i < len(pts) && pts[i].TS.Before(cutoff) {
		i++
	}
	h.series[sensor] = pts[i:]
}

// Series returns a copy of all per-sensor series.
func (h *History) Series() map[string][]Point {
	h.mu.RLock()
	defer h.mu.RUnlock()
	cp := make(map[string][]Point, len(h.series))
	for sensor, pts := range h.series {
		s := make([]Point, len(pts))
		copy(s, pts)
		cp[sensor] = s
	}
	return cp
}

// Len returns the number of points currently held for a sensor.
func (h *History) Len(sensor string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.series[sensor])
}
