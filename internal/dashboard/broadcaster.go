package dashboard

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"monitoring-systemv1/internal/model"
	"monitoring-systemv1/internal/store"
)

const recentEventLimit = 50

// SpectrumInfo is the per-spectrum metadata carried in snapshot frames.
// Full spectra are large and served on demand via /api/spectrum.
type SpectrumInfo struct {
	Sensor    string             `json:"sensor"`
	Timestamp time.Time          `json:"timestamp"`
	Points    int                `json:"points"`
	Status    model.SensorStatus `json:"status"`
}

// Snapshot is one full dashboard state frame.
type Snapshot struct {
	Type         string                `json:"type"`
	TS           time.Time             `json:"ts"`
	Readings     []model.SensorReading `json:"readings"`
	Spectra      []SpectrumInfo        `json:"spectra"`
	ActiveAlarms []model.AlarmState    `json:"active_alarms"`
	RecentEvents []model.AlarmEvent    `json:"recent_events"`
	History      map[string][]Point    `json:"history"`
	Host         HostMetrics           `json:"host"`
}

// Broadcaster drives the hub: once per interval it appends the latest
// readings to the plot history and broadcasts a state snapshot; alarm
// events from the bus are broadcast immediately.
type Broadcaster struct {
	hub      *Hub
	store    *store.Store
	history  *History
	interval time.Duration
	start    time.Time
}

// NewBroadcaster creates a broadcaster snapshotting st every second.
func NewBroadcaster(hub *Hub, st *store.Store, history *History) *Broadcaster {
	return &Broadcaster{
		hub:      hub,
		store:    st,
		history:  history,
		interval: time.Second,
		start:    time.Now(),
	}
}

// Run broadcasts until ctx is cancelled or events is closed.
func (b *Broadcaster) Run(ctx context.Context, events <-chan model.AlarmEvent) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			frame, err := json.Marshal(map[string]interface{}{
				"type":  "alarm_event",
				"event": ev,
			})
			if err != nil {
				continue
			}
			b.hub.Broadcast(frame)
		case <-ticker.C:
			b.tick()
		}
	}
}

func (b *Broadcaster) tick() {
	for _, r := range b.store.Snapshots() {
		b.history.Append(r.Sensor, r.Timestamp, r.Value)
	}
	frame, err := json.Marshal(b.Snapshot())
	if err != nil {
		return
	}
	b.hub.Broadcast(frame)
}

// Snapshot builds the current state frame from the store, the plot
// history and the host metrics.
func (b *Broadcaster) Snapshot() Snapshot {
	scalars := b.store.Snapshots()
	readings := make([]model.SensorReading, 0, len(scalars))
	for _, r := range scalars {
		readings = append(readings, r)
	}
	sort.Slice(readings, func(i, j int) bool { return readings[i].Sensor < readings[j].Sensor })

	spectra := b.store.FtirSnapshots()
	infos := make([]SpectrumInfo, 0, len(spectra))
	for _, sp := range spectra {
		infos = append(infos, SpectrumInfo{
			Sensor:    sp.Sensor,
			Timestamp: sp.Timestamp,
			Points:    len(sp.Values),
			Status:    sp.Status,
		})
	}

	events := b.store.AlarmEvents()
	if len(events) > recentEventLimit {
		events = events[len(events)-recentEventLimit:]
	}

	return Snapshot{
		Type:         "snapshot",
		TS:           time.Now().UTC(),
		Readings:     readings,
		Spectra:      infos,
		ActiveAlarms: b.store.ActiveAlarmStates(),
		RecentEvents: events,
		History:      b.history.Series(),
		Host:         CollectHost(b.start),
	}
}
