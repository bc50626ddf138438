// Package store holds the in-memory state shared by the ingest pipeline, the
// alarm engine and the dashboard: latest readings per sensor, scalar sensor
// configs and alarm history.
package store

import (
	"sync"

	"monitoring-systemv1/internal/model"
)

// maxAlarmEvents caps the alarm event history; the oldest entries are
// dropped once it is exceeded.
const maxAlarmEvents = 10000

// Store is the single thread-safe point of truth for latest device state.
// Every public method takes the lock for the duration of the call. Snapshot
// accessors return independent containers; the entities inside them are
// treated as immutable and may be shared.
type Store struct {
	mu sync.RWMutex

	configs     map[string]model.SensorConfig
	configOrder []string

	scalars map[string]model.SensorReading
	spectra map[string]model.FtirReading

	events []model.AlarmEvent
	states map[model.AlarmID]model.AlarmState
}

// New returns an empty store.
func New() *Store {
	return &Store{
		configs: make(map[string]model.SensorConfig),
		scalars: make(map[string]model.SensorReading),
		spectra: make(map[string]model.FtirReading),
		states:  make(map[model.AlarmID]model.AlarmState),
	}
}

// SetConfig registers or replaces the scalar config for one sensor.
func (s *Store) SetConfig(cfg model.SensorConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configs[cfg.Name]; !ok {
		s.configOrder = append(s.configOrder, cfg.Name)
	}
	s.configs[cfg.Name] = cfg
}

// ScalarConfigs returns all registered scalar configs in registration order.
func (s *Store) ScalarConfigs() []model.SensorConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.SensorConfig, 0, len(s.configOrder))
	for _, name := range s.configOrder {
		out = append(out, s.configs[name])
	}
	return out
}

// UpdateScalar stores the latest scalar reading for a sensor. Last write
// wins; the store does not order by timestamp.
func (s *Store) UpdateScalar(r model.SensorReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scalars[r.Sensor] = r
}

// UpdateSpectrum stores the latest FTIR frame for a sensor.
func (s *Store) UpdateSpectrum(r model.FtirReading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spectra[r.Sensor] = r
}

// Latest returns the most recent scalar reading for a sensor, if any.
func (s *Store) Latest(sensor string) (model.SensorReading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.scalars[sensor]
	return r, ok
}

// LatestFtir returns the most recent FTIR frame for a sensor, if any.
func (s *Store) LatestFtir(sensor string) (model.FtirReading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.spectra[sensor]
	return r, ok
}

// AddAlarmEvent appends an event to the alarm history.
func (s *Store) AddAlarmEvent(ev model.AlarmEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	for len(s.events) > maxAlarmEvents {
		s.events = s.events[1:]
	}
}

// SetAlarmState sets or overwrites the current state for an alarm.
func (s *Store) SetAlarmState(id model.AlarmID, st model.AlarmState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[id] = st
}

// ActiveAlarmStates returns the states that are currently active.
func (s *Store) ActiveAlarmStates() []model.AlarmState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.AlarmState
	for _, st := range s.states {
		if st.Active {
			out = append(out, st)
		}
	}
	return out
}

// ClearAlarmHistory drops all stored alarm events and alarm states. Driven
// by the dashboard "clear log" action.
func (s *Store) ClearAlarmHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.states = make(map[model.AlarmID]model.AlarmState)
}

// Snapshots returns a copy of the latest scalar reading per sensor.
func (s *Store) Snapshots() map[string]model.SensorReading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.SensorReading, len(s.scalars))
	for k, v := range s.scalars {
		out[k] = v
	}
	return out
}

// FtirSnapshots returns a copy of the latest FTIR frame per sensor.
func (s *Store) FtirSnapshots() map[string]model.FtirReading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.FtirReading, len(s.spectra))
	for k, v := range s.spectra {
		out[k] = v
	}
	return out
}

// AlarmEvents returns a copy of the alarm event history in insertion order.
func (s *Store) AlarmEvents() []model.AlarmEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.AlarmEvent, len(s.events))
	copy(out, s.events)
	return out
}

// AlarmStates returns a copy of the current alarm state table.
func (s *Store) AlarmStates() map[model.AlarmID]model.AlarmState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[model.AlarmID]model.AlarmState, len(s.states))
	for k, v := range s.states {
		out[k] = v
	}
	return out
}
