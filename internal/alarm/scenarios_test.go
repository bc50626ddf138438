package alarm

import (
	"testing"
	"time"

	"monitoring-systemv1/internal/model"
	"monitoring-systemv1/internal/store"
)

// feedScalar stores a reading and runs one evaluation cycle.
func feedScalar(e *Engine, st *store.Store, sensor string, value float64, ts time.Time) []model.AlarmEvent {
	st.UpdateScalar(model.SensorReading{Sensor: sensor, Value: value, Timestamp: ts, Status: model.StatusOK})
	return e.RunOnce(st, ts)
}

func pressureFixture() (*Engine, *store.Store) {
	st := store.New()
	st.SetConfig(model.SensorConfig{Name: "Pressure", Units: "bar", LowLimit: 1.0, HighLimit: 10.0})
	return NewEngine([]Criteria{ScalarLimit{}}, 0.5), st
}

func TestPressureHighLimitLifecycle(t *testing.T) {
	engine, st := pressureFixture()
	t0 := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	// In range: two inactive decisions, no events.
	if events := feedScalar(engine, st, "Pressure", 5.0, t0); len(events) != 0 {
		t.Fatalf("in-range value must be silent, got %+v", events)
	}

	// Over the high limit: RAISED.
	events := feedScalar(engine, st, "Pressure", 12.0, t0.Add(time.Second))
	if len(events) != 1 {
		t.Fatalf("expected one event, got %+v", events)
	}
	ev := events[0]
	if ev.Transition != model.TransitionRaised || ev.Type != model.AlarmHighLimit {
		t.Fatalf("expected HIGH_LIMIT RAISED, got %+v", ev)
	}
	if ev.Severity != model.SeverityWarning {
		t.Errorf("severity = %s, want WARNING", ev.Severity)
	}
	if ev.Details != "rule=config_high_limit" {
		t.Errorf("details = %q", ev.Details)
	}

	// Still high, big move: UPDATED.
	events = feedScalar(engine, st, "Pressure", 13.0, t0.Add(2*time.Second))
	if len(events) != 1 || events[0].Transition != model.TransitionUpdated {
		t.Fatalf("expected UPDATED, got %+v", events)
	}

	// Back in range: CLEARED.
	events = feedScalar(engine, st, "Pressure", 5.0, t0.Add(3*time.Second))
	if len(events) != 1 || events[0].Transition != model.TransitionCleared {
		t.Fatalf("expected CLEARED, got %+v", events)
	}
	if events[0].Message != "Pressure back below high limit" {
		t.Errorf("clear message = %q", events[0].Message)
	}
	if n := len(st.ActiveAlarmStates()); n != 0 {
		t.Errorf("no alarms should stay active, got %d", n)
	}
}

func TestPressureJitterWithinToleranceStaysQuiet(t *testing.T) {
	engine, st := pressureFixture()
	t0 := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	if events := feedScalar(engine, st, "Pressure", 12.3456, t0); len(events) != 1 {
		t.Fatalf("expected RAISED, got %+v", events)
	}

	// 0.0002 bar of jitter renders identically at three decimals and sits
	// far below value_eps; the alarm must not chatter.
	if events := feedScalar(engine, st, "Pressure", 12.3458, t0.Add(time.Second)); len(events) != 0 {
		t.Fatalf("jitter within tolerance must be silent, got %+v", events)
	}

	// A real move updates.
	if events := feedScalar(engine, st, "Pressure", 13.5, t0.Add(2*time.Second)); len(events) != 1 ||
		events[0].Transition != model.TransitionUpdated {
		t.Fatalf("expected UPDATED, got %+v", events)
	}
}

func TestFaultyReadingFreezesAlarmState(t *testing.T) {
	engine, st := pressureFixture()
	t0 := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	feedScalar(engine, st, "Pressure", 12.0, t0)

	// The sensor goes faulty: the criterion emits nothing, so the alarm
	// neither clears nor updates.
	st.UpdateScalar(model.SensorReading{Sensor: "Pressure", Value: 0.0, Timestamp: t0.Add(time.Second), Status: model.StatusFaulty})
	if events := engine.RunOnce(st, t0.Add(time.Second)); len(events) != 0 {
		t.Fatalf("faulty reading must be silent, got %+v", events)
	}
	if n := len(st.ActiveAlarmStates()); n != 1 {
		t.Fatalf("alarm must stay active through the fault, got %d active", n)
	}

	// Recovery with an in-range value clears it.
	events := feedScalar(engine, st, "Pressure", 5.0, t0.Add(2*time.Second))
	if len(events) != 1 || events[0].Transition != model.TransitionCleared {
		t.Fatalf("expected CLEARED after recovery, got %+v", events)
	}
}

func TestTempPairDriftRaisesAndClears(t *testing.T) {
	st := store.New()
	engine := NewEngine([]Criteria{
		TempDiff{SensorLower: "TempLowerMSP", SensorUpper: "TempUpperMSP", MaxDelta: 3.0},
	}, 0.5)
	t0 := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	st.UpdateScalar(model.SensorReading{Sensor: "TempLowerMSP", Value: 20.0, Timestamp: t0, Status: model.StatusOK})
	st.UpdateScalar(model.SensorReading{Sensor: "TempUpperMSP", Value: 20.8, Timestamp: t0, Status: model.StatusOK})
	if events := engine.RunOnce(st, t0); len(events) != 0 {
		t.Fatalf("0.8 C spread must be silent, got %+v", events)
	}

	st.UpdateScalar(model.SensorReading{Sensor: "TempUpperMSP", Value: 30.5, Timestamp: t0.Add(time.Second), Status: model.StatusOK})
	events := engine.RunOnce(st, t0.Add(time.Second))
	if len(events) != 1 || events[0].Transition != model.TransitionRaised {
		t.Fatalf("expected RAISED, got %+v", events)
	}
	if events[0].Type != model.AlarmTempDiff {
		t.Errorf("type = %s", events[0].Type)
	}

	st.UpdateScalar(model.SensorReading{Sensor: "TempUpperMSP", Value: 21.0, Timestamp: t0.Add(2*time.Second), Status: model.StatusOK})
	events = engine.RunOnce(st, t0.Add(2*time.Second))
	if len(events) != 1 || events[0].Transition != model.TransitionCleared {
		t.Fatalf("expected CLEARED, got %+v", events)
	}
}

func TestFtirShiftRaisesCriticalAndClearCarriesIt(t *testing.T) {
	st := store.New()
	axis := model.WavelengthAxis()
	peak := axis[127]
	crit := NewFtirPeakShift("FTNIR", []float64{peak}, []float64{3.0})
	crit.SearchWindowNm = 100.0
	engine := NewEngine([]Criteria{crit}, 0.5)
	t0 := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	shifted := flatSpectrum()
	shifted[127+4] = 0.0
	st.UpdateSpectrum(model.FtirReading{Sensor: "FTNIR", Values: shifted, Timestamp: t0, Status: model.StatusOK})
	events := engine.RunOnce(st, t0)
	if len(events) != 1 || events[0].Transition != model.TransitionRaised {
		t.Fatalf("expected RAISED, got %+v", events)
	}
	if events[0].Severity != model.SeverityCritical {
		t.Errorf("severity = %s, want CRITICAL", events[0].Severity)
	}

	good := flatSpectrum()
	good[127] = 0.0
	st.UpdateSpectrum(model.FtirReading{Sensor: "FTNIR", Values: good, Timestamp: t0.Add(time.Second), Status: model.StatusOK})
	events = engine.RunOnce(st, t0.Add(time.Second))
	if len(events) != 1 || events[0].Transition != model.TransitionCleared {
		t.Fatalf("expected CLEARED, got %+v", events)
	}
	if events[0].Severity != model.SeverityCritical {
		t.Errorf("CLEARED must carry the raised severity, got %s", events[0].Severity)
	}
}

func TestTightenedLimitsTakeEffectNextCycle(t *testing.T) {
	engine, st := pressureFixture()
	t0 := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	if events := feedScalar(engine, st, "Pressure", 5.0, t0); len(events) != 0 {
		t.Fatalf("5.0 within 1..10 must be silent, got %+v", events)
	}

	// A live config reload tightens the band; the same value now violates.
	st.SetConfig(model.SensorConfig{Name: "Pressure", Units: "bar", LowLimit: 1.0, HighLimit: 2.0})
	events := engine.RunOnce(st, t0.Add(time.Second))
	if len(events) != 1 || events[0].Transition != model.TransitionRaised {
		t.Fatalf("tightened limit should raise on the next cycle, got %+v", events)
	}
	if events[0].Type != model.AlarmHighLimit {
		t.Errorf("type = %s", events[0].Type)
	}
}
