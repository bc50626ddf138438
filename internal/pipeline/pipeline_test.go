package pipeline

import (
	"context"
	"testing"
	"time"

	"monitoring-systemv1/internal/alarm"
	"monitoring-systemv1/internal/model"
	"monitoring-systemv1/internal/store"
)

// storeCheckCriteria asserts the reading is visible in the store by the
// time evaluation runs, then reports a fixed decision.
type storeCheckCriteria struct {
	sensor string
	seen   *bool
	active bool
}

func (c storeCheckCriteria) Evaluate(st alarm.Reader, ctx alarm.Context) []alarm.Decision {
	if _, ok := st.Latest(c.sensor); ok {
		*c.seen = true
	}
	v := 1.0
	return []alarm.Decision{{
		ID:             model.AlarmID{Source: c.sensor, Type: model.AlarmLowLimit, RuleName: "ruleA"},
		Severity:       model.SeverityWarning,
		ShouldBeActive: c.active,
		Message:        "m",
		Value:          &v,
	}}
}

// panicCriteria blows up on every evaluation.
type panicCriteria struct{}

func (panicCriteria) Evaluate(alarm.Reader, alarm.Context) []alarm.Decision {
	panic("criteria exploded")
}

func reading(sensor string, v float64) model.SensorReading {
	return model.SensorReading{
		Sensor:    sensor,
		Value:     v,
		Timestamp: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		Status:    model.StatusOK,
	}
}

func TestControllerStoresReadingBeforeEvaluation(t *testing.T) {
	st := store.New()
	seen := false
	engine := alarm.NewEngine([]alarm.Criteria{storeCheckCriteria{sensor: "Pressure", seen: &seen, active: true}}, 0.5)
	events := make(chan model.AlarmEvent, 10)
	c := NewController(st, engine, events)

	out, err := c.HandleMessage(reading("Pressure", 0.5), time.Time{})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !seen {
		t.Fatal("criteria evaluated before the reading was stored")
	}
	if len(out) != 1 || out[0].Transition != model.TransitionRaised {
		t.Fatalf("expected one RAISED event, got %+v", out)
	}

	select {
	case ev := <-events:
		if ev.Source != "Pressure" {
			t.Errorf("expected source Pressure, got %s", ev.Source)
		}
	default:
		t.Fatal("event not published to channel")
	}
}

func TestControllerStoresSpectrum(t *testing.T) {
	st := store.New()
	engine := alarm.NewEngine(nil, 0.5)
	c := NewController(st, engine, make(chan model.AlarmEvent, 1))

	sp := model.FtirReading{
		Sensor:    "FTNIR",
		Values:    []float64{1, 2, 3},
		Timestamp: time.Now(),
		Status:    model.StatusOK,
	}
	if _, err := c.HandleMessage(sp, time.Time{}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	got, ok := st.LatestFtir("FTNIR")
	if !ok || len(got.Values) != 3 {
		t.Fatalf("spectrum not stored: %+v", got)
	}
}

func TestControllerRejectsUnknownMessage(t *testing.T) {
	c := NewController(store.New(), alarm.NewEngine(nil, 0.5), make(chan model.AlarmEvent, 1))
	if _, err := c.HandleMessage(42, time.Time{}); err == nil {
		t.Fatal("expected error for unknown message type")
	}
}

func TestControllerDropsEventsOnFullChannel(t *testing.T) {
	st := store.New()
	seen := false
	engine := alarm.NewEngine([]alarm.Criteria{storeCheckCriteria{sensor: "Pressure", seen: &seen, active: true}}, 0.5)

	events := make(chan model.AlarmEvent) // unbuffered, nobody reads
	c := NewController(st, engine, events)
	drops := 0
	c.OnPublishDrop = func() { drops++ }

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.HandleMessage(reading("Pressure", 0.5), time.Time{})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("controller blocked on a full events channel")
	}
	if drops != 1 {
		t.Fatalf("expected 1 publish drop, got %d", drops)
	}
}

func TestWorkerSurvivesPanickingCriteria(t *testing.T) {
	st := store.New()
	engine := alarm.NewEngine([]alarm.Criteria{panicCriteria{}}, 0.5)
	c := NewController(st, engine, make(chan model.AlarmEvent, 10))
	w := NewWorker(c)

	in := make(chan any, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, in)
	}()

	in <- reading("Pressure", 0.5)
	in <- reading("Pressure", 0.6)
	time.Sleep(50 * time.Millisecond)

	// The worker swallowed the panics and the readings still landed.
	if _, ok := st.Latest("Pressure"); !ok {
		t.Fatal("reading was not stored after panic")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}

func TestWorkerProcessesInOrder(t *testing.T) {
	st := store.New()
	st.SetConfig(model.SensorConfig{Name: "Pressure", Units: "bar", LowLimit: 1.0, HighLimit: 10.0})
	engine := alarm.NewEngine([]alarm.Criteria{alarm.ScalarLimit{}}, 0.5)
	events := make(chan model.AlarmEvent, 100)
	c := NewController(st, engine, events)
	w := NewWorker(c)

	handled := make(chan struct{}, 16)
	w.OnHandled = func(time.Duration) { handled <- struct{}{} }

	in := make(chan any, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, in)

	// Below limit then back inside: RAISED must precede CLEARED.
	in <- reading("Pressure", 0.5)
	in <- reading("Pressure", 1.5)
	for i := 0; i < 2; i++ {
		select {
		case <-handled:
		case <-time.After(time.Second):
			t.Fatal("worker did not handle reading")
		}
	}

	first, second := <-events, <-events
	if first.Transition != model.TransitionRaised {
		t.Fatalf("expected RAISED first, got %s", first.Transition)
	}
	if second.Transition != model.TransitionCleared {
		t.Fatalf("expected CLEARED second, got %s", second.Transition)
	}
}

func TestWorkerStopsWhenInputCloses(t *testing.T) {
	w := NewWorker(NewController(store.New(), alarm.NewEngine(nil, 0.5), make(chan model.AlarmEvent, 1)))
	in := make(chan any)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(context.Background(), in)
	}()
	close(in)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on closed input")
	}
}
