package bus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"monitoring-systemv1/internal/model"
)

func mkEvent(source string, tr model.AlarmTransition) model.AlarmEvent {
	return model.AlarmEvent{
		Source:     source,
		Type:       model.AlarmLowLimit,
		Severity:   model.SeverityWarning,
		Transition: tr,
		Timestamp:  time.Now(),
		Message:    "test",
		Details:    "rule=config_low_limit",
	}
}

func TestFanOutBroadcastsToAll(t *testing.T) {
	fo := New(10)
	out1 := fo.Subscribe()
	out2 := fo.Subscribe()

	input := make(chan model.AlarmEvent, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fo.Run(ctx, input)

	input <- mkEvent("Pressure", model.TransitionRaised)

	for i, out := range []<-chan model.AlarmEvent{out1, out2} {
		select {
		case ev := <-out:
			if ev.Source != "Pressure" {
				t.Errorf("out%d: expected source Pressure, got %s", i+1, ev.Source)
			}
		case <-time.After(time.Second):
			t.Fatalf("out%d: timed out waiting for event", i+1)
		}
	}
}

func TestFanOutPreservesOrderPerSubscriber(t *testing.T) {
	fo := New(100)
	out := fo.Subscribe()

	input := make(chan model.AlarmEvent, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fo.Run(ctx, input)

	transitions := []model.AlarmTransition{
		model.TransitionRaised, model.TransitionUpdated, model.TransitionCleared,
	}
	for _, tr := range transitions {
		input <- mkEvent("Vibration", tr)
	}

	for _, want := range transitions {
		select {
		case ev := <-out:
			if ev.Transition != want {
				t.Fatalf("expected %s, got %s", want, ev.Transition)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestFanOutSlowSubscriberDropsNotBlocks(t *testing.T) {
	fo := New(1)
	var drops int32
	fo.OnDrop = func(int) { atomic.AddInt32(&drops, 1) }

	// Never drained: one buffered slot, everything beyond it is dropped.
	fo.Subscribe()

	input := make(chan model.AlarmEvent, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fo.Run(ctx, input)

	for i := 0; i < 10; i++ {
		input <- mkEvent("Pressure", model.TransitionRaised)
	}

	deadline := time.After(time.Second)
	for atomic.LoadInt32(&drops) < 9 {
		select {
		case <-deadline:
			t.Fatalf("expected 9 drops, got %d", atomic.LoadInt32(&drops))
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestFanOutClosesOutputsWhenInputCloses(t *testing.T) {
	fo := New(10)
	out := fo.Subscribe()

	input := make(chan model.AlarmEvent)
	go fo.Run(context.Background(), input)
	close(input)

	select {
	case _, ok := <-out:
		if ok {
			t.Fatal("expected closed output channel")
		}
	case <-time.After(time.Second):
		t.Fatal("output channel not closed")
	}
}

// Sixteen concurrent publishers hammer the bus while one slow subscriber
// lags behind. Publishing must never block and the bus must stay usable.
func TestFanOutConcurrentPublishersNeverBlock(t *testing.T) {
	const publishers = 16
	const perPublisher = 200

	fo := New(8)
	fo.OnDrop = func(int) {}
	out := fo.Subscribe()

	input := make(chan model.AlarmEvent, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fo.Run(ctx, input)

	// Slow consumer.
	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		for range out {
			time.Sleep(time.Millisecond)
		}
	}()

	var wg sync.WaitGroup
	done := make(chan struct{})
	for p := 0; p < publishers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perPublisher; i++ {
				// Producer-side drop-on-full keeps publishers from
				// blocking even with the bus saturated.
				select {
				case input <- mkEvent("Pressure", model.TransitionUpdated):
				default:
				}
			}
		}(p)
	}
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publishers blocked on a bounded bus")
	}

	// The bus is still live after the storm.
	select {
	case input <- mkEvent("Vibration", model.TransitionRaised):
	case <-time.After(time.Second):
		t.Fatal("bus unusable after concurrent storm")
	}
	cancel()
	close(input)
	<-consumed
}
