package notification

import (
	"context"
	"log"
	"time"
)

// WorkerConfig holds the delivery worker settings.
type WorkerConfig struct {
	// MaxQueue bounds the delivery queue. Defaults to 2000.
	MaxQueue int

	// RetryCount is the number of additional attempts after a failed
	// delivery. Defaults to 3.
	RetryCount int

	// RetryBackoff is the base pause between attempts, doubled each retry.
	// Defaults to 500ms.
	RetryBackoff time.Duration
}

func (c *WorkerConfig) defaults() {
	if c.MaxQueue == 0 {
		c.MaxQueue = 2000
	}
	if c.RetryCount == 0 {
		c.RetryCount = 3
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = 500 * time.Millisecond
	}
}

// Worker drains a bounded queue of notification events and delivers each to
// every configured notifier in order. Enqueueing never blocks; the newest
// event is dropped when the queue is full.
type Worker struct {
	cfg       WorkerConfig
	notifiers []Notifier
	q         chan Event

	// Optional hooks wired to metrics by the caller. OnDelivered reports
	// the total delivery latency including retries.
	OnDrop      func()
	OnDelivered func(d time.Duration)
	OnFailed    func()
}

// NewWorker creates a delivery worker over the given notifiers.
func NewWorker(notifiers []Notifier, cfg WorkerConfig) *Worker {
	cfg.defaults()
	return &Worker{
		cfg:       cfg,
		notifiers: notifiers,
		q:         make(chan Event, cfg.MaxQueue),
	}
}

// Emit enqueues an event without blocking. Full queue drops the event.
func (w *Worker) Emit(ev Event) {
	select {
	case w.q <- ev:
	default:
		if w.OnDrop != nil {
			w.OnDrop()
		}
		log.Println("[notify] queue full, dropping event")
	}
}

// QueueStats returns the delivery queue's (length, capacity).
func (w *Worker) QueueStats() (int, int) {
	return len(w.q), cap(w.q)
}

// Stop asks the drain loop to finish after the events already queued ahead
// of the sentinel. For a hard stop, cancel the Run context instead.
func (w *Worker) Stop() {
	select {
	case w.q <- Event{Type: TypeStop}:
	default:
	}
}

// Run drains the queue until ctx is cancelled or a stop sentinel arrives.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-w.q:
			if ev.Type == TypeStop {
				return
			}
			for _, n := range w.notifiers {
				w.sendWithRetries(ctx, n, ev)
			}
		}
	}
}

// sendWithRetries delivers one event to one notifier, retrying with
// exponential backoff. After the final failure the event is dropped.
func (w *Worker) sendWithRetries(ctx context.Context, n Notifier, ev Event) {
	start := time.Now()
	for attempt := 0; ; attempt++ {
		err := n.Send(ctx, ev)
		if err == nil {
			if w.OnDelivered != nil {
				w.OnDelivered(time.Since(start))
			}
			return
		}
		if attempt >= w.cfg.RetryCount {
			log.Printf("[notify] delivery failed after %d attempts: %v", attempt+1, err)
			if w.OnFailed != nil {
				w.OnFailed()
			}
			return
		}

		backoff := w.cfg.RetryBackoff * time.Duration(1<<attempt)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}
