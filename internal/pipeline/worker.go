package pipeline

import (
	"context"
	"log"
	"time"
)

// Worker drains the readings queue and hands each message to the
// controller. A single worker keeps evaluation strictly ordered, so an
// alarm event is always caused by the last stored reading. Failures are
// logged and swallowed; one bad message never stops the drain.
type Worker struct {
	controller *Controller

	// OnHandled reports the evaluation latency of each message.
	OnHandled func(d time.Duration)
}

// NewWorker creates a worker feeding the controller.
func NewWorker(controller *Controller) *Worker {
	return &Worker{controller: controller}
}

// Run drains in until ctx is cancelled or in is closed.
func (w *Worker) Run(ctx context.Context, in <-chan any) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-in:
			if !ok {
				return
			}
			w.handle(msg)
		}
	}
}

func (w *Worker) handle(msg any) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[alarm-worker] evaluation panicked: %v", r)
		}
	}()

	start := time.Now()
	if _, err := w.controller.HandleMessage(msg, time.Time{}); err != nil {
		log.Printf("[alarm-worker] handle message failed: %v", err)
		return
	}
	if w.OnHandled != nil {
		w.OnHandled(time.Since(start))
	}
}
