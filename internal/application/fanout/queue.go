package fanout

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/go-fanout-api/internal/domain"
)

// ErrQueueFull is returned by Submit when the intake buffer is saturated.
// Submitted events are already durable, so the recovery sweep will pick up
// anything the queue could not hold.
var ErrQueueFull = errors.New("fanout queue full")

type eventProcessor interface {
	Process(ctx context.Context, eventID string) ([]domain.Notification, error)
}

// Queue is the single-consumer FIFO intake buffer in front of the Processor.
// One drain goroutine owns all fan-out: no two events are ever processed
// concurrently, which is what keeps recovery and live submission safe against
// each other without per-event locking.
type Queue struct {
	proc   eventProcessor
	intake chan string

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

func NewQueue(proc eventProcessor, size int) *Queue {
	if size <= 0 {
		size = 1024
	}
	return &Queue{
		proc:   proc,
		intake: make(chan string, size),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the drain worker. Safe to call once; subsequent calls are no-ops.
func (q *Queue) Start(ctx context.Context) {
	q.startOnce.Do(func() {
		go q.drain(ctx)
	})
}

// Submit enqueues an event id for fan-out. It never blocks: when the buffer
// is full it fails fast with ErrQueueFull.
func (q *Queue) Submit(eventID string) error {
	select {
	case q.intake <- eventID:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending reports how many events are waiting in the intake buffer.
func (q *Queue) Pending() int { return len(q.intake) }

// Stop terminates the drain worker and waits for the in-flight event, if any,
// to finish. Events still buffered stay durably unprocessed for recovery.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() { close(q.stop) })
	<-q.done
}

func (q *Queue) drain(ctx context.Context) {
	defer close(q.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.stop:
			return
		case eventID := <-q.intake:
			if _, err := q.proc.Process(ctx, eventID); err != nil {
				// The event stays unprocessed; the recovery sweep retries it.
				slog.Error("event fan-out failed", "event", eventID, "err", err)
			}
		}
	}
}
