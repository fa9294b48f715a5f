package fanout

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-fanout-api/internal/domain"
)

type unprocessedLister interface {
	ListUnprocessed(ctx context.Context) ([]domain.Event, error)
}

type eventSubmitter interface {
	Submit(eventID string) error
}

// RecoverySweep finds events left unprocessed (after a crash, a queue
// overflow, or a transient source-user failure) and resubmits them, oldest
// first, through the same queue that serves live submissions. Funneling both
// sources into the single drain worker is what serializes recovery against
// live fan-out; the sweep itself takes no locks and is safe to run repeatedly.
type RecoverySweep struct {
	events unprocessedLister
	queue  eventSubmitter
}

func NewRecoverySweep(events unprocessedLister, queue eventSubmitter) *RecoverySweep {
	return &RecoverySweep{events: events, queue: queue}
}

// Run performs one bounded pass: every unprocessed event gets resubmitted
// until the context expires or the queue fills. Returns how many events were
// resubmitted. A full queue is not an error — the remainder is retried on the
// next pass.
func (s *RecoverySweep) Run(ctx context.Context) (int, error) {
	events, err := s.events.ListUnprocessed(ctx)
	if err != nil {
		return 0, err
	}
	resubmitted := 0
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return resubmitted, err
		}
		if err := s.queue.Submit(ev.EventID); err != nil {
			if errors.Is(err, ErrQueueFull) {
				slog.Warn("recovery halted on full queue", "resubmitted", resubmitted, "remaining", len(events)-resubmitted)
				return resubmitted, nil
			}
			return resubmitted, err
		}
		resubmitted++
	}
	if resubmitted > 0 {
		slog.Info("recovery sweep resubmitted events", "count", resubmitted)
	}
	return resubmitted, nil
}

// Start runs the sweep on a fixed interval until ctx is cancelled.
// every <= 0 disables the periodic pass.
func (s *RecoverySweep) Start(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Run(ctx); err != nil {
					slog.Error("recovery sweep failed", "err", err)
				}
			}
		}
	}()
}
