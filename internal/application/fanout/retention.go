package fanout

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-fanout-api/internal/domain"
)

type purgeStore interface {
	ListPurgeable(ctx context.Context, cutoff time.Time) ([]domain.Notification, error)
	Delete(ctx context.Context, notificationID string) error
}

type notificationArchive interface {
	Store(ctx context.Context, n *domain.Notification) error
}

// RetentionSweep deletes read and dismissed notifications older than the
// retention horizon. Unread notifications are never touched, whatever their
// age. Physical expiry of any-status records past expires_at belongs to the
// storage TTL; this sweep only reclaims terminal records early.
type RetentionSweep struct {
	notifications purgeStore
	archive       notificationArchive // optional cold storage before delete
	horizon       time.Duration
	now           func() time.Time
}

// NewRetentionSweep wires a sweep. archive may be nil; horizon <= 0 takes the
// default retention horizon.
func NewRetentionSweep(notifications purgeStore, archive notificationArchive, horizon time.Duration) *RetentionSweep {
	if horizon <= 0 {
		horizon = DefaultRetentionHorizon
	}
	return &RetentionSweep{
		notifications: notifications,
		archive:       archive,
		horizon:       horizon,
		now:           time.Now,
	}
}

// Run performs one pass and returns the number of notifications purged.
// Per-record failures are logged and skipped; the pass continues.
func (s *RetentionSweep) Run(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.horizon)
	purgeable, err := s.notifications.ListPurgeable(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	purged := 0
	for i := range purgeable {
		n := &purgeable[i]
		if err := ctx.Err(); err != nil {
			return purged, err
		}
		if !n.Terminal() {
			// The store filter should never return unread records; refuse to
			// delete one if it does.
			slog.Warn("retention skipped non-terminal notification", "notification", n.NotificationID, "status", n.Status)
			continue
		}
		if s.archive != nil {
			if err := s.archive.Store(ctx, n); err != nil {
				slog.Warn("archive failed, keeping notification", "notification", n.NotificationID, "err", err)
				continue
			}
		}
		if err := s.notifications.Delete(ctx, n.NotificationID); err != nil {
			slog.Warn("retention delete failed", "notification", n.NotificationID, "err", err)
			continue
		}
		purged++
	}
	if purged > 0 {
		slog.Info("retention sweep purged notifications", "count", purged, "cutoff", cutoff)
	}
	return purged, nil
}

// Start runs the sweep on a fixed interval until ctx is cancelled.
// every <= 0 disables the periodic pass.
func (s *RetentionSweep) Start(ctx context.Context, every time.Duration) {
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
					slog.Error("retention sweep failed", "err", err)
				}
			}
		}
	}()
}
