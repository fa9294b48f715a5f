package fanout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-fanout-api/internal/domain"
)

// Default lifecycle parameters, overridable via ProcessorDeps.
const (
	DefaultDedupWindow      = 5 * time.Minute
	DefaultRetentionHorizon = 30 * 24 * time.Hour
)

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	ListFollowers(ctx context.Context, userID string) ([]domain.User, error)
}

type eventStore interface {
	Get(ctx context.Context, eventID string) (*domain.Event, error)
	MarkProcessed(ctx context.Context, eventID string, generated []domain.GeneratedNotification) error
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	FindRecent(ctx context.Context, userID, sourceUserID string, eventType domain.EventType, postID string, since time.Time) (*domain.Notification, error)
}

type auditPublisher interface {
	PublishProcessed(ctx context.Context, event *domain.Event, notificationCount int) error
}

// Processor drives the fan-out of a single event: resolve the source user,
// compute recipients, filter by preference, deduplicate, write notifications,
// and mark the event processed with the list it produced.
type Processor struct {
	users         userStore
	events        eventStore
	notifications notificationStore
	audit         auditPublisher // optional
	dedupWindow   time.Duration
	retention     time.Duration
	now           func() time.Time
}

// ProcessorDeps wires a Processor. Audit may be nil; zero durations take the
// package defaults; Now is overridable for tests.
type ProcessorDeps struct {
	Users         userStore
	Events        eventStore
	Notifications notificationStore
	Audit         auditPublisher
	DedupWindow   time.Duration
	Retention     time.Duration
	Now           func() time.Time
}

func NewProcessor(deps ProcessorDeps) *Processor {
	p := &Processor{
		users:         deps.Users,
		events:        deps.Events,
		notifications: deps.Notifications,
		audit:         deps.Audit,
		dedupWindow:   deps.DedupWindow,
		retention:     deps.Retention,
		now:           deps.Now,
	}
	if p.dedupWindow == 0 {
		p.dedupWindow = DefaultDedupWindow
	}
	if p.retention == 0 {
		p.retention = DefaultRetentionHorizon
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Process fans out one event. The event is re-fetched by id so reprocessing an
// already-processed event (recovery racing a crash, a replayed submission) is
// a no-op. A missing source user aborts without marking, leaving the event for
// the next recovery sweep. Failures on individual recipients are isolated:
// they are logged and the batch continues. The only returned errors are a
// failed source-user resolution and a failed processed-marking write.
func (p *Processor) Process(ctx context.Context, eventID string) ([]domain.Notification, error) {
	ev, err := p.events.Get(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load event %s: %w", eventID, err)
	}
	if ev.IsProcessed() {
		slog.Debug("event already processed, skipping", "event", ev.EventID)
		return nil, nil
	}

	source, err := p.users.Get(ctx, ev.SourceUserID)
	if err != nil {
		return nil, fmt.Errorf("resolve source user %s for event %s: %w", ev.SourceUserID, ev.EventID, err)
	}

	candidates, err := resolveRecipients(ctx, p.users, ev)
	if err != nil {
		return nil, fmt.Errorf("resolve recipients for event %s: %w", ev.EventID, err)
	}

	var written []domain.Notification
	generated := []domain.GeneratedNotification{}
	for _, recipientID := range candidates {
		n, ok := p.fanOutTo(ctx, ev, source, recipientID)
		if !ok {
			continue
		}
		written = append(written, *n)
		generated = append(generated, domain.GeneratedNotification{
			NotificationID: n.NotificationID,
			UserID:         n.UserID,
		})
	}

	if err := p.events.MarkProcessed(ctx, ev.EventID, generated); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Another worker completed the same event between our freshness
			// check and the marking write. The dedup gate bounded the damage.
			slog.Warn("lost processed-marking race", "event", ev.EventID)
			return written, nil
		}
		return written, fmt.Errorf("mark processed: %w", err)
	}

	if p.audit != nil {
		if err := p.audit.PublishProcessed(ctx, ev, len(generated)); err != nil {
			slog.Warn("audit publish failed", "event", ev.EventID, "err", err)
		}
	}

	slog.Info("event fanned out",
		"event", ev.EventID, "type", ev.Type,
		"candidates", len(candidates), "notifications", len(generated))
	return written, nil
}

// fanOutTo runs the preference filter, dedup gate, and notification write for
// one candidate. Returns (nil, false) when the candidate was filtered,
// suppressed, or its write failed.
func (p *Processor) fanOutTo(ctx context.Context, ev *domain.Event, source *domain.User, recipientID string) (*domain.Notification, bool) {
	recipient, err := p.users.Get(ctx, recipientID)
	if err != nil {
		// Deleted or inconsistent recipient references are dropped silently;
		// the rest of the batch is unaffected.
		slog.Debug("recipient not loadable, dropped", "event", ev.EventID, "recipient", recipientID, "err", err)
		return nil, false
	}
	if !recipient.WantsNotification(ev.Type) {
		return nil, false
	}

	now := p.now()
	dup, err := p.notifications.FindRecent(ctx, recipientID, ev.SourceUserID, ev.Type, ev.Data.PostID, now.Add(-p.dedupWindow))
	if err == nil && dup != nil {
		slog.Debug("duplicate suppressed", "event", ev.EventID, "recipient", recipientID, "prior", dup.NotificationID)
		return nil, false
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		// The gate is best-effort anti-spam, not a correctness guarantee:
		// when it cannot answer, prefer delivering over silently dropping.
		slog.Warn("dedup lookup failed, writing anyway", "event", ev.EventID, "recipient", recipientID, "err", err)
	}

	n := newNotification(ev, source, recipientID, now, p.retention)
	if err := p.notifications.Put(ctx, n); err != nil {
		slog.Error("notification write failed", "event", ev.EventID, "recipient", recipientID, "err", err)
		return nil, false
	}
	return n, true
}
