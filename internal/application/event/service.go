package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-fanout-api/internal/domain"
	"github.com/go-fanout-api/internal/pkg/id"
	"github.com/go-fanout-api/internal/pkg/validate"
)

// DefaultEventRetention is how long stored events live before the table TTL
// reclaims them.
const DefaultEventRetention = 90 * 24 * time.Hour

type Service interface {
	// Submit validates and persists an event, then hands it to the fan-out
	// queue. The returned event acknowledges acceptance, not completion.
	Submit(ctx context.Context, req domain.SubmitEventRequest) (*domain.Event, error)
	Get(ctx context.Context, eventID string) (*domain.Event, error)
}

type eventStore interface {
	Put(ctx context.Context, e *domain.Event) error
	Get(ctx context.Context, eventID string) (*domain.Event, error)
}

type enqueuer interface {
	Submit(eventID string) error
}

type service struct {
	repo      eventStore
	queue     enqueuer
	retention time.Duration
	now       func() time.Time
}

// ServiceDeps wires a Service. Zero Retention takes the package default;
// Now is overridable for tests.
type ServiceDeps struct {
	EventRepo eventStore
	Queue     enqueuer
	Retention time.Duration
	Now       func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:      deps.EventRepo,
		queue:     deps.Queue,
		retention: deps.Retention,
		now:       deps.Now,
	}
	if s.retention == 0 {
		s.retention = DefaultEventRetention
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Submit(ctx context.Context, req domain.SubmitEventRequest) (*domain.Event, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	if !domain.ValidEventType(req.Type) {
		return nil, fmt.Errorf("unknown event type %q: %w", req.Type, domain.ErrBadRequest)
	}
	if req.Type == domain.EventMention && len(req.Data.MentionedUsers) == 0 {
		return nil, fmt.Errorf("mention event without mentioned_users: %w", domain.ErrBadRequest)
	}

	now := s.now().UTC()
	ev := &domain.Event{
		EventID:                id.New(),
		Type:                   req.Type,
		SourceUserID:           req.SourceUserID,
		TargetUserID:           req.TargetUserID,
		Data:                   req.Data,
		Processed:              0,
		NotificationsGenerated: []domain.GeneratedNotification{},
		CreatedAt:              now,
		ExpiresAt:              now.Add(s.retention).Unix(),
	}
	if err := s.repo.Put(ctx, ev); err != nil {
		return nil, fmt.Errorf("persist event: %w", err)
	}

	// The event is durable at this point: a full queue only delays fan-out
	// until the next recovery sweep, so submission still succeeds.
	if err := s.queue.Submit(ev.EventID); err != nil {
		slog.Warn("event accepted but not enqueued, recovery will pick it up", "event", ev.EventID, "err", err)
	}
	return ev, nil
}

func (s *service) Get(ctx context.Context, eventID string) (*domain.Event, error) {
	return s.repo.Get(ctx, eventID)
}
