package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-fanout-api/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service is the reader-side surface: pull access to stored notifications and
// the monotonic status transitions. How these reach a client (polling, push)
// is the transport's problem, not this service's.
type Service interface {
	List(ctx context.Context, userID string, status domain.NotificationStatus, eventType domain.EventType, limit, skip int) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
	Dismiss(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
}

type notificationStore interface {
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string, status domain.NotificationStatus, eventType domain.EventType, limit, skip int) ([]domain.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, notificationID string, at time.Time) error
	Dismiss(ctx context.Context, notificationID string, at time.Time) error
}

type service struct {
	repo notificationStore
	now  func() time.Time
}

func NewService(repo notificationStore) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) List(ctx context.Context, userID string, status domain.NotificationStatus, eventType domain.EventType, limit, skip int) ([]domain.Notification, error) {
	if status != "" && !domain.ValidNotificationStatus(status) {
		return nil, fmt.Errorf("unknown status %q: %w", status, domain.ErrBadRequest)
	}
	if eventType != "" && !domain.ValidEventType(eventType) {
		return nil, fmt.Errorf("unknown type %q: %w", eventType, domain.ErrBadRequest)
	}
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if skip < 0 {
		skip = 0
	}
	return s.repo.ListByUser(ctx, userID, status, eventType, limit, skip)
}

func (s *service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead transitions unread -> read. Marking an already-read notification
// again is a no-op that leaves read_at untouched; a dismissed notification
// cannot come back.
func (s *service) MarkRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	switch n.Status {
	case domain.StatusRead:
		return n, nil
	case domain.StatusDismissed:
		return nil, fmt.Errorf("notification is dismissed: %w", domain.ErrConflict)
	}
	at := s.now().UTC()
	if err := s.repo.MarkRead(ctx, notificationID, at); err != nil {
		return nil, err
	}
	n.Status = domain.StatusRead
	n.ReadAt = &at
	return n, nil
}

// MarkAllRead transitions every unread notification of the user to read.
// Per-record failures are logged and skipped; returns the number updated.
func (s *service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	unread, err := s.repo.ListUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	at := s.now().UTC()
	updated := 0
	for i := range unread {
		if err := s.repo.MarkRead(ctx, unread[i].NotificationID, at); err != nil {
			slog.Warn("mark-all-read skipped notification", "notification", unread[i].NotificationID, "err", err)
			continue
		}
		updated++
	}
	return updated, nil
}

// Dismiss soft-deletes a notification. Dismissing twice is a no-op.
func (s *service) Dismiss(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	if n.Status == domain.StatusDismissed {
		return n, nil
	}
	at := s.now().UTC()
	if err := s.repo.Dismiss(ctx, notificationID, at); err != nil {
		return nil, err
	}
	n.Status = domain.StatusDismissed
	n.DismissedAt = &at
	return n, nil
}
