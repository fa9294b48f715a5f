package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-fanout-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	args := m.Called(ctx, notificationID)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) ListByUser(ctx context.Context, userID string, status domain.NotificationStatus, eventType domain.EventType, limit, skip int) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, status, eventType, limit, skip)
	if ns, _ := args.Get(0).([]domain.Notification); ns != nil {
		return ns, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	if ns, _ := args.Get(0).([]domain.Notification); ns != nil {
		return ns, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) CountUnread(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
func (m *mockStore) MarkRead(ctx context.Context, notificationID string, at time.Time) error {
	return m.Called(ctx, notificationID, at).Error(0)
}
func (m *mockStore) Dismiss(ctx context.Context, notificationID string, at time.Time) error {
	return m.Called(ctx, notificationID, at).Error(0)
}

func unreadNotification(id, userID string) *domain.Notification {
	return &domain.Notification{NotificationID: id, UserID: userID, Status: domain.StatusUnread}
}

func TestList_ClampsPaging(t *testing.T) {
	repo := &mockStore{}
	repo.On("ListByUser", mock.Anything, "u1", domain.NotificationStatus(""), domain.EventType(""), defaultPageSize, 0).
		Return([]domain.Notification{}, nil)

	_, err := NewService(repo).List(context.Background(), "u1", "", "", 0, -3)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestList_OversizedLimitFallsBack(t *testing.T) {
	repo := &mockStore{}
	repo.On("ListByUser", mock.Anything, "u1", domain.StatusUnread, domain.EventType(""), defaultPageSize, 10).
		Return([]domain.Notification{}, nil)

	_, err := NewService(repo).List(context.Background(), "u1", domain.StatusUnread, "", maxPageSize+1, 10)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestList_UnknownStatus_BadRequest(t *testing.T) {
	repo := &mockStore{}

	_, err := NewService(repo).List(context.Background(), "u1", "archived", "", 20, 0)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	repo.AssertNotCalled(t, "ListByUser")
}

func TestList_UnknownType_BadRequest(t *testing.T) {
	repo := &mockStore{}

	_, err := NewService(repo).List(context.Background(), "u1", "", "TELEPATHY", 20, 0)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUnreadCount_Passthrough(t *testing.T) {
	repo := &mockStore{}
	repo.On("CountUnread", mock.Anything, "u1").Return(7, nil)

	count, err := NewService(repo).UnreadCount(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestMarkRead_TransitionsUnread(t *testing.T) {
	repo := &mockStore{}
	repo.On("Get", mock.Anything, "n1").Return(unreadNotification("n1", "u1"), nil)
	repo.On("MarkRead", mock.Anything, "n1", mock.AnythingOfType("time.Time")).Return(nil)

	n, err := NewService(repo).MarkRead(context.Background(), "n1", "u1")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusRead, n.Status)
	require.NotNil(t, n.ReadAt)
}

func TestMarkRead_AlreadyRead_NoOp(t *testing.T) {
	repo := &mockStore{}
	readAt := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	repo.On("Get", mock.Anything, "n1").Return(&domain.Notification{
		NotificationID: "n1", UserID: "u1", Status: domain.StatusRead, ReadAt: &readAt,
	}, nil)

	n, err := NewService(repo).MarkRead(context.Background(), "n1", "u1")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusRead, n.Status)
	assert.Equal(t, &readAt, n.ReadAt)
	repo.AssertNotCalled(t, "MarkRead")
}

func TestMarkRead_Dismissed_Conflict(t *testing.T) {
	repo := &mockStore{}
	repo.On("Get", mock.Anything, "n1").Return(&domain.Notification{
		NotificationID: "n1", UserID: "u1", Status: domain.StatusDismissed,
	}, nil)

	_, err := NewService(repo).MarkRead(context.Background(), "n1", "u1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestMarkRead_WrongOwner_Forbidden(t *testing.T) {
	repo := &mockStore{}
	repo.On("Get", mock.Anything, "n1").Return(unreadNotification("n1", "u1"), nil)

	_, err := NewService(repo).MarkRead(context.Background(), "n1", "u2")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	repo.AssertNotCalled(t, "MarkRead")
}

func TestMarkRead_NotFound(t *testing.T) {
	repo := &mockStore{}
	repo.On("Get", mock.Anything, "n1").Return(nil, domain.ErrNotFound)

	_, err := NewService(repo).MarkRead(context.Background(), "n1", "u1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMarkAllRead_CountsUpdates(t *testing.T) {
	repo := &mockStore{}
	repo.On("ListUnread", mock.Anything, "u1").Return([]domain.Notification{
		*unreadNotification("n1", "u1"),
		*unreadNotification("n2", "u1"),
		*unreadNotification("n3", "u1"),
	}, nil)
	repo.On("MarkRead", mock.Anything, "n1", mock.Anything).Return(nil)
	repo.On("MarkRead", mock.Anything, "n2", mock.Anything).Return(errors.New("throttled"))
	repo.On("MarkRead", mock.Anything, "n3", mock.Anything).Return(nil)

	updated, err := NewService(repo).MarkAllRead(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, 2, updated)
}

func TestMarkAllRead_ListFailure(t *testing.T) {
	repo := &mockStore{}
	repo.On("ListUnread", mock.Anything, "u1").Return(nil, errors.New("index offline"))

	_, err := NewService(repo).MarkAllRead(context.Background(), "u1")

	require.Error(t, err)
}

func TestDismiss_TransitionsAnyNonDismissed(t *testing.T) {
	repo := &mockStore{}
	repo.On("Get", mock.Anything, "n1").Return(&domain.Notification{
		NotificationID: "n1", UserID: "u1", Status: domain.StatusRead,
	}, nil)
	repo.On("Dismiss", mock.Anything, "n1", mock.AnythingOfType("time.Time")).Return(nil)

	n, err := NewService(repo).Dismiss(context.Background(), "n1", "u1")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusDismissed, n.Status)
	require.NotNil(t, n.DismissedAt)
}

func TestDismiss_AlreadyDismissed_NoOp(t *testing.T) {
	repo := &mockStore{}
	repo.On("Get", mock.Anything, "n1").Return(&domain.Notification{
		NotificationID: "n1", UserID: "u1", Status: domain.StatusDismissed,
	}, nil)

	n, err := NewService(repo).Dismiss(context.Background(), "n1", "u1")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusDismissed, n.Status)
	repo.AssertNotCalled(t, "Dismiss")
}

func TestDismiss_WrongOwner_Forbidden(t *testing.T) {
	repo := &mockStore{}
	repo.On("Get", mock.Anything, "n1").Return(unreadNotification("n1", "u1"), nil)

	_, err := NewService(repo).Dismiss(context.Background(), "n1", "u2")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}
