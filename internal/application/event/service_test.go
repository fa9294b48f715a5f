package event

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

type mockEventStore struct{ mock.Mock }

func (m *mockEventStore) Put(ctx context.Context, e *domain.Event) error {
	return m.Called(ctx, e).Error(0)
}
func (m *mockEventStore) Get(ctx context.Context, eventID string) (*domain.Event, error) {
	args := m.Called(ctx, eventID)
	if e, _ := args.Get(0).(*domain.Event); e != nil {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockQueue struct{ mock.Mock }

func (m *mockQueue) Submit(eventID string) error {
	return m.Called(eventID).Error(0)
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService(repo *mockEventStore, queue *mockQueue) Service {
	return NewService(ServiceDeps{EventRepo: repo, Queue: queue, Now: fixedNow})
}

func likeRequest() domain.SubmitEventRequest {
	return domain.SubmitEventRequest{
		Type:         domain.EventLike,
		SourceUserID: "u2",
		TargetUserID: "u1",
		Data:         domain.EventData{PostID: "p1"},
	}
}

func TestSubmit_PersistsAndEnqueues(t *testing.T) {
	repo := &mockEventStore{}
	queue := &mockQueue{}
	repo.On("Put", mock.Anything, mock.AnythingOfType("*domain.Event")).Return(nil)
	queue.On("Submit", mock.AnythingOfType("string")).Return(nil)

	ev, err := newTestService(repo, queue).Submit(context.Background(), likeRequest())

	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, domain.EventLike, ev.Type)
	assert.Equal(t, 0, ev.Processed)
	assert.NotNil(t, ev.NotificationsGenerated)
	assert.Empty(t, ev.NotificationsGenerated)
	assert.Equal(t, fixedNow(), ev.CreatedAt)
	assert.Equal(t, fixedNow().Add(DefaultEventRetention).Unix(), ev.ExpiresAt)
	queue.AssertCalled(t, "Submit", ev.EventID)
}

func TestSubmit_MissingType_BadRequest(t *testing.T) {
	repo := &mockEventStore{}
	req := likeRequest()
	req.Type = ""

	_, err := newTestService(repo, &mockQueue{}).Submit(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	repo.AssertNotCalled(t, "Put")
}

func TestSubmit_UnknownType_BadRequest(t *testing.T) {
	repo := &mockEventStore{}
	req := likeRequest()
	req.Type = "TELEPATHY"

	_, err := newTestService(repo, &mockQueue{}).Submit(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	repo.AssertNotCalled(t, "Put")
}

func TestSubmit_MissingSourceUser_BadRequest(t *testing.T) {
	repo := &mockEventStore{}
	req := likeRequest()
	req.SourceUserID = ""

	_, err := newTestService(repo, &mockQueue{}).Submit(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	repo.AssertNotCalled(t, "Put")
}

func TestSubmit_MentionWithoutUsers_BadRequest(t *testing.T) {
	repo := &mockEventStore{}
	req := domain.SubmitEventRequest{
		Type:         domain.EventMention,
		SourceUserID: "u2",
		Data:         domain.EventData{PostID: "p1"},
	}

	_, err := newTestService(repo, &mockQueue{}).Submit(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	repo.AssertNotCalled(t, "Put")
}

func TestSubmit_PersistFailure(t *testing.T) {
	repo := &mockEventStore{}
	queue := &mockQueue{}
	repo.On("Put", mock.Anything, mock.Anything).Return(errors.New("table missing"))

	_, err := newTestService(repo, queue).Submit(context.Background(), likeRequest())

	require.Error(t, err)
	queue.AssertNotCalled(t, "Submit")
}

func TestSubmit_FullQueueStillAccepts(t *testing.T) {
	repo := &mockEventStore{}
	queue := &mockQueue{}
	repo.On("Put", mock.Anything, mock.Anything).Return(nil)
	queue.On("Submit", mock.Anything).Return(errors.New("fanout queue full"))

	ev, err := newTestService(repo, queue).Submit(context.Background(), likeRequest())

	require.NoError(t, err)
	assert.NotNil(t, ev)
}

func TestGet_Passthrough(t *testing.T) {
	repo := &mockEventStore{}
	want := &domain.Event{EventID: "ev1"}
	repo.On("Get", mock.Anything, "ev1").Return(want, nil)

	got, err := newTestService(repo, &mockQueue{}).Get(context.Background(), "ev1")

	require.NoError(t, err)
	assert.Equal(t, want, got)
}
