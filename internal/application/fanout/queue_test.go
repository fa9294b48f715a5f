package fanout

import (
	"context"
	"testing"
	"time"

	"github.com/go-fanout-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProcessor records processed ids on a channel so tests can observe the
// drain order without sleeping.
type stubProcessor struct {
	seen chan string
	err  error
}

func newStubProcessor() *stubProcessor {
	return &stubProcessor{seen: make(chan string, 64)}
}

func (s *stubProcessor) Process(_ context.Context, eventID string) ([]domain.Notification, error) {
	s.seen <- eventID
	return nil, s.err
}

func (s *stubProcessor) next(t *testing.T) string {
	t.Helper()
	select {
	case id := <-s.seen:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the drain worker")
		return ""
	}
}

func TestQueue_DrainsInSubmissionOrder(t *testing.T) {
	proc := newStubProcessor()
	q := NewQueue(proc, 8)

	require.NoError(t, q.Submit("ev1"))
	require.NoError(t, q.Submit("ev2"))
	require.NoError(t, q.Submit("ev3"))

	q.Start(context.Background())
	defer q.Stop()

	assert.Equal(t, "ev1", proc.next(t))
	assert.Equal(t, "ev2", proc.next(t))
	assert.Equal(t, "ev3", proc.next(t))
}

func TestQueue_SubmitFailsFastWhenFull(t *testing.T) {
	q := NewQueue(newStubProcessor(), 1)

	require.NoError(t, q.Submit("ev1"))
	err := q.Submit("ev2")

	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 1, q.Pending())
}

func TestQueue_ProcessorErrorDoesNotStopDrain(t *testing.T) {
	proc := newStubProcessor()
	proc.err = assert.AnError
	q := NewQueue(proc, 8)
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Submit("ev1"))
	require.NoError(t, q.Submit("ev2"))

	assert.Equal(t, "ev1", proc.next(t))
	assert.Equal(t, "ev2", proc.next(t))
}

func TestQueue_StopIsIdempotent(t *testing.T) {
	q := NewQueue(newStubProcessor(), 8)
	q.Start(context.Background())

	q.Stop()
	q.Stop()
}

func TestQueue_StartIsIdempotent(t *testing.T) {
	proc := newStubProcessor()
	q := NewQueue(proc, 8)
	ctx := context.Background()

	q.Start(ctx)
	q.Start(ctx)
	defer q.Stop()

	require.NoError(t, q.Submit("ev1"))
	assert.Equal(t, "ev1", proc.next(t))

	// A second drain goroutine would race for the next id; give it no chance.
	select {
	case id := <-proc.seen:
		t.Fatalf("unexpected extra processing of %s", id)
	case <-time.After(50 * time.Millisecond):
	}
}
