package fanout

import (
	"context"
	"errors"
	"testing"

	"github.com/go-fanout-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestResolveRecipients_DirectTarget(t *testing.T) {
	ev := &domain.Event{Type: domain.EventFollow, SourceUserID: "u2", TargetUserID: "u1"}

	ids, err := resolveRecipients(context.Background(), &mockUserStore{}, ev)

	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids)
}

func TestResolveRecipients_SelfTarget_Empty(t *testing.T) {
	ev := &domain.Event{Type: domain.EventLike, SourceUserID: "u1", TargetUserID: "u1"}

	ids, err := resolveRecipients(context.Background(), &mockUserStore{}, ev)

	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestResolveRecipients_MissingTarget_Empty(t *testing.T) {
	ev := &domain.Event{Type: domain.EventComment, SourceUserID: "u1"}

	ids, err := resolveRecipients(context.Background(), &mockUserStore{}, ev)

	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestResolveRecipients_PostCreate_ExcludesSource(t *testing.T) {
	us := &mockUserStore{}
	us.On("ListFollowers", mock.Anything, "u1").Return([]domain.User{
		{UserID: "u1"}, // self-follow anomaly
		{UserID: "u2"},
		{UserID: "u3"},
	}, nil)
	ev := &domain.Event{Type: domain.EventPostCreate, SourceUserID: "u1"}

	ids, err := resolveRecipients(context.Background(), us, ev)

	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u3"}, ids)
}

func TestResolveRecipients_PostCreate_ListError(t *testing.T) {
	us := &mockUserStore{}
	us.On("ListFollowers", mock.Anything, "u1").Return(nil, errors.New("scan failed"))
	ev := &domain.Event{Type: domain.EventPostCreate, SourceUserID: "u1"}

	_, err := resolveRecipients(context.Background(), us, ev)

	require.Error(t, err)
}

func TestResolveRecipients_Mention_DedupAndOrder(t *testing.T) {
	ev := &domain.Event{
		Type:         domain.EventMention,
		SourceUserID: "u2",
		Data:         domain.EventData{MentionedUsers: []string{"u3", "u1", "u2", "u3", ""}},
	}

	ids, err := resolveRecipients(context.Background(), &mockUserStore{}, ev)

	require.NoError(t, err)
	assert.Equal(t, []string{"u3", "u1"}, ids)
}

func TestResolveRecipients_UnknownType_Empty(t *testing.T) {
	ev := &domain.Event{Type: "TELEPATHY", SourceUserID: "u1", TargetUserID: "u2"}

	ids, err := resolveRecipients(context.Background(), &mockUserStore{}, ev)

	require.NoError(t, err)
	assert.Empty(t, ids)
}
