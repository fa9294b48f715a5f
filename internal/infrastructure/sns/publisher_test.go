package sns

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-fanout-api/internal/config"
	"github.com/go-fanout-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSNS struct {
	published []*sns.PublishInput
	err       error
}

func (s *stubSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	s.published = append(s.published, in)
	return &sns.PublishOutput{}, s.err
}

func TestNewPublisher_RequiresTopicARN(t *testing.T) {
	_, err := NewPublisher(&config.Config{AWSRegion: "us-east-1"})

	require.Error(t, err)
	assert.ErrorContains(t, err, "SNS_AUDIT_TOPIC_ARN")
}

func TestPublishProcessed_MessageShape(t *testing.T) {
	stub := &stubSNS{}
	p := &publisher{
		client:   stub,
		topicARN: "arn:aws:sns:us-east-1:000000000000:fanout-audit",
		now: func() time.Time {
			return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		},
	}
	ev := &domain.Event{EventID: "ev1", Type: domain.EventLike, SourceUserID: "u2"}

	err := p.PublishProcessed(context.Background(), ev, 3)

	require.NoError(t, err)
	require.Len(t, stub.published, 1)
	in := stub.published[0]
	assert.Equal(t, p.topicARN, *in.TopicArn)

	var msg processedMessage
	require.NoError(t, json.Unmarshal([]byte(*in.Message), &msg))
	assert.Equal(t, "ev1", msg.EventID)
	assert.Equal(t, domain.EventLike, msg.Type)
	assert.Equal(t, "u2", msg.SourceUserID)
	assert.Equal(t, 3, msg.NotificationCount)
	assert.Equal(t, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC), msg.ProcessedAt)
}

func TestPublishProcessed_PropagatesPublishError(t *testing.T) {
	stub := &stubSNS{err: errors.New("topic gone")}
	p := &publisher{client: stub, topicARN: "arn:x", now: time.Now}

	err := p.PublishProcessed(context.Background(), &domain.Event{EventID: "ev1"}, 0)

	require.Error(t, err)
}
