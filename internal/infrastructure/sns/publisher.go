package sns

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-fanout-api/internal/config"
	"github.com/go-fanout-api/internal/domain"
)

// AuditPublisher announces completed fan-outs to an SNS topic so downstream
// consumers (analytics, audit trails) can react without polling the event
// table. This is an integration hook, not a client delivery channel.
type AuditPublisher interface {
	PublishProcessed(ctx context.Context, event *domain.Event, notificationCount int) error
}

// snsAPI is the slice of the SNS client the publisher uses.
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type publisher struct {
	client   snsAPI
	topicARN string
	now      func() time.Time
}

type processedMessage struct {
	EventID           string           `json:"event_id"`
	Type              domain.EventType `json:"type"`
	SourceUserID      string           `json:"source_user_id"`
	NotificationCount int              `json:"notification_count"`
	ProcessedAt       time.Time        `json:"processed_at"`
}

// NewPublisher creates the audit publisher. When cfg.AWSEndpointURL is set
// (LocalStack), it overrides the endpoint so all traffic goes to the local
// instance.
func NewPublisher(cfg *config.Config) (AuditPublisher, error) {
	if cfg.SNSTopicARN == "" {
		return nil, fmt.Errorf("SNS_AUDIT_TOPIC_ARN not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, err
	}

	clientOpts := []func(*sns.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}

	return &publisher{
		client:   sns.NewFromConfig(awsCfg, clientOpts...),
		topicARN: cfg.SNSTopicARN,
		now:      time.Now,
	}, nil
}

func (p *publisher) PublishProcessed(ctx context.Context, event *domain.Event, notificationCount int) error {
	body, err := json.Marshal(processedMessage{
		EventID:           event.EventID,
		Type:              event.Type,
		SourceUserID:      event.SourceUserID,
		NotificationCount: notificationCount,
		ProcessedAt:       p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal audit message: %w", err)
	}
	msg := string(body)
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: &p.topicARN,
		Message:  &msg,
	})
	return err
}
