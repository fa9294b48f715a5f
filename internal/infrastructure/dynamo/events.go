package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-fanout-api/internal/domain"
)

// EventRepo provides typed DynamoDB operations for the events table.
type EventRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewEventRepo(client *dynamodb.Client, tableName string) *EventRepo {
	return &EventRepo{client: client, tableName: tableName}
}

func (r *EventRepo) Put(ctx context.Context, e *domain.Event) error {
	item, err := marshalItem(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *EventRepo) Get(ctx context.Context, eventID string) (*domain.Event, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("event_id", eventID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("event %s: %w", eventID, domain.ErrNotFound)
	}
	var e domain.Event
	if err := attributevalue.UnmarshalMap(out.Item, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListUnprocessed queries the processed-created_at GSI for events still
// awaiting fan-out, oldest first.
func (r *EventRepo) ListUnprocessed(ctx context.Context) ([]domain.Event, error) {
	var events []domain.Event
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("processed-created_at-index"),
			KeyConditionExpression: aws.String("#p = :zero"),
			ExpressionAttributeNames: map[string]string{
				"#p": fieldProcessed,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":zero": &types.AttributeValueMemberN{Value: "0"},
			},
			ScanIndexForward:  aws.Bool(true),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("query unprocessed events: %w", err)
		}
		var page []domain.Event
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		events = append(events, page...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return events, nil
}

// MarkProcessed flips processed to 1 and records the generated notification
// list in a single conditional update. The condition rejects a second marking,
// so an event transitions to processed at most once; callers receive
// domain.ErrConflict when they lost that race.
func (r *EventRepo) MarkProcessed(ctx context.Context, eventID string, generated []domain.GeneratedNotification) error {
	if generated == nil {
		generated = []domain.GeneratedNotification{}
	}
	genAV, err := attributevalue.Marshal(generated)
	if err != nil {
		return fmt.Errorf("marshal generated list: %w", err)
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("event_id", eventID),
		UpdateExpression:    aws.String("SET #p = :one, #g = :gen"),
		ConditionExpression: aws.String("#p = :zero"),
		ExpressionAttributeNames: map[string]string{
			"#p": fieldProcessed,
			"#g": fieldNotificationsGenerated,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one":  &types.AttributeValueMemberN{Value: "1"},
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":gen":  genAV,
		},
	})
	if err != nil {
		var ccfe *types.ConditionalCheckFailedException
		if errors.As(err, &ccfe) {
			return fmt.Errorf("event %s already processed: %w", eventID, domain.ErrConflict)
		}
		return fmt.Errorf("mark event %s processed: %w", eventID, err)
	}
	return nil
}
