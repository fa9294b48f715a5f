package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-fanout-api/internal/domain"
)

// notificationsAPI is the slice of the DynamoDB client the repo uses.
type notificationsAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// NotificationRepo provides typed DynamoDB operations for the notifications table.
type NotificationRepo struct {
	client    notificationsAPI
	tableName string
}

func NewNotificationRepo(client *dynamodb.Client, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

func (r *NotificationRepo) Put(ctx context.Context, n *domain.Notification) error {
	item, err := marshalItem(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("notification_id", notificationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Item, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListByUser returns the user's notifications newest-first, optionally
// filtered by status and type, with skip/limit applied after filtering.
// limit <= 0 means unbounded. Skip/limit paging is resolved client-side on
// top of the GSI query because the read volume per user is small (records
// expire after 30 days).
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, status domain.NotificationStatus, eventType domain.EventType, limit, skip int) ([]domain.Notification, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	}
	filter := ""
	names := map[string]string{}
	if status != "" {
		filter = "#s = :status"
		names["#s"] = fieldStatus
		input.ExpressionAttributeValues[":status"] = &types.AttributeValueMemberS{Value: string(status)}
	}
	if eventType != "" {
		if filter != "" {
			filter += " AND "
		}
		filter += "notification_type = :ntype"
		input.ExpressionAttributeValues[":ntype"] = &types.AttributeValueMemberS{Value: string(eventType)}
	}
	if filter != "" {
		input.FilterExpression = aws.String(filter)
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}

	matched := []domain.Notification{}
	remaining := skip
	var startKey map[string]types.AttributeValue
	for {
		input.ExclusiveStartKey = startKey
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query notifications for %s: %w", userID, err)
		}
		var page []domain.Notification
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		for _, n := range page {
			if remaining > 0 {
				remaining--
				continue
			}
			matched = append(matched, n)
			if limit > 0 && len(matched) == limit {
				return matched, nil
			}
		}
		if out.LastEvaluatedKey == nil {
			return matched, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// ListUnread returns all of the user's unread notifications, newest-first.
func (r *NotificationRepo) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	return r.ListByUser(ctx, userID, domain.StatusUnread, "", 0, 0)
}

// CountUnread returns the number of unread notifications for the user.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	count := 0
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("user_id-created_at-index"),
			KeyConditionExpression: aws.String("user_id = :uid"),
			FilterExpression:       aws.String("#s = :unread"),
			ExpressionAttributeNames: map[string]string{
				"#s": fieldStatus,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uid":    &types.AttributeValueMemberS{Value: userID},
				":unread": &types.AttributeValueMemberS{Value: string(domain.StatusUnread)},
			},
			Select:            types.SelectCount,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, fmt.Errorf("count unread for %s: %w", userID, err)
		}
		count += int(out.Count)
		if out.LastEvaluatedKey == nil {
			return count, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// FindRecent looks for a notification with the same dedup identity
// (recipient, source, type, post) created at or after since. Returns
// domain.ErrNotFound when no equivalent notification exists in the window.
//
// The source/type/post match lives in the filter expression, and Query's Limit
// caps items evaluated before the filter runs — so the lookup must walk
// LastEvaluatedKey pages until a match or the end of the window, never cap the
// query at one item.
func (r *NotificationRepo) FindRecent(ctx context.Context, userID, sourceUserID string, eventType domain.EventType, postID string, since time.Time) (*domain.Notification, error) {
	filter := "source_user_id = :src AND notification_type = :ntype"
	values := map[string]types.AttributeValue{
		":uid":   &types.AttributeValueMemberS{Value: userID},
		":since": &types.AttributeValueMemberS{Value: formatTime(since)},
		":src":   &types.AttributeValueMemberS{Value: sourceUserID},
		":ntype": &types.AttributeValueMemberS{Value: string(eventType)},
	}
	if postID != "" {
		filter += " AND #d.post_id = :pid"
		values[":pid"] = &types.AttributeValueMemberS{Value: postID}
	}
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :uid AND created_at >= :since"),
		FilterExpression:       aws.String(filter),
		ExpressionAttributeNames: map[string]string{
			"#d": "data",
		},
		ExpressionAttributeValues: values,
	}
	var startKey map[string]types.AttributeValue
	for {
		input.ExclusiveStartKey = startKey
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("dedup lookup for %s: %w", userID, err)
		}
		if len(out.Items) > 0 {
			var n domain.Notification
			if err := attributevalue.UnmarshalMap(out.Items[0], &n); err != nil {
				return nil, err
			}
			return &n, nil
		}
		if out.LastEvaluatedKey == nil {
			return nil, domain.ErrNotFound
		}
		startKey = out.LastEvaluatedKey
	}
}

// MarkRead sets the status to read and stamps read_at.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID string, at time.Time) error {
	return r.update(ctx, notificationID, map[string]interface{}{
		fieldStatus: string(domain.StatusRead),
		fieldReadAt: formatTime(at),
	})
}

// Dismiss sets the status to dismissed and stamps dismissed_at.
func (r *NotificationRepo) Dismiss(ctx context.Context, notificationID string, at time.Time) error {
	return r.update(ctx, notificationID, map[string]interface{}{
		fieldStatus:      string(domain.StatusDismissed),
		fieldDismissedAt: formatTime(at),
	})
}

func (r *NotificationRepo) update(ctx context.Context, notificationID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("notification_id", notificationID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// ListPurgeable scans for read or dismissed notifications created before the
// cutoff. Unread records never match, whatever their age.
func (r *NotificationRepo) ListPurgeable(ctx context.Context, cutoff time.Time) ([]domain.Notification, error) {
	var purgeable []domain.Notification
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(r.tableName),
			FilterExpression: aws.String("(#s = :read OR #s = :dismissed) AND created_at < :cutoff"),
			ExpressionAttributeNames: map[string]string{
				"#s": fieldStatus,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":read":      &types.AttributeValueMemberS{Value: string(domain.StatusRead)},
				":dismissed": &types.AttributeValueMemberS{Value: string(domain.StatusDismissed)},
				":cutoff":    &types.AttributeValueMemberS{Value: formatTime(cutoff)},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan purgeable notifications: %w", err)
		}
		var page []domain.Notification
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		purgeable = append(purgeable, page...)
		if out.LastEvaluatedKey == nil {
			return purgeable, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// Delete hard-deletes a notification record.
func (r *NotificationRepo) Delete(ctx context.Context, notificationID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("notification_id", notificationID),
	})
	return err
}
