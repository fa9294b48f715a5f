package domain

import (
	"fmt"
	"time"
)

// NotificationStatus tracks the read lifecycle. Transitions are monotonic:
// unread -> read, unread/read -> dismissed. Dismissed is terminal.
type NotificationStatus string

const (
	StatusUnread    NotificationStatus = "unread"
	StatusRead      NotificationStatus = "read"
	StatusDismissed NotificationStatus = "dismissed"
)

// ValidNotificationStatus reports whether s is a known status value.
func ValidNotificationStatus(s NotificationStatus) bool {
	switch s {
	case StatusUnread, StatusRead, StatusDismissed:
		return true
	}
	return false
}

// NotificationData holds the subject references and deep link for a notification.
type NotificationData struct {
	PostID    string            `json:"post_id,omitempty" dynamodbav:"post_id,omitempty"`
	CommentID string            `json:"comment_id,omitempty" dynamodbav:"comment_id,omitempty"`
	URL       string            `json:"url" dynamodbav:"url"`
	Metadata  map[string]string `json:"metadata,omitempty" dynamodbav:"metadata,omitempty"`
}

// Notification is one per-recipient record produced by event fan-out.
// Content is rendered once at creation and never recomputed; SourceUserID and
// RelatedEventID are provenance references, so the record outlives the event.
type Notification struct {
	NotificationID string             `json:"id" dynamodbav:"notification_id"`
	UserID         string             `json:"user_id" dynamodbav:"user_id"`
	Type           EventType          `json:"type" dynamodbav:"notification_type"`
	Content        string             `json:"content" dynamodbav:"content"`
	Status         NotificationStatus `json:"status" dynamodbav:"notification_status"`
	SourceUserID   string             `json:"source_user_id" dynamodbav:"source_user_id"`
	RelatedEventID string             `json:"related_event_id" dynamodbav:"related_event_id"`
	Data           NotificationData   `json:"data" dynamodbav:"data"`
	CreatedAt      time.Time          `json:"created" dynamodbav:"created_at"`
	ReadAt         *time.Time         `json:"read_at,omitempty" dynamodbav:"read_at,omitempty"`
	DismissedAt    *time.Time         `json:"dismissed_at,omitempty" dynamodbav:"dismissed_at,omitempty"`
	ExpiresAt      int64              `json:"-" dynamodbav:"expires_at"` // epoch seconds, DynamoDB TTL
}

// Terminal reports whether the notification reached a status the retention
// sweep may purge. Unread records are never eligible regardless of age.
func (n *Notification) Terminal() bool {
	return n.Status == StatusRead || n.Status == StatusDismissed
}

// Age renders the notification's age relative to now, coarsest unit first.
func (n *Notification) Age(now time.Time) string {
	d := now.Sub(n.CreatedAt)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
