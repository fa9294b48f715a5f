package domain

import "time"

// EventType enumerates the user actions that can trigger notifications.
type EventType string

const (
	EventLike       EventType = "LIKE"
	EventFollow     EventType = "FOLLOW"
	EventComment    EventType = "COMMENT"
	EventPostCreate EventType = "POST_CREATE"
	EventMention    EventType = "MENTION"
	EventShare      EventType = "SHARE"
)

// ValidEventType reports whether t is part of the closed enumeration.
func ValidEventType(t EventType) bool {
	switch t {
	case EventLike, EventFollow, EventComment, EventPostCreate, EventMention, EventShare:
		return true
	}
	return false
}

// EventData carries the per-type payload. The named fields are the closed set
// the fan-out engine understands; Metadata is the typed extension map copied
// verbatim onto generated notifications.
type EventData struct {
	PostID         string            `json:"post_id,omitempty" dynamodbav:"post_id,omitempty"`
	CommentID      string            `json:"comment_id,omitempty" dynamodbav:"comment_id,omitempty"`
	Content        string            `json:"content,omitempty" dynamodbav:"content,omitempty"`
	MentionedUsers []string          `json:"mentioned_users,omitempty" dynamodbav:"mentioned_users,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty" dynamodbav:"metadata,omitempty"`
}

// GeneratedNotification records one notification produced by an event's fan-out.
type GeneratedNotification struct {
	NotificationID string `json:"notification_id" dynamodbav:"notification_id"`
	UserID         string `json:"user_id" dynamodbav:"user_id"`
}

// Event is a recorded user action. Processed is stored as 0/1 so it can serve
// as the hash key of the processed-created_at GSI; it flips to 1 exactly once,
// together with NotificationsGenerated, when fan-out completes.
type Event struct {
	EventID                string                  `json:"id" dynamodbav:"event_id"`
	Type                   EventType               `json:"type" dynamodbav:"event_type"`
	SourceUserID           string                  `json:"source_user_id" dynamodbav:"source_user_id"`
	TargetUserID           string                  `json:"target_user_id,omitempty" dynamodbav:"target_user_id,omitempty"`
	Data                   EventData               `json:"data" dynamodbav:"data"`
	Processed              int                     `json:"processed" dynamodbav:"processed"`
	NotificationsGenerated []GeneratedNotification `json:"notifications_generated" dynamodbav:"notifications_generated"`
	CreatedAt              time.Time               `json:"created" dynamodbav:"created_at"`
	ExpiresAt              int64                   `json:"-" dynamodbav:"expires_at"` // epoch seconds, DynamoDB TTL
}

// IsProcessed reports whether fan-out already completed for this event.
func (e *Event) IsProcessed() bool { return e.Processed == 1 }

// SubmitEventRequest is the submitter-facing payload for creating an event.
type SubmitEventRequest struct {
	Type         EventType `json:"type" validate:"required"`
	SourceUserID string    `json:"source_user_id" validate:"required"`
	TargetUserID string    `json:"target_user_id"`
	Data         EventData `json:"data"`
}
