package fanout

import (
	"fmt"
	"time"

	"github.com/go-fanout-api/internal/domain"
	"github.com/go-fanout-api/internal/pkg/id"
)

// commentExcerptLimit bounds the comment text embedded in notification content.
const commentExcerptLimit = 50

// newNotification builds the per-recipient record for an event. Content and
// the deep link are rendered once, here; they are never recomputed, so a later
// display-name change does not rewrite history.
func newNotification(ev *domain.Event, source *domain.User, recipientID string, now time.Time, retention time.Duration) *domain.Notification {
	return &domain.Notification{
		NotificationID: id.New(),
		UserID:         recipientID,
		Type:           ev.Type,
		Content:        renderContent(ev, source.Name()),
		Status:         domain.StatusUnread,
		SourceUserID:   ev.SourceUserID,
		RelatedEventID: ev.EventID,
		Data: domain.NotificationData{
			PostID:    ev.Data.PostID,
			CommentID: ev.Data.CommentID,
			URL:       deepLink(ev),
			Metadata:  ev.Data.Metadata,
		},
		CreatedAt: now,
		ExpiresAt: now.Add(retention).Unix(),
	}
}

func renderContent(ev *domain.Event, sourceName string) string {
	switch ev.Type {
	case domain.EventLike:
		return fmt.Sprintf("%s liked your post", sourceName)
	case domain.EventFollow:
		return fmt.Sprintf("%s started following you", sourceName)
	case domain.EventComment:
		return fmt.Sprintf("%s commented on your post: %q", sourceName, truncate(ev.Data.Content, commentExcerptLimit))
	case domain.EventPostCreate:
		return fmt.Sprintf("%s published a new post", sourceName)
	case domain.EventMention:
		return fmt.Sprintf("%s mentioned you in a post", sourceName)
	case domain.EventShare:
		return fmt.Sprintf("%s shared your post", sourceName)
	default:
		return fmt.Sprintf("%s sent you a notification", sourceName)
	}
}

// deepLink maps the event subject to the client route the notification opens.
func deepLink(ev *domain.Event) string {
	if ev.Type == domain.EventFollow {
		return "/users/" + ev.SourceUserID
	}
	if ev.Data.PostID != "" {
		return "/posts/" + ev.Data.PostID
	}
	return "/notifications"
}

// truncate shortens s to at most max runes, appending "..." when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
