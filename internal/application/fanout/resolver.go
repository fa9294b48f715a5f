package fanout

import (
	"context"
	"log/slog"

	"github.com/go-fanout-api/internal/domain"
)

// followerLister is the slice of the user store the resolver needs for
// follower fan-out.
type followerLister interface {
	ListFollowers(ctx context.Context, userID string) ([]domain.User, error)
}

// resolveRecipients applies the per-type recipient policy and returns
// candidate user ids. The order is deterministic for a given relationship
// dataset: direct targets first-and-only, followers sorted by user id,
// mentions in their listed order with duplicates and the source removed.
func resolveRecipients(ctx context.Context, followers followerLister, ev *domain.Event) ([]string, error) {
	switch ev.Type {
	case domain.EventLike, domain.EventComment, domain.EventShare, domain.EventFollow:
		if ev.TargetUserID == "" || ev.TargetUserID == ev.SourceUserID {
			return nil, nil
		}
		return []string{ev.TargetUserID}, nil

	case domain.EventPostCreate:
		users, err := followers.ListFollowers(ctx, ev.SourceUserID)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(users))
		for _, u := range users {
			if u.UserID == ev.SourceUserID {
				continue
			}
			ids = append(ids, u.UserID)
		}
		return ids, nil

	case domain.EventMention:
		seen := make(map[string]struct{}, len(ev.Data.MentionedUsers))
		var ids []string
		for _, id := range ev.Data.MentionedUsers {
			if id == "" || id == ev.SourceUserID {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		return ids, nil

	default:
		// Unknown types are an anomaly, not an error: the event still
		// completes with zero recipients.
		slog.Warn("unknown event type, resolving no recipients",
			"event", ev.EventID, "type", ev.Type)
		return nil, nil
	}
}
