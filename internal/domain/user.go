package domain

import "time"

// User is owned by the profile subsystem; this service only reads it to
// resolve relationships and notification preferences.
type User struct {
	UserID      string      `json:"id" dynamodbav:"user_id"`
	Username    string      `json:"username" dynamodbav:"username"`
	DisplayName string      `json:"display_name" dynamodbav:"display_name"`
	Followers   []string    `json:"followers" dynamodbav:"followers"`
	Following   []string    `json:"following" dynamodbav:"following"`
	Preferences Preferences `json:"preferences" dynamodbav:"preferences"`
	CreatedAt   time.Time   `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time   `json:"updated" dynamodbav:"updated_at"`
}

// Preferences holds the per-user notification opt-ins.
type Preferences struct {
	NotificationTypes []EventType `json:"notification_types" dynamodbav:"notification_types"`
}

// WantsNotification reports whether the user subscribed to the given event type.
func (u *User) WantsNotification(t EventType) bool {
	for _, nt := range u.Preferences.NotificationTypes {
		if nt == t {
			return true
		}
	}
	return false
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
