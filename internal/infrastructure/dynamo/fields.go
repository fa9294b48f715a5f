package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldProcessed              = "processed"
	fieldNotificationsGenerated = "notifications_generated"
	fieldStatus                 = "notification_status"
	fieldReadAt                 = "read_at"
	fieldDismissedAt            = "dismissed_at"
)
