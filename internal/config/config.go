package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables

	SNSTopicARN     string // optional: processed-event audit topic
	S3ArchiveBucket string // optional: retention-sweep cold archive

	DedupWindow        time.Duration // trailing suppression window for equivalent notifications
	RetentionHorizon   time.Duration // age after which read/dismissed notifications are purged
	EventRetention     time.Duration // TTL horizon for stored events
	QueueSize          int           // fan-out intake buffer capacity
	RecoverySweepEvery time.Duration // 0 disables the periodic sweep (startup pass still runs)
	RetentionRunEvery  time.Duration // 0 disables the periodic retention pass

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Events        string
	Notifications string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Events:        getEnv("DYNAMO_TABLE_EVENTS", "events"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
		},

		SNSTopicARN:     getEnv("SNS_AUDIT_TOPIC_ARN", ""),
		S3ArchiveBucket: getEnv("S3_ARCHIVE_BUCKET", ""),

		DedupWindow:        time.Duration(getEnvInt("DEDUP_WINDOW_MINUTES", 5)) * time.Minute,
		RetentionHorizon:   time.Duration(getEnvInt("NOTIFICATION_RETENTION_DAYS", 30)) * 24 * time.Hour,
		EventRetention:     time.Duration(getEnvInt("EVENT_RETENTION_DAYS", 90)) * 24 * time.Hour,
		QueueSize:          getEnvInt("FANOUT_QUEUE_SIZE", 1024),
		RecoverySweepEvery: time.Duration(getEnvInt("RECOVERY_SWEEP_MINUTES", 15)) * time.Minute,
		RetentionRunEvery:  time.Duration(getEnvInt("RETENTION_RUN_HOURS", 24)) * time.Hour,

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
