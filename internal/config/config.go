package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	DatabaseDriver       string
	DatabaseURL          string
	JWTSecret            string
	JWTIssuer            string
	AccessTTLSeconds     int64
	RefreshTTLSeconds    int64
	AnonKey              string
	AdminEmails          []string
	InviteTTLHours       int
	AppBaseURL           string
	MetricsDiskPath      string
	MetricsSampleSeconds int
	CorsOrigins          []string
	Storage              StorageConfig
	Mail                 MailConfig
	Redis                RedisConfig
	RateLimitPerMinute   int
	TrustProxy           bool
}

type StorageConfig struct {
	Driver             string
	UploadsPath        string
	AWSRegion          string
	AWSBucket          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
}

type MailConfig struct {
	Region    string
	FromEmail string
	FromName  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func Load() Config {
	region := envOr("AWS_REGION", "us-east-1")
	return Config{
		DatabaseDriver:       envOr("DATABASE_DRIVER", "pgx"),
		DatabaseURL:          mustEnv("DATABASE_URL"),
		JWTSecret:            mustEnv("JWT_SECRET"),
		JWTIssuer:            envOr("JWT_ISSUER", "autazul"),
		AccessTTLSeconds:     int64(envOrInt("ACCESS_TTL_SECONDS", 14400)),
		RefreshTTLSeconds:    int64(envOrInt("REFRESH_TTL_SECONDS", 1209600)),
		AnonKey:              envOr("ANON_KEY", ""),
		AdminEmails:          NormalizeEmails(parseCSV(envOr("ADMIN_EMAILS", ""))),
		InviteTTLHours:       envOrInt("INVITE_TTL_HOURS", 168),
		AppBaseURL:           strings.TrimRight(envOr("APP_BASE_URL", "http://localhost:5173"), "/"),
		MetricsDiskPath:      envOr("METRICS_DISK_PATH", "storage/uploads"),
		MetricsSampleSeconds: envOrInt("METRICS_SAMPLE_INTERVAL", 30),
		CorsOrigins:          parseCSV(envOr("CORS_ORIGINS", "")),
		Storage: StorageConfig{
			Driver:             envOr("STORAGE_DRIVER", "local"),
			UploadsPath:        envOr("UPLOADS_PATH", "storage/uploads"),
			AWSRegion:          region,
			AWSBucket:          envOr("AWS_BUCKET", ""),
			AWSAccessKeyID:     envOr("AWS_ACCESS_KEY_ID", ""),
			AWSSecretAccessKey: envOr("AWS_SECRET_ACCESS_KEY", ""),
		},
		Mail: MailConfig{
			Region:    region,
			FromEmail: envOr("SES_FROM_EMAIL", ""),
			FromName:  envOr("SES_FROM_NAME", "Autazul"),
		},
		Redis: RedisConfig{
			Addr:     envOr("REDIS_ADDR", ""),
			Password: envOr("REDIS_PASSWORD", ""),
			DB:       envOrInt("REDIS_DB", 0),
		},
		RateLimitPerMinute: envOrInt("RATE_LIMIT_PER_MINUTE", 30),
		TrustProxy:         envOrBool("TRUST_PROXY", false),
	}
}

// NormalizeEmail is the single normalization applied to every e-mail that
// enters the system.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func NormalizeEmails(raw []string) []string {
	items := make([]string, 0, len(raw))
	for _, value := range raw {
		if email := NormalizeEmail(value); email != "" {
			items = append(items, email)
		}
	}
	return items
}

func mustEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		panic("missing env var: " + key)
	}
	return value
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
