// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL       string        `env:"DATABASE_URL,required,notEmpty"`
	DBConnectAttempts int           `env:"DB_CONNECT_ATTEMPTS" envDefault:"5"`
	DBConnectInterval time.Duration `env:"DB_CONNECT_INTERVAL" envDefault:"2s"`

	// LogLevel controls the minimum log level.
	// Valid values: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to the Vite dev server. Comma-separated.
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// JWTSecret signs and verifies bearer tokens (HS256). Required.
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	// WebhookSecret must be sent in the X-Webhook-Secret header of billing
	// webhook calls. The webhook is not mounted while it is empty.
	WebhookSecret string `env:"WEBHOOK_SECRET"`

	// MaxBodyBytes caps request bodies. 0 disables the cap.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// AppBaseURL is the web app origin used in links inside e-mails.
	AppBaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:5173"`

	// InvitationTTL is how long a new invitation stays acceptable.
	InvitationTTL time.Duration `env:"INVITATION_TTL" envDefault:"168h"`

	// SweepSchedule is the cron spec for the premium expiry sweep.
	SweepSchedule string        `env:"SWEEP_SCHEDULE" envDefault:"@every 1h"`
	SweepLockTTL  time.Duration `env:"SWEEP_LOCK_TTL" envDefault:"5m"`

	// RedisURL enables the cross-replica sweep lock when set.
	RedisURL string `env:"REDIS_URL"`

	AMQP     AMQPConfig     `envPrefix:"AMQP_"`
	Postmark PostmarkConfig `envPrefix:"POSTMARK_"`
	S3       S3Config       `envPrefix:"S3_"`
}

// AMQPConfig routes payment events through RabbitMQ when URL is set.
// Without it the webhook applies events inline.
type AMQPConfig struct {
	URL        string `env:"URL"`
	Exchange   string `env:"EXCHANGE" envDefault:"wayfarer.billing"`
	Queue      string `env:"QUEUE" envDefault:"wayfarer.billing.events"`
	RoutingKey string `env:"ROUTING_KEY" envDefault:"payment.event"`
}

// Enabled reports whether a broker URL is configured.
func (c AMQPConfig) Enabled() bool { return c.URL != "" }

// PostmarkConfig configures invitation e-mails.
type PostmarkConfig struct {
	ServerToken string `env:"SERVER_TOKEN"`
	From        string `env:"FROM" envDefault:"no-reply@wayfarer.app"`
	Stream      string `env:"STREAM" envDefault:"outbound"`
}

// Enabled reports whether a server token is configured.
func (c PostmarkConfig) Enabled() bool { return c.ServerToken != "" }

// S3Config configures deletion of stored images.
type S3Config struct {
	Bucket          string `env:"BUCKET"`
	Region          string `env:"REGION" envDefault:"us-east-1"`
	Endpoint        string `env:"ENDPOINT"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `env:"USE_PATH_STYLE"`
	// PublicBaseURL is the prefix image URLs are served under; the rest of
	// the URL is the object key.
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
}

// Enabled reports whether a bucket is configured.
func (c S3Config) Enabled() bool { return c.Bucket != "" }

// Load reads configuration from environment variables and returns a Config.
// Returns an error naming any required variable that is missing or empty.
// Loading a .env file is the caller's job.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	if cfg.InvitationTTL <= 0 {
		return Config{}, fmt.Errorf("config.Load: INVITATION_TTL must be positive, got %s", cfg.InvitationTTL)
	}
	if strings.TrimSpace(cfg.SweepSchedule) == "" {
		return Config{}, fmt.Errorf("config.Load: SWEEP_SCHEDULE must not be empty")
	}
	return cfg, nil
}

// trimAll trims each entry and drops empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, part := range in {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
