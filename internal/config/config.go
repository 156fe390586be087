// Package config loads and validates application configuration from
// environment variables and optional .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
//
// Keys are spelled out in full on every field: envconfig falls back to the
// bare tag name for nested structs, which would let PORT leak into SMTP_PORT.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `envconfig:"PORT" default:"8080"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// LogLevel controls the minimum log level: debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Env names the deployment environment reported on traces.
	Env string `envconfig:"ENV" default:"dev"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins    []string `ignored:"true"`
	CORSOriginsCSV string   `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`

	// MaxBodyBytes caps the size of request bodies.
	MaxBodyBytes int64 `envconfig:"MAX_BODY_BYTES" default:"1048576"`

	// API tokens.
	JWTSecret    string        `envconfig:"JWT_SECRET"`
	JWTIssuer    string        `envconfig:"JWT_ISSUER" default:"joliday"`
	JWTAudience  string        `envconfig:"JWT_AUDIENCE" default:"joliday-app"`
	JWTExpiresIn time.Duration `envconfig:"JWT_EXPIRES_IN" default:"24h"`

	// Google sign-in. An empty client id disables it.
	GoogleClientID string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleJWKSURL  string `envconfig:"GOOGLE_JWKS_URL" default:"https://www.googleapis.com/oauth2/v3/certs"`

	// Realtime fan-out: none, redis or amqp.
	RealtimeBackend string `envconfig:"REALTIME_BACKEND" default:"none"`
	RedisURL        string `envconfig:"REDIS_URL"`
	AMQPURL         string `envconfig:"AMQP_URL"`
	AMQPExchange    string `envconfig:"AMQP_EXCHANGE" default:"joliday.realtime"`

	// Outgoing mail. An empty host logs messages instead of sending them.
	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"noreply@joliday.local"`

	// ContactRecipients receive a copy of every contact form message.
	ContactRecipients    []string `ignored:"true"`
	ContactRecipientsCSV string   `envconfig:"CONTACT_RECIPIENTS"`

	// UserStreamInterval is the poll period of the user count stream.
	UserStreamInterval time.Duration `envconfig:"USER_STREAM_INTERVAL" default:"1s"`

	// Tracing. An empty endpoint disables export.
	OTelEndpoint    string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelServiceName string `envconfig:"OTEL_SERVICE_NAME" default:"joliday-api"`
}

// Load reads the given .env files (or ./.env when none are given and it
// exists) into the process environment without overriding variables that are
// already set, then decodes the environment into a Config.
// Returns an error listing any required variables that are not set.
func Load(envFiles ...string) (Config, error) {
	if err := loadDotEnv(envFiles); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	cfg.CORSOrigins = splitCSV(cfg.CORSOriginsCSV)
	cfg.ContactRecipients = splitCSV(cfg.ContactRecipientsCSV)

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

func loadDotEnv(files []string) error {
	if len(files) == 0 {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config.Load: .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	return nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
