package config // package config loads application configuration from environment variables

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env              string        // application environment (dev, test, prod)
	Port             string        // HTTP port to listen on
	LogLevel         string        // minimum log level (debug, info, warn, error)
	DBUser           string        // database username
	DBPass           string        // database password (optional)
	DBHost           string        // database host address
	DBPort           string        // database port number
	DBName           string        // database name
	DBMigrate        bool          // apply embedded migrations on startup
	JWTSecret        string        // secret used to sign JWTs
	AccessTTLMin     int           // access token time-to-live in minutes
	RefreshTTLDays   int           // refresh token time-to-live in days
	BcryptCost       int           // bcrypt cost for password hashing
	PasswordResetTTL time.Duration // lifetime of a password reset link
	ResetBaseURL     string        // front-end origin used in reset links; empty uses the request host
	AMQPURL          string        // RabbitMQ URL for domain events; empty uses queue.DefaultURL
	AdminEmail       string        // optional; an ADMIN account is created at start-up when set
	AdminPassword    string
	Mail             MailConfig
}

// MailConfig selects how outgoing email is delivered.  Transport is one of
// "log" (write to the application log), "smtp" (send synchronously) or
// "queue" (enqueue an asynq task delivered by the SMTP worker).
type MailConfig struct {
	Transport string
	From      string
	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
}

// Load reads configuration values from the environment, after merging an
// optional .env file.  All missing required variables are reported in a
// single error.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	l := &loader{}
	cfg := Config{
		Env:              l.must("APP_ENV"),
		Port:             l.must("APP_PORT"),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		DBUser:           l.must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"),
		DBHost:           l.must("DB_HOST"),
		DBPort:           l.must("DB_PORT"),
		DBName:           l.must("DB_NAME"),
		DBMigrate:        envBool("DB_MIGRATE", false),
		JWTSecret:        l.must("JWT_SECRET"),
		AccessTTLMin:     l.intOr("ACCESS_TOKEN_TTL_MIN", 15),
		RefreshTTLDays:   l.intOr("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:       l.intOr("BCRYPT_COST", 12),
		PasswordResetTTL: envDur("PASSWORD_RESET_TTL", 72*time.Hour),
		ResetBaseURL:     strings.TrimRight(os.Getenv("RESET_BASE_URL"), "/"),
		AMQPURL:          firstNonEmpty(os.Getenv("RABBITMQ_URL"), os.Getenv("AMQP_URL")),
		AdminEmail:       os.Getenv("ADMIN_EMAIL"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		Mail: MailConfig{
			Transport: strings.ToLower(envStr("MAIL_TRANSPORT", "log")),
			From:      envStr("MAIL_FROM", "no-reply@viajes.local"),
			SMTPHost:  os.Getenv("SMTP_HOST"),
			SMTPPort:  l.intOr("SMTP_PORT", 587),
			SMTPUser:  os.Getenv("SMTP_USER"),
			SMTPPass:  os.Getenv("SMTP_PASS"),
		},
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword == "" {
		l.missing = append(l.missing, "ADMIN_PASSWORD")
	}

	switch cfg.Mail.Transport {
	case "log":
	case "smtp", "queue":
		if cfg.Mail.SMTPHost == "" {
			l.missing = append(l.missing, "SMTP_HOST")
		}
	default:
		l.invalid = append(l.invalid, "MAIL_TRANSPORT="+cfg.Mail.Transport)
	}

	if err := l.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loader accumulates missing and malformed variables while Load runs.
type loader struct {
	missing []string
	invalid []string
}

// must retrieves the value of a required environment variable.
func (l *loader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		l.missing = append(l.missing, key)
		return ""
	}
	return v
}

// intOr parses an optional integer, recording malformed values.
func (l *loader) intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		l.invalid = append(l.invalid, fmt.Sprintf("%s=%q", key, s))
		return def
	}
	return n
}

func (l *loader) err() error {
	var parts []string
	if len(l.missing) > 0 {
		parts = append(parts, "missing required env vars: "+strings.Join(l.missing, ", "))
	}
	if len(l.invalid) > 0 {
		parts = append(parts, "invalid env values: "+strings.Join(l.invalid, ", "))
	}
	if len(parts) == 0 {
		return nil
	}
	return fmt.Errorf("config: %s", strings.Join(parts, "; "))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
