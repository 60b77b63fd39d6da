// Package config loads the smoke-test configuration from environment
// variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds the run configuration loaded from environment variables.
type Config struct {
	TargetURL       string        // Fully-qualified URL of the deployed site (required)
	Timeout         time.Duration // Per-request timeout
	MaxRetries      int           // Retries per probe after the first attempt
	RateLimit       int           // Max requests per second; 0 disables pacing
	ReportPath      string        // Where the JSON report is written
	Env             string        // Environment (development/production)
	LogLevel        string        // Log level (debug, info, warn, error)
	SentryDSN       string        // Sentry DSN for error tracking
	SlackWebhookURL string        // Optional webhook for the run summary notification
}

// FromEnv builds a Config from the environment. A missing or malformed
// TARGET_URL is a fatal, unrecoverable condition: it fails here, before
// any probe runs.
func FromEnv() (*Config, error) {
	target, err := NormaliseTargetURL(os.Getenv("TARGET_URL"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		TargetURL:       target,
		Timeout:         time.Duration(getEnvInt("TIMEOUT_SECONDS", 300)) * time.Second,
		MaxRetries:      getEnvInt("MAX_RETRIES", 2),
		RateLimit:       getEnvInt("RATE_LIMIT", 0),
		ReportPath:      getEnvWithDefault("REPORT_PATH", "smoke-test-report.json"),
		Env:             getEnvWithDefault("APP_ENV", "development"),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
		SentryDSN:       os.Getenv("SENTRY_DSN"),
		SlackWebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
	}

	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return cfg, nil
}

// NormaliseTargetURL validates the target site URL and ensures it
// carries an explicit http or https scheme.
func NormaliseTargetURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("TARGET_URL is required")
	}

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("TARGET_URL %q is not a valid HTTP/HTTPS URL", raw)
	}

	return strings.TrimSuffix(raw, "/"), nil
}

// getEnvWithDefault retrieves an environment variable or returns a default value if not set
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns a default value if not set or invalid
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result int
	if _, err := fmt.Sscanf(value, "%d", &result); err != nil {
		log.Warn().
			Str("key", key).
			Str("value", value).
			Int("default", defaultValue).
			Msg("Invalid integer in environment variable, using default")
		return defaultValue
	}

	return result
}
