// Package config provides application configuration loaded from the
// environment. A .env file in the working directory is honored when the
// serve command loads it via godotenv before calling Load.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/giladondon/xo-assistance/internal/xoerr"
)

// Config holds all application configuration.
type Config struct {
	// Telegram bot token used for long polling and outbound messages.
	TelegramToken string

	// OpenAI API key for the intent parser and schedule summaries.
	OpenAIKey string
	// Model name for intent extraction, e.g. "gpt-4o".
	OpenAIModel string

	// Path to the Google OAuth client secrets JSON (web or installed).
	GoogleCredentialsFile string
	// Redirect URI override. When empty, the first redirect URI from the
	// client secrets file is used. One of the two must yield a value.
	GoogleRedirectURI string

	// Directory holding per-user token and calendar preference records.
	// Created lazily on first write.
	StateDir string

	// Label directory backing store. When ContactsDB is set the SQLite
	// store is used, otherwise the CSV file at ContactsFile.
	ContactsFile string
	ContactsDB   string

	// Optional notification template overrides (JSON). Empty means the
	// embedded defaults.
	TemplatesFile string

	// Optional prompt file overrides. Empty means the embedded defaults.
	IntentPromptFile    string
	SummarizePromptFile string

	// Change watcher timing.
	PollInterval time.Duration
	PollWarmup   time.Duration

	// Display time zone for notification rendering.
	Timezone string

	// Optional cron spec for the morning agenda push, e.g. "0 7 * * *".
	// Empty disables the job.
	AgendaCron string

	// Optional listen address for the Prometheus /metrics endpoint.
	// Empty disables the metrics server.
	MetricsAddr string

	// Log level: debug, info, warn, error.
	LogLevel string
}

// Load reads configuration from environment variables and validates the
// required fields. Validation failures are ConfigErrors and fatal at
// startup.
func Load() (*Config, error) {
	cfg := &Config{
		TelegramToken:         os.Getenv("TELEGRAM_TOKEN"),
		OpenAIKey:             os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4o"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		GoogleRedirectURI:     os.Getenv("GOOGLE_REDIRECT_URI"),
		StateDir:              getEnv("STATE_DIR", "tokens"),
		ContactsFile:          getEnv("CONTACTS_FILE", "tag_contacts.csv"),
		ContactsDB:            os.Getenv("CONTACTS_DB"),
		TemplatesFile:         os.Getenv("TEMPLATES_FILE"),
		IntentPromptFile:      os.Getenv("INTENT_PROMPT_FILE"),
		SummarizePromptFile:   os.Getenv("SUMMARIZE_PROMPT_FILE"),
		PollInterval:          getEnvDuration("POLL_INTERVAL", time.Minute),
		PollWarmup:            getEnvDuration("POLL_WARMUP", 10*time.Second),
		Timezone:              getEnv("DISPLAY_TIMEZONE", "Asia/Jerusalem"),
		AgendaCron:            os.Getenv("AGENDA_CRON"),
		MetricsAddr:           os.Getenv("METRICS_ADDR"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are usable.
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return xoerr.Config("TELEGRAM_TOKEN", "must be set")
	}
	if c.OpenAIKey == "" {
		return xoerr.Config("OPENAI_API_KEY", "must be set")
	}
	if c.GoogleCredentialsFile == "" {
		return xoerr.Config("GOOGLE_CREDENTIALS_FILE", "must be set")
	}
	if c.PollInterval <= 0 {
		return xoerr.Config("POLL_INTERVAL", "must be a positive duration")
	}
	if c.PollWarmup < 0 {
		return xoerr.Config("POLL_WARMUP", "must not be negative")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return xoerr.Config("DISPLAY_TIMEZONE", "unknown time zone "+c.Timezone)
	}
	return nil
}

// Location returns the configured display time zone. Validate guarantees
// it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// Bare integers are treated as seconds, matching the original
	// interval configuration.
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
