package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giladondon/xo-assistance/internal/xoerr"
)

func validConfig() *Config {
	return &Config{
		TelegramToken:         "tg-token",
		OpenAIKey:             "oa-key",
		GoogleCredentialsFile: "credentials.json",
		PollInterval:          time.Minute,
		PollWarmup:            10 * time.Second,
		Timezone:              "Asia/Jerusalem",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing telegram token",
			mutate:  func(c *Config) { c.TelegramToken = "" },
			wantErr: "TELEGRAM_TOKEN",
		},
		{
			name:    "missing openai key",
			mutate:  func(c *Config) { c.OpenAIKey = "" },
			wantErr: "OPENAI_API_KEY",
		},
		{
			name:    "missing credentials file",
			mutate:  func(c *Config) { c.GoogleCredentialsFile = "" },
			wantErr: "GOOGLE_CREDENTIALS_FILE",
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.PollInterval = 0 },
			wantErr: "POLL_INTERVAL",
		},
		{
			name:    "negative warmup",
			mutate:  func(c *Config) { c.PollWarmup = -time.Second },
			wantErr: "POLL_WARMUP",
		},
		{
			name:    "bogus timezone",
			mutate:  func(c *Config) { c.Timezone = "Not/AZone" },
			wantErr: "DISPLAY_TIMEZONE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var ce *xoerr.ConfigError
			assert.ErrorAs(t, err, &ce, "validation failures must be ConfigErrors")
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "tg")
	t.Setenv("OPENAI_API_KEY", "oa")
	t.Setenv("POLL_INTERVAL", "30s")
	t.Setenv("POLL_WARMUP", "5")
	t.Setenv("AGENDA_CRON", "0 7 * * *")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tg", cfg.TelegramToken)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.PollWarmup, "bare integers are seconds")
	assert.Equal(t, "0 7 * * *", cfg.AgendaCron)
	assert.Equal(t, "tokens", cfg.StateDir)
	assert.Equal(t, "Asia/Jerusalem", cfg.Timezone)
}

func TestLocation(t *testing.T) {
	cfg := validConfig()
	loc := cfg.Location()
	require.NotNil(t, loc)
	assert.Equal(t, "Asia/Jerusalem", loc.String())
}
