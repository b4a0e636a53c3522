package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/typing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ProviderForm, cfg.Contact.Provider)
	assert.Equal(t, "https://formspree.io/f/xovlvoze", cfg.Contact.Endpoint)
	assert.Equal(t, 15*time.Second, cfg.Contact.Timeout)
	assert.Equal(t, "light", cfg.Theme.Default)
	assert.Equal(t, typing.DefaultTiming(), cfg.Typing.Timing())
	assert.True(t, cfg.Tracking.Enabled)
	assert.Equal(t, "@daily", cfg.Tracking.CleanupSchedule)
	assert.False(t, cfg.Admin.Enabled())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
log:
  format: json
theme:
  default: dark
typing:
  holdDelay: 3s
contact:
  provider: smtp
  smtp:
    user: me@example.com
`), 0o600))

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "dark", cfg.Theme.Default)
	assert.Equal(t, 3*time.Second, cfg.Typing.HoldDelay)
	assert.Equal(t, typing.TypeInterval, cfg.Typing.TypeInterval)
	assert.Equal(t, ProviderSMTP, cfg.Contact.Provider)
	assert.Equal(t, "me@example.com", cfg.Contact.SMTP.User)
	assert.Equal(t, "587", cfg.Contact.SMTP.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORTFOLIO_LOG_DEBUG", "true")
	t.Setenv("PORTFOLIO_TYPING_DELETEINTERVAL", "50ms")
	t.Setenv("PORT", "3000")
	t.Setenv("SMTP_USER", "legacy@example.com")
	t.Setenv("ADMIN_PASSWORD", "hunter2")

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.True(t, cfg.Log.Debug)
	assert.Equal(t, 50*time.Millisecond, cfg.Typing.DeleteInterval)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "legacy@example.com", cfg.Contact.SMTP.User)
	assert.True(t, cfg.Admin.Enabled())
}

func TestLoad_PrefixedEnvWinsOverLegacy(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("PORTFOLIO_SERVER_PORT", "4000")

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "Port", mutate: func(c *Config) { c.Server.Port = 0 }, want: "server.port"},
		{name: "LogFormat", mutate: func(c *Config) { c.Log.Format = "xml" }, want: "log.format"},
		{name: "Provider", mutate: func(c *Config) { c.Contact.Provider = "pigeon" }, want: "contact.provider"},
		{name: "Endpoint", mutate: func(c *Config) { c.Contact.Endpoint = "" }, want: "contact.endpoint"},
		{name: "Theme", mutate: func(c *Config) { c.Theme.Default = "sepia" }, want: "theme.default"},
		{name: "Typing", mutate: func(c *Config) { c.Typing.HoldDelay = 0 }, want: "timing must be positive"},
		{name: "Retention", mutate: func(c *Config) { c.Tracking.Retention = -time.Hour }, want: "tracking.retention"},
		{name: "Cron", mutate: func(c *Config) { c.Tracking.CleanupSchedule = "whenever" }, want: "tracking.cleanupSchedule"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(NewViper(), "")
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("TrackingDisabledSkipsSchedule", func(t *testing.T) {
		cfg, err := Load(NewViper(), "")
		require.NoError(t, err)
		cfg.Tracking.Enabled = false
		cfg.Tracking.CleanupSchedule = ""
		assert.NoError(t, cfg.Validate())
	})
}
