package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 0.9, cfg.Budget.Threshold)
	assert.Equal(t, 24*time.Hour, cfg.Auth.GetTokenExpiry())
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.GetRefreshExpiry())
	assert.False(t, cfg.Mail.Enabled())
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment = "staging"

[server]
port = 9000

[budget]
threshold = 0.8

[scheduler]
enabled = true
horizon_days = 14
`), 0o644))

	t.Setenv("PORT", "9100")
	t.Setenv("DB_AUTO_MIGRATE", "no")
	t.Setenv("SMTP_HOST", "smtp.example.com")

	cfg, err := LoadConfig(path, filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 9100, cfg.Server.Port, "env wins over file")
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 0.8, cfg.Budget.Threshold)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 14, cfg.Scheduler.HorizonDays)
	assert.Equal(t, "@daily", cfg.Scheduler.RecurringSpec, "unset keys keep defaults")
	assert.True(t, cfg.Mail.Enabled())
}

func TestLoadConfig_RejectsBadThreshold(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[budget]\nthreshold = 1.5\n"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budget.threshold")
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestAuthConfig_BadDurationFallsBack(t *testing.T) {
	c := AuthConfig{TokenExpiry: "soon", RefreshExpiry: "-1h"}
	assert.Equal(t, 24*time.Hour, c.GetTokenExpiry())
	assert.Equal(t, 30*24*time.Hour, c.GetRefreshExpiry())
}
