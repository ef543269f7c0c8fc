package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all runtime configuration.
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Database    DatabaseConfig  `toml:"database"`
	Auth        AuthConfig      `toml:"auth"`
	Logging     LoggingConfig   `toml:"logging"`
	Uploads     UploadsConfig   `toml:"uploads"`
	Budget      BudgetConfig    `toml:"budget"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Mail        MailConfig      `toml:"mail"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr is the listen address passed to gin.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	DSN         string `toml:"dsn"`
	AutoMigrate bool   `toml:"auto_migrate"`
}

type AuthConfig struct {
	JWTSecret          string `toml:"jwt_secret"`
	TokenExpiry        string `toml:"token_expiry"`
	RefreshExpiry      string `toml:"refresh_expiry"`
	LoginRatePerMinute int    `toml:"login_rate_per_minute"`
}

// GetTokenExpiry falls back to 24h on a malformed value.
func (c AuthConfig) GetTokenExpiry() time.Duration {
	return parseDuration(c.TokenExpiry, 24*time.Hour)
}

// GetRefreshExpiry falls back to 30 days on a malformed value.
func (c AuthConfig) GetRefreshExpiry() time.Duration {
	return parseDuration(c.RefreshExpiry, 30*24*time.Hour)
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type UploadsConfig struct {
	BaseDir   string `toml:"base_dir"`
	MaxSizeMB int    `toml:"max_size_mb"`
}

// MaxBytes is the upload limit in bytes.
func (c UploadsConfig) MaxBytes() int64 {
	return int64(c.MaxSizeMB) * 1024 * 1024
}

type BudgetConfig struct {
	Threshold float64 `toml:"threshold"`
}

// SchedulerConfig drives the optional in-process cron jobs.
type SchedulerConfig struct {
	Enabled               bool   `toml:"enabled"`
	RecurringSpec         string `toml:"recurring_spec"`
	ChecksSpec            string `toml:"checks_spec"`
	SnapshotSpec          string `toml:"snapshot_spec"`
	CleanupSpec           string `toml:"cleanup_spec"`
	HorizonDays           int    `toml:"horizon_days"`
	ReminderDays          int    `toml:"reminder_days"`
	ActivityRetentionDays int    `toml:"activity_retention_days"`
}

type MailConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
}

// Enabled reports whether an SMTP relay is configured.
func (c MailConfig) Enabled() bool {
	return c.Host != ""
}

// NewDefaultConfig returns development defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server:      ServerConfig{Host: "0.0.0.0", Port: 8081},
		Database:    DatabaseConfig{AutoMigrate: true},
		Auth: AuthConfig{
			JWTSecret:          "dev-insecure-secret-change",
			TokenExpiry:        "24h",
			RefreshExpiry:      "720h",
			LoginRatePerMinute: 10,
		},
		Logging: LoggingConfig{Level: "info"},
		Uploads: UploadsConfig{BaseDir: "uploads", MaxSizeMB: 10},
		Budget:  BudgetConfig{Threshold: 0.9},
		Scheduler: SchedulerConfig{
			RecurringSpec:         "@daily",
			ChecksSpec:            "0 7 * * *",
			SnapshotSpec:          "@daily",
			CleanupSpec:           "30 3 * * *",
			HorizonDays:           30,
			ReminderDays:          3,
			ActivityRetentionDays: 365,
		},
		Mail: MailConfig{Port: 587, From: "no-reply@localhost"},
	}
}

// LoadConfig merges the given TOML files in order, skipping missing ones, then applies env overrides.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(config)
	if config.Budget.Threshold <= 0 || config.Budget.Threshold > 1 {
		return nil, fmt.Errorf("budget.threshold must be in (0, 1], got %v", config.Budget.Threshold)
	}
	return config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("APP_ENV"); v != "" {
		config.Environment = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			config.Server.Port = p
		}
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		config.Database.DSN = v
	}
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		config.Database.AutoMigrate = parseBool(v, config.Database.AutoMigrate)
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("UPLOAD_BASE"); v != "" {
		config.Uploads.BaseDir = v
	}
	if v := os.Getenv("SCHEDULER_ENABLED"); v != "" {
		config.Scheduler.Enabled = parseBool(v, config.Scheduler.Enabled)
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		config.Mail.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			config.Mail.Port = p
		}
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		config.Mail.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		config.Mail.Password = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		config.Mail.From = v
	}
}

// IsProduction reports whether the environment is production.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

func parseBool(v string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

func parseDuration(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
