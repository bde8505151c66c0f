// Package config loads runtime settings from .env and the process environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultSessionSecret = "secret_key_change_me"

type Config struct {
	Env          string `mapstructure:"APP_ENV"`
	Port         string `mapstructure:"PORT"`
	DBDriver     string `mapstructure:"DB_DRIVER"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	SessionName  string `mapstructure:"SESSION_NAME"`
	SessionKey   string `mapstructure:"SESSION_SECRET"`
	RedisURL     string `mapstructure:"REDIS_URL"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`
	LogJSON      bool   `mapstructure:"LOG_JSON"`
	Timezone     string `mapstructure:"TIMEZONE"`
	TemplatesDir string `mapstructure:"TEMPLATES_DIR"`
	StaticDir    string `mapstructure:"STATIC_DIR"`
	BaseURL      string `mapstructure:"BASE_URL"`

	FriendRequestLimit         int `mapstructure:"FRIEND_REQUEST_LIMIT"`
	FriendRequestWindowSeconds int `mapstructure:"FRIEND_REQUEST_WINDOW_SECONDS"`
	LevelCacheTTLSeconds       int `mapstructure:"LEVEL_CACHE_TTL_SECONDS"`

	SMTPHost string `mapstructure:"SMTP_HOST"`
	SMTPPort string `mapstructure:"SMTP_PORT"`
	SMTPUser string `mapstructure:"SMTP_USER"`
	SMTPPass string `mapstructure:"SMTP_PASS"`
	SMTPFrom string `mapstructure:"SMTP_FROM"`
}

// Load reads .env when present and then the environment. Environment
// variables win over .env entries because godotenv never overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=habitlink port=5432 sslmode=disable")
	v.SetDefault("SESSION_NAME", "habitlink_session")
	v.SetDefault("SESSION_SECRET", defaultSessionSecret)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", false)
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("TEMPLATES_DIR", "./web/templates")
	v.SetDefault("STATIC_DIR", "./web/static")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("FRIEND_REQUEST_LIMIT", 20)
	v.SetDefault("FRIEND_REQUEST_WINDOW_SECONDS", 3600)
	v.SetDefault("LEVEL_CACHE_TTL_SECONDS", 600)
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", "")
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASS", "")
	v.SetDefault("SMTP_FROM", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.IsProduction() && (c.SessionKey == defaultSessionSecret || len(c.SessionKey) < 32) {
		return errors.New("SESSION_SECRET must be set to at least 32 characters in production")
	}
	if c.FriendRequestLimit <= 0 || c.FriendRequestWindowSeconds <= 0 {
		return errors.New("friend request rate limit must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	return nil
}

// Location is the zone used to bucket activity into calendar days.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c *Config) FriendRequestWindow() time.Duration {
	return time.Duration(c.FriendRequestWindowSeconds) * time.Second
}

func (c *Config) LevelCacheTTL() time.Duration {
	return time.Duration(c.LevelCacheTTLSeconds) * time.Second
}

func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPPort != "" && c.SMTPUser != "" && c.SMTPPass != "" && c.SMTPFrom != ""
}
