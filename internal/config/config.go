package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config application configuration
type Config struct {
	// Smartlead
	BearerToken          string        `env:"SMARTLEAD_BEARER_TOKEN"`
	SmartleadBase        string        `env:"SMARTLEAD_BASE" envDefault:"https://server.smartlead.ai"`
	PageSize             int           `env:"SMARTLEAD_PAGE_SIZE" envDefault:"5000"`
	ExportPageSize       int           `env:"SMARTLEAD_EXPORT_PAGE_SIZE" envDefault:"10000"`
	PageDelay            time.Duration `env:"SMARTLEAD_PAGE_DELAY" envDefault:"250ms"`
	RequestTimeout       time.Duration `env:"SMARTLEAD_REQUEST_TIMEOUT" envDefault:"30s"`
	ProbeTimeout         time.Duration `env:"SMARTLEAD_PROBE_TIMEOUT" envDefault:"12s"`
	MaxRateLimitRetries  int           `env:"SMARTLEAD_MAX_RATE_LIMIT_RETRIES" envDefault:"4"`
	RateLimitBackoffBase time.Duration `env:"SMARTLEAD_BACKOFF_BASE" envDefault:"1500ms"`

	// Database: SQLite path or postgres:// DSN
	DatabaseURL string `env:"DATABASE_URL" envDefault:"./data/disconnected.db"`

	// Notifications (optional)
	TelegramToken     string            `env:"TELEGRAM_BOT_TOKEN"`
	GroupRules        []string          `env:"GROUP_RULES"`        // e.g. VOLTIC=VO,ENDY=ENDY
	GroupDestinations map[string]string `env:"GROUP_DESTINATIONS"` // e.g. VOLTIC:-1001234/7,DEFAULT:-1005678
	DefaultGroup      string            `env:"DEFAULT_GROUP" envDefault:"DEFAULT"`
	NotifyMaxLines    int               `env:"NOTIFY_MAX_LINES" envDefault:"50"`

	RunTimeout time.Duration `env:"RUN_TIMEOUT" envDefault:"10m"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// TelegramEnabled returns true if a notification transport is configured
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return load(true)
}

// LoadLocal loads configuration for commands that only read the local store,
// so the Smartlead credential may be absent.
func LoadLocal() (*Config, error) {
	return load(false)
}

func load(requireCredential bool) (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(requireCredential); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate(requireCredential bool) error {
	c.BearerToken = strings.TrimSpace(c.BearerToken)
	if requireCredential && c.BearerToken == "" {
		return fmt.Errorf("SMARTLEAD_BEARER_TOKEN is required")
	}
	c.SmartleadBase = strings.TrimRight(c.SmartleadBase, "/")

	if c.PageSize <= 0 {
		return fmt.Errorf("SMARTLEAD_PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.ExportPageSize <= 0 {
		return fmt.Errorf("SMARTLEAD_EXPORT_PAGE_SIZE must be positive, got %d", c.ExportPageSize)
	}
	if c.MaxRateLimitRetries < 0 {
		return fmt.Errorf("SMARTLEAD_MAX_RATE_LIMIT_RETRIES must not be negative, got %d", c.MaxRateLimitRetries)
	}
	if c.NotifyMaxLines <= 0 {
		return fmt.Errorf("NOTIFY_MAX_LINES must be positive, got %d", c.NotifyMaxLines)
	}
	if c.DefaultGroup == "" {
		return fmt.Errorf("DEFAULT_GROUP must not be empty")
	}
	return nil
}
