package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Calendar
	DayBoundaryOffset time.Duration // Subtracted from UTC instants to approximate the local day (default: 4h)
	UpcomingDays      int           // Size of the default "upcoming" window in days (default: 7)

	// Catalog
	CatalogCacheTTL time.Duration

	// Announcements
	AnnounceWebhookURL string // Empty disables announcements
	AnnounceRatePerSec int
	AnnounceMaxRetries int

	// Scheduler
	OrphanSweepSchedule string // Cron spec for the orphaned schedule sweep

	// Server
	ServerPort string

	// Tracing
	TracingEnabled bool

	// Paths
	DatabaseFile string // $CONFIG_DIR/watchweek.db

	// Logging
	LogLevel      string
	LogFormat     string // "console" or "json"
	LogFile       string // Optional rotated JSON copy of the log
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = v.ReadInConfig()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DAY_BOUNDARY_OFFSET", "4h")
	v.SetDefault("UPCOMING_DAYS", 7)
	v.SetDefault("CATALOG_CACHE_TTL", "10m")
	v.SetDefault("ANNOUNCE_RATE_PER_SEC", 1)
	v.SetDefault("ANNOUNCE_MAX_RETRIES", 3)
	v.SetDefault("ORPHAN_SWEEP_SCHEDULE", "0 * * * *")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_MAX_SIZE_MB", 10)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)
}

func fromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	configDir := v.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "watchweek")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		// Calendar
		DayBoundaryOffset: v.GetDuration("DAY_BOUNDARY_OFFSET"),
		UpcomingDays:      v.GetInt("UPCOMING_DAYS"),

		// Catalog
		CatalogCacheTTL: v.GetDuration("CATALOG_CACHE_TTL"),

		// Announcements
		AnnounceWebhookURL: v.GetString("ANNOUNCE_WEBHOOK_URL"),
		AnnounceRatePerSec: v.GetInt("ANNOUNCE_RATE_PER_SEC"),
		AnnounceMaxRetries: v.GetInt("ANNOUNCE_MAX_RETRIES"),

		// Scheduler
		OrphanSweepSchedule: v.GetString("ORPHAN_SWEEP_SCHEDULE"),

		// Server
		ServerPort: v.GetString("SERVER_PORT"),

		// Tracing
		TracingEnabled: v.GetBool("TRACING_ENABLED"),

		// Paths
		DatabaseFile: filepath.Join(configDir, "watchweek.db"),

		// Logging
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFormat:     v.GetString("LOG_FORMAT"),
		LogFile:       v.GetString("LOG_FILE"),
		LogMaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
		LogMaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
		LogMaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.DayBoundaryOffset < 0 || c.DayBoundaryOffset >= 24*time.Hour {
		return fmt.Errorf("DAY_BOUNDARY_OFFSET must be within [0h, 24h), got %s", c.DayBoundaryOffset)
	}
	if c.UpcomingDays < 1 || c.UpcomingDays > 62 {
		return fmt.Errorf("UPCOMING_DAYS must be between 1 and 62, got %d", c.UpcomingDays)
	}
	if c.CatalogCacheTTL <= 0 {
		return fmt.Errorf("CATALOG_CACHE_TTL must be positive, got %s", c.CatalogCacheTTL)
	}
	if c.AnnounceRatePerSec < 1 {
		return fmt.Errorf("ANNOUNCE_RATE_PER_SEC must be at least 1, got %d", c.AnnounceRatePerSec)
	}
	if c.AnnounceMaxRetries < 0 {
		return fmt.Errorf("ANNOUNCE_MAX_RETRIES cannot be negative, got %d", c.AnnounceMaxRetries)
	}
	if _, err := cron.ParseStandard(c.OrphanSweepSchedule); err != nil {
		return fmt.Errorf("ORPHAN_SWEEP_SCHEDULE is not a valid cron spec: %w", err)
	}
	port, err := strconv.Atoi(c.ServerPort)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("SERVER_PORT must be a valid port, got %q", c.ServerPort)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	if c.LogMaxSizeMB < 1 || c.LogMaxBackups < 0 || c.LogMaxAgeDays < 0 {
		return fmt.Errorf("LOG_MAX_SIZE_MB must be positive and LOG_MAX_BACKUPS, LOG_MAX_AGE_DAYS not negative")
	}
	return nil
}
