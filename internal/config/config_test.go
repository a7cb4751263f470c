package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DayBoundaryOffset != 4*time.Hour {
		t.Errorf("Expected 4h offset, got %s", cfg.DayBoundaryOffset)
	}
	if cfg.UpcomingDays != 7 {
		t.Errorf("Expected 7 upcoming days, got %d", cfg.UpcomingDays)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.ServerPort)
	}
	if cfg.DatabaseFile != filepath.Join(dir, "watchweek.db") {
		t.Errorf("Unexpected database file %s", cfg.DatabaseFile)
	}
	if cfg.AnnounceWebhookURL != "" {
		t.Errorf("Announcements should be disabled by default")
	}
	if cfg.LogFile != "" || cfg.LogMaxSizeMB != 10 {
		t.Errorf("Expected no log file and 10MB rotation, got %q/%d", cfg.LogFile, cfg.LogMaxSizeMB)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("DAY_BOUNDARY_OFFSET", "90m")
	t.Setenv("UPCOMING_DAYS", "14")
	t.Setenv("ANNOUNCE_WEBHOOK_URL", "https://example.com/hook")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DayBoundaryOffset != 90*time.Minute {
		t.Errorf("Expected 90m offset, got %s", cfg.DayBoundaryOffset)
	}
	if cfg.UpcomingDays != 14 {
		t.Errorf("Expected 14 upcoming days, got %d", cfg.UpcomingDays)
	}
	if cfg.AnnounceWebhookURL != "https://example.com/hook" {
		t.Errorf("Unexpected webhook %q", cfg.AnnounceWebhookURL)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"DAY_BOUNDARY_OFFSET", "25h", "DAY_BOUNDARY_OFFSET"},
		{"DAY_BOUNDARY_OFFSET", "-1h", "DAY_BOUNDARY_OFFSET"},
		{"UPCOMING_DAYS", "0", "UPCOMING_DAYS"},
		{"SERVER_PORT", "http", "SERVER_PORT"},
		{"LOG_FORMAT", "xml", "LOG_FORMAT"},
		{"LOG_MAX_SIZE_MB", "0", "LOG_MAX_SIZE_MB"},
		{"ORPHAN_SWEEP_SCHEDULE", "every tuesday", "ORPHAN_SWEEP_SCHEDULE"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv("CONFIG_DIR", t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}
