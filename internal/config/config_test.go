package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Sources) == 0 {
		t.Fatal("default config should ship sources")
	}
	if len(cfg.EnabledSources()) == 0 {
		t.Fatal("default config should ship enabled sources")
	}

	// First run leaves a config file behind for the user to edit.
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config written to %s: %v", path, err)
	}
}

func TestLoadCustomConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `refresh_interval: 30m
retention: 14d
sources:
  - name: My Feed
    type: rss
    url: https://example.com/rss
    enabled: true
  - name: Disabled Feed
    type: rss
    url: https://example.com/other
    enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RefreshDuration() != 30*time.Minute {
		t.Errorf("RefreshDuration = %v, want 30m", cfg.RefreshDuration())
	}
	if cfg.RetentionDuration() != 14*24*time.Hour {
		t.Errorf("RetentionDuration = %v, want 336h", cfg.RetentionDuration())
	}

	enabled := cfg.EnabledSources()
	if len(enabled) != 1 || enabled[0].Name != "My Feed" {
		t.Errorf("EnabledSources = %v, want only My Feed", enabled)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing name", "sources:\n  - type: rss\n    url: https://example.com/rss\n"},
		{"missing url", "sources:\n  - name: x\n    type: rss\n"},
		{"bad scheme", "sources:\n  - name: x\n    type: rss\n    url: ftp://example.com/rss\n"},
		{"bad type", "sources:\n  - name: x\n    type: scrape\n    url: https://example.com\n"},
		{"not yaml", "{{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDurationDefaults(t *testing.T) {
	cfg := &Config{RefreshInterval: "bogus", Retention: "bogus"}
	if cfg.RefreshDuration() != 15*time.Minute {
		t.Errorf("unparseable refresh interval should default to 15m, got %v", cfg.RefreshDuration())
	}
	if cfg.RetentionDuration() != 7*24*time.Hour {
		t.Errorf("unparseable retention should default to 7d, got %v", cfg.RetentionDuration())
	}

	empty := &Config{}
	if empty.RetentionDuration() != 7*24*time.Hour {
		t.Errorf("empty retention should default to 7d, got %v", empty.RetentionDuration())
	}

	hours := &Config{Retention: "48h"}
	if hours.RetentionDuration() != 48*time.Hour {
		t.Errorf("plain duration retention should parse, got %v", hours.RetentionDuration())
	}
}
