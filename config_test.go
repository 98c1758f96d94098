package main

import (
	"os"
	"path/filepath"
	"testing"
)

// ============================================================================
// Config Tests
// ============================================================================

func TestConfigDefaults(t *testing.T) {
	cfg := loadConfig(filepath.Join(t.TempDir(), "missing.json"))

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr)
	}
	if cfg.NightSeconds != 60 || cfg.DaySeconds != 90 {
		t.Errorf("phase durations = %d/%d, want 60/90", cfg.NightSeconds, cfg.DaySeconds)
	}
	if cfg.RoomIdleMinutes != 30 {
		t.Errorf("RoomIdleMinutes = %d, want 30", cfg.RoomIdleMinutes)
	}
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("NIGHT_SECONDS", "15")
	t.Setenv("LOG_WS", "true")
	t.Setenv("NARRATOR_PROVIDER", "ollama")

	cfg := loadConfig(filepath.Join(t.TempDir(), "missing.json"))

	if cfg.Addr != ":9999" {
		t.Errorf("Addr = %q, want :9999", cfg.Addr)
	}
	if cfg.NightSeconds != 15 {
		t.Errorf("NightSeconds = %d, want 15", cfg.NightSeconds)
	}
	if !cfg.LogWS {
		t.Error("LOG_WS=true not applied")
	}
	if cfg.NarratorProvider != "ollama" {
		t.Errorf("NarratorProvider = %q, want ollama", cfg.NarratorProvider)
	}
}

func TestConfigJSONOverridesEnv(t *testing.T) {
	t.Setenv("DAY_SECONDS", "45")

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"day_seconds": 120, "dev": true}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := loadConfig(path)

	// Present in the file: file wins over env.
	if cfg.DaySeconds != 120 {
		t.Errorf("DaySeconds = %d, want 120 (file over env)", cfg.DaySeconds)
	}
	if !cfg.Dev {
		t.Error("dev from file not applied")
	}
	// Absent from the file: defaults survive.
	if cfg.NightSeconds != 60 {
		t.Errorf("NightSeconds = %d, want default 60", cfg.NightSeconds)
	}
}
