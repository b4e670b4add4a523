package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBPath != "galaxy.db" {
		t.Fatalf("expected default db path galaxy.db, got %q", cfg.DBPath)
	}
	if cfg.LogFile != "galaxygame_debug.log" {
		t.Fatalf("expected default log file, got %q", cfg.LogFile)
	}
	if cfg.Seed != 0 {
		t.Fatalf("expected zero seed by default, got %d", cfg.Seed)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GALAXY_DB_PATH", "/tmp/other.db")
	t.Setenv("GALAXY_LOCATION_COUNT", "75")
	t.Setenv("GALAXY_SEED", "9001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBPath != "/tmp/other.db" {
		t.Fatalf("expected overridden db path, got %q", cfg.DBPath)
	}
	if cfg.LocationCount != 75 {
		t.Fatalf("expected location count 75, got %d", cfg.LocationCount)
	}
	if cfg.Seed != 9001 {
		t.Fatalf("expected seed 9001, got %d", cfg.Seed)
	}
}

func TestLoadError(t *testing.T) {
	t.Setenv("GALAXY_LOCATION_COUNT", "not-an-int")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
