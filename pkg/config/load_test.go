package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	path := writeConfigFile(t, `
budget:
  window: "10s"
  bucket_width: "5s"
  backoff: "1s"
  allowed_budget: 100

sweep:
  schedule: "* * * * *"

journal:
  enabled: true
  path: "./test-journal.db"

server:
  listen_address: "0.0.0.0:9090"
  read_timeout: "30s"

logging:
  level: "debug"
  format: "text"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Budget.Window != 10*time.Second {
		t.Errorf("expected window 10s, got %v", cfg.Budget.Window)
	}
	if cfg.Budget.BucketWidth != 5*time.Second {
		t.Errorf("expected bucket width 5s, got %v", cfg.Budget.BucketWidth)
	}
	if cfg.Budget.AllowedBudget != 100 {
		t.Errorf("expected allowed budget 100, got %v", cfg.Budget.AllowedBudget)
	}
	if !cfg.Journal.Enabled {
		t.Error("expected journal to be enabled")
	}
	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("expected listen address 0.0.0.0:9090, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.Logging.Level)
	}

	// Unset fields get defaults.
	if cfg.Server.WriteTimeout != 10*time.Second {
		t.Errorf("expected default write timeout, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Journal.BusyTimeout != 5*time.Second {
		t.Errorf("expected default busy timeout, got %v", cfg.Journal.BusyTimeout)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "budget: [not a mapping")

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoad_RejectsNonPositiveBucketWidth(t *testing.T) {
	path := writeConfigFile(t, `
budget:
  window: "10s"
  bucket_width: "-5s"
  allowed_budget: 100
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error for non-positive bucket width")
	}
	if !strings.Contains(err.Error(), "bucket_width") {
		t.Errorf("expected bucket_width in error, got: %v", err)
	}
}

func TestLoad_RejectsWindowShorterThanBucket(t *testing.T) {
	path := writeConfigFile(t, `
budget:
  window: "1s"
  bucket_width: "5s"
  allowed_budget: 100
`)

	if _, err := Load(path); err == nil {
		t.Error("expected validation error for window shorter than bucket width")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
budget:
  window: "10s"
  bucket_width: "5s"
  allowed_budget: 100
`)

	t.Setenv("SPENDGATE_BUDGET_ALLOWED_BUDGET", "250.5")
	t.Setenv("SPENDGATE_BUDGET_WINDOW", "20s")
	t.Setenv("SPENDGATE_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Budget.AllowedBudget != 250.5 {
		t.Errorf("expected env override 250.5, got %v", cfg.Budget.AllowedBudget)
	}
	if cfg.Budget.Window != 20*time.Second {
		t.Errorf("expected env override 20s, got %v", cfg.Budget.Window)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected env override warn, got %q", cfg.Logging.Level)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := Validate(cfg); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}
	if cfg.Budget.Window != time.Hour {
		t.Errorf("expected default window 1h, got %v", cfg.Budget.Window)
	}
	if cfg.Budget.BucketWidth != time.Minute {
		t.Errorf("expected default bucket width 1m, got %v", cfg.Budget.BucketWidth)
	}
}

func TestValidate_LoggingValues(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "verbose"
	if err := Validate(cfg); err == nil {
		t.Error("expected error for unknown log level")
	}

	cfg = Default()
	cfg.Logging.Format = "xml"
	if err := Validate(cfg); err == nil {
		t.Error("expected error for unknown log format")
	}
}
