package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file, applies defaults and
// SPENDGATE_* environment overrides, and validates the result.
// Environment variables always take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied, without
// reading any file. Useful for tests and for running without a config file.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// applyEnvOverrides applies SPENDGATE_SECTION_FIELD environment variables.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("SPENDGATE_BUDGET_WINDOW"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Budget.Window = d
		}
	}
	if val := os.Getenv("SPENDGATE_BUDGET_BUCKET_WIDTH"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Budget.BucketWidth = d
		}
	}
	if val := os.Getenv("SPENDGATE_BUDGET_BACKOFF"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Budget.Backoff = d
		}
	}
	if val := os.Getenv("SPENDGATE_BUDGET_ALLOWED_BUDGET"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Budget.AllowedBudget = f
		}
	}

	if val := os.Getenv("SPENDGATE_SWEEP_SCHEDULE"); val != "" {
		cfg.Sweep.Schedule = val
	}

	if val := os.Getenv("SPENDGATE_JOURNAL_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Journal.Enabled = b
		}
	}
	if val := os.Getenv("SPENDGATE_JOURNAL_PATH"); val != "" {
		cfg.Journal.Path = val
	}

	if val := os.Getenv("SPENDGATE_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}

	if val := os.Getenv("SPENDGATE_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("SPENDGATE_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}
