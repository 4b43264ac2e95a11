package config

import (
	"fmt"
	"time"
)

// Config is the root spendgate configuration.
type Config struct {
	// Budget configures the rolling window budget tracking.
	Budget BudgetConfig `yaml:"budget"`

	// Sweep configures stale tracker eviction.
	Sweep SweepConfig `yaml:"sweep"`

	// Journal configures the spend event audit journal.
	Journal JournalConfig `yaml:"journal"`

	// Server configures the admission HTTP API.
	Server ServerConfig `yaml:"server"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`
}

// BudgetConfig contains the budgeting and bucketing parameters shared by
// every tracker.
type BudgetConfig struct {
	// Window is the rolling duration over which spend is summed.
	Window time.Duration `yaml:"window"`

	// BucketWidth is the granularity of the time bucket grid.
	BucketWidth time.Duration `yaml:"bucket_width"`

	// Backoff is the minimum dwell time after an over/under budget flip.
	Backoff time.Duration `yaml:"backoff"`

	// AllowedBudget is the spend ceiling for the window.
	AllowedBudget float64 `yaml:"allowed_budget"`

	// NumBuckets optionally overrides the derived bucket count
	// (window / bucket_width, rounded up). Zero means derive.
	NumBuckets int `yaml:"num_buckets"`
}

// SweepConfig contains stale tracker eviction settings.
type SweepConfig struct {
	// Schedule is a standard cron expression. Empty disables sweeping.
	Schedule string `yaml:"schedule"`
}

// JournalConfig contains audit journal settings.
type JournalConfig struct {
	// Enabled turns the journal on.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	Path string `yaml:"path"`

	// BusyTimeout is the duration to wait when the database is locked.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// ListenAddress is the host:port to bind.
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	Format string `yaml:"format"`
}

// ApplyDefaults fills in default values for unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Budget.Window == 0 {
		cfg.Budget.Window = time.Hour
	}
	if cfg.Budget.BucketWidth == 0 {
		cfg.Budget.BucketWidth = time.Minute
	}
	if cfg.Budget.Backoff == 0 {
		cfg.Budget.Backoff = 30 * time.Second
	}

	if cfg.Sweep.Schedule == "" {
		cfg.Sweep.Schedule = "*/5 * * * *"
	}

	if cfg.Journal.Path == "" {
		cfg.Journal.Path = "data/spendgate.db"
	}
	if cfg.Journal.BusyTimeout == 0 {
		cfg.Journal.BusyTimeout = 5 * time.Second
	}

	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = "127.0.0.1:8484"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks the configuration for values that would be degenerate at
// runtime.
func Validate(cfg *Config) error {
	if cfg.Budget.BucketWidth <= 0 {
		return fmt.Errorf("budget.bucket_width must be positive, got %v", cfg.Budget.BucketWidth)
	}
	if cfg.Budget.Window <= 0 {
		return fmt.Errorf("budget.window must be positive, got %v", cfg.Budget.Window)
	}
	if cfg.Budget.Window < cfg.Budget.BucketWidth {
		return fmt.Errorf("budget.window (%v) must not be shorter than budget.bucket_width (%v)",
			cfg.Budget.Window, cfg.Budget.BucketWidth)
	}
	if cfg.Budget.Backoff < 0 {
		return fmt.Errorf("budget.backoff must not be negative, got %v", cfg.Budget.Backoff)
	}
	if cfg.Budget.AllowedBudget < 0 {
		return fmt.Errorf("budget.allowed_budget must not be negative, got %v", cfg.Budget.AllowedBudget)
	}
	if cfg.Budget.NumBuckets < 0 {
		return fmt.Errorf("budget.num_buckets must not be negative, got %d", cfg.Budget.NumBuckets)
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", cfg.Logging.Level)
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text; got %q", cfg.Logging.Format)
	}

	if cfg.Server.ListenAddress == "" {
		return fmt.Errorf("server.listen_address must not be empty")
	}

	return nil
}
