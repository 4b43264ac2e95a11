package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"spendgate-hq/spendgate/pkg/admission"
	"spendgate-hq/spendgate/pkg/budget"
	"spendgate-hq/spendgate/pkg/config"
	"spendgate-hq/spendgate/pkg/journal"
	"spendgate-hq/spendgate/pkg/server"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	noWatch       bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the admission server",
	Long: `Start the admission server with the specified configuration.

The server accepts spend events over HTTP, tracks per-entity spend over
a rolling window, and reports on each event whether the entity exceeds
its allowed budget.

Examples:
  # Start with default config
  spendgate run

  # Start with custom config
  spendgate run --config /etc/spendgate/config.yaml

  # Override listen address
  spendgate run --listen 0.0.0.0:8484`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.noWatch, "no-watch", false, "disable config file watching")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	// The level var lets config reloads adjust verbosity without a
	// handler swap.
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLogLevel(cfg.Logging.Level))

	opts := &slog.HandlerOptions{Level: levelVar}
	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	printBanner(cfg)

	budgetCfg, err := buildBudgetConfig(cfg.Budget)
	if err != nil {
		return fmt.Errorf("invalid budget config: %w", err)
	}

	promReg := prometheus.NewRegistry()

	registryCfg := admission.RegistryConfig{
		Budget:  budgetCfg,
		Metrics: admission.NewMetrics(promReg),
	}

	// Open the audit journal if enabled
	if cfg.Journal.Enabled {
		slog.Info("opening spend journal", "path", cfg.Journal.Path)

		j, err := journal.Open(&journal.Config{
			Path:        cfg.Journal.Path,
			BusyTimeout: cfg.Journal.BusyTimeout,
			WALMode:     true,
		})
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer j.Close()
		registryCfg.Journal = j

		fmt.Println("✓ Spend journal opened")
	}

	registry, err := admission.NewRegistry(registryCfg)
	if err != nil {
		return fmt.Errorf("failed to create registry: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start scheduled eviction of idle trackers
	sweeper := admission.NewSweeper(registry, cfg.Sweep.Schedule)
	if err := sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start sweeper: %w", err)
	}
	defer sweeper.Stop()

	if next := sweeper.NextRun(); next != nil {
		fmt.Printf("✓ Sweeper scheduled (next run %s)\n", next.Format(time.RFC3339))
	}

	// Watch the config file for changes. Budget parameters are frozen
	// into the live trackers, so those changes take effect on restart;
	// logging verbosity applies immediately.
	if !runFlags.noWatch {
		watcher, err := config.NewWatcher(cfgFile, time.Second)
		if err != nil {
			slog.Warn("config watching unavailable", "error", err)
		} else {
			go func() {
				_ = watcher.Watch(ctx, func(updated *config.Config) {
					levelVar.Set(parseLogLevel(updated.Logging.Level))
					slog.Info("config reloaded",
						"log_level", updated.Logging.Level,
						"note", "budget changes apply on restart",
					)
				})
			}()
			defer watcher.Stop()
			fmt.Println("✓ Config watcher started")
		}
	}

	srv := server.New(cfg.Server, registry, promReg)

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Server.ListenAddress)
	fmt.Println("\nPress Ctrl+C to stop")

	// Blocks until signal, context cancellation, or listener failure
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// buildBudgetConfig converts file configuration into the immutable
// tracker config.
func buildBudgetConfig(bc config.BudgetConfig) (*budget.Config, error) {
	cfg, err := budget.NewConfig(bc.Window, bc.BucketWidth, bc.Backoff, bc.AllowedBudget)
	if err != nil {
		return nil, err
	}
	if bc.NumBuckets > 0 {
		return cfg.WithNumBuckets(bc.NumBuckets)
	}
	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Spendgate v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("budget configured",
		"window", cfg.Budget.Window,
		"bucket_width", cfg.Budget.BucketWidth,
		"backoff", cfg.Budget.Backoff,
		"allowed_budget", cfg.Budget.AllowedBudget,
	)

	if cfg.Journal.Enabled {
		slog.Debug("journal enabled", "path", cfg.Journal.Path)
	}
	if cfg.Sweep.Schedule != "" {
		slog.Debug("sweep schedule", "schedule", cfg.Sweep.Schedule)
	}
}
