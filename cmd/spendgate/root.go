package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "spendgate",
	Short: "Spendgate - rolling window budget admission gate",
	Long: `Spendgate tracks per-entity spend over a rolling time window and
gates admission when an entity exceeds its allowed budget.

It exposes an HTTP API for recording spend and checking admission:
  - Per-entity rolling window spend accumulation
  - Backoff damping so decisions do not flap at the budget boundary
  - Scheduled eviction of idle trackers
  - Optional SQLite audit journal of spend events
  - Prometheus metrics`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
