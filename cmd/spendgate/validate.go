package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spendgate-hq/spendgate/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate a configuration file without starting the server.

Examples:
  # Validate the default config
  spendgate validate

  # Validate a specific file
  spendgate validate --config /etc/spendgate/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	fmt.Println("✓ Configuration valid")
	fmt.Printf("  window:         %v\n", cfg.Budget.Window)
	fmt.Printf("  bucket_width:   %v\n", cfg.Budget.BucketWidth)
	fmt.Printf("  backoff:        %v\n", cfg.Budget.Backoff)
	fmt.Printf("  allowed_budget: %v\n", cfg.Budget.AllowedBudget)
	fmt.Printf("  listen_address: %s\n", cfg.Server.ListenAddress)
	if cfg.Journal.Enabled {
		fmt.Printf("  journal:        %s\n", cfg.Journal.Path)
	} else {
		fmt.Println("  journal:        disabled")
	}
	return nil
}
