package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/certwatch-app/cw-inventory/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Validate the cw-inventory configuration without touching the inventory.

Example:
  cw-inventory validate -c /path/to/cw-inventory.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	source := viper.ConfigFileUsed()
	if source == "" {
		source = "(defaults and environment)"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration is valid!")
	fmt.Fprintf(out, "  Config file:  %s\n", source)
	fmt.Fprintf(out, "  Database:     %s\n", cfg.Inventory.DBPath)
	fmt.Fprintf(out, "  Scan paths:   %d\n", len(cfg.Scan.Paths))
	fmt.Fprintf(out, "  Concurrency:  %d\n", cfg.Scan.Concurrency)
	fmt.Fprintf(out, "  Threshold:    %d days\n", cfg.Alert.ThresholdDays)
	fmt.Fprintf(out, "  Webhook:      %t\n", cfg.WebhookConfigured())

	return nil
}
