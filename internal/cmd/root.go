// Package cmd provides CLI commands for cw-inventory.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/certwatch-app/cw-inventory/internal/agent"
	"github.com/certwatch-app/cw-inventory/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cw-inventory",
	Short: "cw-inventory - local X.509 certificate inventory and expiry alerts",
	Long: `cw-inventory discovers X.509 certificates on local storage, keeps a
deduplicated inventory of them in SQLite and reports certificates nearing
expiry to a webhook.

  cw-inventory scan /etc/ssl/certs
  cw-inventory list --expiring-within 30
  cw-inventory alert --threshold 30`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it. SIGINT and
// SIGTERM cancel the command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./cw-inventory.yaml, then ~/.config/cw-inventory/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	//nolint:errcheck // error is ignored because the flag is guaranteed to exist
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// configCandidates lists the config files tried, in order, when --config is not set
func configCandidates() []string {
	candidates := []string{"cw-inventory.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "cw-inventory", "config.yaml"))
	}
	return candidates
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		for _, candidate := range configCandidates() {
			if _, err := os.Stat(candidate); err == nil {
				viper.SetConfigFile(candidate)
				break
			}
		}
	}

	// CW_ prefix, nested keys joined with underscores (CW_NOTIFY_WEBHOOK_URL)
	viper.SetEnvPrefix("CW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if viper.ConfigFileUsed() == "" {
		return
	}
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to read config file:", err)
		return
	}
	if verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads and validates configuration from viper
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if verbose {
		cfg.Agent.LogLevel = "debug"
	}

	return cfg, nil
}

// newAgent loads configuration and opens the inventory
func newAgent(ctx context.Context) (*agent.Agent, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	a, err := agent.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create agent: %w", err)
	}

	return a, cfg, nil
}
