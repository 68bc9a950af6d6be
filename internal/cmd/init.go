package cmd

import (
	"github.com/spf13/cobra"

	"github.com/certwatch-app/cw-inventory/internal/cmd/initcmd"
)

var (
	initOutputPath     string
	initNonInteractive bool
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a cw-inventory configuration file",
	Long: `Interactively create a cw-inventory configuration file.

The wizard asks for:
  • The inventory database path and the directories to scan
  • The alert threshold and webhook URL
  • The log level

Examples:
  # Interactive mode (default)
  cw-inventory init

  # Specify output path
  cw-inventory init -o ~/.config/cw-inventory/config.yaml

  # Non-interactive mode (for CI/scripting)
  CW_SCAN_PATHS=/etc/ssl/certs CW_NOTIFY_WEBHOOK_URL=https://hooks.slack.com/... cw-inventory init --non-interactive

Environment variables for non-interactive mode (all optional):
  CW_INVENTORY_DB_PATH       SQLite file (default: cw-inventory.db)
  CW_SCAN_PATHS              Comma-separated files or directories to scan
  CW_ALERT_THRESHOLD_DAYS    Alert window in days (default: 30)
  CW_NOTIFY_WEBHOOK_URL      Slack-compatible incoming webhook
  CW_AGENT_LOG_LEVEL         Log level (default: info)
  CW_METRICS_TEXTFILE_PATH   Prometheus textfile output`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", initcmd.DefaultConfigPath,
		"Output path for the configuration file")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false,
		"Run in non-interactive mode using environment variables")
}

func runInit(_ *cobra.Command, _ []string) error {
	if initNonInteractive {
		return initcmd.RunNonInteractive(initOutputPath)
	}

	wizard := initcmd.NewWizard()
	wizard.SetOutputPath(initOutputPath)
	return wizard.Run()
}
