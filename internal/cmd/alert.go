package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/certwatch-app/cw-inventory/internal/cmd/initcmd"
)

var (
	alertThreshold int
	alertDryRun    bool
	alertJSON      bool
)

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Report certificates nearing expiry to the webhook",
	Long: `Compose a summary of certificates expiring within the threshold (expired
certificates included) and post it to notify.webhook_url.

A failed delivery is reported but not retried.

Examples:
  cw-inventory alert
  cw-inventory alert --threshold 14 --dry-run`,
	RunE: runAlert,
}

func init() {
	rootCmd.AddCommand(alertCmd)

	alertCmd.Flags().IntVar(&alertThreshold, "threshold", 0, "days (default: alert.threshold_days)")
	alertCmd.Flags().BoolVar(&alertDryRun, "dry-run", false, "compose and print without sending")
	alertCmd.Flags().BoolVar(&alertJSON, "json", false, "print the structured payload instead of text")
}

func runAlert(cmd *cobra.Command, _ []string) error {
	a, cfg, err := newAgent(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	threshold := cfg.Alert.ThresholdDays
	if cmd.Flags().Changed("threshold") {
		if alertThreshold < 0 {
			return fmt.Errorf("--threshold must not be negative")
		}
		threshold = alertThreshold
	}

	outcome, err := a.Alert(cmd.Context(), threshold, alertDryRun)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if alertJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcome.Result.Payload()); err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
	} else {
		fmt.Fprintln(out, outcome.Result.Text())
	}

	switch {
	case !outcome.Sent:
		if !outcome.Result.Empty {
			fmt.Fprintln(cmd.ErrOrStderr(), initcmd.RenderInfo("Dry run: nothing sent"))
		}
	case outcome.Delivery.OK:
		fmt.Fprintln(cmd.ErrOrStderr(), initcmd.RenderSuccess("Alert delivered ("+outcome.Delivery.Detail+")"))
	default:
		fmt.Fprintln(cmd.ErrOrStderr(), initcmd.RenderWarning("Alert not delivered: "+outcome.Delivery.Detail))
	}

	return nil
}
