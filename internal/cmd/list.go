package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/certwatch-app/cw-inventory/internal/display"
	"github.com/certwatch-app/cw-inventory/internal/inventory"
)

var (
	listSource         string
	listExpiringWithin int
	listJSON           bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List inventoried certificates",
	Long: `List certificates from the inventory, soonest expiry first.

Examples:
  cw-inventory list
  cw-inventory list --expiring-within 30
  cw-inventory list --source filesystem --json`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listSource, "source", "", "only rows from this source")
	listCmd.Flags().IntVar(&listExpiringWithin, "expiring-within", 0,
		"only certificates expiring within this many days (expired included)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "write JSON instead of a table")
}

func runList(cmd *cobra.Command, _ []string) error {
	a, cfg, err := newAgent(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	filter := inventory.Filter{Source: listSource}
	title := "Certificate Inventory"
	if cmd.Flags().Changed("expiring-within") {
		if listExpiringWithin < 0 {
			return fmt.Errorf("--expiring-within must not be negative")
		}
		filter.ExpiringWithinDays = inventory.Days(listExpiringWithin)
		title = fmt.Sprintf("Certificates expiring within %d days", listExpiringWithin)
	}

	rows, err := a.List(cmd.Context(), filter)
	if err != nil {
		return err
	}

	if listJSON {
		return display.JSON(cmd.OutOrStdout(), rows)
	}

	fmt.Fprintln(cmd.OutOrStdout(), display.Table(title, rows, cfg.Alert.ThresholdDays))
	return nil
}
