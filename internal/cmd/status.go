package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/certwatch-app/cw-inventory/internal/display"
	"github.com/certwatch-app/cw-inventory/internal/version"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, inventory totals and the last runs",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	a, _, err := newAgent(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	st, err := a.Status(cmd.Context())
	if err != nil {
		return err
	}

	webhook := "not set"
	if st.WebhookConfigured {
		webhook = "set"
	}
	scanPaths := "(none)"
	if len(st.ScanPaths) > 0 {
		scanPaths = strings.Join(st.ScanPaths, ", ")
	}

	pairs := []display.Pair{
		{Key: "Version", Value: version.GetVersion()},
		{Key: "Database", Value: st.DBPath},
		{Key: "Webhook", Value: webhook},
		{Key: "Configured Scan Paths", Value: scanPaths},
		{Key: "Alert Threshold", Value: fmt.Sprintf("%d days", st.ThresholdDays)},
		{Key: "Certificates", Value: fmt.Sprintf("%d", st.Inventory.Total)},
		{Key: "Expired", Value: fmt.Sprintf("%d", st.Inventory.Expired)},
	}

	sources := make([]string, 0, len(st.Inventory.BySource))
	for source := range st.Inventory.BySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		pairs = append(pairs, display.Pair{
			Key:   "  source " + source,
			Value: fmt.Sprintf("%d", st.Inventory.BySource[source]),
		})
	}

	pairs = append(pairs,
		display.Pair{Key: "Last Scan", Value: formatRun(st.LastRun.LastScanAt,
			fmt.Sprintf("%d records, %d skipped", st.LastRun.LastScanRecords, st.LastRun.LastScanSkipped))},
		display.Pair{Key: "Last Alert", Value: formatRun(st.LastRun.LastAlertAt,
			fmt.Sprintf("%d certificates, %s", st.LastRun.LastAlertCount, st.LastRun.LastAlertDetail))},
	)

	fmt.Fprintln(cmd.OutOrStdout(), display.KeyValue("cw-inventory status", pairs))
	return nil
}

func formatRun(at time.Time, detail string) string {
	if at.IsZero() {
		return "never"
	}
	return at.Local().Format(time.RFC3339) + " (" + detail + ")"
}
