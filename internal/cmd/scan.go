package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var scanShowSkipped bool

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Discover certificates and update the inventory",
	Long: `Walk the given files and directories (or scan.paths from the config)
for .pem, .crt and .cer files, parse them and upsert the results into the inventory.

Unparsable files are skipped, never fatal.

Example:
  cw-inventory scan /etc/ssl/certs /etc/nginx/tls`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&scanShowSkipped, "show-skipped", false, "list every skipped file and the reason")
}

func runScan(cmd *cobra.Command, args []string) error {
	a, _, err := newAgent(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.Scan(cmd.Context(), args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scan %s complete in %s\n", summary.ID, summary.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  Certificates: %d\n", summary.Discovered)
	fmt.Fprintf(out, "  Upserted:     %d\n", summary.Upserted)
	fmt.Fprintf(out, "  Skipped:      %d\n", len(summary.Skipped))

	if scanShowSkipped {
		for _, s := range summary.Skipped {
			fmt.Fprintf(out, "    %s (%s)\n", s.Path, s.Reason)
		}
	}

	return nil
}
