package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/certwatch-app/cw-inventory/internal/cmd/initcmd"
)

var (
	purgeSource string
	purgeYes    bool
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete rows from the inventory",
	Long: `Delete every inventory row, or only the rows of one source.

Rows are never removed by scan; purge is the only way to drop certificates
that are no longer present.

Examples:
  cw-inventory purge --source filesystem
  cw-inventory purge --yes`,
	RunE: runPurge,
}

func init() {
	rootCmd.AddCommand(purgeCmd)

	purgeCmd.Flags().StringVar(&purgeSource, "source", "", "only delete rows from this source")
	purgeCmd.Flags().BoolVarP(&purgeYes, "yes", "y", false, "skip the confirmation prompt")
}

func runPurge(cmd *cobra.Command, _ []string) error {
	scope := "all rows"
	if purgeSource != "" {
		scope = fmt.Sprintf("all rows from source %q", purgeSource)
	}

	if !purgeYes {
		confirmed := false
		if err := initcmd.NewPurgeConfirmForm(scope, &confirmed).Run(); err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(cmd.ErrOrStderr(), initcmd.RenderWarning("Purge canceled"))
			return nil
		}
	}

	a, _, err := newAgent(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.Purge(cmd.Context(), purgeSource)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), initcmd.RenderSuccess(fmt.Sprintf("Deleted %d row(s)", n)))
	return nil
}
