package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the user-role breakdown and product totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := c.app.Dashboard.Summary(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), failureStyle.Render("Error loading dashboard"))
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderSummary(summary))
			return nil
		},
	}
}
