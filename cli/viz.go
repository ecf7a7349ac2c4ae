// ABOUTME: Dashboard CLI command
// ABOUTME: Prints the project dashboard to the terminal
package cli

import (
	"fmt"
	"time"

	"github.com/harperreed/kin/viz"
	"github.com/spf13/cobra"
)

func newDashboardCommand(opts *options) *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show reminders and overdue contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, _, err := opts.openDatabase()
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			stats, err := viz.GenerateDashboardStats(cmd.Context(), database, projectID, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), viz.RenderDashboard(stats))
			return nil
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 1, "Project ID")
	return cmd
}
