// ABOUTME: Project CLI commands
// ABOUTME: Lists and creates projects (tenants)
package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/kin/db"
	"github.com/harperreed/kin/models"
	"github.com/spf13/cobra"
)

func newProjectCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(newProjectListCommand(opts), newProjectAddCommand(opts))
	return cmd
}

func newProjectListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, _, err := opts.openDatabase()
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			projects, err := db.ListProjects(cmd.Context(), database)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, p := range projects {
				fmt.Fprintf(w, "%d\t%s\n", p.ID, p.Name)
			}
			return w.Flush()
		},
	}
}

func newProjectAddCommand(opts *options) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, _, err := opts.openDatabase()
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			project := &models.Project{Name: name}
			if err := db.CreateProject(cmd.Context(), database, project); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %d (%s)\n", project.ID, project.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name (required)")
	return cmd
}
