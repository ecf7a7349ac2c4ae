// ABOUTME: Root cobra command and shared CLI plumbing
// ABOUTME: Global flags, config loading, and database opening for subcommands
package cli

import (
	"database/sql"
	"fmt"

	"github.com/harperreed/kin/config"
	"github.com/harperreed/kin/db"
	"github.com/spf13/cobra"
)

type options struct {
	dbPath  string
	envFile string
}

// NewRootCommand builds the kin command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "kin",
		Short: "Personal CRM for keeping in touch",
		Long: `kin tracks the people you know, how often you want to talk to them,
and what you promised to do next.

It serves a JSON API for the web front-end, an MCP server for assistants,
and a few terminal commands for administration.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db-path", "", "Database path (default: $XDG_DATA_HOME/kin/kin.db)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional .env file to load")

	root.AddCommand(
		newServeCommand(opts),
		newMCPCommand(opts, version),
		newDashboardCommand(opts),
		newUserCommand(opts),
		newProjectCommand(opts),
		newVersionCommand(version),
	)
	return root
}

// loadConfig reads the environment; --db-path wins over KIN_DB_PATH.
func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	return cfg, nil
}

func (o *options) openDatabase() (*sql.DB, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database %s: %w", cfg.DBPath, err)
	}
	return database, cfg, nil
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the kin version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kin version %s\n", version)
		},
	}
}
