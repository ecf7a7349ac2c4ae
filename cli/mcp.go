// ABOUTME: MCP server subcommand
// ABOUTME: Serves Kin tools, resources, and prompts for one project over stdio
package cli

import (
	"database/sql"
	"fmt"

	"github.com/harperreed/kin/db"
	"github.com/harperreed/kin/handlers"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func newMCPCommand(opts *options, version string) *cobra.Command {
	var projectID int64

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio",
		Long: `Start an MCP server on stdin/stdout for assistant integrations.

All tools operate on a single project, chosen with --project.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, _, err := opts.openDatabase()
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if _, err := db.GetProject(cmd.Context(), database, projectID); err != nil {
				return fmt.Errorf("project %d: %w", projectID, err)
			}

			server := NewMCPServer(database, projectID, version)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}

	cmd.Flags().Int64Var(&projectID, "project", 1, "Project ID the tools operate on")
	return cmd
}

// NewMCPServer registers every Kin tool, resource, and prompt for projectID.
func NewMCPServer(database *sql.DB, projectID int64, version string) *mcp.Server {
	dashboardHandlers := handlers.NewDashboardHandlers(database, projectID)
	peopleHandlers := handlers.NewPeopleHandlers(database, projectID)
	reminderHandlers := handlers.NewReminderHandlers(database, projectID)
	resourceHandlers := handlers.NewResourceHandlers(database, projectID)
	promptHandlers := handlers.NewPromptHandlers(database, projectID)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "kin",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dashboard",
		Description: "Show pending reminders and the people most overdue for contact",
	}, dashboardHandlers.GetDashboard)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_people",
		Description: "Search people by name or company, with their contact health",
	}, peopleHandlers.FindPeople)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "contact_health",
		Description: "Report how a person is doing against their desired contact cadence",
	}, peopleHandlers.ContactHealth)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_interaction",
		Description: "Record a call, email, meeting, text, or other touchpoint with a person",
	}, peopleHandlers.LogInteraction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_reminders",
		Description: "List reminders, pending by default, soonest due first",
	}, reminderHandlers.ListReminders)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_reminder_status",
		Description: "Mark a reminder done or back to pending",
	}, reminderHandlers.SetReminderStatus)

	for _, resource := range handlers.Resources() {
		server.AddResource(resource, resourceHandlers.ReadResource)
	}
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "person",
		Description: "One person with interactions and reminders. URI format: kin://people/{id}",
		MIMEType:    "application/json",
		URITemplate: "kin://people/{id}",
	}, resourceHandlers.ReadResource)
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "campaign",
		Description: "One campaign with its recipients. URI format: kin://campaigns/{id}",
		MIMEType:    "application/json",
		URITemplate: "kin://campaigns/{id}",
	}, resourceHandlers.ReadResource)

	for _, prompt := range handlers.Prompts() {
		server.AddPrompt(prompt, promptHandlers.GetPrompt)
	}

	return server
}
