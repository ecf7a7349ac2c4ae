// ABOUTME: Dashboard MCP handler
// ABOUTME: Provides the get_dashboard tool with structured data and a text rendering
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/kin/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type DashboardHandlers struct {
	db        *sql.DB
	projectID int64
	now       func() time.Time
}

func NewDashboardHandlers(database *sql.DB, projectID int64) *DashboardHandlers {
	return &DashboardHandlers{db: database, projectID: projectID, now: time.Now}
}

type GetDashboardInput struct{}

type GetDashboardOutput struct {
	Reminders   []ReminderOutput `json:"reminders"`
	StalePeople []PersonOutput   `json:"stale_people"`
	TotalPeople int              `json:"total_people"`
	ByHealth    map[string]int   `json:"by_health"`
	Rendered    string           `json:"rendered"`
}

func (h *DashboardHandlers) GetDashboard(ctx context.Context, request *mcp.CallToolRequest, input GetDashboardInput) (*mcp.CallToolResult, GetDashboardOutput, error) {
	now := h.now()
	stats, err := viz.GenerateDashboardStats(ctx, h.db, h.projectID, now)
	if err != nil {
		return nil, GetDashboardOutput{}, fmt.Errorf("failed to build dashboard: %w", err)
	}

	out := GetDashboardOutput{
		Reminders:   make([]ReminderOutput, len(stats.Dashboard.Reminders)),
		StalePeople: make([]PersonOutput, len(stats.Dashboard.StalePeople)),
		TotalPeople: stats.TotalPeople,
		ByHealth:    make(map[string]int, len(stats.ByHealth)),
		Rendered:    viz.RenderDashboard(stats),
	}
	for i := range stats.Dashboard.Reminders {
		out.Reminders[i] = reminderToOutput(&stats.Dashboard.Reminders[i])
	}
	for i := range stats.Dashboard.StalePeople {
		out.StalePeople[i] = personToOutput(&stats.Dashboard.StalePeople[i], now)
	}
	for state, n := range stats.ByHealth {
		out.ByHealth[string(state)] = n
	}
	return nil, out, nil
}
