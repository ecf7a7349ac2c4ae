// ABOUTME: Reminder MCP tool handlers
// ABOUTME: Implements list_reminders and set_reminder_status tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harperreed/kin/db"
	"github.com/harperreed/kin/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ReminderHandlers struct {
	db        *sql.DB
	projectID int64
}

func NewReminderHandlers(database *sql.DB, projectID int64) *ReminderHandlers {
	return &ReminderHandlers{db: database, projectID: projectID}
}

type ReminderOutput struct {
	ID         int64   `json:"id"`
	PersonID   int64   `json:"person_id"`
	PersonName string  `json:"person_name,omitempty"`
	Title      string  `json:"title"`
	DueDate    *string `json:"due_date,omitempty"`
	Status     string  `json:"status"`
}

type ListRemindersInput struct {
	Status string `json:"status,omitempty" jsonschema:"pending (default), done, or all"`
	Search string `json:"search,omitempty" jsonschema:"Match against the reminder title or person name"`
}

type ListRemindersOutput struct {
	Reminders []ReminderOutput `json:"reminders"`
}

func (h *ReminderHandlers) ListReminders(ctx context.Context, request *mcp.CallToolRequest, input ListRemindersInput) (*mcp.CallToolResult, ListRemindersOutput, error) {
	reminders, err := db.ListReminders(ctx, h.db, h.projectID, input.Status, input.Search)
	if err != nil {
		return nil, ListRemindersOutput{}, fmt.Errorf("failed to list reminders: %w", err)
	}

	result := make([]ReminderOutput, len(reminders))
	for i := range reminders {
		result[i] = reminderToOutput(&reminders[i])
	}
	return nil, ListRemindersOutput{Reminders: result}, nil
}

type SetReminderStatusInput struct {
	ID     int64  `json:"id" jsonschema:"Reminder ID (required)"`
	Status string `json:"status" jsonschema:"pending or done (required)"`
}

func (h *ReminderHandlers) SetReminderStatus(ctx context.Context, request *mcp.CallToolRequest, input SetReminderStatusInput) (*mcp.CallToolResult, ReminderOutput, error) {
	if input.ID <= 0 {
		return nil, ReminderOutput{}, fmt.Errorf("id is required")
	}

	reminder, err := db.SetReminderStatus(ctx, h.db, h.projectID, input.ID, input.Status)
	if err != nil {
		return nil, ReminderOutput{}, fmt.Errorf("failed to update reminder: %w", err)
	}
	return nil, reminderToOutput(reminder), nil
}

func reminderToOutput(r *models.Reminder) ReminderOutput {
	out := ReminderOutput{
		ID:         r.ID,
		PersonID:   r.PersonID,
		PersonName: r.PersonName,
		Title:      r.Title,
		Status:     r.Status,
	}
	if r.DueDate != nil {
		s := formatUnix(*r.DueDate)
		out.DueDate = &s
	}
	return out
}
