// ABOUTME: People MCP tool handlers
// ABOUTME: Implements find_people, contact_health, and log_interaction tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/kin/db"
	"github.com/harperreed/kin/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PeopleHandlers struct {
	db        *sql.DB
	projectID int64
	now       func() time.Time
}

func NewPeopleHandlers(database *sql.DB, projectID int64) *PeopleHandlers {
	return &PeopleHandlers{db: database, projectID: projectID, now: time.Now}
}

type PersonOutput struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email,omitempty"`
	Company         string  `json:"company,omitempty"`
	Role            string  `json:"role,omitempty"`
	FrequencyDays   *int    `json:"frequency_days,omitempty"`
	LastInteraction *string `json:"last_interaction,omitempty"`
	Health          string  `json:"health"`
}

type FindPeopleInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search text matched against name and company; empty lists everyone"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindPeopleOutput struct {
	People []PersonOutput `json:"people"`
}

func (h *PeopleHandlers) FindPeople(ctx context.Context, request *mcp.CallToolRequest, input FindPeopleInput) (*mcp.CallToolResult, FindPeopleOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = db.SearchLimit
	}

	var people []models.Person
	var err error
	if input.Query == "" {
		people, err = db.ListPeople(ctx, h.db, h.projectID)
		if len(people) > limit {
			people = people[:limit]
		}
	} else {
		people, err = db.SearchPeople(ctx, h.db, h.projectID, input.Query, limit)
	}
	if err != nil {
		return nil, FindPeopleOutput{}, fmt.Errorf("failed to find people: %w", err)
	}

	now := h.now()
	result := make([]PersonOutput, len(people))
	for i := range people {
		result[i] = personToOutput(&people[i], now)
	}
	return nil, FindPeopleOutput{People: result}, nil
}

type ContactHealthInput struct {
	PersonID int64 `json:"person_id" jsonschema:"Person ID (required)"`
}

type ContactHealthOutput struct {
	Person PersonOutput `json:"person"`
	// DaysSince is -1 when the person was never contacted.
	DaysSince     int `json:"days_since"`
	OverdueByDays int `json:"overdue_by_days"`
}

func (h *PeopleHandlers) ContactHealth(ctx context.Context, request *mcp.CallToolRequest, input ContactHealthInput) (*mcp.CallToolResult, ContactHealthOutput, error) {
	if input.PersonID <= 0 {
		return nil, ContactHealthOutput{}, fmt.Errorf("person_id is required")
	}

	person, err := db.GetPerson(ctx, h.db, h.projectID, input.PersonID)
	if err != nil {
		return nil, ContactHealthOutput{}, fmt.Errorf("failed to get person: %w", err)
	}

	now := h.now()
	out := ContactHealthOutput{
		Person:    personToOutput(person, now),
		DaysSince: models.DaysSince(person.LastInteraction, now),
	}
	if person.FrequencyDays != nil && person.LastInteraction != nil {
		if overdue := models.OverdueSeconds(person.LastInteraction, person.FrequencyDays, now); overdue > 0 {
			out.OverdueByDays = int(overdue / 86400)
		}
	}
	return nil, out, nil
}

type LogInteractionInput struct {
	PersonID int64  `json:"person_id" jsonschema:"Person ID (required)"`
	Type     string `json:"type,omitempty" jsonschema:"One of call, email, meeting, text, other (default other)"`
	Summary  string `json:"summary,omitempty" jsonschema:"What was discussed"`
	Date     string `json:"date,omitempty" jsonschema:"When it happened (RFC3339, defaults to now)"`
}

type LogInteractionOutput struct {
	InteractionID int64        `json:"interaction_id"`
	Type          string       `json:"type"`
	Date          string       `json:"date"`
	Person        PersonOutput `json:"person"`
}

func (h *PeopleHandlers) LogInteraction(ctx context.Context, request *mcp.CallToolRequest, input LogInteractionInput) (*mcp.CallToolResult, LogInteractionOutput, error) {
	if input.PersonID <= 0 {
		return nil, LogInteractionOutput{}, fmt.Errorf("person_id is required")
	}

	when := h.now()
	if input.Date != "" {
		parsed, err := time.Parse(time.RFC3339, input.Date)
		if err != nil {
			return nil, LogInteractionOutput{}, fmt.Errorf("invalid date format (use RFC3339): %w", err)
		}
		when = parsed
	}

	kind := input.Type
	if kind == "" {
		kind = models.InteractionOther
	}

	interaction := &models.Interaction{
		PersonID: input.PersonID,
		Type:     kind,
		Summary:  input.Summary,
		Date:     when.Unix(),
	}
	if err := db.CreateInteraction(ctx, h.db, h.projectID, interaction); err != nil {
		return nil, LogInteractionOutput{}, fmt.Errorf("failed to log interaction: %w", err)
	}

	// Reload to pick up the derived last interaction
	person, err := db.GetPerson(ctx, h.db, h.projectID, input.PersonID)
	if err != nil {
		return nil, LogInteractionOutput{}, fmt.Errorf("failed to get person: %w", err)
	}

	return nil, LogInteractionOutput{
		InteractionID: interaction.ID,
		Type:          interaction.Type,
		Date:          formatUnix(interaction.Date),
		Person:        personToOutput(person, h.now()),
	}, nil
}

func personToOutput(p *models.Person, now time.Time) PersonOutput {
	out := PersonOutput{
		ID:            p.ID,
		Name:          p.Name,
		Email:         p.Email,
		Company:       p.Company,
		Role:          p.Role,
		FrequencyDays: p.FrequencyDays,
		Health:        string(models.ComputeHealth(p.LastInteraction, p.FrequencyDays, now)),
	}
	if p.LastInteraction != nil {
		s := formatUnix(*p.LastInteraction)
		out.LastInteraction = &s
	}
	return out
}

func formatUnix(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}
