// ABOUTME: MCP prompt handlers for reusable relationship workflows
// ABOUTME: Provides contact-summary, follow-up-suggestions, and campaign-review prompts
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/kin/db"
	"github.com/harperreed/kin/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PromptHandlers struct {
	db        *sql.DB
	projectID int64
	now       func() time.Time
}

func NewPromptHandlers(database *sql.DB, projectID int64) *PromptHandlers {
	return &PromptHandlers{db: database, projectID: projectID, now: time.Now}
}

// Prompts describes the prompts GetPrompt can build.
func Prompts() []*mcp.Prompt {
	return []*mcp.Prompt{
		{
			Name:        "contact-summary",
			Description: "Summarize a person and their recent interactions",
			Arguments: []*mcp.PromptArgument{
				{Name: "person_id", Description: "Person ID", Required: true},
			},
		},
		{
			Name:        "follow-up-suggestions",
			Description: "Suggest who to reach out to based on contact health",
		},
		{
			Name:        "campaign-review",
			Description: "Review a campaign's copy and delivery progress",
			Arguments: []*mcp.PromptArgument{
				{Name: "campaign_id", Description: "Campaign ID", Required: true},
			},
		},
	}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := request.Params.Arguments
	switch request.Params.Name {
	case "contact-summary":
		return h.contactSummary(ctx, args)
	case "follow-up-suggestions":
		return h.followUpSuggestions(ctx)
	case "campaign-review":
		return h.campaignReview(ctx, args)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func requiredID(args map[string]string, name string) (int64, error) {
	raw, ok := args[name]
	if !ok || raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return id, nil
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func (h *PromptHandlers) contactSummary(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	personID, err := requiredID(args, "person_id")
	if err != nil {
		return nil, err
	}

	detail, err := db.GetPersonDetail(ctx, h.db, h.projectID, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch person: %w", err)
	}
	now := h.now()
	detail.ApplyHealth(now)

	var text strings.Builder
	text.WriteString(fmt.Sprintf("Person: %s\n", detail.Name))
	if detail.Role != "" || detail.Company != "" {
		text.WriteString(fmt.Sprintf("Works as: %s at %s\n", detail.Role, detail.Company))
	}
	if detail.Email != "" {
		text.WriteString(fmt.Sprintf("Email: %s\n", detail.Email))
	}
	text.WriteString(fmt.Sprintf("Contact health: %s\n", detail.Health))
	if detail.FrequencyDays != nil {
		text.WriteString(fmt.Sprintf("Desired cadence: every %d days\n", *detail.FrequencyDays))
	}
	if detail.Notes != "" {
		text.WriteString(fmt.Sprintf("\nNotes: %s\n", detail.Notes))
	}

	if len(detail.Interactions) > 0 {
		text.WriteString("\nRecent interactions:\n")
		for _, i := range detail.Interactions {
			text.WriteString(fmt.Sprintf("  - %s %s: %s\n",
				time.Unix(i.Date, 0).UTC().Format("2006-01-02"), i.Type, i.Summary))
		}
	}
	pending := 0
	for _, r := range detail.Reminders {
		if r.Status == models.ReminderPending {
			pending++
		}
	}
	text.WriteString(fmt.Sprintf("\nOpen reminders: %d\n", pending))

	text.WriteString("\nPlease provide:")
	text.WriteString("\n1. A brief summary of who this person is")
	text.WriteString("\n2. Themes from the interaction history")
	text.WriteString("\n3. A suggested next touchpoint")

	return userPrompt(fmt.Sprintf("Summary for %s", detail.Name), text.String()), nil
}

func (h *PromptHandlers) followUpSuggestions(ctx context.Context) (*mcp.GetPromptResult, error) {
	now := h.now()
	stale, err := db.StalePeople(ctx, h.db, h.projectID, now, db.DashboardStaleLimit*2)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stale people: %w", err)
	}

	var text strings.Builder
	text.WriteString("These people are overdue for contact:\n\n")
	if len(stale) == 0 {
		text.WriteString("  (nobody is overdue)\n")
	}
	for _, p := range stale {
		days := models.DaysSince(p.LastInteraction, now)
		if days < 0 {
			text.WriteString(fmt.Sprintf("  - %s: never contacted (cadence %d days)\n", p.Name, *p.FrequencyDays))
		} else {
			text.WriteString(fmt.Sprintf("  - %s: %d days since last contact (cadence %d days)\n", p.Name, days, *p.FrequencyDays))
		}
	}

	text.WriteString("\nPlease suggest:")
	text.WriteString("\n1. Who to contact first and why")
	text.WriteString("\n2. A short, personal opener for each")

	return userPrompt("Follow-up suggestions", text.String()), nil
}

func (h *PromptHandlers) campaignReview(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	campaignID, err := requiredID(args, "campaign_id")
	if err != nil {
		return nil, err
	}

	campaign, err := db.GetCampaign(ctx, h.db, h.projectID, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch campaign: %w", err)
	}

	sent := 0
	for _, r := range campaign.Recipients {
		if r.Status == models.RecipientSent {
			sent++
		}
	}

	var text strings.Builder
	text.WriteString(fmt.Sprintf("Campaign: %s (%s)\n", campaign.Title, campaign.Status))
	text.WriteString(fmt.Sprintf("Sent to %d of %d recipients\n\n", sent, len(campaign.Recipients)))
	text.WriteString(fmt.Sprintf("Subject template: %s\n\n", campaign.SubjectTemplate))
	text.WriteString("Body template:\n")
	text.WriteString(campaign.BodyTemplate)
	text.WriteString("\n\nPlease review the copy for tone and clarity, and note anything that reads poorly once {name} is filled in.")

	return userPrompt(fmt.Sprintf("Review of %s", campaign.Title), text.String()), nil
}
