// ABOUTME: MCP resource handlers for exposing Kin data
// ABOUTME: Provides read-only access to people, reminders, and campaigns via kin:// URIs
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/kin/db"
	"github.com/harperreed/kin/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const uriScheme = "kin://"

type ResourceHandlers struct {
	db        *sql.DB
	projectID int64
	now       func() time.Time
}

func NewResourceHandlers(database *sql.DB, projectID int64) *ResourceHandlers {
	return &ResourceHandlers{db: database, projectID: projectID, now: time.Now}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, uriScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", uriScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, uriScheme), "/")

	var data interface{}
	var err error
	switch parts[0] {
	case "people":
		if len(parts) == 1 {
			data, err = h.people(ctx)
		} else {
			data, err = h.person(ctx, parts[1])
		}
	case "reminders":
		data, err = db.ListReminders(ctx, h.db, h.projectID, "", "")
	case "campaigns":
		if len(parts) == 1 {
			data, err = db.ListCampaigns(ctx, h.db, h.projectID, db.CampaignFilterAll)
		} else {
			data, err = h.campaign(ctx, parts[1])
		}
	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", uri, err)
	}

	text, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(text),
		},
	}}, nil
}

func (h *ResourceHandlers) people(ctx context.Context) ([]models.Person, error) {
	people, err := db.ListPeople(ctx, h.db, h.projectID)
	if err != nil {
		return nil, err
	}
	now := h.now()
	for i := range people {
		people[i].ApplyHealth(now)
	}
	return people, nil
}

func (h *ResourceHandlers) person(ctx context.Context, raw string) (*models.PersonDetail, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid person ID: %w", err)
	}
	detail, err := db.GetPersonDetail(ctx, h.db, h.projectID, id)
	if err != nil {
		return nil, err
	}
	detail.ApplyHealth(h.now())
	return detail, nil
}

func (h *ResourceHandlers) campaign(ctx context.Context, raw string) (*models.Campaign, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid campaign ID: %w", err)
	}
	return db.GetCampaign(ctx, h.db, h.projectID, id)
}

// Resources lists the static resources to register alongside the person template.
func Resources() []*mcp.Resource {
	return []*mcp.Resource{
		{URI: uriScheme + "people", Name: "people", Description: "Everyone in the project with derived health", MIMEType: "application/json"},
		{URI: uriScheme + "reminders", Name: "reminders", Description: "Pending reminders, soonest first", MIMEType: "application/json"},
		{URI: uriScheme + "campaigns", Name: "campaigns", Description: "All campaigns in the project", MIMEType: "application/json"},
	}
}
