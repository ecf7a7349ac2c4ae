// ABOUTME: Tests for the MCP tool, resource, and prompt handlers
// ABOUTME: Calls handler methods directly against a temp database
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/harperreed/kin/db"
	"github.com/harperreed/kin/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "kin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func addPerson(t *testing.T, database *sql.DB, projectID int64, name string, freq *int) int64 {
	t.Helper()
	p := &models.Person{Name: name, FrequencyDays: freq}
	require.NoError(t, db.CreatePerson(context.Background(), database, projectID, p))
	return p.ID
}

func days(n int) *int { return &n }

func TestFindPeople(t *testing.T) {
	database := setupTestDB(t)
	addPerson(t, database, models.DefaultProjectID, "Ada Lovelace", days(7))
	addPerson(t, database, models.DefaultProjectID, "Grace Hopper", nil)

	h := NewPeopleHandlers(database, models.DefaultProjectID)
	h.now = fixedNow

	_, out, err := h.FindPeople(context.Background(), nil, FindPeopleInput{Query: "ada"})
	require.NoError(t, err)
	require.Len(t, out.People, 1)
	assert.Equal(t, "Ada Lovelace", out.People[0].Name)
	assert.Equal(t, string(models.HealthOverdue), out.People[0].Health)

	_, out, err = h.FindPeople(context.Background(), nil, FindPeopleInput{})
	require.NoError(t, err)
	assert.Len(t, out.People, 2)

	_, out, err = h.FindPeople(context.Background(), nil, FindPeopleInput{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, out.People, 1)
}

func TestLogInteractionAndContactHealth(t *testing.T) {
	database := setupTestDB(t)
	id := addPerson(t, database, models.DefaultProjectID, "Ada Lovelace", days(10))

	h := NewPeopleHandlers(database, models.DefaultProjectID)
	h.now = fixedNow
	ctx := context.Background()

	_, health, err := h.ContactHealth(ctx, nil, ContactHealthInput{PersonID: id})
	require.NoError(t, err)
	assert.Equal(t, string(models.HealthOverdue), health.Person.Health)
	assert.Equal(t, -1, health.DaysSince)

	when := testNow.Add(-9 * 24 * time.Hour)
	_, logged, err := h.LogInteraction(ctx, nil, LogInteractionInput{
		PersonID: id,
		Type:     "Call",
		Summary:  "caught up",
		Date:     when.Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.NotZero(t, logged.InteractionID)
	assert.Equal(t, models.InteractionCall, logged.Type)
	require.NotNil(t, logged.Person.LastInteraction)
	assert.Equal(t, when.Format(time.RFC3339), *logged.Person.LastInteraction)

	_, health, err = h.ContactHealth(ctx, nil, ContactHealthInput{PersonID: id})
	require.NoError(t, err)
	assert.Equal(t, string(models.HealthDueSoon), health.Person.Health)
	assert.Equal(t, 9, health.DaysSince)
	assert.Zero(t, health.OverdueByDays)
}

func TestLogInteractionValidation(t *testing.T) {
	database := setupTestDB(t)
	id := addPerson(t, database, models.DefaultProjectID, "Ada", nil)
	h := NewPeopleHandlers(database, models.DefaultProjectID)
	ctx := context.Background()

	_, _, err := h.LogInteraction(ctx, nil, LogInteractionInput{})
	assert.Error(t, err)

	_, _, err = h.LogInteraction(ctx, nil, LogInteractionInput{PersonID: id, Date: "yesterday"})
	assert.Error(t, err)

	_, _, err = h.LogInteraction(ctx, nil, LogInteractionInput{PersonID: id, Type: "fax"})
	assert.True(t, models.IsValidation(err))

	_, out, err := h.LogInteraction(ctx, nil, LogInteractionInput{PersonID: id})
	require.NoError(t, err)
	assert.Equal(t, models.InteractionOther, out.Type)
}

func TestHandlersAreProjectScoped(t *testing.T) {
	database := setupTestDB(t)
	other := &models.Project{Name: "Side"}
	require.NoError(t, db.CreateProject(context.Background(), database, other))
	foreign := addPerson(t, database, other.ID, "Hidden", days(7))

	people := NewPeopleHandlers(database, models.DefaultProjectID)
	_, _, err := people.ContactHealth(context.Background(), nil, ContactHealthInput{PersonID: foreign})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, _, err = people.LogInteraction(context.Background(), nil, LogInteractionInput{PersonID: foreign})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, found, err := people.FindPeople(context.Background(), nil, FindPeopleInput{Query: "hidden"})
	require.NoError(t, err)
	assert.Empty(t, found.People)
}

func TestReminderTools(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	personID := addPerson(t, database, models.DefaultProjectID, "Ada Lovelace", nil)

	due := testNow.Unix()
	r := &models.Reminder{PersonID: personID, Title: "Send notes", DueDate: &due}
	require.NoError(t, db.CreateReminder(ctx, database, models.DefaultProjectID, r))

	h := NewReminderHandlers(database, models.DefaultProjectID)

	_, list, err := h.ListReminders(ctx, nil, ListRemindersInput{})
	require.NoError(t, err)
	require.Len(t, list.Reminders, 1)
	assert.Equal(t, "Ada Lovelace", list.Reminders[0].PersonName)
	require.NotNil(t, list.Reminders[0].DueDate)
	assert.Equal(t, testNow.Format(time.RFC3339), *list.Reminders[0].DueDate)

	for i := 0; i < 2; i++ {
		_, updated, err := h.SetReminderStatus(ctx, nil, SetReminderStatusInput{ID: r.ID, Status: models.ReminderDone})
		require.NoError(t, err)
		assert.Equal(t, models.ReminderDone, updated.Status)
	}

	_, list, err = h.ListReminders(ctx, nil, ListRemindersInput{})
	require.NoError(t, err)
	assert.Empty(t, list.Reminders)

	_, list, err = h.ListReminders(ctx, nil, ListRemindersInput{Status: "all", Search: "notes"})
	require.NoError(t, err)
	assert.Len(t, list.Reminders, 1)

	_, _, err = h.SetReminderStatus(ctx, nil, SetReminderStatusInput{ID: r.ID, Status: "snoozed"})
	assert.True(t, models.IsValidation(err))

	_, _, err = h.ListReminders(ctx, nil, ListRemindersInput{Status: "later"})
	assert.Error(t, err)
}

func TestGetDashboardTool(t *testing.T) {
	database := setupTestDB(t)
	addPerson(t, database, models.DefaultProjectID, "Grace Hopper", days(3))
	addPerson(t, database, models.DefaultProjectID, "Alan Turing", nil)

	h := NewDashboardHandlers(database, models.DefaultProjectID)
	h.now = fixedNow

	_, out, err := h.GetDashboard(context.Background(), nil, GetDashboardInput{})
	require.NoError(t, err)
	assert.Empty(t, out.Reminders)
	require.Len(t, out.StalePeople, 1)
	assert.Equal(t, "Grace Hopper", out.StalePeople[0].Name)
	assert.Equal(t, 2, out.TotalPeople)
	assert.Equal(t, 1, out.ByHealth[string(models.HealthOverdue)])
	assert.Equal(t, 1, out.ByHealth[string(models.HealthNoRule)])
	assert.Contains(t, out.Rendered, "Grace Hopper")
}

func TestReadResource(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	id := addPerson(t, database, models.DefaultProjectID, "Ada Lovelace", days(7))

	h := NewResourceHandlers(database, models.DefaultProjectID)
	h.now = fixedNow

	read := func(uri string) (*mcp.ReadResourceResult, error) {
		return h.ReadResource(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
	}

	res, err := read("kin://people")
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	var people []models.Person
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &people))
	require.Len(t, people, 1)
	assert.Equal(t, models.HealthOverdue, people[0].Health)

	res, err = read("kin://people/" + strconv.FormatInt(id, 10))
	require.NoError(t, err)
	assert.Equal(t, "application/json", res.Contents[0].MIMEType)
	assert.Contains(t, res.Contents[0].Text, "Ada Lovelace")

	_, err = read("kin://people/999")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = read("kin://reminders")
	assert.NoError(t, err)

	_, err = read("kin://campaigns")
	assert.NoError(t, err)

	_, err = read("crm://contacts")
	assert.Error(t, err)

	_, err = read("kin://deals")
	assert.Error(t, err)
}

func TestGetPrompt(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	id := addPerson(t, database, models.DefaultProjectID, "Ada Lovelace", days(7))
	require.NoError(t, db.CreateInteraction(ctx, database, models.DefaultProjectID, &models.Interaction{
		PersonID: id, Type: models.InteractionMeeting, Summary: "engine design", Date: testNow.Add(-30 * 24 * time.Hour).Unix(),
	}))

	campaign := &models.Campaign{Title: "Launch", SubjectTemplate: "Hi {name}", BodyTemplate: "News"}
	require.NoError(t, db.CreateCampaign(ctx, database, models.DefaultProjectID, campaign))
	_, err := db.AddCampaignRecipients(ctx, database, models.DefaultProjectID, campaign.ID, []int64{id})
	require.NoError(t, err)

	h := NewPromptHandlers(database, models.DefaultProjectID)
	h.now = fixedNow

	get := func(name string, args map[string]string) (*mcp.GetPromptResult, error) {
		return h.GetPrompt(ctx, &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: name, Arguments: args}})
	}
	text := func(res *mcp.GetPromptResult) string {
		require.Len(t, res.Messages, 1)
		content, ok := res.Messages[0].Content.(*mcp.TextContent)
		require.True(t, ok)
		return content.Text
	}

	res, err := get("contact-summary", map[string]string{"person_id": strconv.FormatInt(id, 10)})
	require.NoError(t, err)
	assert.Contains(t, text(res), "engine design")
	assert.Contains(t, text(res), "Contact health: overdue")

	res, err = get("follow-up-suggestions", nil)
	require.NoError(t, err)
	assert.Contains(t, text(res), "Ada Lovelace: 30 days since last contact")

	res, err = get("campaign-review", map[string]string{"campaign_id": strconv.FormatInt(campaign.ID, 10)})
	require.NoError(t, err)
	assert.Contains(t, text(res), "Sent to 0 of 1 recipients")

	_, err = get("contact-summary", nil)
	assert.Error(t, err)

	_, err = get("deal-analysis", nil)
	assert.Error(t, err)

	assert.Len(t, Prompts(), 3)
}
