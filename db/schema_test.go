// ABOUTME: Tests for database schema creation
// ABOUTME: Checks tables, indexes, the seeded default project and cascade behavior
package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/harperreed/kin/models"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSchema(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory db: %v", err)
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	if err := InitSchema(db); err != nil {
		t.Fatalf("InitSchema failed: %v", err)
	}

	tables := []string{
		"projects", "users", "sessions", "people", "interactions",
		"reminders", "campaigns", "campaign_recipients",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	indexes := []string{
		"idx_people_project",
		"idx_interactions_person_date",
		"idx_reminders_project_status",
		"idx_campaign_recipients_person",
		"idx_sessions_user",
	}
	for _, idx := range indexes {
		var indexName string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&indexName)
		if err != nil {
			t.Errorf("Index %s not found: %v", idx, err)
		}
	}

	var projectName string
	if err := db.QueryRow("SELECT name FROM projects WHERE id = 1").Scan(&projectName); err != nil {
		t.Fatalf("Default project missing: %v", err)
	}
	if projectName != "Default" {
		t.Errorf("Expected default project name 'Default', got %q", projectName)
	}
}

func TestSchemaRejectsInvalidEnums(t *testing.T) {
	db := setupTestDB(t)
	p := createTestPerson(t, db, models.DefaultProjectID, "Ada", nil)

	_, err := db.Exec(`INSERT INTO interactions (project_id, person_id, type, date) VALUES (1, ?, 'fax', 0)`, p.ID)
	assert.Error(t, err)

	_, err = db.Exec(`INSERT INTO reminders (project_id, person_id, title, status) VALUES (1, ?, 't', 'snoozed')`, p.ID)
	assert.Error(t, err)

	_, err = db.Exec(`UPDATE people SET frequency_days = -1 WHERE id = ?`, p.ID)
	assert.Error(t, err)
}

func TestDeleteProjectCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	projectID := createTestProject(t, db, "Side project")

	p := createTestPerson(t, db, projectID, "Grace", intPtrOf(7))
	require.NoError(t, CreateInteraction(ctx, db, projectID, &models.Interaction{PersonID: p.ID, Type: "call"}))
	require.NoError(t, CreateReminder(ctx, db, projectID, &models.Reminder{PersonID: p.ID, Title: "ping"}))

	require.NoError(t, DeleteProject(ctx, db, projectID))

	for _, table := range []string{"people", "interactions", "reminders"} {
		var n int
		require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE project_id = ?", projectID).Scan(&n))
		assert.Zero(t, n, table)
	}
}

func TestDeleteOnlyProjectRefused(t *testing.T) {
	db := setupTestDB(t)

	err := DeleteProject(context.Background(), db, models.DefaultProjectID)
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))

	_, err = GetProject(context.Background(), db, models.DefaultProjectID)
	assert.NoError(t, err)
}

func TestDeleteMissingProject(t *testing.T) {
	db := setupTestDB(t)
	createTestProject(t, db, "Other")

	err := DeleteProject(context.Background(), db, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
