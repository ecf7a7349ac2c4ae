// ABOUTME: Tests for reminder database operations
// ABOUTME: Covers the pending/done toggle, filters and cross-project access
package db

import (
	"context"
	"testing"

	"github.com/harperreed/kin/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetReminderStatusIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	p := createTestPerson(t, db, models.DefaultProjectID, "Ada", nil)

	r := &models.Reminder{PersonID: p.ID, Title: "Send notes"}
	require.NoError(t, CreateReminder(ctx, db, models.DefaultProjectID, r))
	assert.Equal(t, models.ReminderPending, r.Status)

	got, err := SetReminderStatus(ctx, db, models.DefaultProjectID, r.ID, models.ReminderDone)
	require.NoError(t, err)
	assert.Equal(t, models.ReminderDone, got.Status)

	got, err = SetReminderStatus(ctx, db, models.DefaultProjectID, r.ID, models.ReminderDone)
	require.NoError(t, err)
	assert.Equal(t, models.ReminderDone, got.Status)

	got, err = SetReminderStatus(ctx, db, models.DefaultProjectID, r.ID, models.ReminderPending)
	require.NoError(t, err)
	assert.Equal(t, models.ReminderPending, got.Status)
}

func TestSetReminderStatusInvalid(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	p := createTestPerson(t, db, models.DefaultProjectID, "Ada", nil)
	r := &models.Reminder{PersonID: p.ID, Title: "Send notes"}
	require.NoError(t, CreateReminder(ctx, db, models.DefaultProjectID, r))

	_, err := SetReminderStatus(ctx, db, models.DefaultProjectID, r.ID, "snoozed")
	assert.True(t, models.IsValidation(err))

	_, err = SetReminderStatus(ctx, db, models.DefaultProjectID, 9999, models.ReminderDone)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestReminderCrossProject(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	other := createTestProject(t, db, "Other")
	p := createTestPerson(t, db, other, "Hidden", nil)
	r := &models.Reminder{PersonID: p.ID, Title: "secret"}
	require.NoError(t, CreateReminder(ctx, db, other, r))

	_, err := GetReminder(ctx, db, models.DefaultProjectID, r.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = SetReminderStatus(ctx, db, models.DefaultProjectID, r.ID, models.ReminderDone)
	assert.ErrorIs(t, err, models.ErrNotFound)

	got, err := GetReminder(ctx, db, other, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReminderPending, got.Status)

	err = CreateReminder(ctx, db, models.DefaultProjectID, &models.Reminder{PersonID: p.ID, Title: "nope"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListRemindersFilters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	ada := createTestPerson(t, db, models.DefaultProjectID, "Ada", nil)
	grace := createTestPerson(t, db, models.DefaultProjectID, "Grace", nil)

	late, early := int64(2000), int64(1000)
	r1 := &models.Reminder{PersonID: ada.ID, Title: "Call back"}
	r2 := &models.Reminder{PersonID: grace.ID, Title: "Birthday", DueDate: &late}
	r3 := &models.Reminder{PersonID: ada.ID, Title: "Intro", DueDate: &early}
	for _, r := range []*models.Reminder{r1, r2, r3} {
		require.NoError(t, CreateReminder(ctx, db, models.DefaultProjectID, r))
	}
	_, err := SetReminderStatus(ctx, db, models.DefaultProjectID, r2.ID, models.ReminderDone)
	require.NoError(t, err)

	pending, err := ListReminders(ctx, db, models.DefaultProjectID, "", "")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, r3.ID, pending[0].ID)
	assert.Equal(t, r1.ID, pending[1].ID)

	all, err := ListReminders(ctx, db, models.DefaultProjectID, ReminderFilterAll, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	done, err := ListReminders(ctx, db, models.DefaultProjectID, models.ReminderDone, "")
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "Grace", done[0].PersonName)

	byName, err := ListReminders(ctx, db, models.DefaultProjectID, ReminderFilterAll, "grace")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, r2.ID, byName[0].ID)

	byTitle, err := ListReminders(ctx, db, models.DefaultProjectID, ReminderFilterAll, "CALL")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, r1.ID, byTitle[0].ID)

	_, err = ListReminders(ctx, db, models.DefaultProjectID, "later", "")
	assert.True(t, models.IsValidation(err))
}

func TestDeleteReminder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	p := createTestPerson(t, db, models.DefaultProjectID, "Ada", nil)
	r := &models.Reminder{PersonID: p.ID, Title: "x"}
	require.NoError(t, CreateReminder(ctx, db, models.DefaultProjectID, r))

	require.NoError(t, DeleteReminder(ctx, db, models.DefaultProjectID, r.ID))
	assert.ErrorIs(t, DeleteReminder(ctx, db, models.DefaultProjectID, r.ID), models.ErrNotFound)
}
