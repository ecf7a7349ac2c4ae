// ABOUTME: Tests for person and interaction database operations
// ABOUTME: Covers validation, derived last interaction, search and tenant isolation
package db

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/harperreed/kin/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePerson(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	p := &models.Person{
		Name:          "  Ada Lovelace ",
		Email:         "ada@example.com",
		Company:       "Analytical Engines",
		Metadata:      json.RawMessage(`{ "twitter": "@ada" }`),
		FrequencyDays: intPtrOf(14),
	}
	require.NoError(t, CreatePerson(ctx, db, models.DefaultProjectID, p))
	assert.NotZero(t, p.ID)
	assert.Equal(t, "Ada Lovelace", p.Name)

	got, err := GetPerson(ctx, db, models.DefaultProjectID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.JSONEq(t, `{"twitter":"@ada"}`, string(got.Metadata))
	require.NotNil(t, got.FrequencyDays)
	assert.Equal(t, 14, *got.FrequencyDays)
	assert.Nil(t, got.LastInteraction)
}

func TestCreatePersonValidation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		person models.Person
		field  string
	}{
		{"missing name", models.Person{Name: "   "}, "name"},
		{"negative frequency", models.Person{Name: "x", FrequencyDays: intPtrOf(-1)}, "frequency_days"},
		{"frequency past a century", models.Person{Name: "x", FrequencyDays: intPtrOf(models.MaxFrequencyDays + 1)}, "frequency_days"},
		{"frequency overflowing seconds", models.Person{Name: "x", FrequencyDays: intPtrOf(2e14)}, "frequency_days"},
		{"metadata array", models.Person{Name: "x", Metadata: json.RawMessage(`[1,2]`)}, "metadata"},
		{"metadata garbage", models.Person{Name: "x", Metadata: json.RawMessage(`{nope`)}, "metadata"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.person
			err := CreatePerson(ctx, db, models.DefaultProjectID, &p)
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestCreatePersonDefaultsMetadata(t *testing.T) {
	db := setupTestDB(t)
	p := createTestPerson(t, db, models.DefaultProjectID, "Ada", nil)

	got, err := GetPerson(context.Background(), db, models.DefaultProjectID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got.Metadata))
	assert.Nil(t, got.FrequencyDays)
}

func TestCreatePersonKeepsMetadataNumbers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	p := &models.Person{
		Name:          "Ada",
		FrequencyDays: intPtrOf(models.MaxFrequencyDays),
		Metadata:      json.RawMessage(`{ "badge": 12345678901234567890, "ratio": 1.50 }`),
	}
	require.NoError(t, CreatePerson(ctx, db, models.DefaultProjectID, p))

	got, err := GetPerson(ctx, db, models.DefaultProjectID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, `{"badge":12345678901234567890,"ratio":1.50}`, string(got.Metadata))
	assert.Equal(t, models.MaxFrequencyDays, *got.FrequencyDays)

	bad := &models.Person{Name: "x", Metadata: json.RawMessage(`"text"`)}
	assert.True(t, models.IsValidation(CreatePerson(ctx, db, models.DefaultProjectID, bad)))
}

func TestLastInteractionIsMaxDate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	p := createTestPerson(t, db, models.DefaultProjectID, "Ada", intPtrOf(7))

	for _, date := range []int64{1_700_000_000, 1_700_500_000, 1_700_100_000} {
		require.NoError(t, CreateInteraction(ctx, db, models.DefaultProjectID,
			&models.Interaction{PersonID: p.ID, Type: "call", Date: date}))
	}

	got, err := GetPerson(ctx, db, models.DefaultProjectID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastInteraction)
	assert.Equal(t, int64(1_700_500_000), *got.LastInteraction)
}

func TestGetPersonDetail(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	p := createTestPerson(t, db, models.DefaultProjectID, "Ada", nil)

	require.NoError(t, CreateInteraction(ctx, db, models.DefaultProjectID,
		&models.Interaction{PersonID: p.ID, Type: "email", Date: 100}))
	require.NoError(t, CreateInteraction(ctx, db, models.DefaultProjectID,
		&models.Interaction{PersonID: p.ID, Type: "meeting", Date: 300}))
	due := int64(500)
	require.NoError(t, CreateReminder(ctx, db, models.DefaultProjectID,
		&models.Reminder{PersonID: p.ID, Title: "undated"}))
	require.NoError(t, CreateReminder(ctx, db, models.DefaultProjectID,
		&models.Reminder{PersonID: p.ID, Title: "dated", DueDate: &due}))

	detail, err := GetPersonDetail(ctx, db, models.DefaultProjectID, p.ID)
	require.NoError(t, err)
	require.Len(t, detail.Interactions, 2)
	assert.Equal(t, int64(300), detail.Interactions[0].Date)
	require.Len(t, detail.Reminders, 2)
	assert.Equal(t, "dated", detail.Reminders[0].Title)
	assert.Equal(t, "undated", detail.Reminders[1].Title)
	assert.Equal(t, "Ada", detail.Reminders[0].PersonName)
}

func TestSearchPeople(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	createTestPerson(t, db, models.DefaultProjectID, "Ada Lovelace", nil)
	grace := &models.Person{Name: "Grace Hopper", Company: "US Navy"}
	require.NoError(t, CreatePerson(ctx, db, models.DefaultProjectID, grace))
	for i := 0; i < 12; i++ {
		createTestPerson(t, db, models.DefaultProjectID, "Navy Seal", nil)
	}

	results, err := SearchPeople(ctx, db, models.DefaultProjectID, "LOVE", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Ada Lovelace", results[0].Name)

	results, err = SearchPeople(ctx, db, models.DefaultProjectID, "navy", 0)
	require.NoError(t, err)
	assert.Len(t, results, SearchLimit)

	results, err = SearchPeople(ctx, db, models.DefaultProjectID, "  ", 0)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestUpdateAndDeletePerson(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	p := createTestPerson(t, db, models.DefaultProjectID, "Ada", nil)
	require.NoError(t, CreateInteraction(ctx, db, models.DefaultProjectID,
		&models.Interaction{PersonID: p.ID, Type: "text"}))

	update := &models.Person{Name: "Ada King", Role: "Countess", FrequencyDays: intPtrOf(30)}
	require.NoError(t, UpdatePerson(ctx, db, models.DefaultProjectID, p.ID, update))

	got, err := GetPerson(ctx, db, models.DefaultProjectID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada King", got.Name)
	assert.Equal(t, "Countess", got.Role)

	require.NoError(t, DeletePerson(ctx, db, models.DefaultProjectID, p.ID))
	_, err = GetPerson(ctx, db, models.DefaultProjectID, p.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM interactions WHERE person_id = ?`, p.ID).Scan(&n))
	assert.Zero(t, n)
}

func TestPeopleTenantIsolation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	other := createTestProject(t, db, "Other")
	p := createTestPerson(t, db, other, "Hidden", nil)

	_, err := GetPerson(ctx, db, models.DefaultProjectID, p.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = UpdatePerson(ctx, db, models.DefaultProjectID, p.ID, &models.Person{Name: "Taken"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = DeletePerson(ctx, db, models.DefaultProjectID, p.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = CreateInteraction(ctx, db, models.DefaultProjectID, &models.Interaction{PersonID: p.ID, Type: "call"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	people, err := ListPeople(ctx, db, models.DefaultProjectID)
	require.NoError(t, err)
	assert.Empty(t, people)
}

func TestInteractionValidationAndUpdate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	p := createTestPerson(t, db, models.DefaultProjectID, "Ada", nil)

	err := CreateInteraction(ctx, db, models.DefaultProjectID, &models.Interaction{PersonID: p.ID, Type: "fax"})
	assert.True(t, models.IsValidation(err))

	err = CreateInteraction(ctx, db, models.DefaultProjectID,
		&models.Interaction{PersonID: p.ID, Type: "call", Date: models.MaxTimestamp + 1})
	assert.True(t, models.IsValidation(err))
	err = CreateInteraction(ctx, db, models.DefaultProjectID,
		&models.Interaction{PersonID: p.ID, Type: "call", Date: -1})
	assert.True(t, models.IsValidation(err))

	i := &models.Interaction{PersonID: p.ID, Type: "Call"}
	require.NoError(t, CreateInteraction(ctx, db, models.DefaultProjectID, i))
	assert.Equal(t, "call", i.Type)
	assert.NotZero(t, i.Date)

	require.NoError(t, UpdateInteraction(ctx, db, models.DefaultProjectID, i.ID,
		&models.Interaction{Type: "meeting", Summary: "lunch", Date: 42}))
	err = UpdateInteraction(ctx, db, models.DefaultProjectID, i.ID,
		&models.Interaction{Type: "meeting", Date: 1 << 62})
	assert.True(t, models.IsValidation(err))

	got, err := GetInteraction(ctx, db, models.DefaultProjectID, i.ID)
	require.NoError(t, err)
	assert.Equal(t, "meeting", got.Type)
	assert.Equal(t, "lunch", got.Summary)
	assert.Equal(t, int64(42), got.Date)

	list, err := ListInteractions(ctx, db, models.DefaultProjectID, nil, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
