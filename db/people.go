// ABOUTME: Person database operations
// ABOUTME: Project-scoped CRUD and search; last_interaction is always derived with MAX(date)
package db

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/kin/models"
)

// SearchLimit caps results from SearchPeople.
const SearchLimit = 10

const personSelect = `
	SELECT p.id, p.project_id, p.name, p.email, p.phone, p.company, p.role, p.manager_name,
	       p.location, p.tags, p.metadata, p.notes, p.frequency_days, p.created_at, p.updated_at,
	       (SELECT MAX(i.date) FROM interactions i
	        WHERE i.person_id = p.id AND i.project_id = p.project_id) AS last_interaction
	FROM people p
`

func scanPerson(row interface{ Scan(...interface{}) error }) (*models.Person, error) {
	p := &models.Person{}
	var metadata string
	var frequency, last sql.NullInt64
	err := row.Scan(
		&p.ID, &p.ProjectID, &p.Name, &p.Email, &p.Phone, &p.Company, &p.Role, &p.ManagerName,
		&p.Location, &p.Tags, &metadata, &p.Notes, &frequency, &p.CreatedAt, &p.UpdatedAt,
		&last,
	)
	if err != nil {
		return nil, err
	}
	p.Metadata = json.RawMessage(metadata)
	p.FrequencyDays = intPtr(frequency)
	p.LastInteraction = int64Ptr(last)
	return p, nil
}

func queryPeople(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]models.Person, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	people := []models.Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, *p)
	}
	return people, rows.Err()
}

// normalizePerson validates user-supplied fields and canonicalizes metadata.
func normalizePerson(p *models.Person) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return models.Invalid("name", "is required")
	}
	if p.FrequencyDays != nil && *p.FrequencyDays < 0 {
		return models.Invalid("frequency_days", "must not be negative")
	}
	if p.FrequencyDays != nil && *p.FrequencyDays > models.MaxFrequencyDays {
		return models.Invalid("frequency_days", "must be at most %d", models.MaxFrequencyDays)
	}

	trimmed := bytes.TrimSpace(p.Metadata)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		p.Metadata = json.RawMessage("{}")
		return nil
	}
	// Shape check only; the stored bytes are the caller's, compacted, so numbers keep their precision
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil || obj == nil {
		return models.Invalid("metadata", "must be a JSON object")
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return models.Invalid("metadata", "must be a JSON object")
	}
	p.Metadata = compact.Bytes()
	return nil
}

func CreatePerson(ctx context.Context, db *sql.DB, projectID int64, p *models.Person) error {
	if err := normalizePerson(p); err != nil {
		return err
	}
	now := time.Now().Unix()
	p.ProjectID = projectID
	p.CreatedAt = now
	p.UpdatedAt = now
	p.LastInteraction = nil

	res, err := db.ExecContext(ctx, `
		INSERT INTO people (project_id, name, email, phone, company, role, manager_name,
		                    location, tags, metadata, notes, frequency_days, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, projectID, p.Name, p.Email, p.Phone, p.Company, p.Role, p.ManagerName,
		p.Location, p.Tags, string(p.Metadata), p.Notes, p.FrequencyDays, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create person: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

func GetPerson(ctx context.Context, db *sql.DB, projectID, id int64) (*models.Person, error) {
	p, err := scanPerson(db.QueryRowContext(ctx, personSelect+` WHERE p.id = ? AND p.project_id = ?`, id, projectID))
	if err != nil {
		return nil, notFound(err, "get person")
	}
	return p, nil
}

// GetPersonDetail loads a person with their interactions (newest first) and reminders.
func GetPersonDetail(ctx context.Context, db *sql.DB, projectID, id int64) (*models.PersonDetail, error) {
	p, err := GetPerson(ctx, db, projectID, id)
	if err != nil {
		return nil, err
	}

	interactions, err := ListInteractions(ctx, db, projectID, &id, 0)
	if err != nil {
		return nil, err
	}
	reminders, err := ListPersonReminders(ctx, db, projectID, id)
	if err != nil {
		return nil, err
	}

	return &models.PersonDetail{Person: *p, Interactions: interactions, Reminders: reminders}, nil
}

// ListPeople returns every person in the project, most recently updated first.
func ListPeople(ctx context.Context, db *sql.DB, projectID int64) ([]models.Person, error) {
	people, err := queryPeople(ctx, db, personSelect+`
		WHERE p.project_id = ?
		ORDER BY p.updated_at DESC, p.id DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	return people, nil
}

// ListPeopleWithCadence returns the people that have a frequency rule.
func ListPeopleWithCadence(ctx context.Context, db *sql.DB, projectID int64) ([]models.Person, error) {
	people, err := queryPeople(ctx, db, personSelect+`
		WHERE p.project_id = ? AND p.frequency_days IS NOT NULL
		ORDER BY p.id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list people with cadence: %w", err)
	}
	return people, nil
}

// SearchPeople matches a case-insensitive substring of name or company.
func SearchPeople(ctx context.Context, db *sql.DB, projectID int64, query string, limit int) ([]models.Person, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Person{}, nil
	}
	if limit <= 0 || limit > SearchLimit {
		limit = SearchLimit
	}

	searchPattern := "%" + strings.ToLower(query) + "%"
	people, err := queryPeople(ctx, db, personSelect+`
		WHERE p.project_id = ? AND (LOWER(p.name) LIKE ? OR LOWER(p.company) LIKE ?)
		ORDER BY p.name
		LIMIT ?
	`, projectID, searchPattern, searchPattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search people: %w", err)
	}
	return people, nil
}

// UpdatePerson replaces all editable fields of a person in the project.
func UpdatePerson(ctx context.Context, db *sql.DB, projectID, id int64, p *models.Person) error {
	if err := normalizePerson(p); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().Unix()

	res, err := db.ExecContext(ctx, `
		UPDATE people
		SET name = ?, email = ?, phone = ?, company = ?, role = ?, manager_name = ?,
		    location = ?, tags = ?, metadata = ?, notes = ?, frequency_days = ?, updated_at = ?
		WHERE id = ? AND project_id = ?
	`, p.Name, p.Email, p.Phone, p.Company, p.Role, p.ManagerName,
		p.Location, p.Tags, string(p.Metadata), p.Notes, p.FrequencyDays, p.UpdatedAt,
		id, projectID)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	if err := requireAffected(res, "update person"); err != nil {
		return err
	}
	p.ID = id
	p.ProjectID = projectID
	return nil
}

// DeletePerson removes a person; interactions, reminders and campaign
// memberships go with it through foreign keys.
func DeletePerson(ctx context.Context, db *sql.DB, projectID, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM people WHERE id = ? AND project_id = ?`, id, projectID)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	return requireAffected(res, "delete person")
}

// touchPerson bumps updated_at so recently active people sort first.
func touchPerson(ctx context.Context, exec interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
}, projectID, id int64, now int64) error {
	_, err := exec.ExecContext(ctx, `UPDATE people SET updated_at = ? WHERE id = ? AND project_id = ?`, now, id, projectID)
	return err
}
