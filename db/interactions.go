// ABOUTME: Interaction log database operations
// ABOUTME: Inserts are guarded by a people lookup so a foreign person id cannot be logged against
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/kin/models"
)

// DefaultInteractionLimit bounds ListInteractions when no limit is given for a project-wide list.
const DefaultInteractionLimit = 50

const interactionColumns = `id, project_id, person_id, type, summary, date, created_at`

func scanInteraction(row interface{ Scan(...interface{}) error }) (*models.Interaction, error) {
	i := &models.Interaction{}
	if err := row.Scan(&i.ID, &i.ProjectID, &i.PersonID, &i.Type, &i.Summary, &i.Date, &i.CreatedAt); err != nil {
		return nil, err
	}
	return i, nil
}

func validateInteraction(i *models.Interaction) error {
	i.Type = strings.ToLower(strings.TrimSpace(i.Type))
	if !models.IsValidInteractionType(i.Type) {
		return models.Invalid("type", "must be one of call, email, meeting, text, other")
	}
	if i.Date < 0 || i.Date > models.MaxTimestamp {
		return models.Invalid("date", "must be between 1970-01-01 and 9999-12-31")
	}
	return nil
}

// CreateInteraction logs an interaction. A zero Date means now. The person must
// belong to the project, otherwise ErrNotFound is returned and nothing is written.
func CreateInteraction(ctx context.Context, db *sql.DB, projectID int64, i *models.Interaction) error {
	if err := validateInteraction(i); err != nil {
		return err
	}
	now := time.Now().Unix()
	if i.Date == 0 {
		i.Date = now
	}
	i.ProjectID = projectID
	i.CreatedAt = now

	res, err := db.ExecContext(ctx, `
		INSERT INTO interactions (project_id, person_id, type, summary, date, created_at)
		SELECT project_id, id, ?, ?, ?, ?
		FROM people
		WHERE id = ? AND project_id = ?
	`, i.Type, i.Summary, i.Date, i.CreatedAt, i.PersonID, projectID)
	if err != nil {
		return fmt.Errorf("create interaction: %w", err)
	}
	if err := requireAffected(res, "create interaction: person"); err != nil {
		return err
	}
	i.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}

	if err := touchPerson(ctx, db, projectID, i.PersonID, now); err != nil {
		return fmt.Errorf("touch person: %w", err)
	}
	return nil
}

func GetInteraction(ctx context.Context, db *sql.DB, projectID, id int64) (*models.Interaction, error) {
	i, err := scanInteraction(db.QueryRowContext(ctx,
		`SELECT `+interactionColumns+` FROM interactions WHERE id = ? AND project_id = ?`, id, projectID))
	if err != nil {
		return nil, notFound(err, "get interaction")
	}
	return i, nil
}

// UpdateInteraction edits type, summary and date. The person is fixed.
func UpdateInteraction(ctx context.Context, db *sql.DB, projectID, id int64, i *models.Interaction) error {
	if err := validateInteraction(i); err != nil {
		return err
	}
	if i.Date == 0 {
		return models.Invalid("date", "is required")
	}

	res, err := db.ExecContext(ctx, `
		UPDATE interactions SET type = ?, summary = ?, date = ?
		WHERE id = ? AND project_id = ?
	`, i.Type, i.Summary, i.Date, id, projectID)
	if err != nil {
		return fmt.Errorf("update interaction: %w", err)
	}
	return requireAffected(res, "update interaction")
}

// ListInteractions returns interactions newest first. With personID set it
// lists that person's whole log; limit <= 0 then means no limit.
func ListInteractions(ctx context.Context, db *sql.DB, projectID int64, personID *int64, limit int) ([]models.Interaction, error) {
	query := `SELECT ` + interactionColumns + ` FROM interactions WHERE project_id = ?`
	args := []interface{}{projectID}

	if personID != nil {
		query += ` AND person_id = ?`
		args = append(args, *personID)
	} else if limit <= 0 {
		limit = DefaultInteractionLimit
	}
	query += ` ORDER BY date DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	interactions := []models.Interaction{}
	for rows.Next() {
		i, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		interactions = append(interactions, *i)
	}
	return interactions, rows.Err()
}
