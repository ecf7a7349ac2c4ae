// ABOUTME: Reminder database operations
// ABOUTME: Project-scoped reminders with the pending/done toggle used by the dashboard
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/harperreed/kin/models"
)

// Reminder list filters beyond the two statuses.
const ReminderFilterAll = "all"

const reminderSelect = `
	SELECT r.id, r.project_id, r.person_id, p.name, r.title, r.due_date, r.status, r.created_at
	FROM reminders r
	JOIN people p ON p.id = r.person_id AND p.project_id = r.project_id
`

// Undated reminders sort after dated ones.
const reminderOrder = ` ORDER BY r.due_date IS NULL, r.due_date, r.id`

func scanReminder(row interface{ Scan(...interface{}) error }) (*models.Reminder, error) {
	r := &models.Reminder{}
	var due sql.NullInt64
	if err := row.Scan(&r.ID, &r.ProjectID, &r.PersonID, &r.PersonName, &r.Title, &due, &r.Status, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.DueDate = int64Ptr(due)
	return r, nil
}

func queryReminders(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]models.Reminder, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	reminders := []models.Reminder{}
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

// CreateReminder adds a pending reminder for a person in the project.
func CreateReminder(ctx context.Context, db *sql.DB, projectID int64, r *models.Reminder) error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return models.Invalid("title", "is required")
	}
	if r.Status == "" {
		r.Status = models.ReminderPending
	}
	if !models.IsValidReminderStatus(r.Status) {
		return models.Invalid("status", "must be pending or done")
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO reminders (project_id, person_id, title, due_date, status)
		SELECT project_id, id, ?, ?, ?
		FROM people
		WHERE id = ? AND project_id = ?
	`, r.Title, r.DueDate, r.Status, r.PersonID, projectID)
	if err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	if err := requireAffected(res, "create reminder: person"); err != nil {
		return err
	}
	r.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}
	r.ProjectID = projectID
	return nil
}

func GetReminder(ctx context.Context, db *sql.DB, projectID, id int64) (*models.Reminder, error) {
	r, err := scanReminder(db.QueryRowContext(ctx, reminderSelect+` WHERE r.id = ? AND r.project_id = ?`, id, projectID))
	if err != nil {
		return nil, notFound(err, "get reminder")
	}
	return r, nil
}

// ListReminders filters by status (pending when empty, or "all") and by a
// case-insensitive search over the title and the person's name.
func ListReminders(ctx context.Context, db *sql.DB, projectID int64, status, search string) ([]models.Reminder, error) {
	query := reminderSelect + ` WHERE r.project_id = ?`
	args := []interface{}{projectID}

	switch status {
	case "":
		status = models.ReminderPending
		fallthrough
	case models.ReminderPending, models.ReminderDone:
		query += ` AND r.status = ?`
		args = append(args, status)
	case ReminderFilterAll:
	default:
		return nil, models.Invalid("status", "must be pending, done or all")
	}

	if search = strings.TrimSpace(search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query += ` AND (LOWER(r.title) LIKE ? OR LOWER(p.name) LIKE ?)`
		args = append(args, pattern, pattern)
	}

	reminders, err := queryReminders(ctx, db, query+reminderOrder, args...)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return reminders, nil
}

// ListPersonReminders returns every reminder for one person.
func ListPersonReminders(ctx context.Context, db *sql.DB, projectID, personID int64) ([]models.Reminder, error) {
	reminders, err := queryReminders(ctx, db,
		reminderSelect+` WHERE r.project_id = ? AND r.person_id = ?`+reminderOrder, projectID, personID)
	if err != nil {
		return nil, fmt.Errorf("list person reminders: %w", err)
	}
	return reminders, nil
}

// SetReminderStatus moves a reminder between pending and done. Repeating the
// current status succeeds without change. A reminder outside the project is
// reported as ErrNotFound.
func SetReminderStatus(ctx context.Context, db *sql.DB, projectID, id int64, status string) (*models.Reminder, error) {
	status = strings.TrimSpace(status)
	if !models.IsValidReminderStatus(status) {
		return nil, models.Invalid("status", "must be pending or done")
	}

	res, err := db.ExecContext(ctx, `UPDATE reminders SET status = ? WHERE id = ? AND project_id = ?`,
		status, id, projectID)
	if err != nil {
		return nil, fmt.Errorf("set reminder status: %w", err)
	}
	if err := requireAffected(res, "set reminder status"); err != nil {
		return nil, err
	}
	return GetReminder(ctx, db, projectID, id)
}

func DeleteReminder(ctx context.Context, db *sql.DB, projectID, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ? AND project_id = ?`, id, projectID)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return requireAffected(res, "delete reminder")
}
