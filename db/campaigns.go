// ABOUTME: Campaign and recipient database operations
// ABOUTME: Bulk recipient insertion is idempotent and marking a send also logs an email interaction
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/kin/models"
)

// Campaign list filter meaning every status.
const CampaignFilterAll = "all"

const campaignColumns = `id, project_id, title, subject_template, body_template, status, created_at, updated_at`

func scanCampaign(row interface{ Scan(...interface{}) error }) (*models.Campaign, error) {
	c := &models.Campaign{}
	err := row.Scan(&c.ID, &c.ProjectID, &c.Title, &c.SubjectTemplate, &c.BodyTemplate,
		&c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func CreateCampaign(ctx context.Context, db *sql.DB, projectID int64, c *models.Campaign) error {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return models.Invalid("title", "is required")
	}
	now := time.Now().Unix()
	c.ProjectID = projectID
	c.Status = models.CampaignOpen
	c.CreatedAt = now
	c.UpdatedAt = now

	res, err := db.ExecContext(ctx, `
		INSERT INTO campaigns (project_id, title, subject_template, body_template, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, projectID, c.Title, c.SubjectTemplate, c.BodyTemplate, c.Status, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

// GetCampaign loads a campaign with its recipients.
func GetCampaign(ctx context.Context, db *sql.DB, projectID, id int64) (*models.Campaign, error) {
	c, err := scanCampaign(db.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = ? AND project_id = ?`, id, projectID))
	if err != nil {
		return nil, notFound(err, "get campaign")
	}

	c.Recipients, err = ListCampaignRecipients(ctx, db, projectID, id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCampaigns returns campaigns newest first, optionally filtered by status.
func ListCampaigns(ctx context.Context, db *sql.DB, projectID int64, status string) ([]models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE project_id = ?`
	args := []interface{}{projectID}
	switch {
	case status == "" || status == CampaignFilterAll:
	case models.IsValidCampaignStatus(status):
		query += ` AND status = ?`
		args = append(args, status)
	default:
		return nil, models.Invalid("status", "must be open, completed, archived or all")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	campaigns := []models.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// UpdateCampaign changes the title and templates.
func UpdateCampaign(ctx context.Context, db *sql.DB, projectID, id int64, c *models.Campaign) error {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return models.Invalid("title", "is required")
	}
	c.UpdatedAt = time.Now().Unix()

	res, err := db.ExecContext(ctx, `
		UPDATE campaigns SET title = ?, subject_template = ?, body_template = ?, updated_at = ?
		WHERE id = ? AND project_id = ?
	`, c.Title, c.SubjectTemplate, c.BodyTemplate, c.UpdatedAt, id, projectID)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return requireAffected(res, "update campaign")
}

func SetCampaignStatus(ctx context.Context, db *sql.DB, projectID, id int64, status string) error {
	if !models.IsValidCampaignStatus(status) {
		return models.Invalid("status", "must be open, completed or archived")
	}
	res, err := db.ExecContext(ctx, `
		UPDATE campaigns SET status = ?, updated_at = ? WHERE id = ? AND project_id = ?
	`, status, time.Now().Unix(), id, projectID)
	if err != nil {
		return fmt.Errorf("set campaign status: %w", err)
	}
	return requireAffected(res, "set campaign status")
}

func DeleteCampaign(ctx context.Context, db *sql.DB, projectID, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ? AND project_id = ?`, id, projectID)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return requireAffected(res, "delete campaign")
}

const recipientSelect = `
	SELECT cr.campaign_id, cr.person_id, p.name, p.email, cr.status, cr.sent_at
	FROM campaign_recipients cr
	JOIN campaigns c ON c.id = cr.campaign_id
	JOIN people p ON p.id = cr.person_id
`

func scanRecipient(row interface{ Scan(...interface{}) error }) (*models.CampaignRecipient, error) {
	r := &models.CampaignRecipient{}
	var sent sql.NullInt64
	if err := row.Scan(&r.CampaignID, &r.PersonID, &r.Name, &r.Email, &r.Status, &sent); err != nil {
		return nil, err
	}
	r.SentAt = int64Ptr(sent)
	return r, nil
}

func ListCampaignRecipients(ctx context.Context, db *sql.DB, projectID, campaignID int64) ([]models.CampaignRecipient, error) {
	rows, err := db.QueryContext(ctx, recipientSelect+`
		WHERE cr.campaign_id = ? AND c.project_id = ?
		ORDER BY p.name, p.id
	`, campaignID, projectID)
	if err != nil {
		return nil, fmt.Errorf("list campaign recipients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	recipients := []models.CampaignRecipient{}
	for rows.Next() {
		r, err := scanRecipient(rows)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, *r)
	}
	return recipients, rows.Err()
}

func GetCampaignRecipient(ctx context.Context, db *sql.DB, projectID, campaignID, personID int64) (*models.CampaignRecipient, error) {
	r, err := scanRecipient(db.QueryRowContext(ctx, recipientSelect+`
		WHERE cr.campaign_id = ? AND cr.person_id = ? AND c.project_id = ?
	`, campaignID, personID, projectID))
	if err != nil {
		return nil, notFound(err, "get campaign recipient")
	}
	return r, nil
}

// AddCampaignRecipients adds people to a campaign in one transaction and
// returns how many rows were new. Existing recipients and people from other
// projects are skipped without error.
func AddCampaignRecipients(ctx context.Context, db *sql.DB, projectID, campaignID int64, personIDs []int64) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM campaigns WHERE id = ? AND project_id = ?`, campaignID, projectID).Scan(&exists)
	if err != nil {
		return 0, notFound(err, "add campaign recipients: campaign")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO campaign_recipients (campaign_id, person_id, status)
		SELECT ?, id, 'pending'
		FROM people
		WHERE id = ? AND project_id = ?
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare recipient insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	added := 0
	for _, personID := range personIDs {
		res, err := stmt.ExecContext(ctx, campaignID, personID, projectID)
		if err != nil {
			return 0, fmt.Errorf("add campaign recipient %d: %w", personID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return added, nil
}

func RemoveCampaignRecipient(ctx context.Context, db *sql.DB, projectID, campaignID, personID int64) error {
	res, err := db.ExecContext(ctx, `
		DELETE FROM campaign_recipients
		WHERE campaign_id = ? AND person_id = ?
		  AND campaign_id IN (SELECT id FROM campaigns WHERE project_id = ?)
	`, campaignID, personID, projectID)
	if err != nil {
		return fmt.Errorf("remove campaign recipient: %w", err)
	}
	return requireAffected(res, "remove campaign recipient")
}

// MarkRecipientSent records that the campaign email went out to one person and
// logs it as an email interaction dated now, atomically. A recipient that was
// already sent is returned as is with a nil interaction.
func MarkRecipientSent(ctx context.Context, db *sql.DB, projectID, campaignID, personID int64, now time.Time) (*models.CampaignRecipient, *models.Interaction, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	var title string
	err = tx.QueryRowContext(ctx, `SELECT title FROM campaigns WHERE id = ? AND project_id = ?`, campaignID, projectID).Scan(&title)
	if err != nil {
		return nil, nil, notFound(err, "mark sent: campaign")
	}

	recipient, err := scanRecipient(tx.QueryRowContext(ctx, recipientSelect+`
		WHERE cr.campaign_id = ? AND cr.person_id = ? AND c.project_id = ?
	`, campaignID, personID, projectID))
	if err != nil {
		return nil, nil, notFound(err, "mark sent: recipient")
	}
	if recipient.Status == models.RecipientSent {
		return recipient, nil, nil
	}

	sentAt := now.Unix()
	_, err = tx.ExecContext(ctx, `
		UPDATE campaign_recipients SET status = ?, sent_at = ? WHERE campaign_id = ? AND person_id = ?
	`, models.RecipientSent, sentAt, campaignID, personID)
	if err != nil {
		return nil, nil, fmt.Errorf("mark recipient sent: %w", err)
	}

	interaction := &models.Interaction{
		ProjectID: projectID,
		PersonID:  personID,
		Type:      models.InteractionEmail,
		Summary:   "Campaign: " + title,
		Date:      sentAt,
		CreatedAt: sentAt,
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO interactions (project_id, person_id, type, summary, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, interaction.ProjectID, interaction.PersonID, interaction.Type, interaction.Summary, interaction.Date, interaction.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("log campaign interaction: %w", err)
	}
	if interaction.ID, err = res.LastInsertId(); err != nil {
		return nil, nil, err
	}

	if err := touchPerson(ctx, tx, projectID, personID, sentAt); err != nil {
		return nil, nil, fmt.Errorf("touch person: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	recipient.Status = models.RecipientSent
	recipient.SentAt = &sentAt
	return recipient, interaction, nil
}

// IsNotFound is a convenience for callers that branch on missing rows.
func IsNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
