// ABOUTME: Login session database operations
// ABOUTME: Sessions back token ids so logout can revoke a token before it expires
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/kin/models"
)

func CreateSession(ctx context.Context, db *sql.DB, session *models.Session) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)
	`, session.ID, session.UserID, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetActiveSession returns the session only if it is neither revoked nor expired at now.
func GetActiveSession(ctx context.Context, db *sql.DB, id string, now time.Time) (*models.Session, error) {
	s := &models.Session{}
	var revoked sql.NullInt64
	err := db.QueryRowContext(ctx, `
		SELECT id, user_id, created_at, expires_at, revoked_at
		FROM sessions
		WHERE id = ? AND revoked_at IS NULL AND expires_at > ?
	`, id, now.Unix()).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &revoked)
	if err != nil {
		return nil, notFound(err, "get session")
	}
	s.RevokedAt = int64Ptr(revoked)
	return s, nil
}

// RevokeSession marks a session revoked. Revoking twice is not an error.
func RevokeSession(ctx context.Context, db *sql.DB, id string, now time.Time) error {
	_, err := db.ExecContext(ctx, `
		UPDATE sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL
	`, now.Unix(), id)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// PurgeExpiredSessions drops sessions that can no longer authenticate anyone.
func PurgeExpiredSessions(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `
		DELETE FROM sessions WHERE expires_at <= ? OR revoked_at IS NOT NULL
	`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return res.RowsAffected()
}
