// ABOUTME: User database operations
// ABOUTME: Accounts used only for authentication; emails are unique case-insensitively
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/kin/models"
	"github.com/mattn/go-sqlite3"
)

const userColumns = `id, email, name, password_hash, created_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser inserts a user whose PasswordHash is already set.
func CreateUser(ctx context.Context, db *sql.DB, user *models.User) error {
	user.Email = strings.TrimSpace(user.Email)
	if user.Email == "" {
		return models.Invalid("email", "is required")
	}
	if user.PasswordHash == "" {
		return models.Invalid("password", "is required")
	}
	user.CreatedAt = time.Now().Unix()

	res, err := db.ExecContext(ctx, `
		INSERT INTO users (email, name, password_hash, created_at) VALUES (?, ?, ?, ?)
	`, user.Email, user.Name, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Invalid("email", "is already in use")
		}
		return fmt.Errorf("create user: %w", err)
	}
	user.ID, err = res.LastInsertId()
	return err
}

func GetUser(ctx context.Context, db *sql.DB, id int64) (*models.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "get user")
	}
	return u, nil
}

func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*models.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, strings.TrimSpace(email)))
	if err != nil {
		return nil, notFound(err, "get user by email")
	}
	return u, nil
}

func ListUsers(ctx context.Context, db *sql.DB) ([]models.User, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func CountUsers(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// UpdateUser changes email and name, and the password hash when one is given.
func UpdateUser(ctx context.Context, db *sql.DB, user *models.User) error {
	user.Email = strings.TrimSpace(user.Email)
	if user.Email == "" {
		return models.Invalid("email", "is required")
	}

	var res sql.Result
	var err error
	if user.PasswordHash != "" {
		res, err = db.ExecContext(ctx, `UPDATE users SET email = ?, name = ?, password_hash = ? WHERE id = ?`,
			user.Email, user.Name, user.PasswordHash, user.ID)
	} else {
		res, err = db.ExecContext(ctx, `UPDATE users SET email = ?, name = ? WHERE id = ?`,
			user.Email, user.Name, user.ID)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return models.Invalid("email", "is already in use")
		}
		return fmt.Errorf("update user: %w", err)
	}
	return requireAffected(res, "update user")
}

func DeleteUser(ctx context.Context, db *sql.DB, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(res, "delete user")
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
