// ABOUTME: Project database operations
// ABOUTME: Tenant roots; deleting a project cascades to everything it owns
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/kin/models"
)

func CreateProject(ctx context.Context, db *sql.DB, project *models.Project) error {
	project.Name = strings.TrimSpace(project.Name)
	if project.Name == "" {
		return models.Invalid("name", "is required")
	}
	project.CreatedAt = time.Now().Unix()

	res, err := db.ExecContext(ctx, `INSERT INTO projects (name, created_at) VALUES (?, ?)`,
		project.Name, project.CreatedAt)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	project.ID, err = res.LastInsertId()
	return err
}

func GetProject(ctx context.Context, db *sql.DB, id int64) (*models.Project, error) {
	p := &models.Project{}
	err := db.QueryRowContext(ctx, `SELECT id, name, created_at FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err, "get project")
	}
	return p, nil
}

func ListProjects(ctx context.Context, db *sql.DB) ([]models.Project, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, created_at FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func RenameProject(ctx context.Context, db *sql.DB, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Invalid("name", "is required")
	}
	res, err := db.ExecContext(ctx, `UPDATE projects SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("rename project: %w", err)
	}
	return requireAffected(res, "rename project")
}

// DeleteProject removes a project and, through foreign keys, all data it owns.
// The last remaining project can never be deleted.
func DeleteProject(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count); err != nil {
		return fmt.Errorf("count projects: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if err := requireAffected(res, "delete project"); err != nil {
		return err
	}
	if count <= 1 {
		return models.Invalid("id", "cannot delete the only project")
	}

	return tx.Commit()
}
