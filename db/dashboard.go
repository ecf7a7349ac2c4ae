// ABOUTME: Dashboard aggregation queries
// ABOUTME: Combines the next pending reminders with the people most overdue for contact
package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/kin/models"
)

const (
	DashboardReminderLimit = 10
	DashboardStaleLimit    = 5
)

// GetDashboard builds the home view for a project at the given instant.
func GetDashboard(ctx context.Context, db *sql.DB, projectID int64, now time.Time) (*models.Dashboard, error) {
	reminders, err := queryReminders(ctx, db,
		reminderSelect+` WHERE r.project_id = ? AND r.status = ?`+reminderOrder+` LIMIT ?`,
		projectID, models.ReminderPending, DashboardReminderLimit)
	if err != nil {
		return nil, fmt.Errorf("dashboard reminders: %w", err)
	}

	stale, err := StalePeople(ctx, db, projectID, now, DashboardStaleLimit)
	if err != nil {
		return nil, err
	}

	return &models.Dashboard{Reminders: reminders, StalePeople: stale}, nil
}

// StalePeople returns overdue people, most overdue first. People never
// contacted rank ahead of everyone else; ties fall back to id.
func StalePeople(ctx context.Context, db *sql.DB, projectID int64, now time.Time, limit int) ([]models.Person, error) {
	candidates, err := ListPeopleWithCadence(ctx, db, projectID)
	if err != nil {
		return nil, fmt.Errorf("dashboard people: %w", err)
	}

	stale := []models.Person{}
	for _, p := range candidates {
		p.ApplyHealth(now)
		if p.Health == models.HealthOverdue {
			stale = append(stale, p)
		}
	}

	sort.SliceStable(stale, func(i, j int) bool {
		oi := models.OverdueSeconds(stale[i].LastInteraction, stale[i].FrequencyDays, now)
		oj := models.OverdueSeconds(stale[j].LastInteraction, stale[j].FrequencyDays, now)
		if oi != oj {
			return oi > oj
		}
		return stale[i].ID < stale[j].ID
	})

	if limit > 0 && len(stale) > limit {
		stale = stale[:limit]
	}
	return stale, nil
}
