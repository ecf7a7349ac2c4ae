// ABOUTME: Terminal dashboard statistics and rendering
// ABOUTME: Renders the project dashboard and a health breakdown with lipgloss
package viz

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/kin/db"
	"github.com/harperreed/kin/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	overdueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	healthStyles = map[models.HealthState]lipgloss.Style{
		models.HealthHealthy: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.HealthDueSoon: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.HealthOverdue: overdueStyle,
		models.HealthNoRule:  mutedStyle,
	}
)

// healthOrder is the display order of the breakdown.
var healthOrder = []models.HealthState{
	models.HealthOverdue,
	models.HealthDueSoon,
	models.HealthHealthy,
	models.HealthNoRule,
}

type DashboardStats struct {
	ProjectName string
	Dashboard   *models.Dashboard
	TotalPeople int
	ByHealth    map[models.HealthState]int
	Now         time.Time
}

func GenerateDashboardStats(ctx context.Context, database *sql.DB, projectID int64, now time.Time) (*DashboardStats, error) {
	project, err := db.GetProject(ctx, database, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}

	dashboard, err := db.GetDashboard(ctx, database, projectID, now)
	if err != nil {
		return nil, err
	}

	people, err := db.ListPeople(ctx, database, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch people: %w", err)
	}

	stats := &DashboardStats{
		ProjectName: project.Name,
		Dashboard:   dashboard,
		TotalPeople: len(people),
		ByHealth:    make(map[models.HealthState]int),
		Now:         now,
	}
	for _, p := range people {
		stats.ByHealth[models.ComputeHealth(p.LastInteraction, p.FrequencyDays, now)]++
	}
	return stats, nil
}

func RenderDashboard(stats *DashboardStats) string {
	var out strings.Builder

	out.WriteString(titleStyle.Render(fmt.Sprintf("KIN · %s", stats.ProjectName)))
	out.WriteString("\n")

	out.WriteString(headerStyle.Render("CONTACT HEALTH"))
	out.WriteString("\n")
	renderHealth(&out, stats.ByHealth, stats.TotalPeople)
	out.WriteString("\n")

	out.WriteString(headerStyle.Render("UPCOMING REMINDERS"))
	out.WriteString("\n")
	if len(stats.Dashboard.Reminders) == 0 {
		out.WriteString(mutedStyle.Render("  nothing pending"))
		out.WriteString("\n")
	}
	for _, r := range stats.Dashboard.Reminders {
		due := "no due date"
		style := mutedStyle
		if r.DueDate != nil {
			due = time.Unix(*r.DueDate, 0).Format("2006-01-02")
			if *r.DueDate < stats.Now.Unix() {
				style = overdueStyle
			}
		}
		out.WriteString(fmt.Sprintf("  %s  %s %s\n",
			style.Render(fmt.Sprintf("%-11s", due)), r.Title, mutedStyle.Render("· "+r.PersonName)))
	}
	out.WriteString("\n")

	out.WriteString(headerStyle.Render("NEEDS ATTENTION"))
	out.WriteString("\n")
	if len(stats.Dashboard.StalePeople) == 0 {
		out.WriteString(mutedStyle.Render("  everyone is up to date"))
		out.WriteString("\n")
	}
	for _, p := range stats.Dashboard.StalePeople {
		out.WriteString(fmt.Sprintf("  %s  %s\n", overdueStyle.Render("⚠"), p.Name))
		out.WriteString(mutedStyle.Render("     " + staleLabel(p, stats.Now)))
		out.WriteString("\n")
	}

	return out.String()
}

func staleLabel(p models.Person, now time.Time) string {
	days := models.DaysSince(p.LastInteraction, now)
	if days < 0 {
		return "never contacted"
	}
	return fmt.Sprintf("%d days since last contact (every %d)", days, *p.FrequencyDays)
}

func renderHealth(out *strings.Builder, counts map[models.HealthState]int, total int) {
	scale := total
	if scale == 0 {
		scale = 1
	}

	for _, state := range healthOrder {
		count := counts[state]
		barLength := (count * 10) / scale
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-9s %s %2d\n",
			state, healthStyles[state].Render(bar), count))
	}
}
