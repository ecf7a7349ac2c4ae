// ABOUTME: Dashboard, people and interaction endpoints
// ABOUTME: Every person returned carries derived last_interaction and health
package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/harperreed/kin/db"
	"github.com/harperreed/kin/models"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleDashboard(c echo.Context) error {
	dashboard, err := db.GetDashboard(c.Request().Context(), s.db, projectID(c), s.now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboard)
}

type personRequest struct {
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	Company       string          `json:"company"`
	Role          string          `json:"role"`
	ManagerName   string          `json:"manager_name"`
	Location      string          `json:"location"`
	Tags          string          `json:"tags"`
	Metadata      json.RawMessage `json:"metadata"`
	Notes         string          `json:"notes"`
	FrequencyDays *int            `json:"frequency_days"`
}

func (r *personRequest) person() *models.Person {
	return &models.Person{
		Name:          r.Name,
		Email:         strings.TrimSpace(r.Email),
		Phone:         r.Phone,
		Company:       r.Company,
		Role:          r.Role,
		ManagerName:   r.ManagerName,
		Location:      r.Location,
		Tags:          r.Tags,
		Metadata:      r.Metadata,
		Notes:         r.Notes,
		FrequencyDays: r.FrequencyDays,
	}
}

func validHealthFilter(h string) bool {
	switch models.HealthState(h) {
	case models.HealthNoRule, models.HealthHealthy, models.HealthDueSoon, models.HealthOverdue:
		return true
	}
	return false
}

func (s *Server) handleListPeople(c echo.Context) error {
	filter := c.QueryParam("health")
	if filter != "" && !validHealthFilter(filter) {
		return models.Invalid("health", "must be no_rule, healthy, due_soon or overdue")
	}

	people, err := db.ListPeople(c.Request().Context(), s.db, projectID(c))
	if err != nil {
		return err
	}

	now := s.now()
	result := make([]models.Person, 0, len(people))
	for _, p := range people {
		p.ApplyHealth(now)
		if filter == "" || string(p.Health) == filter {
			result = append(result, p)
		}
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleSearchPeople(c echo.Context) error {
	people, err := db.SearchPeople(c.Request().Context(), s.db, projectID(c), c.QueryParam("q"), db.SearchLimit)
	if err != nil {
		return err
	}
	now := s.now()
	for i := range people {
		people[i].ApplyHealth(now)
	}
	return c.JSON(http.StatusOK, people)
}

func (s *Server) handleGetPerson(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	detail, err := db.GetPersonDetail(c.Request().Context(), s.db, projectID(c), id)
	if err != nil {
		return err
	}
	detail.ApplyHealth(s.now())
	return c.JSON(http.StatusOK, detail)
}

func (s *Server) handleCreatePerson(c echo.Context) error {
	var req personRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p := req.person()
	if err := db.CreatePerson(c.Request().Context(), s.db, projectID(c), p); err != nil {
		return err
	}
	return created(c, p.ID)
}

func (s *Server) handleUpdatePerson(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req personRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := db.UpdatePerson(c.Request().Context(), s.db, projectID(c), id, req.person()); err != nil {
		return err
	}
	return ok(c)
}

func (s *Server) handleDeletePerson(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := db.DeletePerson(c.Request().Context(), s.db, projectID(c), id); err != nil {
		return err
	}
	return ok(c)
}

type interactionRequest struct {
	PersonID int64  `json:"person_id"`
	Type     string `json:"type"`
	Summary  string `json:"summary"`
	Date     int64  `json:"date"`
}

func (s *Server) handleListInteractions(c echo.Context) error {
	personID, err := optionalIntQuery(c, "person_id")
	if err != nil {
		return err
	}
	limit, err := optionalIntQuery(c, "limit")
	if err != nil {
		return err
	}
	n := 0
	if limit != nil {
		n = int(*limit)
	}

	interactions, err := db.ListInteractions(c.Request().Context(), s.db, projectID(c), personID, n)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, interactions)
}

func (s *Server) handleCreateInteraction(c echo.Context) error {
	var req interactionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.PersonID <= 0 {
		return models.Invalid("person_id", "is required")
	}
	i := &models.Interaction{PersonID: req.PersonID, Type: req.Type, Summary: req.Summary, Date: req.Date}
	if i.Date == 0 {
		i.Date = s.now().Unix()
	}
	if err := db.CreateInteraction(c.Request().Context(), s.db, projectID(c), i); err != nil {
		return err
	}
	return created(c, i.ID)
}

func (s *Server) handleUpdateInteraction(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req interactionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	i := &models.Interaction{Type: req.Type, Summary: req.Summary, Date: req.Date}
	if err := db.UpdateInteraction(c.Request().Context(), s.db, projectID(c), id, i); err != nil {
		return err
	}
	return ok(c)
}
