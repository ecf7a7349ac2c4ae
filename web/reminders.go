// ABOUTME: Reminder endpoints
// ABOUTME: Listing, creation and the pending/done toggle
package web

import (
	"net/http"

	"github.com/harperreed/kin/db"
	"github.com/harperreed/kin/models"
	"github.com/labstack/echo/v4"
)

type reminderRequest struct {
	PersonID int64  `json:"person_id"`
	Title    string `json:"title"`
	DueDate  *int64 `json:"due_date"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleListReminders(c echo.Context) error {
	reminders, err := db.ListReminders(c.Request().Context(), s.db, projectID(c),
		c.QueryParam("status"), c.QueryParam("search"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reminders)
}

func (s *Server) handleGetReminder(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	reminder, err := db.GetReminder(c.Request().Context(), s.db, projectID(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reminder)
}

func (s *Server) handleCreateReminder(c echo.Context) error {
	var req reminderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.PersonID <= 0 {
		return models.Invalid("person_id", "is required")
	}
	r := &models.Reminder{PersonID: req.PersonID, Title: req.Title, DueDate: req.DueDate}
	if err := db.CreateReminder(c.Request().Context(), s.db, projectID(c), r); err != nil {
		return err
	}
	return created(c, r.ID)
}

func (s *Server) handleSetReminderStatus(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	reminder, err := db.SetReminderStatus(c.Request().Context(), s.db, projectID(c), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "reminder": reminder})
}

func (s *Server) handleDeleteReminder(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := db.DeleteReminder(c.Request().Context(), s.db, projectID(c), id); err != nil {
		return err
	}
	return ok(c)
}
