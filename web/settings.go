// ABOUTME: Project and user settings endpoints
// ABOUTME: Guards against deleting the active project or the signed-in user
package web

import (
	"net/http"
	"strings"

	"github.com/harperreed/kin/auth"
	"github.com/harperreed/kin/db"
	"github.com/harperreed/kin/models"
	"github.com/labstack/echo/v4"
)

type projectRequest struct {
	Name string `json:"name"`
}

type userRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (s *Server) handleListProjects(c echo.Context) error {
	projects, err := db.ListProjects(c.Request().Context(), s.db)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

func (s *Server) handleCreateProject(c echo.Context) error {
	var req projectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	project := &models.Project{Name: req.Name}
	if err := db.CreateProject(c.Request().Context(), s.db, project); err != nil {
		return err
	}
	return created(c, project.ID)
}

func (s *Server) handleRenameProject(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req projectRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := db.RenameProject(c.Request().Context(), s.db, id, req.Name); err != nil {
		return err
	}
	return ok(c)
}

func (s *Server) handleDeleteProject(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if id == projectID(c) {
		return models.Invalid("id", "cannot delete the active project")
	}
	if err := db.DeleteProject(c.Request().Context(), s.db, id); err != nil {
		return err
	}
	return ok(c)
}

func (s *Server) handleListUsers(c echo.Context) error {
	users, err := db.ListUsers(c.Request().Context(), s.db)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (s *Server) handleCreateUser(c echo.Context) error {
	var req userRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Email) == "" {
		return models.Invalid("email", "is required")
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}
	user := &models.User{Email: req.Email, Name: strings.TrimSpace(req.Name), PasswordHash: hash}
	if err := db.CreateUser(c.Request().Context(), s.db, user); err != nil {
		return err
	}
	return created(c, user.ID)
}

// handleUpdateUser changes email and name; the password only when one is sent.
func (s *Server) handleUpdateUser(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req userRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user := &models.User{ID: id, Email: req.Email, Name: strings.TrimSpace(req.Name)}
	if req.Password != "" {
		if user.PasswordHash, err = auth.HashPassword(req.Password); err != nil {
			return err
		}
	}
	if err := db.UpdateUser(c.Request().Context(), s.db, user); err != nil {
		return err
	}
	return ok(c)
}

func (s *Server) handleDeleteUser(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if id == principal(c).UserID {
		return models.Invalid("id", "cannot delete yourself")
	}
	if err := db.DeleteUser(c.Request().Context(), s.db, id); err != nil {
		return err
	}
	return ok(c)
}
