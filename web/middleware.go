// ABOUTME: Request middleware for logging, authentication and project selection
// ABOUTME: Stores the principal and active project on the echo context
package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/kin/auth"
	"github.com/harperreed/kin/db"
	"github.com/harperreed/kin/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	principalKey = "principal"
	projectKey   = "project_id"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    int64
	Email     string
	SessionID string
	User      *models.User
}

// observe logs one line per request and records metrics. Errors are rendered
// here so the logged status is the one the client sees.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}
		duration := time.Since(start)

		req := c.Request()
		res := c.Response()
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}

		fields := []zap.Field{
			zap.String("method", req.Method),
			zap.String("uri", req.RequestURI),
			zap.String("route", route),
			zap.Int("status", res.Status),
			zap.Duration("duration", duration),
			zap.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
		}
		if projectID, ok := c.Get(projectKey).(int64); ok {
			fields = append(fields, zap.Int64("project_id", projectID))
		}
		s.logger.Info("http request", fields...)
		s.metrics.observeRequest(req.Method, route, res.Status, duration)
		return nil
	}
}

// tokenFrom prefers the Authorization header over the session cookie.
func tokenFrom(c echo.Context) string {
	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := c.Cookie(auth.CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := tokenFrom(c)
		if token == "" {
			return fmt.Errorf("missing token: %w", models.ErrUnauthorized)
		}
		claims, err := s.tokens.Parse(token)
		if err != nil {
			return fmt.Errorf("%v: %w", err, models.ErrUnauthorized)
		}
		userID, err := claims.UserID()
		if err != nil {
			return fmt.Errorf("bad subject: %w", models.ErrUnauthorized)
		}

		ctx := c.Request().Context()
		session, err := db.GetActiveSession(ctx, s.db, claims.ID, s.now())
		if err != nil {
			if db.IsNotFound(err) {
				return fmt.Errorf("session inactive: %w", models.ErrUnauthorized)
			}
			return err
		}
		if session.UserID != userID {
			return fmt.Errorf("session user mismatch: %w", models.ErrUnauthorized)
		}
		user, err := db.GetUser(ctx, s.db, userID)
		if err != nil {
			if db.IsNotFound(err) {
				return fmt.Errorf("user gone: %w", models.ErrUnauthorized)
			}
			return err
		}

		c.Set(principalKey, &Principal{
			UserID:    user.ID,
			Email:     user.Email,
			SessionID: session.ID,
			User:      user,
		})
		return next(c)
	}
}

// projectScope resolves X-Project-ID, defaulting to the seeded project.
func (s *Server) projectScope(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID := models.DefaultProjectID
		if raw := strings.TrimSpace(c.Request().Header.Get(HeaderProjectID)); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				return models.Invalid(HeaderProjectID, "must be a positive integer")
			}
			projectID = id
		}

		if _, err := db.GetProject(c.Request().Context(), s.db, projectID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "project not found")
			}
			return err
		}

		c.Set(projectKey, projectID)
		return next(c)
	}
}

func principal(c echo.Context) *Principal {
	p, _ := c.Get(principalKey).(*Principal)
	return p
}

func projectID(c echo.Context) int64 {
	id, ok := c.Get(projectKey).(int64)
	if !ok {
		return models.DefaultProjectID
	}
	return id
}
