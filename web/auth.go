// ABOUTME: Login, logout and current-user endpoints
// ABOUTME: Tokens are returned in the body and mirrored into an HttpOnly cookie
package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/harperreed/kin/auth"
	"github.com/harperreed/kin/db"
	"github.com/harperreed/kin/models"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success   bool         `json:"success"`
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expires_at"`
}

type meResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return models.Invalid("", "email and password are required")
	}

	ctx := c.Request().Context()
	user, err := db.GetUserByEmail(ctx, s.db, req.Email)
	if err != nil && !db.IsNotFound(err) {
		return err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Info("login rejected", zap.String("email", req.Email))
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	sessionID := s.tokens.NewSessionID()
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, sessionID)
	if err != nil {
		return err
	}
	session := &models.Session{
		ID:        sessionID,
		UserID:    user.ID,
		CreatedAt: s.now().Unix(),
		ExpiresAt: expiresAt.Unix(),
	}
	if err := db.CreateSession(ctx, s.db, session); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	c.SetCookie(s.sessionCookie(token, expiresAt))
	return c.JSON(http.StatusOK, loginResponse{
		Success:   true,
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	})
}

func (s *Server) handleMe(c echo.Context) error {
	return c.JSON(http.StatusOK, meResponse{Authenticated: true, User: principal(c).User})
}

func (s *Server) handleLogout(c echo.Context) error {
	p := principal(c)
	if err := db.RevokeSession(c.Request().Context(), s.db, p.SessionID, s.now()); err != nil {
		return err
	}
	c.SetCookie(s.sessionCookie("", time.Unix(0, 0)))
	return ok(c)
}

// sessionCookie builds the token cookie. An empty value clears it.
func (s *Server) sessionCookie(value string, expires time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	return cookie
}
