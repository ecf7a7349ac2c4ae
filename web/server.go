// ABOUTME: JSON API server for the Kin front-end
// ABOUTME: Wires echo middleware, auth, project scoping and all /api routes
package web

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/kin/auth"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// HeaderProjectID selects the project a request operates on.
const HeaderProjectID = "X-Project-ID"

type Server struct {
	echo    *echo.Echo
	db      *sql.DB
	logger  *zap.Logger
	config  *Config
	tokens  *auth.TokenIssuer
	metrics *Metrics
	now     func() time.Time
}

type Config struct {
	Addr           string
	AllowedOrigins []string
	CookieSecure   bool
	Tokens         *auth.TokenIssuer
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewServer(database *sql.DB, logger *zap.Logger, cfg *Config) (*Server, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg == nil || cfg.Tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		db:      database,
		logger:  logger,
		config:  cfg,
		tokens:  cfg.Tokens,
		metrics: NewMetrics(),
		now:     now,
	}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, HeaderProjectID,
		},
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
	}))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(s.observe)

	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	authGroup := s.echo.Group("/auth")
	authGroup.POST("/login", s.handleLogin)
	authGroup.GET("/me", s.handleMe, s.requireAuth)
	authGroup.POST("/logout", s.handleLogout, s.requireAuth)

	api := s.echo.Group("/api", s.requireAuth, s.projectScope)

	api.GET("/dashboard", s.handleDashboard)

	api.GET("/people", s.handleListPeople)
	api.GET("/people/search", s.handleSearchPeople)
	api.POST("/people", s.handleCreatePerson)
	api.GET("/people/:id", s.handleGetPerson)
	api.PUT("/people/:id", s.handleUpdatePerson)
	api.DELETE("/people/:id", s.handleDeletePerson)

	api.GET("/interactions", s.handleListInteractions)
	api.POST("/interactions", s.handleCreateInteraction)
	api.PUT("/interactions/:id", s.handleUpdateInteraction)

	api.GET("/reminders", s.handleListReminders)
	api.POST("/reminders", s.handleCreateReminder)
	api.GET("/reminders/:id", s.handleGetReminder)
	api.PATCH("/reminders/:id/status", s.handleSetReminderStatus)
	api.DELETE("/reminders/:id", s.handleDeleteReminder)

	api.GET("/campaigns", s.handleListCampaigns)
	api.POST("/campaigns", s.handleCreateCampaign)
	api.GET("/campaigns/:id", s.handleGetCampaign)
	api.PUT("/campaigns/:id", s.handleUpdateCampaign)
	api.DELETE("/campaigns/:id", s.handleDeleteCampaign)
	api.PATCH("/campaigns/:id/status", s.handleSetCampaignStatus)
	api.POST("/campaigns/:id/recipients", s.handleAddRecipients)
	api.DELETE("/campaigns/:id/recipients/:person_id", s.handleRemoveRecipient)
	api.GET("/campaigns/:id/preview", s.handlePreviewCampaign)
	api.POST("/campaigns/:id/send/:person_id", s.handleSendCampaign)

	api.GET("/projects", s.handleListProjects)
	api.POST("/projects", s.handleCreateProject)
	api.PUT("/projects/:id", s.handleRenameProject)
	api.DELETE("/projects/:id", s.handleDeleteProject)

	api.GET("/users", s.handleListUsers)
	api.POST("/users", s.handleCreateUser)
	api.PUT("/users/:id", s.handleUpdateUser)
	api.DELETE("/users/:id", s.handleDeleteUser)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.config.Addr))
	err := s.echo.Start(s.config.Addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	if err := s.db.PingContext(c.Request().Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
