// ABOUTME: serve subcommand
// ABOUTME: Runs the JSON API with graceful shutdown and first-run admin bootstrap
package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/harperreed/kin/auth"
	"github.com/harperreed/kin/config"
	"github.com/harperreed/kin/db"
	"github.com/harperreed/kin/logging"
	"github.com/harperreed/kin/models"
	"github.com/harperreed/kin/web"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the JSON API used by the web front-end.

Configuration comes from KIN_* environment variables and the --env-file.
When the database has no users and KIN_ADMIN_EMAIL and KIN_ADMIN_PASSWORD
are set, that account is created on startup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}

			logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer func() { _ = logging.Sync(logger) }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides KIN_HTTP_ADDR)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.GeneratedSecret {
		logger.Warn("KIN_AUTH_SECRET is not set; using a random secret, sessions will not survive a restart")
	}

	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = database.Close() }()
	logger.Info("database opened", zap.String("path", cfg.DBPath))

	if err := bootstrapAdmin(ctx, database, cfg, logger); err != nil {
		return err
	}
	if purged, err := db.PurgeExpiredSessions(ctx, database, time.Now()); err != nil {
		logger.Warn("failed to purge expired sessions", zap.Error(err))
	} else if purged > 0 {
		logger.Info("purged expired sessions", zap.Int64("count", purged))
	}

	server, err := web.NewServer(database, logger, &web.Config{
		Addr:           cfg.HTTPAddr,
		AllowedOrigins: cfg.CORSOrigins,
		CookieSecure:   cfg.CookieSecure,
		Tokens:         auth.NewTokenIssuer([]byte(cfg.AuthSecret), cfg.TokenTTL),
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// bootstrapAdmin creates the configured admin account when no users exist yet.
func bootstrapAdmin(ctx context.Context, database *sql.DB, cfg *config.Config, logger *zap.Logger) error {
	count, err := db.CountUsers(ctx, database)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		logger.Warn("no users exist; create one with `kin user add` or set KIN_ADMIN_EMAIL and KIN_ADMIN_PASSWORD")
		return nil
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("KIN_ADMIN_PASSWORD: %s", verr.Message)
		}
		return err
	}
	user := &models.User{Email: cfg.AdminEmail, Name: cfg.AdminName, PasswordHash: hash}
	if err := db.CreateUser(ctx, database, user); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	logger.Info("created admin user", zap.String("email", user.Email))
	return nil
}
