// ABOUTME: Runtime configuration from the environment and an optional .env file
// ABOUTME: Defaults suit a single-user local install; Validate rejects unusable combinations
package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"github.com/harperreed/kin/logging"
	"github.com/joho/godotenv"
)

// MinSecretLength is the shortest accepted KIN_AUTH_SECRET, in bytes.
const MinSecretLength = 32

type Config struct {
	DBPath        string        `env:"KIN_DB_PATH"`
	HTTPAddr      string        `env:"KIN_HTTP_ADDR"      envDefault:":8787"`
	AuthSecret    string        `env:"KIN_AUTH_SECRET"`
	TokenTTL      time.Duration `env:"KIN_TOKEN_TTL"      envDefault:"720h"`
	CookieSecure  bool          `env:"KIN_COOKIE_SECURE"  envDefault:"false"`
	CORSOrigins   []string      `env:"KIN_CORS_ORIGINS"   envDefault:"http://localhost:5173" envSeparator:","`
	LogLevel      string        `env:"KIN_LOG_LEVEL"      envDefault:"info"`
	LogFormat     string        `env:"KIN_LOG_FORMAT"     envDefault:"json"`
	AdminEmail    string        `env:"KIN_ADMIN_EMAIL"`
	AdminPassword string        `env:"KIN_ADMIN_PASSWORD"`
	AdminName     string        `env:"KIN_ADMIN_NAME"     envDefault:"Admin"`

	// GeneratedSecret is set when no secret was configured and one was made up.
	// Tokens then stop working across restarts.
	GeneratedSecret bool
}

// DefaultDBPath is the database location when none is configured.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, "kin", "kin.db")
}

// Load reads envFile when it exists (existing environment variables win),
// parses the environment and validates the result.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	if cfg.AuthSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.AuthSecret = secret
		cfg.GeneratedSecret = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != logging.FormatJSON && c.LogFormat != logging.FormatConsole {
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	if c.TokenTTL <= 0 {
		return errors.New("KIN_TOKEN_TTL must be positive")
	}
	if len(c.AuthSecret) < MinSecretLength {
		return fmt.Errorf("KIN_AUTH_SECRET must be at least %d bytes", MinSecretLength)
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("KIN_ADMIN_EMAIL and KIN_ADMIN_PASSWORD must be set together")
	}
	for i, origin := range c.CORSOrigins {
		c.CORSOrigins[i] = strings.TrimSpace(origin)
	}
	return nil
}

func randomSecret() (string, error) {
	buf := make([]byte, MinSecretLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate auth secret: %w", err)
	}
	return fmt.Sprintf("%x", buf), nil
}
