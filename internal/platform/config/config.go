package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Config is the immutable process-wide configuration, loaded once at startup
// and passed explicitly into each component. DatabaseURL and SessionSecret
// are opaque and must never be logged.
type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	// CORSOrigin is the web client's origin. NativeOrigins extends it with
	// app URI scheme identifiers; non-HTTP schemes are valid trusted origins.
	CORSOrigin    string   `env:"CORS_ORIGIN"`
	NativeOrigins []string `env:"NATIVE_ORIGINS" default:"stackify://,exp://"`

	SessionSecret string `env:"SESSION_SECRET"`
	// CookieDomain scopes the session cookie to a parent domain for
	// cross-subdomain sharing. Empty means host-only.
	CookieDomain string `env:"COOKIE_DOMAIN"`

	SessionMaxAge   time.Duration `env:"SESSION_MAX_AGE" default:"168h"` // 7 days
	SessionCacheTTL time.Duration `env:"SESSION_CACHE_TTL" default:"60s"`

	// AutoSignIn controls whether sign-up creates a session immediately.
	AutoSignIn bool `env:"AUTH_AUTO_SIGN_IN" default:"true"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, &env.Options{SliceSep: ","}); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL":   cfg.DatabaseURL,
		"REDIS_URL":      cfg.RedisURL,
		"CORS_ORIGIN":    cfg.CORSOrigin,
		"SESSION_SECRET": cfg.SessionSecret,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if len(cfg.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters, got %d", len(cfg.SessionSecret))
	}

	if cfg.SessionCacheTTL <= 0 || cfg.SessionCacheTTL > cfg.SessionMaxAge {
		return fmt.Errorf("SESSION_CACHE_TTL must be positive and below SESSION_MAX_AGE")
	}

	return nil
}

// TrustedOrigins returns the full trusted origin set: the web origin plus
// the configured native-app schemes.
func (c *Config) TrustedOrigins() []string {
	origins := make([]string, 0, len(c.NativeOrigins)+1)
	origins = append(origins, c.CORSOrigin)
	origins = append(origins, c.NativeOrigins...)
	return origins
}
