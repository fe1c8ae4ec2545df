// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - All functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects "text" or "json" log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// APIBasePath prefixes the submissions and results routes.
	APIBasePath string `koanf:"api_base_path"`

	// StoreBackend selects where submissions live: memory, sqlite, postgres or redis.
	StoreBackend string `koanf:"store_backend"`

	// SQLiteDSN is used by the sqlite backend. The default keeps data in memory.
	SQLiteDSN string `koanf:"sqlite_dsn"`

	// PostgresDSN is used by the postgres backend.
	PostgresDSN string `koanf:"postgres_dsn"`

	// Redis connection settings for the redis backend.
	RedisAddr      string `koanf:"redis_addr"`
	RedisPassword  string `koanf:"redis_password"`
	RedisDB        int    `koanf:"redis_db"`
	RedisKeyPrefix string `koanf:"redis_key_prefix"`

	// SeedDemoData inserts the three demo submissions at startup.
	SeedDemoData bool `koanf:"seed_demo_data"`

	// CORSAllowedOrigins lists browser origins allowed to call the API.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// MaxBodyBytes caps request body size for POST endpoints.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// MetricsEnabled toggles Prometheus recording.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefreshInterval paces the system and vote gauge updaters, e.g. "15s".
	MetricsRefreshInterval time.Duration `koanf:"metrics_refresh_interval"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		APIBasePath:        "/api",
		StoreBackend:       BackendMemory,
		SQLiteDSN:          "file:langvote?mode=memory&cache=shared",
		RedisAddr:          "localhost:6379",
		RedisKeyPrefix:     "langvote",
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		MaxBodyBytes:       64 << 10,
		MetricsEnabled:     true,

		MetricsRefreshInterval: 10 * time.Second,
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate(_ context.Context) error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	case !strings.HasPrefix(c.APIBasePath, "/"):
		return fmt.Errorf("%w: api_base_path must start with /", ErrInvalidConfig)
	case c.MetricsRefreshInterval <= 0:
		return fmt.Errorf("%w: metrics_refresh_interval must be positive", ErrInvalidConfig)
	}

	switch c.StoreBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLiteDSN == "" {
			return fmt.Errorf("%w: sqlite_dsn is required for the sqlite backend", ErrInvalidConfig)
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres_dsn is required for the postgres backend", ErrInvalidConfig)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	}
	return nil
}

// normalize splits comma separated origins and trims the base path.
func (c *Config) normalize() {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	c.APIBasePath = strings.TrimRight(strings.TrimSpace(c.APIBasePath), "/")
	if c.APIBasePath == "" {
		c.APIBasePath = "/"
	}

	var origins []string
	for _, o := range c.CORSAllowedOrigins {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
	}
	c.CORSAllowedOrigins = origins
}
