// Package config provides centralized configuration management for the DSR service.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Archive  ArchiveConfig
	Outlet   OutletConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 0, websocket feed)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// AutoMigrate applies the schema on startup (default: true)
	AutoMigrate bool `env:"DB_AUTO_MIGRATE" default:"true"`
}

// ImportConfig holds legacy CSV import settings.
type ImportConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 10MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"10485760"`

	// MaxConcurrent is the maximum number of parallel imports (default: 2)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"2"`

	// MaxWaitTime is how long to wait for an import slot (default: 30s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration for a single import (default: 2m)
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"2m"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// ImportLimit is requests per minute for import endpoints (default: 10)
	ImportLimit int `env:"RATE_LIMIT_IMPORT" default:"10"`

	// AuthLimit is requests per minute for sign-in and sign-up (default: 20)
	AuthLimit int `env:"RATE_LIMIT_AUTH" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// JWTSecret signs bearer tokens (required when RequireAuth is true)
	JWTSecret string `env:"JWT_SECRET"`

	// TokenTTL is the lifetime of an issued bearer token (default: 12h)
	TokenTTL time.Duration `env:"TOKEN_TTL" default:"12h"`

	// APIKeys is a comma-separated list of keys accepted in X-API-Key
	APIKeys []string `env:"API_KEYS"`

	// RequireAuth protects the /api routes (default: true)
	RequireAuth bool `env:"REQUIRE_AUTH" default:"true"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ArchiveConfig holds audit log archiving settings.
type ArchiveConfig struct {
	// Schedule is the cron expression of the archive job (default: 03:30 daily)
	Schedule string `env:"ARCHIVE_SCHEDULE" default:"30 3 * * *"`

	// HotRetentionDays is days to keep entries in the hot table (default: 90)
	HotRetentionDays int `env:"ARCHIVE_HOT_RETENTION_DAYS" default:"90"`

	// ArchiveRetentionYears is years to keep archived entries (default: 7)
	ArchiveRetentionYears int `env:"ARCHIVE_RETENTION_YEARS" default:"7"`

	// BatchSize is rows to process per archive batch (default: 5000)
	BatchSize int `env:"ARCHIVE_BATCH_SIZE" default:"5000"`
}

// OutletConfig describes the restaurant whose cash is reconciled.
// A YAML profile named by ProfileFile overrides the environment.
type OutletConfig struct {
	// Name is shown on reports (default: Outlet)
	Name string `env:"OUTLET_NAME" default:"Outlet"`

	// OpeningBalance is the float left in the drawer every morning (default: 5100)
	OpeningBalance decimal.Decimal `env:"OUTLET_OPENING_BALANCE" default:"5100"`

	// Currency is the display currency code (default: INR)
	Currency string `env:"OUTLET_CURRENCY" default:"INR"`

	// TimeZone decides what "today" is (default: Asia/Kolkata)
	TimeZone string `env:"OUTLET_TIMEZONE" default:"Asia/Kolkata"`

	// Notes are the note values counted at close (default: 500..1)
	Notes []int `env:"OUTLET_NOTES" default:"500,200,100,50,20,10,5,2,1"`

	// ProfileFile is an optional YAML outlet profile
	ProfileFile string `env:"OUTLET_PROFILE_FILE"`
}

// Location returns the outlet time zone, UTC when it cannot be loaded.
func (c *OutletConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
