// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Catalog  CatalogConfig
	Extract  ExtractConfig
	Match    MatchConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// UploadConfig holds settings for uploaded configurator exports.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 20MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"20971520"`

	// MaxConcurrent is the maximum number of parallel conversions (default: 4)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for a conversion slot (default: 10s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"10s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for conversion endpoints (default: 20)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects admin endpoints such as catalog reload (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted X-API-Key values
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// CatalogConfig says where the library and master data catalogs come from.
type CatalogConfig struct {
	// Source is "file" (xlsx/csv on disk) or "postgres" (default: file)
	Source string `env:"CATALOG_SOURCE" default:"file"`

	// LibraryPath is the library catalog file (default: data/Library_data.xlsx)
	LibraryPath string `env:"CATALOG_LIBRARY_PATH" default:"data/Library_data.xlsx"`

	// LibrarySheet selects a worksheet; empty means the first sheet
	LibrarySheet string `env:"CATALOG_LIBRARY_SHEET"`

	// MasterPath is the master data catalog file (default: data/Master_data.xlsx)
	MasterPath string `env:"CATALOG_MASTER_PATH" default:"data/Master_data.xlsx"`

	// MasterSheet selects a worksheet; empty means the first sheet
	MasterSheet string `env:"CATALOG_MASTER_SHEET"`

	// DatabaseURL is the PostgreSQL connection string, used when Source is postgres
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// LibraryTable is the table holding the library catalog (default: library_catalog)
	LibraryTable string `env:"CATALOG_LIBRARY_TABLE" default:"library_catalog"`

	// MasterTable is the table holding the master data catalog (default: master_catalog)
	MasterTable string `env:"CATALOG_MASTER_TABLE" default:"master_catalog"`

	// MaxConns is the maximum number of pooled connections (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// LoadTimeout bounds a full catalog load or reload (default: 30s)
	LoadTimeout time.Duration `env:"CATALOG_LOAD_TIMEOUT" default:"30s"`
}

// ExtractConfig selects the upload layout. Column and row overrides of -1
// keep the preset's value.
type ExtractConfig struct {
	// Layout is a named preset: pcon or pcon-header (default: pcon)
	Layout string `env:"EXTRACT_LAYOUT" default:"pcon"`

	// Sheet overrides the preset's sheet name
	Sheet string `env:"EXTRACT_SHEET"`

	// SkipRows overrides the number of leading rows to skip
	SkipRows int `env:"EXTRACT_SKIP_ROWS" default:"-1"`

	// ArticleColumn overrides the zero-based article number column
	ArticleColumn int `env:"EXTRACT_ARTICLE_COLUMN" default:"-1"`

	// QuantityColumn overrides the zero-based quantity column
	QuantityColumn int `env:"EXTRACT_QUANTITY_COLUMN" default:"-1"`

	// ShortTextColumn overrides the zero-based short text column
	ShortTextColumn int `env:"EXTRACT_SHORT_TEXT_COLUMN" default:"-1"`

	// VariantTextColumn overrides the zero-based variant text column
	VariantTextColumn int `env:"EXTRACT_VARIANT_TEXT_COLUMN" default:"-1"`
}

// MatchConfig toggles the fallback tiers of article reconciliation.
type MatchConfig struct {
	// BaseFallback enables matching on the code before the first "-" (default: true)
	BaseFallback bool `env:"MATCH_BASE_FALLBACK" default:"true"`

	// SpecialFallback enables matching with the special prefix removed (default: true)
	SpecialFallback bool `env:"MATCH_SPECIAL_FALLBACK" default:"true"`

	// SpecialPrefix is the token stripped by the special fallback (default: SPECIAL)
	SpecialPrefix string `env:"MATCH_SPECIAL_PREFIX" default:"SPECIAL"`

	// RejectMarker marks placeholder catalog keys that never match (default: ALL COLORS)
	RejectMarker string `env:"MATCH_REJECT_MARKER" default:"ALL COLORS"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
