package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"task-tracker/internal/domain"
)

// Store names accepted by TK_STORE.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds all configuration options for the task tracker
type Config struct {
	Environment string
	Database    DatabaseConfig
	HTTP        HTTPConfig
	Events      EventsConfig
	Tracing     TracingConfig
	Display     DisplayConfig
	Logging     LoggingConfig
	Application ApplicationConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Store          string        `env:"TK_STORE"`
	Dir            string        `env:"TK_DB_DIR"`
	Filename       string        `env:"TK_DB_FILENAME"`
	DSN            string        `env:"TK_DB_DSN"`
	QueryTimeout   time.Duration `env:"TK_DB_QUERY_TIMEOUT"`
	DirPermissions uint32        `env:"TK_DB_DIR_PERMISSIONS"`
}

// HTTPConfig holds the server settings used by tk serve
type HTTPConfig struct {
	Addr            string        `env:"TK_HTTP_ADDR"`
	ReadTimeout     time.Duration `env:"TK_HTTP_READ_TIMEOUT"`
	WriteTimeout    time.Duration `env:"TK_HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `env:"TK_HTTP_SHUTDOWN_TIMEOUT"`
	CORSOrigins     []string      `env:"TK_HTTP_CORS_ORIGINS"`
}

// EventsConfig holds Kafka settings. No brokers means events are not published.
type EventsConfig struct {
	Brokers []string `env:"TK_KAFKA_BROKERS"`
	Topic   string   `env:"TK_KAFKA_TOPIC"`
}

// TracingConfig holds OpenTelemetry settings
type TracingConfig struct {
	Endpoint    string `env:"TK_TRACING_ENDPOINT"`
	ServiceName string `env:"TK_SERVICE_NAME"`
}

// DisplayConfig holds output formatting configuration
type DisplayConfig struct {
	DateFormat   string `env:"TK_DATE_FORMAT"`
	OutputFormat string `env:"TK_OUTPUT_FORMAT"`
	PageSize     int    `env:"TK_PAGE_SIZE"`
}

// LoggingConfig holds slog settings
type LoggingConfig struct {
	Level  string `env:"TK_LOG_LEVEL"`
	Format string `env:"TK_LOG_FORMAT"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `env:"TK_APP_TIMEOUT"`
	Verbose bool          `env:"TK_APP_VERBOSE"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Environment: "production",
		Database: DatabaseConfig{
			Store:          StoreSQLite,
			Dir:            filepath.Join(homeDir, ".tk"),
			Filename:       "tk.db",
			QueryTimeout:   10 * time.Second,
			DirPermissions: 0755,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Events: EventsConfig{
			Topic: "task-events",
		},
		Tracing: TracingConfig{
			ServiceName: "task-tracker",
		},
		Display: DisplayConfig{
			DateFormat:   domain.DefaultDateLayout,
			OutputFormat: "table",
			PageSize:     domain.DefaultPageSize,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetQueryTimeout returns the per-operation deadline
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Database.QueryTimeout
}

// LogLevel is the configured level, forced to debug when verbose.
func (c *Config) LogLevel() string {
	if c.Application.Verbose {
		return "debug"
	}
	return c.Logging.Level
}

// LoadFromEnvironment loads configuration from environment variables.
// Values that fail to parse keep their previous setting.
func (c *Config) LoadFromEnvironment() error {
	if env := os.Getenv("TK_ENV"); env != "" {
		c.Environment = env
	}

	// Database configuration
	if store := os.Getenv("TK_STORE"); store != "" {
		c.Database.Store = strings.ToLower(store)
	}
	if dir := os.Getenv("TK_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("TK_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	if dsn := os.Getenv("TK_DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if timeout := os.Getenv("TK_DB_QUERY_TIMEOUT"); timeout != "" {
		c.Database.QueryTimeout = ParseDurationWithFallback(timeout, c.Database.QueryTimeout)
	}
	if perms := os.Getenv("TK_DB_DIR_PERMISSIONS"); perms != "" {
		c.Database.DirPermissions = ParseUint32WithFallback(perms, 8, c.Database.DirPermissions)
	}

	// HTTP configuration
	if addr := os.Getenv("TK_HTTP_ADDR"); addr != "" {
		c.HTTP.Addr = addr
	}
	if timeout := os.Getenv("TK_HTTP_READ_TIMEOUT"); timeout != "" {
		c.HTTP.ReadTimeout = ParseDurationWithFallback(timeout, c.HTTP.ReadTimeout)
	}
	if timeout := os.Getenv("TK_HTTP_WRITE_TIMEOUT"); timeout != "" {
		c.HTTP.WriteTimeout = ParseDurationWithFallback(timeout, c.HTTP.WriteTimeout)
	}
	if timeout := os.Getenv("TK_HTTP_SHUTDOWN_TIMEOUT"); timeout != "" {
		c.HTTP.ShutdownTimeout = ParseDurationWithFallback(timeout, c.HTTP.ShutdownTimeout)
	}
	if origins := os.Getenv("TK_HTTP_CORS_ORIGINS"); origins != "" {
		c.HTTP.CORSOrigins = SplitList(origins)
	}

	// Events configuration
	if brokers := os.Getenv("TK_KAFKA_BROKERS"); brokers != "" {
		c.Events.Brokers = SplitList(brokers)
	}
	if topic := os.Getenv("TK_KAFKA_TOPIC"); topic != "" {
		c.Events.Topic = topic
	}

	// Tracing configuration
	if endpoint := os.Getenv("TK_TRACING_ENDPOINT"); endpoint != "" {
		c.Tracing.Endpoint = endpoint
	}
	if name := os.Getenv("TK_SERVICE_NAME"); name != "" {
		c.Tracing.ServiceName = name
	}

	// Display configuration
	if format := os.Getenv("TK_DATE_FORMAT"); format != "" {
		c.Display.DateFormat = format
	}
	if format := os.Getenv("TK_OUTPUT_FORMAT"); format != "" {
		c.Display.OutputFormat = strings.ToLower(format)
	}
	if size := os.Getenv("TK_PAGE_SIZE"); size != "" {
		c.Display.PageSize = ParseIntWithFallback(size, c.Display.PageSize)
	}

	// Logging configuration
	if level := os.Getenv("TK_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("TK_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}

	// Application configuration
	if timeout := os.Getenv("TK_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("TK_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	return nil
}

// Validate validates the configuration and returns the first problem found
func (c *Config) Validate() error {
	switch c.Database.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.Database.Dir == "" {
			return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
		}
		if c.Database.Filename == "" {
			return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
		}
	case StorePostgres:
		if c.Database.DSN == "" {
			return &ConfigError{Field: "database.dsn", Message: "a DSN is required for the postgres store"}
		}
	default:
		return &ConfigError{Field: "database.store", Message: "store must be memory, sqlite or postgres"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}

	if c.HTTP.Addr == "" {
		return &ConfigError{Field: "http.addr", Message: "listen address cannot be empty"}
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return &ConfigError{Field: "http.shutdown_timeout", Message: "shutdown timeout must be positive"}
	}

	if len(c.Events.Brokers) > 0 && c.Events.Topic == "" {
		return &ConfigError{Field: "events.topic", Message: "topic cannot be empty when brokers are set"}
	}

	if c.Display.DateFormat == "" {
		return &ConfigError{Field: "display.date_format", Message: "date format cannot be empty"}
	}
	if c.Display.OutputFormat != "table" && c.Display.OutputFormat != "json" {
		return &ConfigError{Field: "display.output_format", Message: "output format must be table or json"}
	}
	if c.Display.PageSize < 1 || c.Display.PageSize > domain.MaxPageSize {
		return &ConfigError{Field: "display.page_size", Message: fmt.Sprintf("page size must be between 1 and %d", domain.MaxPageSize)}
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return &ConfigError{Field: "logging.format", Message: "log format must be text or json"}
	}

	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseIntWithFallback parses an integer string with a fallback value
func ParseIntWithFallback(s string, fallback int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return fallback
}

// ParseBoolWithFallback parses a boolean string with a fallback value
func ParseBoolWithFallback(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}

// ParseUint32WithFallback parses a uint32 string with a fallback value
func ParseUint32WithFallback(s string, base int, fallback uint32) uint32 {
	if u, err := strconv.ParseUint(s, base, 32); err == nil {
		return uint32(u)
	}
	return fallback
}
