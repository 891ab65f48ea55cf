package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"task-tracker/internal/logging"

	"github.com/joho/godotenv"
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	config   *Config
	envFiles []string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithEnvFiles replaces the default .env file list.
func WithEnvFiles(files ...string) LoaderOption {
	return func(l *Loader) {
		l.envFiles = files
	}
}

// NewLoader creates a new configuration loader
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		config:   NewConfig(),
		envFiles: []string{".env"},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Read .env files into the environment without overriding it
// 3. Override with environment variables
// 4. Override with command line flags (LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	config, err := l.load()
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (l *Loader) load() (*Config, error) {
	for _, file := range l.envFiles {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		logging.Debugf("loaded environment from %s\n", file)
	}

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}
	return l.config, nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(config, overrides)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ConfigOverrides holds command line flag overrides. Nil fields were not set.
type ConfigOverrides struct {
	// Database overrides
	Store      *string
	DBDir      *string
	DBFilename *string
	DBDSN      *string

	// Display overrides
	DateFormat   *string
	OutputFormat *string

	// Application overrides
	Timeout *time.Duration
	Verbose *bool
}

func (l *Loader) applyOverrides(config *Config, overrides *ConfigOverrides) {
	if overrides.Store != nil {
		config.Database.Store = strings.ToLower(*overrides.Store)
	}
	if overrides.DBDir != nil {
		config.Database.Dir = *overrides.DBDir
	}
	if overrides.DBFilename != nil {
		config.Database.Filename = *overrides.DBFilename
	}
	if overrides.DBDSN != nil {
		config.Database.DSN = *overrides.DBDSN
	}

	if overrides.DateFormat != nil {
		config.Display.DateFormat = *overrides.DateFormat
	}
	if overrides.OutputFormat != nil {
		config.Display.OutputFormat = strings.ToLower(*overrides.OutputFormat)
	}

	if overrides.Timeout != nil {
		config.Application.Timeout = *overrides.Timeout
	}
	if overrides.Verbose != nil {
		config.Application.Verbose = *overrides.Verbose
	}
}
