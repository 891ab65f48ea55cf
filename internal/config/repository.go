package config

import (
	"fmt"
	"os"

	"task-tracker/internal/logging"
	"task-tracker/internal/repository"
	"task-tracker/internal/repository/gormstore"
	"task-tracker/internal/repository/memory"
	"task-tracker/internal/repository/sqlite"
)

// DevelopmentDatabaseFile is the sqlite file used when TK_ENV=development.
const DevelopmentDatabaseFile = "tk.db"

// CreateRepository opens the task store selected by the configuration.
// In the testing environment the sqlite store is kept in memory and in
// development it is a tk.db file in the working directory.
func CreateRepository(config *Config) (repository.TaskRepository, error) {
	switch config.Database.Store {
	case StoreMemory:
		logging.Debugln("using in-memory task store")
		return memory.New(), nil

	case StoreSQLite:
		if config.Environment == "testing" {
			return CreateTestRepository()
		}
		if config.Environment == "development" {
			repo, err := sqlite.New(DevelopmentDatabaseFile)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize development database: %w", err)
			}
			return repo, nil
		}
		if err := os.MkdirAll(config.Database.Dir, os.FileMode(config.Database.DirPermissions)); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		repo, err := sqlite.New(config.GetDatabasePath())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil

	case StorePostgres:
		logging.Debugln("using postgres task store")
		repo, err := gormstore.OpenPostgres(config.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil

	default:
		return nil, &ConfigError{Field: "database.store", Message: "unknown store " + config.Database.Store}
	}
}

// CreateTestRepository creates an in-memory sqlite repository for testing
func CreateTestRepository() (repository.TaskRepository, error) {
	repo, err := sqlite.New(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}
	return repo, nil
}
