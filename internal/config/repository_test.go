package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"task-tracker/internal/domain"
	"task-tracker/internal/repository/memory"
	"task-tracker/internal/repository/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRepository_SQLite(t *testing.T) {
	cfg := NewConfig()
	cfg.Database.Dir = filepath.Join(t.TempDir(), "nested", "data")

	repo, err := CreateRepository(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	assert.IsType(t, &sqlite.SQLiteRepository{}, repo)
	info, err := os.Stat(cfg.Database.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	task := domain.NewTask("Stored task", domain.PriorityLow)
	require.NoError(t, repo.Save(context.Background(), &task))
	_, err = os.Stat(cfg.GetDatabasePath())
	assert.NoError(t, err)
}

func TestCreateRepository_Memory(t *testing.T) {
	cfg := NewConfig()
	cfg.Database.Store = StoreMemory

	repo, err := CreateRepository(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	assert.IsType(t, &memory.Repository{}, repo)
}

func TestCreateRepository_TestingEnvironment(t *testing.T) {
	cfg := NewConfig()
	cfg.Environment = "testing"
	cfg.Database.Dir = filepath.Join(t.TempDir(), "unused")

	repo, err := CreateRepository(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	_, err = os.Stat(cfg.Database.Dir)
	assert.True(t, os.IsNotExist(err), "testing store should not touch the filesystem")
}

func TestCreateRepository_UnknownStore(t *testing.T) {
	cfg := NewConfig()
	cfg.Database.Store = "cassandra"

	_, err := CreateRepository(cfg)

	var configErr *ConfigError
	assert.ErrorAs(t, err, &configErr)
}

func TestCreateTestRepository(t *testing.T) {
	repo, err := CreateTestRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateRepository_DevelopmentEnvironment(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg := NewConfig()
	cfg.Environment = "development"

	repo, err := CreateRepository(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	_, err = os.Stat(filepath.Join(dir, DevelopmentDatabaseFile))
	assert.NoError(t, err)
}
