package gormstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"task-tracker/internal/domain"
	apperrors "task-tracker/internal/errors"
	"task-tracker/internal/repository"
	"task-tracker/internal/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a file backed SQLite database so every pooled
// connection sees the same data.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "tasks.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}

func TestRepository_Contract(t *testing.T) {
	repotest.Run(t, func(t *testing.T, clock repository.Clock) repository.TaskRepository {
		repo, err := OpenSQLite(filepath.Join(t.TempDir(), "tasks.db"), WithClock(clock))
		require.NoError(t, err)
		return repo
	})
}

func TestNew_MigratesSchema(t *testing.T) {
	db := setupTestDB(t)

	repo, err := New(db)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	assert.True(t, db.Migrator().HasTable("tasks"))
	assert.True(t, db.Migrator().HasIndex(&taskModel{}, "uq_tasks_title"))
	assert.True(t, db.Migrator().HasIndex(&taskModel{}, "idx_tasks_status_priority"))
}

func TestRepository_DuplicateTitleNamesConstraint(t *testing.T) {
	repo, err := New(setupTestDB(t))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	ctx := context.Background()

	first := domain.NewTask("Only once", domain.PriorityLow)
	require.NoError(t, repo.Save(ctx, &first))
	second := domain.NewTask("Only once", domain.PriorityHigh)
	err = repo.Save(ctx, &second)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "got %v", err)
	assert.True(t, appErr.IsType(apperrors.ErrorTypeAlreadyExists))
	constraint, ok := appErr.GetContext("constraint")
	require.True(t, ok)
	assert.Equal(t, "uq_tasks_title", constraint)
}

func TestRepository_IgnoresGormTimestamps(t *testing.T) {
	fixed := time.Date(2020, 2, 2, 8, 0, 0, 0, time.UTC)
	repo, err := New(setupTestDB(t), WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	ctx := context.Background()

	task := domain.NewTask("Clocked", domain.PriorityLow)
	require.NoError(t, repo.Save(ctx, &task))

	found, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, found.CreatedAt.Equal(fixed), "created at %v", found.CreatedAt)
	assert.True(t, found.UpdatedAt.Equal(fixed), "updated at %v", found.UpdatedAt)
}

func TestFromDomain_StoresUTC(t *testing.T) {
	zone := time.FixedZone("PST", -8*3600)
	completed := time.Date(2025, 3, 1, 17, 0, 0, 0, zone)
	task := &domain.Task{
		Title:       "Zones",
		Status:      domain.StatusCompleted,
		Priority:    domain.PriorityHigh,
		CreatedAt:   time.Date(2025, 3, 1, 9, 0, 0, 0, zone),
		CompletedAt: &completed,
	}

	m := fromDomain(task)
	assert.Equal(t, time.UTC, m.CreatedAt.Location())
	assert.Equal(t, time.UTC, m.CompletedAt.Location())
	assert.True(t, m.CompletedAt.Equal(completed))

	back := m.toDomain()
	assert.Equal(t, domain.StatusCompleted, back.Status)
	assert.Equal(t, domain.PriorityHigh, back.Priority)
}
