package migrations

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	require.NoError(t, err)
	return count > 0
}

func TestRunMigrations_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	if !tableExists(t, db, "tasks") {
		t.Fatal("expected tasks table to exist")
	}

	var applied int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM migrations WHERE dirty = FALSE").Scan(&applied))
	migrations, err := loadMigrations()
	require.NoError(t, err)
	if applied != len(migrations) {
		t.Errorf("expected %d applied migrations, got %d", len(migrations), applied)
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, RunMigrations(ctx, db))
	_, err := db.Exec(`INSERT INTO tasks (title, status, priority, created_at, updated_at)
		VALUES ('kept', 'PENDING', 'LOW', '2025-01-01T00:00:00.000000000Z', '2025-01-01T00:00:00.000000000Z')`)
	require.NoError(t, err)

	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("second RunMigrations failed: %v", err)
	}

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&count))
	if count != 1 {
		t.Fatalf("expected existing row to survive, got %d rows", count)
	}
}

func TestRunMigrations_DirtyDatabase(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`
		CREATE TABLE migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			dirty BOOLEAN DEFAULT FALSE
		)
	`)
	if err != nil {
		t.Fatalf("failed to create migrations table: %v", err)
	}

	_, err = db.Exec("INSERT INTO migrations (version, dirty) VALUES (1, TRUE)")
	if err != nil {
		t.Fatalf("failed to insert dirty migration: %v", err)
	}

	err = RunMigrations(context.Background(), db)
	if err == nil {
		t.Fatal("expected RunMigrations to fail on dirty database, but it succeeded")
	}

	if !strings.Contains(err.Error(), "database is in a dirty state") {
		t.Errorf("expected error to mention dirty state, got: %v", err)
	}

	if !strings.Contains(err.Error(), "failed migration(s): [1]") {
		t.Errorf("expected error to mention failed migration version 1, got: %v", err)
	}

	if tableExists(t, db, "tasks") {
		t.Error("expected no migration to run against a dirty database")
	}
}

func TestRunMigrations_FailureMarksDirty(t *testing.T) {
	db := openTestDB(t)

	// A conflicting table makes the first migration's index creation fail.
	_, err := db.Exec(`CREATE TABLE tasks (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)

	err = RunMigrations(context.Background(), db)
	if err == nil {
		t.Fatal("expected RunMigrations to fail")
	}

	var dirty bool
	require.NoError(t, db.QueryRow("SELECT dirty FROM migrations WHERE version = 2").Scan(&dirty))
	if !dirty {
		t.Error("expected the failed migration to be marked dirty")
	}

	err = RunMigrations(context.Background(), db)
	if err == nil || !strings.Contains(err.Error(), "failed migration(s): [2]") {
		t.Errorf("expected dirty state error on rerun, got: %v", err)
	}
}

func TestRunMigrations_TitleIsUnique(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, RunMigrations(context.Background(), db))

	insert := `INSERT INTO tasks (title, status, priority, created_at, updated_at)
		VALUES ('same', 'PENDING', 'LOW', '2025-01-01T00:00:00.000000000Z', '2025-01-01T00:00:00.000000000Z')`
	_, err := db.Exec(insert)
	require.NoError(t, err)

	_, err = db.Exec(insert)
	if err == nil {
		t.Fatal("expected duplicate title to be rejected")
	}
}

func TestRunMigrations_RejectsUnknownStatus(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, RunMigrations(context.Background(), db))

	_, err := db.Exec(`INSERT INTO tasks (title, status, priority, created_at, updated_at)
		VALUES ('odd', 'DONE', 'LOW', '2025-01-01T00:00:00.000000000Z', '2025-01-01T00:00:00.000000000Z')`)
	if err == nil {
		t.Fatal("expected CHECK constraint to reject unknown status")
	}
}

func TestRollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, RunMigrations(ctx, db))

	require.NoError(t, Rollback(ctx, db, 1))
	var indexes int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_tasks_assignee'").Scan(&indexes))
	if indexes != 0 {
		t.Error("expected index migration to be reverted")
	}
	if !tableExists(t, db, "tasks") {
		t.Error("expected tasks table to remain after one step")
	}

	require.NoError(t, Rollback(ctx, db, 5))
	if tableExists(t, db, "tasks") {
		t.Error("expected tasks table to be dropped")
	}

	require.NoError(t, RunMigrations(ctx, db))
	if !tableExists(t, db, "tasks") {
		t.Error("expected migrations to reapply after rollback")
	}
}

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		filename string
		expected int
	}{
		{"000001_create_tasks.up.sql", 1},
		{"000002_add_task_indexes.up.sql", 2},
		{"readme.up.sql", 0},
	}

	for _, tt := range tests {
		if got := extractVersion(tt.filename); got != tt.expected {
			t.Errorf("extractVersion(%q) = %d, want %d", tt.filename, got, tt.expected)
		}
	}

	if got := extractName("000001_create_tasks.up.sql"); got != "create_tasks" {
		t.Errorf("extractName = %q, want create_tasks", got)
	}
}
