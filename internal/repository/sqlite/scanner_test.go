package sqlite

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"task-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScanner implements the Scanner interface for testing
type TestScanner struct {
	data []interface{}
	err  error
}

func (ts *TestScanner) Scan(dest ...interface{}) error {
	if ts.err != nil {
		return ts.err
	}

	if len(dest) != len(ts.data) {
		return errors.New("mismatch in number of destinations")
	}

	for i, d := range dest {
		switch v := d.(type) {
		case *int64:
			*v = ts.data[i].(int64)
		case *string:
			*v = ts.data[i].(string)
		case *sql.NullString:
			*v = ts.data[i].(sql.NullString)
		case *sql.NullInt64:
			*v = ts.data[i].(sql.NullInt64)
		}
	}

	return nil
}

// TestRows implements the Rows interface over a list of scanners
type TestRows struct {
	rows    []*TestScanner
	current int
	err     error
}

func (tr *TestRows) Next() bool {
	if tr.current >= len(tr.rows) {
		return false
	}
	tr.current++
	return true
}

func (tr *TestRows) Scan(dest ...interface{}) error {
	return tr.rows[tr.current-1].Scan(dest...)
}

func (tr *TestRows) Err() error {
	return tr.err
}

func taskData(id int64, title string, completedAt sql.NullString, estimate sql.NullInt64) []interface{} {
	return []interface{}{
		id,
		title,
		sql.NullString{String: "details", Valid: true},
		"PENDING",
		"HIGH",
		"2024-01-15T10:00:00.000000000Z",
		"2024-01-15T11:00:00.000000000Z",
		completedAt,
		sql.NullString{},
		sql.NullString{String: "ops", Valid: true},
		sql.NullString{},
		estimate,
		sql.NullInt64{},
		sql.NullString{},
	}
}

func TestScanTask(t *testing.T) {
	tests := []struct {
		name        string
		scanner     *TestScanner
		check       func(t *testing.T, task *domain.Task)
		expectError bool
	}{
		{
			name: "task with optional fields set",
			scanner: &TestScanner{data: taskData(1, "Ship release",
				sql.NullString{String: "2024-01-16T09:00:00.000000000Z", Valid: true},
				sql.NullInt64{Int64: 5, Valid: true})},
			check: func(t *testing.T, task *domain.Task) {
				assert.Equal(t, int64(1), task.ID)
				assert.Equal(t, "Ship release", task.Title)
				assert.Equal(t, domain.StatusPending, task.Status)
				assert.Equal(t, domain.PriorityHigh, task.Priority)
				assert.Equal(t, "details", *task.Description)
				assert.Equal(t, "ops", *task.Category)
				assert.Equal(t, 5, *task.EstimatedHours)
				require.NotNil(t, task.CompletedAt)
				assert.True(t, task.CompletedAt.Equal(time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)))
				assert.True(t, task.CreatedAt.Equal(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)))
			},
		},
		{
			name:    "null columns stay absent",
			scanner: &TestScanner{data: taskData(2, "Plain", sql.NullString{}, sql.NullInt64{})},
			check: func(t *testing.T, task *domain.Task) {
				assert.Nil(t, task.CompletedAt)
				assert.Nil(t, task.EstimatedHours)
				assert.Nil(t, task.ActualHours)
				assert.Nil(t, task.Assignee)
				assert.Nil(t, task.Tags)
				assert.Nil(t, task.Notes)
			},
		},
		{
			name:        "scan error",
			scanner:     &TestScanner{err: sql.ErrNoRows},
			expectError: true,
		},
		{
			name: "unparseable timestamp",
			scanner: &TestScanner{data: func() []interface{} {
				d := taskData(3, "Broken", sql.NullString{}, sql.NullInt64{})
				d[5] = "not a time"
				return d
			}()},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := ScanTask(tt.scanner)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, task)
				return
			}
			require.NoError(t, err)
			tt.check(t, task)
		})
	}
}

func TestScanTasks(t *testing.T) {
	t.Run("scans every row", func(t *testing.T) {
		rows := &TestRows{rows: []*TestScanner{
			{data: taskData(1, "One", sql.NullString{}, sql.NullInt64{})},
			{data: taskData(2, "Two", sql.NullString{}, sql.NullInt64{})},
		}}

		tasks, err := ScanTasks(rows)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "One", tasks[0].Title)
		assert.Equal(t, "Two", tasks[1].Title)
	})

	t.Run("no rows gives an empty slice", func(t *testing.T) {
		tasks, err := ScanTasks(&TestRows{})
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("row error is returned", func(t *testing.T) {
		_, err := ScanTasks(&TestRows{rows: []*TestScanner{{err: errors.New("bad row")}}})
		assert.Error(t, err)
	})

	t.Run("iteration error is returned", func(t *testing.T) {
		_, err := ScanTasks(&TestRows{err: errors.New("cursor failed")})
		assert.Error(t, err)
	})
}
