package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	apperrors "task-tracker/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockResult implements sql.Result for testing
type MockResult struct {
	lastInsertID int64
	rowsAffected int64
	insertErr    error
	rowsErr      error
}

func (mr *MockResult) LastInsertId() (int64, error) {
	return mr.lastInsertID, mr.insertErr
}

func (mr *MockResult) RowsAffected() (int64, error) {
	return mr.rowsAffected, mr.rowsErr
}

func TestHandleDatabaseError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedType apperrors.ErrorType
	}{
		{
			name:         "plain error becomes database error",
			err:          errors.New("database connection failed"),
			expectedType: apperrors.ErrorTypeDatabase,
		},
		{
			name:         "deadline becomes timeout",
			err:          context.DeadlineExceeded,
			expectedType: apperrors.ErrorTypeTimeout,
		},
		{
			name:         "app error passes through",
			err:          apperrors.NewNotFoundError("task", "7"),
			expectedType: apperrors.ErrorTypeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HandleDatabaseError("test operation", tt.err)
			assert.True(t, apperrors.IsErrorType(result, tt.expectedType), "got %v", result)
		})
	}

	assert.NoError(t, HandleDatabaseError("noop", nil))
}

func TestHandleNoRowsError(t *testing.T) {
	tests := []struct {
		name           string
		inputErr       error
		expectNotFound bool
	}{
		{
			name:           "ErrNoRows should return NotFoundError",
			inputErr:       sql.ErrNoRows,
			expectNotFound: true,
		},
		{
			name:           "Other error should return as-is",
			inputErr:       errors.New("some other error"),
			expectNotFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HandleNoRowsError(tt.inputErr, "task", "123")

			if tt.expectNotFound {
				assert.True(t, apperrors.IsNotFound(result))
				assert.Contains(t, result.Error(), "task")
				assert.Contains(t, result.Error(), "123")
			} else {
				assert.Equal(t, tt.inputErr, result)
			}
		})
	}
}

func TestValidateRowsAffected(t *testing.T) {
	tests := []struct {
		name           string
		result         sql.Result
		expectError    bool
		expectNotFound bool
	}{
		{
			name:   "Successful update",
			result: &MockResult{rowsAffected: 1},
		},
		{
			name:           "No rows affected",
			result:         &MockResult{rowsAffected: 0},
			expectError:    true,
			expectNotFound: true,
		},
		{
			name:        "Error getting rows affected",
			result:      &MockResult{rowsErr: errors.New("driver error")},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRowsAffected(tt.result, "task", "123")

			if !tt.expectError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.expectNotFound, apperrors.IsNotFound(err))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	insert := `INSERT INTO tasks (title, status, priority, created_at, updated_at) VALUES (?, 'PENDING', 'LOW', ?, ?)`
	stamp := "2025-01-01T00:00:00.000000000Z"
	_, err := repo.db.ExecContext(ctx, insert, "same", stamp, stamp)
	require.NoError(t, err)

	_, err = repo.db.ExecContext(ctx, insert, "same", stamp, stamp)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	_, err = repo.db.ExecContext(ctx, `INSERT INTO tasks (title, status, priority, created_at, updated_at) VALUES ('other', 'NOPE', 'LOW', ?, ?)`, stamp, stamp)
	require.Error(t, err)
	assert.False(t, IsUniqueViolation(err), "CHECK failures are not unique violations")

	assert.False(t, IsUniqueViolation(errors.New("UNIQUE constraint failed")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestQueryScalar(t *testing.T) {
	repo := newTestRepository(t)

	n, err := QueryScalar(context.Background(), repo.db, `SELECT COUNT(*) FROM tasks`)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = QueryScalar(context.Background(), repo.db, `SELECT COUNT(*) FROM missing_table`)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeDatabase))
}
