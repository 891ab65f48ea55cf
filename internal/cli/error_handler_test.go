package cli

import (
	"errors"
	"testing"

	apperrors "task-tracker/internal/errors"
	"task-tracker/internal/validation"

	"github.com/stretchr/testify/assert"
)

func TestErrorHandler_Handle(t *testing.T) {
	eh := NewErrorHandler()
	validationErr := validation.NewValidationError()
	validationErr.AddRequiredError("title")

	tests := []struct {
		name      string
		operation string
		err       error
		expected  string
	}{
		{
			name:      "Validation error",
			operation: "create task",
			err:       validationErr,
			expected:  "failed to create task: title is required",
		},
		{
			name:      "Not found error",
			operation: "get task",
			err:       apperrors.NewNotFoundError("task", "123"),
			expected:  "failed to get task: task not found: 123",
		},
		{
			name:      "Database error hides the cause",
			operation: "save task",
			err:       apperrors.NewDatabaseError("insert", errors.New("disk I/O error")),
			expected:  "failed to save task: A database error occurred. Please try again.",
		},
		{
			name:      "Regular error",
			operation: "process",
			err:       errors.New("regular error"),
			expected:  "failed to process: regular error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, eh.Handle(tt.operation, tt.err), tt.expected)
		})
	}

	assert.NoError(t, eh.Handle("anything", nil))
}
