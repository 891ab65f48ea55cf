package errors

import (
	"errors"
	"testing"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		expected  string
	}{
		{ErrorTypeValidation, "validation"},
		{ErrorTypeNotFound, "not_found"},
		{ErrorTypeAlreadyExists, "already_exists"},
		{ErrorTypeDatabase, "database"},
		{ErrorTypeInvalidInput, "invalid_input"},
		{ErrorTypeTimeout, "timeout"},
		{ErrorType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if result := tt.errorType.String(); result != tt.expected {
				t.Errorf("ErrorType.String() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestAppError_Error(t *testing.T) {
	plain := &AppError{Type: ErrorTypeNotFound, Message: "task not found: 3"}
	if got := plain.Error(); got != "not_found: task not found: 3" {
		t.Errorf("AppError.Error() = %v", got)
	}

	caused := &AppError{Type: ErrorTypeDatabase, Message: "insert failed", Cause: errors.New("locked")}
	if got := caused.Error(); got != "database: insert failed (caused by: locked)" {
		t.Errorf("AppError.Error() = %v", got)
	}
}

func TestAppError_Is(t *testing.T) {
	conflict := NewAlreadyExistsError("task", "title", "A")
	other := NewAlreadyExistsError("task", "title", "B")
	missing := NewNotFoundError("task", "1")

	if !errors.Is(conflict, other) {
		t.Errorf("errors with same type and code should match")
	}
	if errors.Is(conflict, missing) {
		t.Errorf("errors with different types should not match")
	}
	if conflict.Is(errors.New("plain")) {
		t.Errorf("plain errors should not match")
	}
}

func TestAppError_Context(t *testing.T) {
	appError := &AppError{Type: ErrorTypeValidation, Message: "bad title"}

	if _, exists := appError.GetContext("field"); exists {
		t.Errorf("GetContext should return false when context is nil")
	}

	if result := appError.WithContext("field", "title"); result != appError {
		t.Errorf("WithContext should return the same instance")
	}

	value, exists := appError.GetContext("field")
	if !exists || value != "title" {
		t.Errorf("GetContext = %v, %v, want title, true", value, exists)
	}
}
