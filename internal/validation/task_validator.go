package validation

import (
	"task-tracker/internal/domain"
)

const (
	TitleMinLength       = 3
	TitleMaxLength       = 100
	DescriptionMaxLength = 500
	NotesMaxLength       = 1000
	AssigneeMaxLength    = 100
	CategoryMaxLength    = 50
	TagsMaxLength        = 200
)

// TaskValidator provides validation for Task-related operations
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a new task validator
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{
		validator: NewValidator(),
	}
}

// ValidateTitle validates a task title
func (tv *TaskValidator) ValidateTitle(title string) error {
	validationError := NewValidationError()
	tv.checkTitle(validationError, title)
	return validationError.OrNil()
}

func (tv *TaskValidator) checkTitle(ve *ValidationError, title string) {
	trimmed := tv.validator.TrimAndValidateString(title)
	if !tv.validator.IsNonEmptyString(trimmed) {
		ve.AddRequiredError("title")
		return
	}
	if !tv.validator.IsValidStringLength(trimmed, TitleMinLength, TitleMaxLength) {
		ve.AddInvalidLengthError("title", trimmed, TitleMinLength, TitleMaxLength)
	}
	if tv.validator.HasControlCharacters(trimmed) {
		ve.AddInvalidCharacterError("title", trimmed)
	}
}

func (tv *TaskValidator) checkOptionalFields(ve *ValidationError, description, assignee, category, tags, notes *string) {
	if !tv.validator.IsWithinMaxLength(description, DescriptionMaxLength) {
		ve.AddInvalidLengthError("description", *description, 0, DescriptionMaxLength)
	}
	if !tv.validator.IsWithinMaxLength(assignee, AssigneeMaxLength) {
		ve.AddInvalidLengthError("assignee", *assignee, 0, AssigneeMaxLength)
	}
	if !tv.validator.IsWithinMaxLength(category, CategoryMaxLength) {
		ve.AddInvalidLengthError("category", *category, 0, CategoryMaxLength)
	}
	if !tv.validator.IsWithinMaxLength(tags, TagsMaxLength) {
		ve.AddInvalidLengthError("tags", *tags, 0, TagsMaxLength)
	}
	if !tv.validator.IsWithinMaxLength(notes, NotesMaxLength) {
		ve.AddInvalidLengthError("notes", *notes, 0, NotesMaxLength)
	}
}

func (tv *TaskValidator) checkHours(ve *ValidationError, field string, hours *int) {
	if !tv.validator.IsNonNegative(hours) {
		ve.AddInvalidRangeError(field, *hours, "must not be negative")
	}
}

// ValidateCreateRequest validates a create request and returns a copy with the title trimmed.
func (tv *TaskValidator) ValidateCreateRequest(req domain.CreateTaskRequest) (domain.CreateTaskRequest, error) {
	validationError := NewValidationError()

	tv.checkTitle(validationError, req.Title)
	tv.checkOptionalFields(validationError, req.Description, req.Assignee, req.Category, req.Tags, req.Notes)
	tv.checkHours(validationError, "estimatedHours", req.EstimatedHours)
	if req.Priority != nil && !req.Priority.IsValid() {
		validationError.AddInvalidValueError("priority", string(*req.Priority), "must be one of URGENT, HIGH, MEDIUM, LOW")
	}

	if validationError.HasErrors() {
		return req, validationError
	}

	req.Title = tv.validator.TrimAndValidateString(req.Title)
	return req, nil
}

// ValidateUpdateRequest validates the fields present in a partial update and
// returns a copy with the title trimmed.
func (tv *TaskValidator) ValidateUpdateRequest(req domain.UpdateTaskRequest) (domain.UpdateTaskRequest, error) {
	validationError := NewValidationError()

	if req.Title != nil {
		tv.checkTitle(validationError, *req.Title)
	}
	tv.checkOptionalFields(validationError, req.Description, req.Assignee, req.Category, req.Tags, req.Notes)
	tv.checkHours(validationError, "estimatedHours", req.EstimatedHours)
	tv.checkHours(validationError, "actualHours", req.ActualHours)
	if req.Status != nil && !req.Status.IsValid() {
		validationError.AddInvalidValueError("status", string(*req.Status), "must be one of PENDING, IN_PROGRESS, COMPLETED, CANCELLED, PAUSED")
	}
	if req.Priority != nil && !req.Priority.IsValid() {
		validationError.AddInvalidValueError("priority", string(*req.Priority), "must be one of URGENT, HIGH, MEDIUM, LOW")
	}

	if validationError.HasErrors() {
		return req, validationError
	}

	if req.Title != nil {
		trimmed := tv.validator.TrimAndValidateString(*req.Title)
		req.Title = &trimmed
	}
	return req, nil
}

// ValidateTaskID validates a task ID
func (tv *TaskValidator) ValidateTaskID(id int64) error {
	if !tv.validator.IsValidTaskID(id) {
		validationError := NewValidationError()
		validationError.AddInvalidValueError("id", id, "must be a positive integer")
		return validationError
	}
	return nil
}
