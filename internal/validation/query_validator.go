package validation

import (
	"fmt"
	"strconv"
	"strings"

	"task-tracker/internal/domain"
)

// QueryValidator validates listing, filtering and search parameters.
type QueryValidator struct {
	validator *Validator
}

// NewQueryValidator creates a new query validator
func NewQueryValidator() *QueryValidator {
	return &QueryValidator{validator: NewValidator()}
}

// ValidatePageRequest checks a page request: the page must be non-negative,
// the size between 1 and MaxPageSize, and the sort field and direction known.
func (qv *QueryValidator) ValidatePageRequest(req domain.PageRequest) error {
	validationError := NewValidationError()
	qv.checkPageRequest(validationError, req)
	return validationError.OrNil()
}

func (qv *QueryValidator) checkPageRequest(ve *ValidationError, req domain.PageRequest) {
	if req.Page < 0 {
		ve.AddInvalidRangeError("page", req.Page, "must not be negative")
	}
	if req.Size <= 0 {
		ve.AddInvalidRangeError("size", req.Size, "must be positive")
	} else if req.Size > domain.MaxPageSize {
		ve.AddInvalidRangeError("size", req.Size, fmt.Sprintf("must not exceed %d", domain.MaxPageSize))
	}
	if !req.SortField.IsValid() {
		ve.AddInvalidValueError("sort", string(req.SortField), "unknown sort field")
	}
	if req.SortDir != domain.SortAsc && req.SortDir != domain.SortDesc {
		ve.AddInvalidValueError("direction", string(req.SortDir), "must be asc or desc")
	}
}

// ParsePageRequest parses raw page parameters. Empty values take the defaults.
func (qv *QueryValidator) ParsePageRequest(page, size, sort, dir string, defaults domain.PageRequest) (domain.PageRequest, error) {
	validationError := NewValidationError()
	req := defaults

	if page = strings.TrimSpace(page); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil {
			validationError.AddInvalidFormatError("page", page, "integer")
		} else {
			req.Page = n
		}
	}
	if size = strings.TrimSpace(size); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil {
			validationError.AddInvalidFormatError("size", size, "integer")
		} else {
			req.Size = n
		}
	}
	if sort = strings.TrimSpace(sort); sort != "" {
		req.SortField = domain.SortField(sort)
	}
	if dir = strings.TrimSpace(dir); dir != "" {
		if parsed, ok := domain.ParseSortDirection(dir); ok {
			req.SortDir = parsed
		} else {
			req.SortDir = domain.SortDirection(dir)
		}
	}

	if validationError.HasErrors() {
		return defaults, validationError
	}
	if err := qv.ValidatePageRequest(req); err != nil {
		return defaults, err
	}
	return req, nil
}

// ParseTaskFilter builds a filter from raw values. Empty values leave the criterion unset.
func (qv *QueryValidator) ParseTaskFilter(status, priority, assignee, category string) (domain.TaskFilter, error) {
	validationError := NewValidationError()
	var filter domain.TaskFilter

	if strings.TrimSpace(status) != "" {
		if s, err := qv.ParseStatus(status); err != nil {
			validationError.Merge(err)
		} else {
			filter.Status = &s
		}
	}
	if strings.TrimSpace(priority) != "" {
		if p, err := qv.ParsePriority(priority); err != nil {
			validationError.Merge(err)
		} else {
			filter.Priority = &p
		}
	}
	if assignee != "" {
		filter.Assignee = &assignee
	}
	if category != "" {
		filter.Category = &category
	}

	return filter, validationError.OrNil()
}

// ParseStatus parses a status parameter.
func (qv *QueryValidator) ParseStatus(raw string) (domain.Status, error) {
	s, err := domain.ParseStatus(raw)
	if err != nil {
		validationError := NewValidationError()
		validationError.AddInvalidValueError("status", raw, "must be one of PENDING, IN_PROGRESS, COMPLETED, CANCELLED, PAUSED")
		return "", validationError
	}
	return s, nil
}

// ParsePriority parses a priority parameter.
func (qv *QueryValidator) ParsePriority(raw string) (domain.Priority, error) {
	p, err := domain.ParsePriority(raw)
	if err != nil {
		validationError := NewValidationError()
		validationError.AddInvalidValueError("priority", raw, "must be one of URGENT, HIGH, MEDIUM, LOW")
		return "", validationError
	}
	return p, nil
}

// ValidateAssignee requires a non-blank assignee for exact-match listings.
func (qv *QueryValidator) ValidateAssignee(assignee string) error {
	if !qv.validator.IsNonEmptyString(assignee) {
		validationError := NewValidationError()
		validationError.AddRequiredError("assignee")
		return validationError
	}
	return nil
}

// ValidateSearchText requires a non-blank search term.
func (qv *QueryValidator) ValidateSearchText(text string) error {
	if !qv.validator.IsNonEmptyString(text) {
		validationError := NewValidationError()
		validationError.AddRequiredError("text")
		return validationError
	}
	return nil
}
