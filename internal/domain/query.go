package domain

import (
	"cmp"
	"math"
	"strings"
	"time"
)

// TaskFilter holds optional criteria combined with AND. A nil field matches every task.
type TaskFilter struct {
	Status   *Status
	Priority *Priority
	Assignee *string
	Category *string
}

// IsEmpty reports whether no criterion is set.
func (f TaskFilter) IsEmpty() bool {
	return f.Status == nil && f.Priority == nil && f.Assignee == nil && f.Category == nil
}

// Matches reports whether the task satisfies every supplied criterion.
func (f TaskFilter) Matches(t *Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Assignee != nil && (t.Assignee == nil || *t.Assignee != *f.Assignee) {
		return false
	}
	if f.Category != nil && (t.Category == nil || *t.Category != *f.Category) {
		return false
	}
	return true
}

// SortField names a sortable task attribute.
type SortField string

const (
	SortByID             SortField = "id"
	SortByTitle          SortField = "title"
	SortByStatus         SortField = "status"
	SortByPriority       SortField = "priority"
	SortByCreatedAt      SortField = "createdAt"
	SortByUpdatedAt      SortField = "updatedAt"
	SortByCompletedAt    SortField = "completedAt"
	SortByAssignee       SortField = "assignee"
	SortByCategory       SortField = "category"
	SortByEstimatedHours SortField = "estimatedHours"
	SortByActualHours    SortField = "actualHours"
)

// SortFields lists the accepted sort fields.
var SortFields = []SortField{
	SortByID, SortByTitle, SortByStatus, SortByPriority, SortByCreatedAt, SortByUpdatedAt,
	SortByCompletedAt, SortByAssignee, SortByCategory, SortByEstimatedHours, SortByActualHours,
}

// IsValid reports whether f is an accepted sort field.
func (f SortField) IsValid() bool {
	for _, known := range SortFields {
		if f == known {
			return true
		}
	}
	return false
}

// SortDirection is ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection accepts "asc" or "desc" in any case.
func ParseSortDirection(value string) (SortDirection, bool) {
	switch SortDirection(strings.ToLower(strings.TrimSpace(value))) {
	case SortAsc:
		return SortAsc, true
	case SortDesc:
		return SortDesc, true
	}
	return "", false
}

const (
	DefaultPageSize  = 10
	MaxPageSize      = 1000
	DefaultSortField = SortByCreatedAt
	DefaultSortDir   = SortDesc
)

// PageRequest selects a 0-based page of results in a given order.
type PageRequest struct {
	Page      int
	Size      int
	SortField SortField
	SortDir   SortDirection
}

// DefaultPageRequest returns the first page sorted newest first.
func DefaultPageRequest() PageRequest {
	return PageRequest{
		Page:      0,
		Size:      DefaultPageSize,
		SortField: DefaultSortField,
		SortDir:   DefaultSortDir,
	}
}

// Offset returns the number of rows to skip. It saturates at math.MaxInt
// instead of wrapping, so an absurd page reads past the end of any result set.
func (p PageRequest) Offset() int {
	if p.Page <= 0 || p.Size <= 0 {
		return 0
	}
	if p.Page > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Page * p.Size
}

// Page is one slice of a larger ordered result set.
type Page[T any] struct {
	Items         []T   `json:"items"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage builds a page whose totals cover the whole result set.
func NewPage[T any](items []T, total int64, req PageRequest) *Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		size := int64(req.Size)
		pages := total / size
		if total%size != 0 {
			pages++
		}
		totalPages = int(pages)
	}
	return &Page[T]{
		Items:         items,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}

// MapPage converts the items of a page while keeping its totals.
func MapPage[T, U any](p *Page[T], fn func(T) U) *Page[U] {
	items := make([]U, len(p.Items))
	for i, item := range p.Items {
		items[i] = fn(item)
	}
	return &Page[U]{
		Items:         items,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}

// Statistics holds task counts grouped by status and by priority.
// Missing keys mean zero.
type Statistics struct {
	ByStatus   map[Status]int64   `json:"byStatus"`
	ByPriority map[Priority]int64 `json:"byPriority"`
	Total      int64              `json:"total"`
}

// ComparePriorityThenCreated orders by priority rank, then creation time, then id.
func ComparePriorityThenCreated(a, b *Task) int {
	if c := cmp.Compare(a.Priority.Rank(), b.Priority.Rank()); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// CompareBy orders two tasks by a sort field and direction. Absent values
// sort first ascending and last descending. Ties fall back to id ascending.
func CompareBy(field SortField, dir SortDirection) func(a, b *Task) int {
	return func(a, b *Task) int {
		c := compareField(field, a, b)
		if dir == SortDesc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}
}

func compareField(field SortField, a, b *Task) int {
	switch field {
	case SortByTitle:
		return strings.Compare(a.Title, b.Title)
	case SortByStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	case SortByPriority:
		return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
	case SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortByCompletedAt:
		return compareOptional(a.CompletedAt, b.CompletedAt, func(x, y time.Time) int { return x.Compare(y) })
	case SortByAssignee:
		return compareOptional(a.Assignee, b.Assignee, strings.Compare)
	case SortByCategory:
		return compareOptional(a.Category, b.Category, strings.Compare)
	case SortByEstimatedHours:
		return compareOptional(a.EstimatedHours, b.EstimatedHours, cmp.Compare[int])
	case SortByActualHours:
		return compareOptional(a.ActualHours, b.ActualHours, cmp.Compare[int])
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}

func compareOptional[T any](a, b *T, compare func(x, y T) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return compare(*a, *b)
}
