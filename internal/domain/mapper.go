package domain

import "time"

// DefaultDateLayout renders timestamps as day/month/year.
const DefaultDateLayout = "02/01/2006"

// TaskView is the externally visible representation of a task.
// Timestamps are rendered as calendar dates; absent ones are omitted.
type TaskView struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Description    *string  `json:"description,omitempty"`
	Status         Status   `json:"status"`
	Priority       Priority `json:"priority"`
	CreatedAt      string   `json:"createdAt,omitempty"`
	UpdatedAt      string   `json:"updatedAt,omitempty"`
	CompletedAt    *string  `json:"completedAt,omitempty"`
	Assignee       *string  `json:"assignee,omitempty"`
	Category       *string  `json:"category,omitempty"`
	Tags           *string  `json:"tags,omitempty"`
	EstimatedHours *int     `json:"estimatedHours,omitempty"`
	ActualHours    *int     `json:"actualHours,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
}

// TaskMapper projects domain tasks into views.
type TaskMapper struct {
	dateLayout string
	location   *time.Location
}

// NewTaskMapper creates a mapper using the default day/month/year layout in local time.
func NewTaskMapper() *TaskMapper {
	return NewTaskMapperWithLayout(DefaultDateLayout)
}

// NewTaskMapperWithLayout creates a mapper with a custom date layout.
func NewTaskMapperWithLayout(layout string) *TaskMapper {
	if layout == "" {
		layout = DefaultDateLayout
	}
	return &TaskMapper{dateLayout: layout, location: time.Local}
}

// ToView converts a domain Task to its projection.
func (m *TaskMapper) ToView(task *Task) TaskView {
	view := TaskView{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         task.Status,
		Priority:       task.Priority,
		CreatedAt:      m.formatDate(task.CreatedAt),
		UpdatedAt:      m.formatDate(task.UpdatedAt),
		Assignee:       task.Assignee,
		Category:       task.Category,
		Tags:           task.Tags,
		EstimatedHours: task.EstimatedHours,
		ActualHours:    task.ActualHours,
		Notes:          task.Notes,
	}
	if task.CompletedAt != nil {
		completed := m.formatDate(*task.CompletedAt)
		view.CompletedAt = &completed
	}
	return view
}

// ToViews converts a slice of domain Tasks.
func (m *TaskMapper) ToViews(tasks []*Task) []TaskView {
	views := make([]TaskView, len(tasks))
	for i, task := range tasks {
		views[i] = m.ToView(task)
	}
	return views
}

// ToViewPage converts a page of domain Tasks, keeping its totals.
func (m *TaskMapper) ToViewPage(page *Page[*Task]) *Page[TaskView] {
	return MapPage(page, m.ToView)
}

func (m *TaskMapper) formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(m.location).Format(m.dateLayout)
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	Task *TaskMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper(dateLayout string) *Mapper {
	return &Mapper{
		Task: NewTaskMapperWithLayout(dateLayout),
	}
}
