package domain

import "time"

// OverdueThreshold is how long a pending task with an estimate may sit
// before it is reported as possibly overdue.
const OverdueThreshold = 7 * 24 * time.Hour

// Task represents a task in the domain model.
// This is a pure domain model without database-specific concerns.
type Task struct {
	ID             int64
	Title          string
	Description    *string
	Status         Status
	Priority       Priority
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CompletedAt    *time.Time
	Assignee       *string
	Category       *string
	Tags           *string
	EstimatedHours *int
	ActualHours    *int
	Notes          *string
}

// NewTask creates a pending task with the given title and priority.
// An empty priority falls back to MEDIUM.
func NewTask(title string, priority Priority) Task {
	if priority == "" {
		priority = PriorityMedium
	}
	return Task{
		Title:    title,
		Status:   StatusPending,
		Priority: priority,
	}
}

// MarkCompleted moves the task to COMPLETED and stamps the completion time.
func (t *Task) MarkCompleted(now time.Time) {
	t.Status = StatusCompleted
	t.CompletedAt = &now
}

// MarkInProgress moves the task to IN_PROGRESS. The completion time is left alone.
func (t *Task) MarkInProgress() {
	t.Status = StatusInProgress
}

// MarkPending moves the task back to PENDING and clears the completion time.
func (t *Task) MarkPending() {
	t.Status = StatusPending
	t.CompletedAt = nil
}

// SetStatus assigns a status directly. Assigning COMPLETED behaves like
// MarkCompleted and PENDING like MarkPending; other states keep CompletedAt.
func (t *Task) SetStatus(status Status, now time.Time) {
	switch status {
	case StatusCompleted:
		t.MarkCompleted(now)
	case StatusPending:
		t.MarkPending()
	default:
		t.Status = status
	}
}

// IsPossiblyOverdue reports whether the task is pending, has an estimate,
// and was created before the overdue cutoff relative to now.
func (t Task) IsPossiblyOverdue(now time.Time) bool {
	return t.Status == StatusPending &&
		t.EstimatedHours != nil &&
		t.CreatedAt.Before(OverdueCutoff(now))
}

// OverdueCutoff returns the creation time before which a pending task counts as overdue.
func OverdueCutoff(now time.Time) time.Time {
	return now.Add(-OverdueThreshold)
}

// String returns the task title for display purposes.
func (t Task) String() string {
	return t.Title
}

// Clone returns a deep copy so stores can hand out tasks without sharing pointers.
func (t Task) Clone() *Task {
	c := t
	c.Description = cloneString(t.Description)
	c.Assignee = cloneString(t.Assignee)
	c.Category = cloneString(t.Category)
	c.Tags = cloneString(t.Tags)
	c.Notes = cloneString(t.Notes)
	c.EstimatedHours = cloneInt(t.EstimatedHours)
	c.ActualHours = cloneInt(t.ActualHours)
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		c.CompletedAt = &completed
	}
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
