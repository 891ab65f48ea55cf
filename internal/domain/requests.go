package domain

import "time"

// CreateTaskRequest carries the caller-supplied fields of a new task.
type CreateTaskRequest struct {
	Title          string    `json:"title"`
	Description    *string   `json:"description,omitempty"`
	Priority       *Priority `json:"priority,omitempty"`
	Assignee       *string   `json:"assignee,omitempty"`
	Category       *string   `json:"category,omitempty"`
	Tags           *string   `json:"tags,omitempty"`
	EstimatedHours *int      `json:"estimatedHours,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
}

// NewTask builds a pending task from the request.
func (r CreateTaskRequest) NewTask() Task {
	var priority Priority
	if r.Priority != nil {
		priority = *r.Priority
	}
	task := NewTask(r.Title, priority)
	task.Description = r.Description
	task.Assignee = r.Assignee
	task.Category = r.Category
	task.Tags = r.Tags
	task.EstimatedHours = r.EstimatedHours
	task.Notes = r.Notes
	return task
}

// UpdateTaskRequest is a partial update. Nil fields leave the task unchanged.
type UpdateTaskRequest struct {
	Title          *string   `json:"title,omitempty"`
	Description    *string   `json:"description,omitempty"`
	Status         *Status   `json:"status,omitempty"`
	Priority       *Priority `json:"priority,omitempty"`
	Assignee       *string   `json:"assignee,omitempty"`
	Category       *string   `json:"category,omitempty"`
	Tags           *string   `json:"tags,omitempty"`
	EstimatedHours *int      `json:"estimatedHours,omitempty"`
	ActualHours    *int      `json:"actualHours,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
}

// ApplyTo copies every non-nil field onto the task. A status change goes
// through SetStatus so completion bookkeeping stays consistent.
func (r UpdateTaskRequest) ApplyTo(t *Task, now time.Time) {
	if r.Title != nil {
		t.Title = *r.Title
	}
	if r.Description != nil {
		t.Description = cloneString(r.Description)
	}
	if r.Status != nil {
		t.SetStatus(*r.Status, now)
	}
	if r.Priority != nil {
		t.Priority = *r.Priority
	}
	if r.Assignee != nil {
		t.Assignee = cloneString(r.Assignee)
	}
	if r.Category != nil {
		t.Category = cloneString(r.Category)
	}
	if r.Tags != nil {
		t.Tags = cloneString(r.Tags)
	}
	if r.EstimatedHours != nil {
		t.EstimatedHours = cloneInt(r.EstimatedHours)
	}
	if r.ActualHours != nil {
		t.ActualHours = cloneInt(r.ActualHours)
	}
	if r.Notes != nil {
		t.Notes = cloneString(r.Notes)
	}
}
