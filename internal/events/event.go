// Package events describes task lifecycle notifications and publishes them.
package events

import (
	"context"
	"sync"
	"time"

	"task-tracker/internal/domain"

	"github.com/google/uuid"
)

// Type names what happened to a task.
type Type string

const (
	TaskCreated   Type = "task.created"
	TaskUpdated   Type = "task.updated"
	TaskCompleted Type = "task.completed"
	TaskStarted   Type = "task.started"
	TaskReset     Type = "task.reset"
	TaskDeleted   Type = "task.deleted"
)

// Event is one task lifecycle notification.
type Event struct {
	ID         string        `json:"id"`
	Type       Type          `json:"type"`
	TaskID     int64         `json:"taskId"`
	Title      string        `json:"title"`
	Status     domain.Status `json:"status"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// NewEvent describes task at the moment now.
func NewEvent(eventType Type, task *domain.Task, now time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		TaskID:     task.ID,
		Title:      task.Title,
		Status:     task.Status,
		OccurredAt: now.UTC(),
	}
}

// Publisher delivers events. Delivery is best effort: callers log failures
// and never undo the change that produced the event.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	// Err, when set, is returned from Publish after recording.
	Err error
}

// Publish records event.
func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.Err
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types lists the recorded event types in order.
func (r *Recorder) Types() []Type {
	events := r.Events()
	types := make([]Type, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

func (r *Recorder) Close() error { return nil }
