// Package repository defines the task store contract shared by the memory,
// SQLite and gorm-backed implementations.
package repository

import (
	"context"
	"time"

	"task-tracker/internal/domain"
)

// TaskRepository persists tasks and answers the task queries.
//
// Save inserts a task whose ID is zero, assigning the ID, CreatedAt and
// UpdatedAt. For an existing ID it overwrites the stored row, keeps CreatedAt
// and refreshes UpdatedAt. A title collision with another task is reported as
// an AlreadyExists error; an unknown ID as NotFound.
type TaskRepository interface {
	Save(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id int64) (*domain.Task, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	DeleteByID(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)

	// FindPage returns the tasks matching every supplied criterion, in the
	// requested order, with totals computed over the whole filtered set.
	FindPage(ctx context.Context, filter domain.TaskFilter, page domain.PageRequest) (*domain.Page[*domain.Task], error)
	// FindByStatus orders by priority rank, then creation time ascending.
	FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Task, error)
	FindByPriority(ctx context.Context, priority domain.Priority) ([]*domain.Task, error)
	FindByAssignee(ctx context.Context, assignee string) ([]*domain.Task, error)
	// Search matches title or description case-insensitively.
	Search(ctx context.Context, text string, page domain.PageRequest) (*domain.Page[*domain.Task], error)
	// FindOverdue returns pending tasks with an estimate created before cutoff.
	FindOverdue(ctx context.Context, cutoff time.Time) ([]*domain.Task, error)
	CountByStatus(ctx context.Context) (map[domain.Status]int64, error)
	CountByPriority(ctx context.Context) (map[domain.Priority]int64, error)

	Close() error
}

// Clock returns the current time. Stores use it to stamp CreatedAt and UpdatedAt.
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time {
	return time.Now()
}
