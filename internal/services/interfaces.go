package services

import (
	"context"

	"task-tracker/internal/domain"
)

// TaskService handles task lifecycle, queries and projection. It raises
// NotFound and AlreadyExists and passes storage failures through unchanged.
// Inputs are assumed to be validated by the caller.
type TaskService interface {
	// Task CRUD operations
	CreateTask(ctx context.Context, req domain.CreateTaskRequest) (*domain.TaskView, error)
	GetTask(ctx context.Context, id int64) (*domain.TaskView, error)
	UpdateTask(ctx context.Context, id int64, req domain.UpdateTaskRequest) (*domain.TaskView, error)
	DeleteTask(ctx context.Context, id int64) error

	// Status transitions
	MarkCompleted(ctx context.Context, id int64) (*domain.TaskView, error)
	MarkInProgress(ctx context.Context, id int64) (*domain.TaskView, error)
	MarkPending(ctx context.Context, id int64) (*domain.TaskView, error)

	// Paginated queries
	ListTasks(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.TaskView], error)
	ListFilteredTasks(ctx context.Context, filter domain.TaskFilter, page domain.PageRequest) (*domain.Page[domain.TaskView], error)
	SearchTasks(ctx context.Context, text string, page domain.PageRequest) (*domain.Page[domain.TaskView], error)

	// Unpaginated listings
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.TaskView, error)
	ListByPriority(ctx context.Context, priority domain.Priority) ([]domain.TaskView, error)
	ListByAssignee(ctx context.Context, assignee string) ([]domain.TaskView, error)
	ListOverdue(ctx context.Context) ([]domain.TaskView, error)

	GetStatistics(ctx context.Context) (*domain.Statistics, error)
}
