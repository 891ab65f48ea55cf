// Package api is the caller-facing facade shared by the HTTP server and the
// CLI. It validates raw input, fills in paging defaults, bounds each call
// with a deadline and then delegates to the task service.
package api

import (
	"context"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/services"
	"task-tracker/internal/validation"
)

// ListQuery holds raw listing parameters as they arrive from a query string
// or command line. Empty fields take their defaults or leave a filter unset.
type ListQuery struct {
	Page     string
	Size     string
	Sort     string
	Dir      string
	Status   string
	Priority string
	Assignee string
	Category string
}

// API defines the task operations exposed to callers.
type API interface {
	CreateTask(ctx context.Context, req domain.CreateTaskRequest) (*domain.TaskView, error)
	GetTask(ctx context.Context, id int64) (*domain.TaskView, error)
	ListTasks(ctx context.Context, q ListQuery) (*domain.Page[domain.TaskView], error)
	ListByStatus(ctx context.Context, status string) ([]domain.TaskView, error)
	ListByPriority(ctx context.Context, priority string) ([]domain.TaskView, error)
	ListByAssignee(ctx context.Context, assignee string) ([]domain.TaskView, error)
	SearchTasks(ctx context.Context, text, page, size string) (*domain.Page[domain.TaskView], error)
	UpdateTask(ctx context.Context, id int64, req domain.UpdateTaskRequest) (*domain.TaskView, error)
	MarkCompleted(ctx context.Context, id int64) (*domain.TaskView, error)
	MarkInProgress(ctx context.Context, id int64) (*domain.TaskView, error)
	MarkPending(ctx context.Context, id int64) (*domain.TaskView, error)
	DeleteTask(ctx context.Context, id int64) error
	ListOverdue(ctx context.Context) ([]domain.TaskView, error)
	GetStatistics(ctx context.Context) (*domain.Statistics, error)
}

type apiImpl struct {
	service        services.TaskService
	taskValidator  *validation.TaskValidator
	queryValidator *validation.QueryValidator
	timeout        time.Duration
	pageSize       int
}

// Option configures the facade.
type Option func(*apiImpl)

// WithTimeout bounds every operation. Zero disables the deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(a *apiImpl) { a.timeout = timeout }
}

// WithDefaultPageSize sets the page size used when the caller gives none.
func WithDefaultPageSize(size int) Option {
	return func(a *apiImpl) {
		if size > 0 {
			a.pageSize = size
		}
	}
}

// New creates a new API instance.
func New(service services.TaskService, opts ...Option) API {
	a := &apiImpl{
		service:        service,
		taskValidator:  validation.NewTaskValidator(),
		queryValidator: validation.NewQueryValidator(),
		pageSize:       domain.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *apiImpl) listDefaults() domain.PageRequest {
	page := domain.DefaultPageRequest()
	page.Size = a.pageSize
	return page
}

func (a *apiImpl) searchDefaults() domain.PageRequest {
	return domain.PageRequest{Page: 0, Size: a.pageSize, SortField: domain.SortByID, SortDir: domain.SortAsc}
}

func (a *apiImpl) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}

// call runs fn under the operation deadline. A deadline hit that the store
// did not already classify is reported as a timeout.
func call[T any](a *apiImpl, ctx context.Context, operation string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := a.bounded(ctx)
	defer cancel()

	result, err := fn(ctx)
	if err != nil && !errors.IsAppError(err) && ctx.Err() != nil {
		return result, errors.NewTimeoutError(operation, ctx.Err())
	}
	return result, err
}

func normalizeEnums(status *domain.Status, priority *domain.Priority) {
	if status != nil {
		if parsed, err := domain.ParseStatus(string(*status)); err == nil {
			*status = parsed
		}
	}
	if priority != nil {
		if parsed, err := domain.ParsePriority(string(*priority)); err == nil {
			*priority = parsed
		}
	}
}

// Task operations

func (a *apiImpl) CreateTask(ctx context.Context, req domain.CreateTaskRequest) (*domain.TaskView, error) {
	normalizeEnums(nil, req.Priority)
	valid, err := a.taskValidator.ValidateCreateRequest(req)
	if err != nil {
		return nil, err
	}
	return call(a, ctx, "create task", func(ctx context.Context) (*domain.TaskView, error) {
		return a.service.CreateTask(ctx, valid)
	})
}

func (a *apiImpl) GetTask(ctx context.Context, id int64) (*domain.TaskView, error) {
	if err := a.taskValidator.ValidateTaskID(id); err != nil {
		return nil, err
	}
	return call(a, ctx, "get task", func(ctx context.Context) (*domain.TaskView, error) {
		return a.service.GetTask(ctx, id)
	})
}

func (a *apiImpl) UpdateTask(ctx context.Context, id int64, req domain.UpdateTaskRequest) (*domain.TaskView, error) {
	if err := a.taskValidator.ValidateTaskID(id); err != nil {
		return nil, err
	}
	normalizeEnums(req.Status, req.Priority)
	valid, err := a.taskValidator.ValidateUpdateRequest(req)
	if err != nil {
		return nil, err
	}
	return call(a, ctx, "update task", func(ctx context.Context) (*domain.TaskView, error) {
		return a.service.UpdateTask(ctx, id, valid)
	})
}

func (a *apiImpl) DeleteTask(ctx context.Context, id int64) error {
	if err := a.taskValidator.ValidateTaskID(id); err != nil {
		return err
	}
	_, err := call(a, ctx, "delete task", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.service.DeleteTask(ctx, id)
	})
	return err
}

// Status transitions

func (a *apiImpl) MarkCompleted(ctx context.Context, id int64) (*domain.TaskView, error) {
	return a.transition(ctx, id, "complete task", a.service.MarkCompleted)
}

func (a *apiImpl) MarkInProgress(ctx context.Context, id int64) (*domain.TaskView, error) {
	return a.transition(ctx, id, "start task", a.service.MarkInProgress)
}

func (a *apiImpl) MarkPending(ctx context.Context, id int64) (*domain.TaskView, error) {
	return a.transition(ctx, id, "reset task", a.service.MarkPending)
}

func (a *apiImpl) transition(ctx context.Context, id int64, operation string, fn func(context.Context, int64) (*domain.TaskView, error)) (*domain.TaskView, error) {
	if err := a.taskValidator.ValidateTaskID(id); err != nil {
		return nil, err
	}
	return call(a, ctx, operation, func(ctx context.Context) (*domain.TaskView, error) {
		return fn(ctx, id)
	})
}

// Queries

func (a *apiImpl) ListTasks(ctx context.Context, q ListQuery) (*domain.Page[domain.TaskView], error) {
	validationError := validation.NewValidationError()

	page, err := a.queryValidator.ParsePageRequest(q.Page, q.Size, q.Sort, q.Dir, a.listDefaults())
	validationError.Merge(err)
	filter, err := a.queryValidator.ParseTaskFilter(q.Status, q.Priority, q.Assignee, q.Category)
	validationError.Merge(err)
	if err := validationError.OrNil(); err != nil {
		return nil, err
	}

	return call(a, ctx, "list tasks", func(ctx context.Context) (*domain.Page[domain.TaskView], error) {
		if filter.IsEmpty() {
			return a.service.ListTasks(ctx, page)
		}
		return a.service.ListFilteredTasks(ctx, filter, page)
	})
}

func (a *apiImpl) ListByStatus(ctx context.Context, status string) ([]domain.TaskView, error) {
	parsed, err := a.queryValidator.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return call(a, ctx, "list tasks by status", func(ctx context.Context) ([]domain.TaskView, error) {
		return a.service.ListByStatus(ctx, parsed)
	})
}

func (a *apiImpl) ListByPriority(ctx context.Context, priority string) ([]domain.TaskView, error) {
	parsed, err := a.queryValidator.ParsePriority(priority)
	if err != nil {
		return nil, err
	}
	return call(a, ctx, "list tasks by priority", func(ctx context.Context) ([]domain.TaskView, error) {
		return a.service.ListByPriority(ctx, parsed)
	})
}

func (a *apiImpl) ListByAssignee(ctx context.Context, assignee string) ([]domain.TaskView, error) {
	if err := a.queryValidator.ValidateAssignee(assignee); err != nil {
		return nil, err
	}
	return call(a, ctx, "list tasks by assignee", func(ctx context.Context) ([]domain.TaskView, error) {
		return a.service.ListByAssignee(ctx, assignee)
	})
}

func (a *apiImpl) SearchTasks(ctx context.Context, text, page, size string) (*domain.Page[domain.TaskView], error) {
	validationError := validation.NewValidationError()
	validationError.Merge(a.queryValidator.ValidateSearchText(text))
	pageReq, err := a.queryValidator.ParsePageRequest(page, size, "", "", a.searchDefaults())
	validationError.Merge(err)
	if err := validationError.OrNil(); err != nil {
		return nil, err
	}

	return call(a, ctx, "search tasks", func(ctx context.Context) (*domain.Page[domain.TaskView], error) {
		return a.service.SearchTasks(ctx, text, pageReq)
	})
}

func (a *apiImpl) ListOverdue(ctx context.Context) ([]domain.TaskView, error) {
	return call(a, ctx, "list overdue tasks", a.service.ListOverdue)
}

func (a *apiImpl) GetStatistics(ctx context.Context) (*domain.Statistics, error) {
	return call(a, ctx, "task statistics", a.service.GetStatistics)
}
