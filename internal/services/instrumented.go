package services

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// instrumentedService wraps a TaskService with one span and one log record
// per operation.
type instrumentedService struct {
	next   TaskService
	tracer trace.Tracer
	logger *slog.Logger
}

// NewInstrumentedService decorates next with tracing and structured logging.
func NewInstrumentedService(next TaskService, tracer trace.Tracer, logger *slog.Logger) TaskService {
	return &instrumentedService{next: next, tracer: tracer, logger: logger}
}

func observe[T any](ctx context.Context, s *instrumentedService, op string, attrs []attribute.KeyValue, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService."+op, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	result, err := fn(ctx)
	elapsed := time.Since(start)

	logAttrs := []any{"op", op, "duration", elapsed}
	for _, a := range attrs {
		logAttrs = append(logAttrs, string(a.Key), a.Value.Emit())
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, errors.GetErrorCode(err))
		logAttrs = append(logAttrs, "code", errors.GetErrorCode(err), "error", err)
		if appErr, ok := errors.AsAppError(err); ok {
			keys := make([]string, 0, len(appErr.Context))
			for key := range appErr.Context {
				keys = append(keys, key)
			}
			slices.Sort(keys)
			for _, key := range keys {
				logAttrs = append(logAttrs, "error."+key, appErr.Context[key])
			}
		}
		if errors.ShouldLogError(err) {
			s.logger.ErrorContext(ctx, "task operation failed", logAttrs...)
		} else {
			s.logger.InfoContext(ctx, "task operation rejected", logAttrs...)
		}
		return result, err
	}

	span.SetStatus(codes.Ok, "")
	s.logger.DebugContext(ctx, "task operation completed", logAttrs...)
	return result, nil
}

func idAttr(id int64) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.Int64("task.id", id)}
}

func pageAttrs(page domain.PageRequest) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("page.number", page.Page),
		attribute.Int("page.size", page.Size),
		attribute.String("page.sort", string(page.SortField)+","+string(page.SortDir)),
	}
}

func (s *instrumentedService) CreateTask(ctx context.Context, req domain.CreateTaskRequest) (*domain.TaskView, error) {
	return observe(ctx, s, "CreateTask", nil, func(ctx context.Context) (*domain.TaskView, error) {
		return s.next.CreateTask(ctx, req)
	})
}

func (s *instrumentedService) GetTask(ctx context.Context, id int64) (*domain.TaskView, error) {
	return observe(ctx, s, "GetTask", idAttr(id), func(ctx context.Context) (*domain.TaskView, error) {
		return s.next.GetTask(ctx, id)
	})
}

func (s *instrumentedService) UpdateTask(ctx context.Context, id int64, req domain.UpdateTaskRequest) (*domain.TaskView, error) {
	return observe(ctx, s, "UpdateTask", idAttr(id), func(ctx context.Context) (*domain.TaskView, error) {
		return s.next.UpdateTask(ctx, id, req)
	})
}

func (s *instrumentedService) DeleteTask(ctx context.Context, id int64) error {
	_, err := observe(ctx, s, "DeleteTask", idAttr(id), func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.next.DeleteTask(ctx, id)
	})
	return err
}

func (s *instrumentedService) MarkCompleted(ctx context.Context, id int64) (*domain.TaskView, error) {
	return observe(ctx, s, "MarkCompleted", idAttr(id), func(ctx context.Context) (*domain.TaskView, error) {
		return s.next.MarkCompleted(ctx, id)
	})
}

func (s *instrumentedService) MarkInProgress(ctx context.Context, id int64) (*domain.TaskView, error) {
	return observe(ctx, s, "MarkInProgress", idAttr(id), func(ctx context.Context) (*domain.TaskView, error) {
		return s.next.MarkInProgress(ctx, id)
	})
}

func (s *instrumentedService) MarkPending(ctx context.Context, id int64) (*domain.TaskView, error) {
	return observe(ctx, s, "MarkPending", idAttr(id), func(ctx context.Context) (*domain.TaskView, error) {
		return s.next.MarkPending(ctx, id)
	})
}

func (s *instrumentedService) ListTasks(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.TaskView], error) {
	return observe(ctx, s, "ListTasks", pageAttrs(page), func(ctx context.Context) (*domain.Page[domain.TaskView], error) {
		return s.next.ListTasks(ctx, page)
	})
}

func (s *instrumentedService) ListFilteredTasks(ctx context.Context, filter domain.TaskFilter, page domain.PageRequest) (*domain.Page[domain.TaskView], error) {
	attrs := pageAttrs(page)
	if filter.Status != nil {
		attrs = append(attrs, attribute.String("filter.status", string(*filter.Status)))
	}
	if filter.Priority != nil {
		attrs = append(attrs, attribute.String("filter.priority", string(*filter.Priority)))
	}
	return observe(ctx, s, "ListFilteredTasks", attrs, func(ctx context.Context) (*domain.Page[domain.TaskView], error) {
		return s.next.ListFilteredTasks(ctx, filter, page)
	})
}

func (s *instrumentedService) SearchTasks(ctx context.Context, text string, page domain.PageRequest) (*domain.Page[domain.TaskView], error) {
	return observe(ctx, s, "SearchTasks", pageAttrs(page), func(ctx context.Context) (*domain.Page[domain.TaskView], error) {
		return s.next.SearchTasks(ctx, text, page)
	})
}

func (s *instrumentedService) ListByStatus(ctx context.Context, status domain.Status) ([]domain.TaskView, error) {
	attrs := []attribute.KeyValue{attribute.String("task.status", string(status))}
	return observe(ctx, s, "ListByStatus", attrs, func(ctx context.Context) ([]domain.TaskView, error) {
		return s.next.ListByStatus(ctx, status)
	})
}

func (s *instrumentedService) ListByPriority(ctx context.Context, priority domain.Priority) ([]domain.TaskView, error) {
	attrs := []attribute.KeyValue{attribute.String("task.priority", string(priority))}
	return observe(ctx, s, "ListByPriority", attrs, func(ctx context.Context) ([]domain.TaskView, error) {
		return s.next.ListByPriority(ctx, priority)
	})
}

func (s *instrumentedService) ListByAssignee(ctx context.Context, assignee string) ([]domain.TaskView, error) {
	return observe(ctx, s, "ListByAssignee", nil, func(ctx context.Context) ([]domain.TaskView, error) {
		return s.next.ListByAssignee(ctx, assignee)
	})
}

func (s *instrumentedService) ListOverdue(ctx context.Context) ([]domain.TaskView, error) {
	return observe(ctx, s, "ListOverdue", nil, func(ctx context.Context) ([]domain.TaskView, error) {
		return s.next.ListOverdue(ctx)
	})
}

func (s *instrumentedService) GetStatistics(ctx context.Context) (*domain.Statistics, error) {
	return observe(ctx, s, "GetStatistics", nil, func(ctx context.Context) (*domain.Statistics, error) {
		return s.next.GetStatistics(ctx)
	})
}
