package services

import (
	"context"
	"log/slog"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/events"
	"task-tracker/internal/logging"
	"task-tracker/internal/repository"
)

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	repo      repository.TaskRepository
	mapper    *domain.Mapper
	publisher events.Publisher
	clock     repository.Clock
	logger    *slog.Logger
}

// Option configures the task service.
type Option func(*taskServiceImpl)

// WithClock sets the time source for transitions and the overdue cutoff.
func WithClock(clock repository.Clock) Option {
	return func(s *taskServiceImpl) { s.clock = clock }
}

// WithPublisher sets where lifecycle events go.
func WithPublisher(publisher events.Publisher) Option {
	return func(s *taskServiceImpl) { s.publisher = publisher }
}

// WithDateLayout sets the layout used to render projection dates.
func WithDateLayout(layout string) Option {
	return func(s *taskServiceImpl) { s.mapper = domain.NewMapper(layout) }
}

// WithLogger sets the logger for event delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *taskServiceImpl) { s.logger = logger }
}

// NewTaskService creates a new TaskService instance
func NewTaskService(repo repository.TaskRepository, opts ...Option) TaskService {
	s := &taskServiceImpl{
		repo:      repo,
		mapper:    domain.NewMapper(domain.DefaultDateLayout),
		publisher: events.NopPublisher{},
		clock:     repository.SystemClock,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// publish is best effort; the change it reports is already committed.
func (s *taskServiceImpl) publish(ctx context.Context, eventType events.Type, task *domain.Task) {
	event := events.NewEvent(eventType, task, s.clock())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "event delivery failed",
			"event", string(eventType), "taskId", task.ID, "error", err)
	}
}

func (s *taskServiceImpl) view(task *domain.Task) *domain.TaskView {
	v := s.mapper.Task.ToView(task)
	return &v
}

// CreateTask persists a new pending task after the title uniqueness check.
func (s *taskServiceImpl) CreateTask(ctx context.Context, req domain.CreateTaskRequest) (*domain.TaskView, error) {
	exists, err := s.repo.ExistsByTitle(ctx, req.Title)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.NewAlreadyExistsError("task", "title", req.Title)
	}

	task := req.NewTask()
	if err := s.repo.Save(ctx, &task); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TaskCreated, &task)
	return s.view(&task), nil
}

// GetTask retrieves a task by its ID
func (s *taskServiceImpl) GetTask(ctx context.Context, id int64) (*domain.TaskView, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(task), nil
}

// UpdateTask applies the fields set in req. A rename is checked against the
// other tasks' titles first.
func (s *taskServiceImpl) UpdateTask(ctx context.Context, id int64, req domain.UpdateTaskRequest) (*domain.TaskView, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil && *req.Title != task.Title {
		exists, err := s.repo.ExistsByTitle(ctx, *req.Title)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errors.NewAlreadyExistsError("task", "title", *req.Title)
		}
	}

	req.ApplyTo(task, s.clock())
	if err := s.repo.Save(ctx, task); err != nil {
		return nil, err
	}

	eventType := events.TaskUpdated
	if req.Status != nil && *req.Status == domain.StatusCompleted {
		eventType = events.TaskCompleted
	}
	s.publish(ctx, eventType, task)
	return s.view(task), nil
}

// DeleteTask permanently removes a task
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id int64) error {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, events.TaskDeleted, task)
	return nil
}

// MarkCompleted sets COMPLETED and stamps the completion time.
func (s *taskServiceImpl) MarkCompleted(ctx context.Context, id int64) (*domain.TaskView, error) {
	return s.transition(ctx, id, events.TaskCompleted, func(t *domain.Task) {
		t.MarkCompleted(s.clock())
	})
}

// MarkInProgress sets IN_PROGRESS and leaves the completion time alone.
func (s *taskServiceImpl) MarkInProgress(ctx context.Context, id int64) (*domain.TaskView, error) {
	return s.transition(ctx, id, events.TaskStarted, (*domain.Task).MarkInProgress)
}

// MarkPending sets PENDING and clears the completion time.
func (s *taskServiceImpl) MarkPending(ctx context.Context, id int64) (*domain.TaskView, error) {
	return s.transition(ctx, id, events.TaskReset, (*domain.Task).MarkPending)
}

func (s *taskServiceImpl) transition(ctx context.Context, id int64, eventType events.Type, apply func(*domain.Task)) (*domain.TaskView, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(task)
	if err := s.repo.Save(ctx, task); err != nil {
		return nil, err
	}

	s.publish(ctx, eventType, task)
	return s.view(task), nil
}

// ListTasks returns one page of all tasks
func (s *taskServiceImpl) ListTasks(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.TaskView], error) {
	return s.ListFilteredTasks(ctx, domain.TaskFilter{}, page)
}

// ListFilteredTasks returns one page of the tasks matching every set criterion
func (s *taskServiceImpl) ListFilteredTasks(ctx context.Context, filter domain.TaskFilter, page domain.PageRequest) (*domain.Page[domain.TaskView], error) {
	result, err := s.repo.FindPage(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return s.mapper.Task.ToViewPage(result), nil
}

// SearchTasks returns one page of tasks whose title or description contains text
func (s *taskServiceImpl) SearchTasks(ctx context.Context, text string, page domain.PageRequest) (*domain.Page[domain.TaskView], error) {
	result, err := s.repo.Search(ctx, text, page)
	if err != nil {
		return nil, err
	}
	return s.mapper.Task.ToViewPage(result), nil
}

func (s *taskServiceImpl) views(tasks []*domain.Task, err error) ([]domain.TaskView, error) {
	if err != nil {
		return nil, err
	}
	return s.mapper.Task.ToViews(tasks), nil
}

// ListByStatus lists tasks in a status, most urgent and oldest first
func (s *taskServiceImpl) ListByStatus(ctx context.Context, status domain.Status) ([]domain.TaskView, error) {
	return s.views(s.repo.FindByStatus(ctx, status))
}

// ListByPriority lists tasks with a priority
func (s *taskServiceImpl) ListByPriority(ctx context.Context, priority domain.Priority) ([]domain.TaskView, error) {
	return s.views(s.repo.FindByPriority(ctx, priority))
}

// ListByAssignee lists tasks assigned to exactly this name
func (s *taskServiceImpl) ListByAssignee(ctx context.Context, assignee string) ([]domain.TaskView, error) {
	return s.views(s.repo.FindByAssignee(ctx, assignee))
}

// ListOverdue lists pending estimated tasks older than the overdue threshold
func (s *taskServiceImpl) ListOverdue(ctx context.Context) ([]domain.TaskView, error) {
	return s.views(s.repo.FindOverdue(ctx, domain.OverdueCutoff(s.clock())))
}

// GetStatistics counts tasks by status, by priority and overall
func (s *taskServiceImpl) GetStatistics(ctx context.Context) (*domain.Statistics, error) {
	byStatus, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.repo.CountByPriority(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Statistics{
		ByStatus:   byStatus,
		ByPriority: byPriority,
		Total:      total,
	}, nil
}
