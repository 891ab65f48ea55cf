// Package memory is an in-process TaskRepository backed by a map.
package memory

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/repository"
)

// Repository keeps tasks in memory. It is safe for concurrent use; the title
// check and the write happen under one lock.
type Repository struct {
	mu     sync.RWMutex
	tasks  map[int64]*domain.Task
	nextID int64
	clock  repository.Clock
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the clock used for timestamps.
func WithClock(clock repository.Clock) Option {
	return func(r *Repository) {
		r.clock = clock
	}
}

// New creates an empty repository.
func New(opts ...Option) *Repository {
	r := &Repository{
		tasks:  make(map[int64]*domain.Task),
		nextID: 1,
		clock:  repository.SystemClock,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ repository.TaskRepository = (*Repository)(nil)

// Save inserts or overwrites a task.
func (r *Repository) Save(ctx context.Context, task *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return errors.FromStorage("save task", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.tasks {
		if existing.Title == task.Title && id != task.ID {
			return errors.NewAlreadyExistsError("task", "title", task.Title)
		}
	}

	now := r.clock()
	if task.ID == 0 {
		task.ID = r.nextID
		r.nextID++
		task.CreatedAt = now
		task.UpdatedAt = now
		r.tasks[task.ID] = task.Clone()
		return nil
	}

	existing, ok := r.tasks[task.ID]
	if !ok {
		return errors.NewNotFoundError("task", strconv.FormatInt(task.ID, 10))
	}
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = now
	r.tasks[task.ID] = task.Clone()
	return nil
}

// FindByID returns a copy of the task or a NotFound error.
func (r *Repository) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, errors.NewNotFoundError("task", strconv.FormatInt(id, 10))
	}
	return task.Clone(), nil
}

// ExistsByID reports whether a task with the id is stored.
func (r *Repository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.tasks[id]
	return ok, nil
}

// ExistsByTitle reports whether a task has exactly this title.
func (r *Repository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, task := range r.tasks {
		if task.Title == title {
			return true, nil
		}
	}
	return false, nil
}

// DeleteByID removes a task or returns NotFound.
func (r *Repository) DeleteByID(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return errors.NewNotFoundError("task", strconv.FormatInt(id, 10))
	}
	delete(r.tasks, id)
	return nil
}

// Count returns the number of stored tasks.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.tasks)), nil
}

// FindPage filters, sorts and slices the stored tasks.
func (r *Repository) FindPage(ctx context.Context, filter domain.TaskFilter, page domain.PageRequest) (*domain.Page[*domain.Task], error) {
	matches := r.collect(filter.Matches)
	return paginate(matches, page), nil
}

// FindByStatus returns tasks in a status, most urgent and oldest first.
func (r *Repository) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Task, error) {
	tasks := r.collect(func(t *domain.Task) bool { return t.Status == status })
	slices.SortFunc(tasks, domain.ComparePriorityThenCreated)
	return tasks, nil
}

// FindByPriority returns tasks with the priority in id order.
func (r *Repository) FindByPriority(ctx context.Context, priority domain.Priority) ([]*domain.Task, error) {
	return r.collectByID(func(t *domain.Task) bool { return t.Priority == priority }), nil
}

// FindByAssignee returns tasks assigned to exactly this name in id order.
func (r *Repository) FindByAssignee(ctx context.Context, assignee string) ([]*domain.Task, error) {
	return r.collectByID(func(t *domain.Task) bool {
		return t.Assignee != nil && *t.Assignee == assignee
	}), nil
}

// Search matches the text against title or description ignoring case.
func (r *Repository) Search(ctx context.Context, text string, page domain.PageRequest) (*domain.Page[*domain.Task], error) {
	needle := strings.ToLower(text)
	matches := r.collect(func(t *domain.Task) bool {
		if strings.Contains(strings.ToLower(t.Title), needle) {
			return true
		}
		return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), needle)
	})
	return paginate(matches, page), nil
}

// FindOverdue returns pending tasks with an estimate created before cutoff.
func (r *Repository) FindOverdue(ctx context.Context, cutoff time.Time) ([]*domain.Task, error) {
	return r.collectByID(func(t *domain.Task) bool {
		return t.Status == domain.StatusPending && t.EstimatedHours != nil && t.CreatedAt.Before(cutoff)
	}), nil
}

// CountByStatus groups the stored tasks by status. Absent statuses are omitted.
func (r *Repository) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.Status]int64)
	for _, task := range r.tasks {
		counts[task.Status]++
	}
	return counts, nil
}

// CountByPriority groups the stored tasks by priority. Absent priorities are omitted.
func (r *Repository) CountByPriority(ctx context.Context) (map[domain.Priority]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.Priority]int64)
	for _, task := range r.tasks {
		counts[task.Priority]++
	}
	return counts, nil
}

// Close is a no-op.
func (r *Repository) Close() error {
	return nil
}

func (r *Repository) collect(match func(*domain.Task) bool) []*domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Task{}
	for _, task := range r.tasks {
		if match(task) {
			out = append(out, task.Clone())
		}
	}
	return out
}

func (r *Repository) collectByID(match func(*domain.Task) bool) []*domain.Task {
	tasks := r.collect(match)
	slices.SortFunc(tasks, domain.CompareBy(domain.SortByID, domain.SortAsc))
	return tasks
}

func paginate(tasks []*domain.Task, page domain.PageRequest) *domain.Page[*domain.Task] {
	slices.SortFunc(tasks, domain.CompareBy(page.SortField, page.SortDir))

	total := int64(len(tasks))
	start := min(page.Offset(), len(tasks))
	end := start + min(page.Size, len(tasks)-start)
	return domain.NewPage(tasks[start:end], total, page)
}
