// Package repotest holds the behavior every TaskRepository implementation must share.
package repotest

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory opens an empty repository that stamps times with clock.
type Factory func(t *testing.T, clock repository.Clock) repository.TaskRepository

// Clock is a manually advanced clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at the given time.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var epoch = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

type fixture struct {
	repo  repository.TaskRepository
	clock *Clock
	ctx   context.Context
}

func newFixture(t *testing.T, factory Factory) *fixture {
	clock := NewClock(epoch)
	repo := factory(t, clock.Now)
	t.Cleanup(func() { repo.Close() })
	return &fixture{repo: repo, clock: clock, ctx: context.Background()}
}

func (f *fixture) save(t *testing.T, task domain.Task) *domain.Task {
	t.Helper()
	f.clock.Advance(time.Second)
	require.NoError(t, f.repo.Save(f.ctx, &task))
	return &task
}

func titles(tasks []*domain.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}

// Run executes the shared suite against repositories built by factory.
func Run(t *testing.T, factory Factory) {
	t.Run("save assigns identity and timestamps", func(t *testing.T) {
		f := newFixture(t, factory)

		task := f.save(t, domain.NewTask("First task", ""))
		assert.Greater(t, task.ID, int64(0))
		assert.True(t, task.CreatedAt.Equal(f.clock.Now()))
		assert.True(t, task.UpdatedAt.Equal(f.clock.Now()))

		second := f.save(t, domain.NewTask("Second task", ""))
		assert.Greater(t, second.ID, task.ID)
	})

	t.Run("save round trips every field", func(t *testing.T) {
		f := newFixture(t, factory)

		task := domain.NewTask("Full task", domain.PriorityUrgent)
		task.Description = strPtr("all the fields")
		task.Assignee = strPtr("ana")
		task.Category = strPtr("ops")
		task.Tags = strPtr("infra,release")
		task.EstimatedHours = intPtr(8)
		task.ActualHours = intPtr(0)
		task.Notes = strPtr("notes")
		task.MarkCompleted(epoch.Add(time.Hour))
		saved := f.save(t, task)

		found, err := f.repo.FindByID(f.ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "Full task", found.Title)
		assert.Equal(t, domain.StatusCompleted, found.Status)
		assert.Equal(t, domain.PriorityUrgent, found.Priority)
		assert.Equal(t, "all the fields", *found.Description)
		assert.Equal(t, "ana", *found.Assignee)
		assert.Equal(t, "ops", *found.Category)
		assert.Equal(t, "infra,release", *found.Tags)
		assert.Equal(t, 8, *found.EstimatedHours)
		assert.Equal(t, 0, *found.ActualHours)
		assert.Equal(t, "notes", *found.Notes)
		require.NotNil(t, found.CompletedAt)
		assert.True(t, found.CompletedAt.Equal(epoch.Add(time.Hour)))
		assert.True(t, found.CreatedAt.Equal(saved.CreatedAt))
	})

	t.Run("absent optional fields stay absent", func(t *testing.T) {
		f := newFixture(t, factory)
		saved := f.save(t, domain.NewTask("Bare task", ""))

		found, err := f.repo.FindByID(f.ctx, saved.ID)
		require.NoError(t, err)
		assert.Nil(t, found.Description)
		assert.Nil(t, found.Assignee)
		assert.Nil(t, found.EstimatedHours)
		assert.Nil(t, found.CompletedAt)
		assert.Equal(t, domain.StatusPending, found.Status)
		assert.Equal(t, domain.PriorityMedium, found.Priority)
	})

	t.Run("update keeps creation time and refreshes update time", func(t *testing.T) {
		f := newFixture(t, factory)
		saved := f.save(t, domain.NewTask("Mutable task", ""))
		created := saved.CreatedAt

		f.clock.Advance(time.Hour)
		saved.Title = "Renamed task"
		saved.CreatedAt = time.Time{}
		require.NoError(t, f.repo.Save(f.ctx, saved))

		found, err := f.repo.FindByID(f.ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed task", found.Title)
		assert.True(t, found.CreatedAt.Equal(created))
		assert.True(t, found.UpdatedAt.Equal(f.clock.Now()))
		assert.True(t, saved.UpdatedAt.Equal(f.clock.Now()))
	})

	t.Run("duplicate title is rejected without changing the store", func(t *testing.T) {
		f := newFixture(t, factory)
		f.save(t, domain.NewTask("Unique title", ""))

		dup := domain.NewTask("Unique title", domain.PriorityHigh)
		err := f.repo.Save(f.ctx, &dup)
		assert.True(t, errors.IsAlreadyExists(err), "got %v", err)

		count, err := f.repo.Count(f.ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("renaming onto another title is rejected", func(t *testing.T) {
		f := newFixture(t, factory)
		f.save(t, domain.NewTask("Taken title", ""))
		other := f.save(t, domain.NewTask("Other title", ""))

		other.Title = "Taken title"
		err := f.repo.Save(f.ctx, other)
		assert.True(t, errors.IsAlreadyExists(err), "got %v", err)
	})

	t.Run("titles are case sensitive", func(t *testing.T) {
		f := newFixture(t, factory)
		f.save(t, domain.NewTask("Case Title", ""))

		exists, err := f.repo.ExistsByTitle(f.ctx, "Case Title")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = f.repo.ExistsByTitle(f.ctx, "case title")
		require.NoError(t, err)
		assert.False(t, exists)

		lower := domain.NewTask("case title", "")
		assert.NoError(t, f.repo.Save(f.ctx, &lower))
	})

	t.Run("missing ids are not found", func(t *testing.T) {
		f := newFixture(t, factory)

		_, err := f.repo.FindByID(f.ctx, 999)
		assert.True(t, errors.IsNotFound(err), "got %v", err)

		assert.True(t, errors.IsNotFound(f.repo.DeleteByID(f.ctx, 999)))

		ghost := domain.NewTask("Ghost task", "")
		ghost.ID = 999
		assert.True(t, errors.IsNotFound(f.repo.Save(f.ctx, &ghost)))

		exists, err := f.repo.ExistsByID(f.ctx, 999)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("delete removes the task", func(t *testing.T) {
		f := newFixture(t, factory)
		saved := f.save(t, domain.NewTask("Doomed task", ""))

		exists, err := f.repo.ExistsByID(f.ctx, saved.ID)
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, f.repo.DeleteByID(f.ctx, saved.ID))

		_, err = f.repo.FindByID(f.ctx, saved.ID)
		assert.True(t, errors.IsNotFound(err))
		count, err := f.repo.Count(f.ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("page totals cover the whole set", func(t *testing.T) {
		f := newFixture(t, factory)
		for i := 1; i <= 25; i++ {
			f.save(t, domain.NewTask(fmt.Sprintf("Task %02d", i), ""))
		}

		page, err := f.repo.FindPage(f.ctx, domain.TaskFilter{}, domain.DefaultPageRequest())
		require.NoError(t, err)
		assert.Len(t, page.Items, 10)
		assert.Equal(t, int64(25), page.TotalElements)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, "Task 25", page.Items[0].Title, "default order is newest first")

		last, err := f.repo.FindPage(f.ctx, domain.TaskFilter{}, domain.PageRequest{Page: 2, Size: 10, SortField: domain.SortByCreatedAt, SortDir: domain.SortAsc})
		require.NoError(t, err)
		assert.Equal(t, []string{"Task 21", "Task 22", "Task 23", "Task 24", "Task 25"}, titles(last.Items))

		beyond, err := f.repo.FindPage(f.ctx, domain.TaskFilter{}, domain.PageRequest{Page: 5, Size: 10, SortField: domain.SortByID, SortDir: domain.SortAsc})
		require.NoError(t, err)
		assert.Empty(t, beyond.Items)
		assert.Equal(t, int64(25), beyond.TotalElements)
	})

	t.Run("huge pages read past the end", func(t *testing.T) {
		f := newFixture(t, factory)
		for i := 1; i <= 3; i++ {
			f.save(t, domain.NewTask(fmt.Sprintf("Task %02d", i), ""))
		}

		requests := []domain.PageRequest{
			{Page: 1, Size: math.MaxInt, SortField: domain.SortByID, SortDir: domain.SortAsc},
			{Page: 2, Size: math.MaxInt/2 + 1, SortField: domain.SortByID, SortDir: domain.SortAsc},
		}
		for _, req := range requests {
			var page *domain.Page[*domain.Task]
			require.NotPanics(t, func() {
				var err error
				page, err = f.repo.FindPage(f.ctx, domain.TaskFilter{}, req)
				require.NoError(t, err)
			})
			assert.Empty(t, page.Items, "page %d of size %d", req.Page, req.Size)
			assert.Equal(t, int64(3), page.TotalElements)
			assert.Equal(t, 1, page.TotalPages)
		}

		first, err := f.repo.Search(f.ctx, "task", domain.PageRequest{Page: 0, Size: math.MaxInt, SortField: domain.SortByID, SortDir: domain.SortAsc})
		require.NoError(t, err)
		assert.Len(t, first.Items, 3)
	})

	t.Run("filters combine with and and unset means any", func(t *testing.T) {
		f := newFixture(t, factory)

		a := domain.NewTask("Alpha", domain.PriorityHigh)
		a.Assignee = strPtr("ana")
		a.Category = strPtr("work")
		f.save(t, a)

		b := domain.NewTask("Bravo", domain.PriorityHigh)
		b.Assignee = strPtr("bob")
		b.Category = strPtr("work")
		f.save(t, b)

		c := domain.NewTask("Charlie", domain.PriorityLow)
		c.Assignee = strPtr("ana")
		c.MarkInProgress()
		f.save(t, c)

		f.save(t, domain.NewTask("Delta", domain.PriorityHigh))

		pending := domain.StatusPending
		high := domain.PriorityHigh
		ana := "ana"
		work := "work"
		byTitle := domain.PageRequest{Page: 0, Size: 10, SortField: domain.SortByTitle, SortDir: domain.SortAsc}

		tests := []struct {
			name     string
			filter   domain.TaskFilter
			expected []string
		}{
			{name: "no criteria", filter: domain.TaskFilter{}, expected: []string{"Alpha", "Bravo", "Charlie", "Delta"}},
			{name: "status", filter: domain.TaskFilter{Status: &pending}, expected: []string{"Alpha", "Bravo", "Delta"}},
			{name: "priority and assignee", filter: domain.TaskFilter{Priority: &high, Assignee: &ana}, expected: []string{"Alpha"}},
			{name: "category excludes tasks without one", filter: domain.TaskFilter{Category: &work}, expected: []string{"Alpha", "Bravo"}},
			{name: "all four", filter: domain.TaskFilter{Status: &pending, Priority: &high, Assignee: &ana, Category: &work}, expected: []string{"Alpha"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				page, err := f.repo.FindPage(f.ctx, tt.filter, byTitle)
				require.NoError(t, err)
				assert.Equal(t, tt.expected, titles(page.Items))
				assert.Equal(t, int64(len(tt.expected)), page.TotalElements)
			})
		}
	})

	t.Run("sorting by priority and nullable fields", func(t *testing.T) {
		f := newFixture(t, factory)

		low := domain.NewTask("Low one", domain.PriorityLow)
		low.EstimatedHours = intPtr(2)
		f.save(t, low)
		urgent := domain.NewTask("Urgent one", domain.PriorityUrgent)
		f.save(t, urgent)
		high := domain.NewTask("High one", domain.PriorityHigh)
		high.EstimatedHours = intPtr(5)
		f.save(t, high)

		page, err := f.repo.FindPage(f.ctx, domain.TaskFilter{}, domain.PageRequest{Size: 10, SortField: domain.SortByPriority, SortDir: domain.SortAsc})
		require.NoError(t, err)
		assert.Equal(t, []string{"Urgent one", "High one", "Low one"}, titles(page.Items))

		page, err = f.repo.FindPage(f.ctx, domain.TaskFilter{}, domain.PageRequest{Size: 10, SortField: domain.SortByEstimatedHours, SortDir: domain.SortAsc})
		require.NoError(t, err)
		assert.Equal(t, []string{"Urgent one", "Low one", "High one"}, titles(page.Items))

		page, err = f.repo.FindPage(f.ctx, domain.TaskFilter{}, domain.PageRequest{Size: 10, SortField: domain.SortByEstimatedHours, SortDir: domain.SortDesc})
		require.NoError(t, err)
		assert.Equal(t, []string{"High one", "Low one", "Urgent one"}, titles(page.Items))
	})

	t.Run("status listing orders by priority then age", func(t *testing.T) {
		f := newFixture(t, factory)

		f.save(t, domain.NewTask("A", domain.PriorityMedium))
		f.save(t, domain.NewTask("B", domain.PriorityUrgent))
		f.save(t, domain.NewTask("C", domain.PriorityUrgent))
		f.save(t, domain.NewTask("D", domain.PriorityLow))
		f.save(t, domain.NewTask("E", domain.PriorityHigh))
		other := domain.NewTask("F", domain.PriorityUrgent)
		other.MarkInProgress()
		f.save(t, other)

		tasks, err := f.repo.FindByStatus(f.ctx, domain.StatusPending)
		require.NoError(t, err)
		assert.Equal(t, []string{"B", "C", "E", "A", "D"}, titles(tasks))
	})

	t.Run("exact match listings", func(t *testing.T) {
		f := newFixture(t, factory)

		one := domain.NewTask("One", domain.PriorityHigh)
		one.Assignee = strPtr("ana")
		f.save(t, one)
		f.save(t, domain.NewTask("Two", domain.PriorityLow))
		three := domain.NewTask("Three", domain.PriorityHigh)
		three.Assignee = strPtr("Ana")
		f.save(t, three)

		tasks, err := f.repo.FindByPriority(f.ctx, domain.PriorityHigh)
		require.NoError(t, err)
		assert.Equal(t, []string{"One", "Three"}, titles(tasks))

		tasks, err = f.repo.FindByAssignee(f.ctx, "ana")
		require.NoError(t, err)
		assert.Equal(t, []string{"One"}, titles(tasks))

		tasks, err = f.repo.FindByAssignee(f.ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("search matches title or description ignoring case", func(t *testing.T) {
		f := newFixture(t, factory)

		f.save(t, domain.NewTask("Desc Report", ""))
		withDescription := domain.NewTask("Quarterly numbers", "")
		withDescription.Description = strPtr("Description update for Q3")
		f.save(t, withDescription)
		f.save(t, domain.NewTask("Unrelated", ""))
		f.save(t, domain.NewTask("Discount 50% off", ""))
		f.save(t, domain.NewTask("Discount 500 off", ""))

		byID := domain.PageRequest{Size: 10, SortField: domain.SortByID, SortDir: domain.SortAsc}
		page, err := f.repo.Search(f.ctx, "desc", byID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Desc Report", "Quarterly numbers"}, titles(page.Items))
		assert.Equal(t, int64(2), page.TotalElements)

		page, err = f.repo.Search(f.ctx, "50%", byID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Discount 50% off"}, titles(page.Items), "wildcards are literal")

		page, err = f.repo.Search(f.ctx, "DESC", domain.PageRequest{Size: 1, SortField: domain.SortByID, SortDir: domain.SortAsc})
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, int64(2), page.TotalElements)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("overdue uses the cutoff", func(t *testing.T) {
		f := newFixture(t, factory)

		old := domain.NewTask("Old estimated", "")
		old.EstimatedHours = intPtr(5)
		f.save(t, old)

		f.save(t, domain.NewTask("Old without estimate", ""))

		done := domain.NewTask("Old completed", "")
		done.EstimatedHours = intPtr(5)
		done.MarkCompleted(epoch)
		f.save(t, done)

		f.clock.Advance(7 * 24 * time.Hour)
		recent := domain.NewTask("Recent estimated", "")
		recent.EstimatedHours = intPtr(5)
		f.save(t, recent)

		now := f.clock.Now().Add(24 * time.Hour)
		tasks, err := f.repo.FindOverdue(f.ctx, domain.OverdueCutoff(now))
		require.NoError(t, err)
		assert.Equal(t, []string{"Old estimated"}, titles(tasks))
	})

	t.Run("grouped counts omit empty groups", func(t *testing.T) {
		f := newFixture(t, factory)

		f.save(t, domain.NewTask("P1", domain.PriorityHigh))
		f.save(t, domain.NewTask("P2", domain.PriorityHigh))
		done := domain.NewTask("C1", domain.PriorityLow)
		done.MarkCompleted(epoch)
		f.save(t, done)

		byStatus, err := f.repo.CountByStatus(f.ctx)
		require.NoError(t, err)
		assert.Equal(t, map[domain.Status]int64{domain.StatusPending: 2, domain.StatusCompleted: 1}, byStatus)

		byPriority, err := f.repo.CountByPriority(f.ctx)
		require.NoError(t, err)
		assert.Equal(t, map[domain.Priority]int64{domain.PriorityHigh: 2, domain.PriorityLow: 1}, byPriority)

		count, err := f.repo.Count(f.ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}
