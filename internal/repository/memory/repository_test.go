package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/repository"
	"task-tracker/internal/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_Contract(t *testing.T) {
	repotest.Run(t, func(t *testing.T, clock repository.Clock) repository.TaskRepository {
		return New(WithClock(clock))
	})
}

func TestRepository_ConcurrentSameTitle(t *testing.T) {
	repo := New()
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task := domain.NewTask("Contended", domain.PriorityLow)
			results <- repo.Save(ctx, &task)
		}()
	}
	wg.Wait()
	close(results)

	var saved, rejected int
	for err := range results {
		switch {
		case err == nil:
			saved++
		case errors.IsAlreadyExists(err):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, saved)
	assert.Equal(t, workers-1, rejected)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_ConcurrentDistinctTitles(t *testing.T) {
	repo := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			task := domain.NewTask(fmt.Sprintf("Task %02d", i), domain.PriorityMedium)
			assert.NoError(t, repo.Save(ctx, &task))
		}(i)
	}
	wg.Wait()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50), count)
}

func TestRepository_ReturnsCopies(t *testing.T) {
	repo := New()
	ctx := context.Background()

	task := domain.NewTask("Original", domain.PriorityLow)
	require.NoError(t, repo.Save(ctx, &task))

	task.Title = "Mutated after save"
	found, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", found.Title)

	found.Title = "Mutated after read"
	again, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Title)
}

func TestRepository_CancelledContext(t *testing.T) {
	repo := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := domain.NewTask("Too late", domain.PriorityLow)
	err := repo.Save(ctx, &task)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeTimeout), "got %v", err)
}
