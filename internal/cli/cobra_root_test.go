package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"task-tracker/internal/api"
	"task-tracker/internal/config"
	"task-tracker/internal/domain"
	"task-tracker/internal/repository/memory"
	"task-tracker/internal/repository/repotest"
	"task-tracker/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCLI struct {
	api   api.API
	clock *repotest.Clock
}

func setupTestCLI(t *testing.T) *testCLI {
	t.Helper()
	clock := repotest.NewClock(time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC))
	repo := memory.New(memory.WithClock(clock.Now))
	t.Cleanup(func() { repo.Close() })
	service := services.NewTaskService(repo, services.WithClock(clock.Now))
	return &testCLI{api: api.New(service), clock: clock}
}

// run executes one tk invocation against the shared store and returns stdout.
func (c *testCLI) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	build := func(cfg *config.Config, w io.Writer) (*App, error) {
		return NewApp(c.api, cfg, w), nil
	}
	root := NewRootCommand(config.NewLoader(config.WithEnvFiles()), build)
	root.Command().SetArgs(args)
	root.Command().SetOut(&out)
	root.Command().SetErr(io.Discard)

	err := root.Execute()
	c.clock.Advance(time.Second)
	return out.String(), err
}

func (c *testCLI) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := c.run(t, args...)
	require.NoError(t, err)
	return out
}

func TestCLI_CreateAndGet(t *testing.T) {
	c := setupTestCLI(t)

	out := c.mustRun(t, "create", "--title", "Write report", "--priority", "high", "--estimated-hours", "4")
	assert.Contains(t, out, "Created task 1")
	assert.Contains(t, out, "Write report")
	assert.Contains(t, out, "HIGH")

	out = c.mustRun(t, "get", "1", "--output", "json")
	var view domain.TaskView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "Write report", view.Title)
	assert.Equal(t, domain.StatusPending, view.Status)
	assert.Equal(t, 4, *view.EstimatedHours)
	assert.Nil(t, view.CompletedAt)
}

func TestCLI_Errors(t *testing.T) {
	c := setupTestCLI(t)
	c.mustRun(t, "create", "--title", "Existing")

	tests := []struct {
		name           string
		args           []string
		errorAssertion func(t *testing.T, err error)
	}{
		{
			name: "missing title flag",
			args: []string{"create"},
			errorAssertion: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "title")
			},
		},
		{
			name: "title too short",
			args: []string{"create", "--title", "ab"},
			errorAssertion: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "failed to create task")
			},
		},
		{
			name: "duplicate title",
			args: []string{"create", "--title", "Existing"},
			errorAssertion: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "already exists")
			},
		},
		{
			name: "unknown task",
			args: []string{"get", "99"},
			errorAssertion: func(t *testing.T, err error) {
				assert.EqualError(t, err, "failed to get task: task not found: 99")
			},
		},
		{
			name: "non numeric id",
			args: []string{"complete", "abc"},
			errorAssertion: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "failed to complete task")
			},
		},
		{
			name: "bad status",
			args: []string{"by-status", "done"},
			errorAssertion: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "failed to list tasks by status")
			},
		},
		{
			name: "invalid output flag",
			args: []string{"stats", "--output", "yaml"},
			errorAssertion: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "invalid configuration")
			},
		},
		{
			name: "watch without brokers",
			args: []string{"watch"},
			errorAssertion: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "TK_KAFKA_BROKERS")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.run(t, tt.args...)
			require.Error(t, err)
			tt.errorAssertion(t, err)
		})
	}
}

func TestCLI_UpdateOnlyChangesGivenFlags(t *testing.T) {
	c := setupTestCLI(t)
	c.mustRun(t, "create", "--title", "Keep fields", "--assignee", "ana", "--category", "ops")

	c.mustRun(t, "update", "1", "--priority", "urgent", "--actual-hours", "0")

	out := c.mustRun(t, "get", "1", "-o", "json")
	var view domain.TaskView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, domain.PriorityUrgent, view.Priority)
	assert.Equal(t, "ana", *view.Assignee)
	assert.Equal(t, "ops", *view.Category)
	require.NotNil(t, view.ActualHours)
	assert.Equal(t, 0, *view.ActualHours)
	assert.Nil(t, view.EstimatedHours)
}

func TestCLI_Transitions(t *testing.T) {
	c := setupTestCLI(t)
	c.mustRun(t, "create", "--title", "Moving task")

	assert.Equal(t, "Task 1 is now IN_PROGRESS\n", c.mustRun(t, "start", "1"))
	assert.Equal(t, "Task 1 is now COMPLETED\n", c.mustRun(t, "complete", "1"))

	out := c.mustRun(t, "reset", "1", "-o", "json")
	var view domain.TaskView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, domain.StatusPending, view.Status)
	assert.Nil(t, view.CompletedAt)

	assert.Equal(t, "Deleted task 1\n", c.mustRun(t, "delete", "1"))
	_, err := c.run(t, "delete", "1")
	assert.ErrorContains(t, err, "not found")
}

func TestCLI_Listings(t *testing.T) {
	c := setupTestCLI(t)
	c.mustRun(t, "create", "--title", "Medium one")
	c.mustRun(t, "create", "--title", "Urgent one", "--priority", "URGENT", "--assignee", "bo")
	c.mustRun(t, "create", "--title", "Estimated", "--description", "report draft", "--estimated-hours", "2")

	out := c.mustRun(t, "list", "-o", "json", "--size", "2")
	var page domain.Page[domain.TaskView]
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Estimated", page.Items[0].Title)

	out = c.mustRun(t, "list", "--sort", "priority", "--dir", "asc")
	assert.Contains(t, out, "Page 1 of 1 (3 tasks)")

	out = c.mustRun(t, "by-status", "pending", "-o", "json")
	var views []domain.TaskView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 3)
	assert.Equal(t, "Urgent one", views[0].Title)

	out = c.mustRun(t, "by-assignee", "bo")
	assert.Contains(t, out, "Urgent one")
	assert.NotContains(t, out, "Medium one")

	out = c.mustRun(t, "by-priority", "low")
	assert.Equal(t, "No tasks found\n", out)

	out = c.mustRun(t, "search", "REPORT", "-o", "json")
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Estimated", page.Items[0].Title)

	assert.Equal(t, "No tasks found\n", c.mustRun(t, "overdue"))
	c.clock.Advance(8 * 24 * time.Hour)
	assert.Contains(t, c.mustRun(t, "overdue"), "Estimated")

	out = c.mustRun(t, "stats")
	assert.Contains(t, out, "PENDING")
	assert.Contains(t, out, "TOTAL")

	out = c.mustRun(t, "stats", "-o", "json")
	var stats domain.Statistics
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.ByPriority[domain.PriorityUrgent])
}

func TestBuildApp_MemoryStore(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Database.Store = config.StoreMemory

	var out bytes.Buffer
	app, err := BuildApp(cfg, &out)
	require.NoError(t, err)

	_, err = app.api.CreateTask(context.Background(), domain.CreateTaskRequest{Title: "Wired"})
	require.NoError(t, err)
	stats, err := app.api.GetStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)

	assert.NoError(t, app.Close())
	assert.NoError(t, app.Close(), "closing twice is harmless")
}
