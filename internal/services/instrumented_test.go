package services

import (
	"bytes"
	"context"
	"testing"

	"task-tracker/internal/domain"
	"task-tracker/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupInstrumented(t *testing.T) (TaskService, *tracetest.SpanRecorder, *bytes.Buffer) {
	t.Helper()
	t.Setenv("TK_DEBUG", "")

	env := setupTaskService(t, "memory")
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { provider.Shutdown(context.Background()) })

	var logs bytes.Buffer
	logger := logging.New("debug", "text", &logs)
	return NewInstrumentedService(env.service, provider.Tracer("test"), logger), recorder, &logs
}

func TestInstrumentedService_RecordsSpans(t *testing.T) {
	service, recorder, logs := setupInstrumented(t)
	ctx := context.Background()

	view, err := service.CreateTask(ctx, domain.CreateTaskRequest{Title: "Traced"})
	require.NoError(t, err)
	_, err = service.GetTask(ctx, view.ID)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "TaskService.CreateTask", spans[0].Name())
	assert.Equal(t, "TaskService.GetTask", spans[1].Name())
	assert.Equal(t, codes.Ok, spans[1].Status().Code)

	var idFound bool
	for _, attr := range spans[1].Attributes() {
		if attr.Key == "task.id" {
			idFound = true
			assert.Equal(t, view.ID, attr.Value.AsInt64())
		}
	}
	assert.True(t, idFound)

	assert.Contains(t, logs.String(), "op=CreateTask")
	assert.Contains(t, logs.String(), "task operation completed")
}

func TestInstrumentedService_RecordsErrors(t *testing.T) {
	service, recorder, logs := setupInstrumented(t)

	_, err := service.GetTask(context.Background(), 404)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "NOT_FOUND", spans[0].Status().Description)

	assert.Contains(t, logs.String(), "task operation rejected")
	assert.Contains(t, logs.String(), "code=NOT_FOUND")
	assert.Contains(t, logs.String(), "error.identifier=404")
	assert.Contains(t, logs.String(), "error.resource=task")
	assert.NotContains(t, logs.String(), "level=ERROR")
}

func TestInstrumentedService_DeleteTask(t *testing.T) {
	service, recorder, _ := setupInstrumented(t)
	ctx := context.Background()

	view, err := service.CreateTask(ctx, domain.CreateTaskRequest{Title: "Short lived"})
	require.NoError(t, err)
	require.NoError(t, service.DeleteTask(ctx, view.ID))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "TaskService.DeleteTask", spans[1].Name())
}
