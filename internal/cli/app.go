package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"task-tracker/internal/api"
	"task-tracker/internal/config"
	"task-tracker/internal/events"
	"task-tracker/internal/logging"
	"task-tracker/internal/services"
	"task-tracker/internal/tracing"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// App holds the wired dependencies shared by every command.
type App struct {
	api     api.API
	config  *config.Config
	logger  *slog.Logger
	tracer  trace.Tracer
	printer *Printer
	closers []func() error
}

// AppBuilder wires an App from the loaded configuration.
type AppBuilder func(cfg *config.Config, out io.Writer) (*App, error)

// NewApp creates an App around an existing facade. Used by tests and by
// BuildApp once the stack is wired.
func NewApp(apiInstance api.API, cfg *config.Config, out io.Writer) *App {
	return &App{
		api:     apiInstance,
		config:  cfg,
		logger:  logging.Discard(),
		tracer:  noop.NewTracerProvider().Tracer("tk"),
		printer: NewPrinter(out, cfg.Display.OutputFormat),
	}
}

// BuildApp wires configuration into a store, the task service and the facade:
// logger, tracer provider, repository, optional Kafka publisher, service,
// instrumentation and API.
func BuildApp(cfg *config.Config, out io.Writer) (*App, error) {
	logger := logging.New(cfg.LogLevel(), cfg.Logging.Format, os.Stderr)

	provider, err := tracing.Setup(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	repo, err := config.CreateRepository(cfg)
	if err != nil {
		provider.Shutdown(context.Background())
		return nil, err
	}

	opts := []services.Option{
		services.WithDateLayout(cfg.Display.DateFormat),
		services.WithLogger(logger),
	}
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Events.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic)
		opts = append(opts, services.WithPublisher(publisher))
	}

	service := services.NewInstrumentedService(
		services.NewTaskService(repo, opts...),
		provider.Tracer(),
		logger,
	)
	apiInstance := api.New(service,
		api.WithTimeout(cfg.GetQueryTimeout()),
		api.WithDefaultPageSize(cfg.Display.PageSize),
	)

	app := NewApp(apiInstance, cfg, out)
	app.logger = logger
	app.tracer = provider.Tracer()
	app.closers = []func() error{
		publisher.Close,
		repo.Close,
		func() error { return provider.Shutdown(context.Background()) },
	}
	return app, nil
}

// Close releases the store, the publisher and the tracer provider.
func (a *App) Close() error {
	var errs []error
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
