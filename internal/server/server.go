// Package server exposes the task API over HTTP/JSON.
package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"task-tracker/internal/api"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/trace"
)

// Config holds the listener settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
	// AccessLog receives one combined log line per request. Nil disables it.
	AccessLog io.Writer
}

// Server wraps an http.Server serving the task routes.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds the server and its handler chain.
func New(cfg Config, a api.API, tracer trace.Tracer, logger *slog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      NewHandler(cfg, a, tracer, logger),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger,
	}
}

// NewHandler returns the routed handler wrapped in recovery, CORS and
// access logging.
func NewHandler(cfg Config, a api.API, tracer trace.Tracer, logger *slog.Logger) http.Handler {
	router := NewRouter(a, tracer)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "PATCH"}),
		handlers.AllowedHeaders([]string{"Content-Type", RequestIDHeader}),
		handlers.ExposedHeaders([]string{RequestIDHeader}),
	)

	var h http.Handler = cors(router)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{logger}))(h)
	if cfg.AccessLog != nil {
		h = handlers.CombinedLoggingHandler(cfg.AccessLog, h)
	}
	return requestIDMiddleware(h)
}

// NewRouter registers the task routes. Fixed paths are registered before
// /{id} so they are matched first.
func NewRouter(a api.API, tracer trace.Tracer) *mux.Router {
	taskHandler := NewTaskHandler(a)

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Status:    http.StatusNotFound,
			Error:     http.StatusText(http.StatusNotFound),
			Message:   "no route for " + r.Method + " " + r.URL.Path,
			Path:      r.URL.Path,
		})
	})
	router.Use(tracingMiddleware(tracer))
	router.Use(bodyLimitMiddleware(MaxRequestBodyBytes))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
	}).Methods(http.MethodGet)

	tasks := router.PathPrefix("/api/tasks").Subrouter()

	getRouter := tasks.Methods(http.MethodGet).Subrouter()
	getRouter.HandleFunc("", taskHandler.List)
	getRouter.HandleFunc("/", taskHandler.List)
	getRouter.HandleFunc("/status/{status}", taskHandler.ByStatus)
	getRouter.HandleFunc("/priority/{priority}", taskHandler.ByPriority)
	getRouter.HandleFunc("/assignee/{assignee}", taskHandler.ByAssignee)
	getRouter.HandleFunc("/search", taskHandler.Search)
	getRouter.HandleFunc("/overdue", taskHandler.Overdue)
	getRouter.HandleFunc("/statistics", taskHandler.Statistics)
	getRouter.HandleFunc("/{id}", taskHandler.GetByID)

	postRouter := tasks.Methods(http.MethodPost).Subrouter()
	postRouter.HandleFunc("", taskHandler.Create)
	postRouter.HandleFunc("/", taskHandler.Create)

	tasks.HandleFunc("/{id}", taskHandler.Update).Methods(http.MethodPut)
	tasks.HandleFunc("/{id}", taskHandler.Delete).Methods(http.MethodDelete)

	patchRouter := tasks.Methods(http.MethodPatch).Subrouter()
	patchRouter.HandleFunc("/{id}/complete", taskHandler.Complete)
	patchRouter.HandleFunc("/{id}/start", taskHandler.Start)
	patchRouter.HandleFunc("/{id}/pending", taskHandler.Pending)

	return router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
