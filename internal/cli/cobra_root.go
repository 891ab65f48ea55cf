package cli

import (
	"context"
	"fmt"
	"time"

	"task-tracker/internal/config"

	"github.com/spf13/cobra"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	loader *config.Loader
	build  AppBuilder
	app    *App
	errors *ErrorHandler
}

// NewRootCommand creates the root cobra command with global flags. The
// configuration is loaded and the App built once flags are parsed.
func NewRootCommand(loader *config.Loader, build AppBuilder) *RootCommand {
	root := &RootCommand{
		loader: loader,
		build:  build,
		errors: NewErrorHandler(),
	}

	root.cmd = &cobra.Command{
		Use:   "tk",
		Short: "A task tracker with a CLI and an HTTP API",
		Long: `Task Tracker (tk) manages tasks with a status, a priority and optional
assignee, category, tags and effort estimates.

EXAMPLES:
  tk create --title "Write report" --priority high --estimated-hours 4
  tk list --status pending --sort priority --dir asc
  tk by-status in_progress
  tk search report
  tk update 3 --assignee ana --actual-hours 2
  tk complete 3
  tk stats
  tk serve                                 # Serve the HTTP API on TK_HTTP_ADDR

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > .env file > defaults

    TK_STORE                               memory, sqlite or postgres (default: sqlite)
    TK_DB_DIR, TK_DB_FILENAME              SQLite location (default: ~/.tk/tk.db)
    TK_DB_DSN                              PostgreSQL DSN
    TK_DB_QUERY_TIMEOUT                    Per-operation deadline (default: 10s)
    TK_HTTP_ADDR                           Listen address for serve (default: :8080)
    TK_KAFKA_BROKERS, TK_KAFKA_TOPIC       Task event publishing (disabled by default)
    TK_TRACING_ENDPOINT                    Jaeger collector URL (disabled by default)
    TK_DATE_FORMAT                         Date layout (default: 02/01/2006)
    TK_OUTPUT_FORMAT                       table or json (default: table)
    TK_LOG_LEVEL, TK_LOG_FORMAT            slog level and format (default: info, text)
    TK_APP_TIMEOUT                         Command timeout (default: 60s)
    TK_DEBUG                               Print developer tracing to stderr`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return root.teardown()
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Command exposes the cobra command, mainly for tests.
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with a parent context.
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	defer r.teardown()
	return r.cmd.ExecuteContext(ctx)
}

func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("store", "", "Task store: memory, sqlite or postgres (overrides TK_STORE)")
	flags.String("db-dir", "", "Database directory (overrides TK_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides TK_DB_FILENAME)")
	flags.String("db-dsn", "", "PostgreSQL DSN (overrides TK_DB_DSN)")
	flags.StringP("output", "o", "", "Output format: table or json (overrides TK_OUTPUT_FORMAT)")
	flags.BoolP("verbose", "v", false, "Enable debug logging (overrides TK_APP_VERBOSE)")
	flags.Duration("app-timeout", 0, "Command timeout (overrides TK_APP_TIMEOUT)")
	flags.String("date-format", "", "Date layout for output (overrides TK_DATE_FORMAT)")
}

func (r *RootCommand) addSubcommands() {
	r.cmd.AddCommand(
		r.newServeCommand(),
		r.newWatchCommand(),
		r.newCreateCommand(),
		r.newGetCommand(),
		r.newUpdateCommand(),
		r.newTransitionCommand("complete", "Mark a task as completed", "complete task", func(a *App) transitionFunc { return a.api.MarkCompleted }),
		r.newTransitionCommand("start", "Mark a task as in progress", "start task", func(a *App) transitionFunc { return a.api.MarkInProgress }),
		r.newTransitionCommand("reset", "Return a task to pending", "reset task", func(a *App) transitionFunc { return a.api.MarkPending }),
		r.newDeleteCommand(),
		r.newListCommand(),
		r.newByStatusCommand(),
		r.newByPriorityCommand(),
		r.newByAssigneeCommand(),
		r.newSearchCommand(),
		r.newOverdueCommand(),
		r.newStatsCommand(),
	)
}

// overridesFromFlags collects only the global flags the user actually set.
func (r *RootCommand) overridesFromFlags() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()
	overrides := &config.ConfigOverrides{}

	stringFlag := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}

	overrides.Store = stringFlag("store")
	overrides.DBDir = stringFlag("db-dir")
	overrides.DBFilename = stringFlag("db-filename")
	overrides.DBDSN = stringFlag("db-dsn")
	overrides.OutputFormat = stringFlag("output")
	overrides.DateFormat = stringFlag("date-format")

	if flags.Changed("app-timeout") {
		v, _ := flags.GetDuration("app-timeout")
		overrides.Timeout = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		overrides.Verbose = &v
	}
	return overrides
}

func (r *RootCommand) setup() error {
	if r.app != nil {
		return nil
	}
	cfg, err := r.loader.LoadWithOverrides(r.overridesFromFlags())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	app, err := r.build(cfg, r.cmd.OutOrStdout())
	if err != nil {
		return err
	}
	r.app = app
	return nil
}

func (r *RootCommand) teardown() error {
	if r.app == nil {
		return nil
	}
	err := r.app.Close()
	r.app = nil
	return err
}

// commandContext bounds a command by the configured application timeout.
func (r *RootCommand) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout := 60 * time.Second
	if r.app != nil && r.app.config.Application.Timeout > 0 {
		timeout = r.app.config.Application.Timeout
	}
	return context.WithTimeout(cmd.Context(), timeout)
}
