package cli

import (
	"context"
	"fmt"
	"log/slog"

	"task-tracker/internal/server"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"
)

func (r *RootCommand) newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task API over HTTP",
		Long: `Serve the JSON API under /api/tasks until interrupted.

Examples:
  tk serve
  tk serve --addr :9090
  TK_STORE=postgres TK_DB_DSN="host=db user=tk" tk serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := r.app.config
			if cmd.Flags().Changed("addr") {
				cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
			}

			srv := server.New(server.Config{
				Addr:         cfg.HTTP.Addr,
				ReadTimeout:  cfg.HTTP.ReadTimeout,
				WriteTimeout: cfg.HTTP.WriteTimeout,
				CORSOrigins:  cfg.HTTP.CORSOrigins,
				AccessLog:    cmd.ErrOrStderr(),
			}, r.app.api, r.app.tracer, r.app.logger)

			startErr := make(chan error, 1)
			go func() {
				startErr <- srv.Start()
			}()

			wait := gfshutdown.GracefulShutdown(
				context.Background(),
				cfg.HTTP.ShutdownTimeout,
				map[string]gfshutdown.Operation{
					"http-server": func(ctx context.Context) error {
						return srv.Shutdown(ctx)
					},
				},
			)

			select {
			case err := <-startErr:
				if err != nil {
					return fmt.Errorf("http server failed: %w", err)
				}
				return nil
			case code := <-wait:
				r.app.logger.Info("shutdown complete", slog.Int("exit_code", code))
				if code != 0 {
					return fmt.Errorf("shutdown finished with exit code %d", code)
				}
				return nil
			}
		},
	}
	cmd.Flags().String("addr", "", "Listen address (overrides TK_HTTP_ADDR)")
	return cmd
}
