package cli

import (
	"context"
	"fmt"

	"task-tracker/internal/events"

	"github.com/spf13/cobra"
)

func (r *RootCommand) newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print task events from Kafka as they happen",
		Long: `Follow the task event topic and print one line per event until interrupted.
Requires TK_KAFKA_BROKERS.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := r.app.config
			if len(cfg.Events.Brokers) == 0 {
				return fmt.Errorf("failed to watch events: TK_KAFKA_BROKERS is not set")
			}
			group, _ := cmd.Flags().GetString("group")

			consumer := events.NewConsumer(cfg.Events.Brokers, cfg.Events.Topic, group)
			defer consumer.Close()

			return consumer.Run(cmd.Context(), r.printEvent)
		},
	}
	cmd.Flags().String("group", "", "Consumer group id; empty reads only new events")
	return cmd
}

func (r *RootCommand) printEvent(_ context.Context, event events.Event) error {
	if r.app.printer.asJSON {
		return r.app.printer.json(event)
	}
	_, err := fmt.Fprintf(r.app.printer.out, "%s  %-15s  #%d %s (%s)\n",
		event.OccurredAt.Format(r.app.config.Display.DateFormat+" 15:04:05"),
		event.Type, event.TaskID, event.Title, event.Status)
	return err
}
