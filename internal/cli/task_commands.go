package cli

import (
	"context"
	"strconv"

	"task-tracker/internal/domain"
	"task-tracker/internal/validation"

	"github.com/spf13/cobra"
)

type transitionFunc func(ctx context.Context, id int64) (*domain.TaskView, error)

// parseID reads a task id argument.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		ve := validation.NewValidationError()
		ve.AddInvalidFormatError("id", raw, "integer")
		return 0, ve
	}
	return id, nil
}

func (r *RootCommand) newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new task",
		Long: `Create a new pending task. Titles must be unique.

Examples:
  tk create --title "Write report"
  tk create --title "Fix login" --priority urgent --assignee ana --estimated-hours 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			flags := cmd.Flags()
			title, _ := flags.GetString("title")
			req := domain.CreateTaskRequest{
				Title:       title,
				Description: changedString(cmd, "description"),
				Assignee:    changedString(cmd, "assignee"),
				Category:    changedString(cmd, "category"),
				Tags:        changedString(cmd, "tags"),
				Notes:       changedString(cmd, "notes"),
			}
			if p := changedString(cmd, "priority"); p != nil {
				priority := domain.Priority(*p)
				req.Priority = &priority
			}
			req.EstimatedHours = changedInt(cmd, "estimated-hours")

			view, err := r.app.api.CreateTask(ctx, req)
			if err != nil {
				return r.errors.Handle("create task", err)
			}
			r.app.printer.Message("Created task %d", view.ID)
			return r.app.printer.Task(view)
		},
	}

	flags := cmd.Flags()
	flags.String("title", "", "Task title (required)")
	flags.String("description", "", "Task description")
	flags.String("priority", "", "URGENT, HIGH, MEDIUM or LOW (default MEDIUM)")
	flags.String("assignee", "", "Person responsible")
	flags.String("category", "", "Category")
	flags.String("tags", "", "Free-form tags")
	flags.Int("estimated-hours", 0, "Estimated effort in hours")
	flags.String("notes", "", "Notes")
	cmd.MarkFlagRequired("title")
	return cmd
}

func (r *RootCommand) newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			id, err := parseID(args[0])
			if err != nil {
				return r.errors.Handle("get task", err)
			}
			view, err := r.app.api.GetTask(ctx, id)
			if err != nil {
				return r.errors.Handle("get task", err)
			}
			return r.app.printer.Task(view)
		},
	}
}

func (r *RootCommand) newUpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a task",
		Long: `Update a task. Only the flags given are changed; everything else is kept.
Setting --status COMPLETED records the completion date.

Examples:
  tk update 4 --priority high
  tk update 4 --status completed --actual-hours 6`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			id, err := parseID(args[0])
			if err != nil {
				return r.errors.Handle("update task", err)
			}

			req := domain.UpdateTaskRequest{
				Title:          changedString(cmd, "title"),
				Description:    changedString(cmd, "description"),
				Assignee:       changedString(cmd, "assignee"),
				Category:       changedString(cmd, "category"),
				Tags:           changedString(cmd, "tags"),
				Notes:          changedString(cmd, "notes"),
				EstimatedHours: changedInt(cmd, "estimated-hours"),
				ActualHours:    changedInt(cmd, "actual-hours"),
			}
			if s := changedString(cmd, "status"); s != nil {
				status := domain.Status(*s)
				req.Status = &status
			}
			if p := changedString(cmd, "priority"); p != nil {
				priority := domain.Priority(*p)
				req.Priority = &priority
			}

			view, err := r.app.api.UpdateTask(ctx, id, req)
			if err != nil {
				return r.errors.Handle("update task", err)
			}
			return r.app.printer.Task(view)
		},
	}

	flags := cmd.Flags()
	flags.String("title", "", "New title")
	flags.String("description", "", "New description")
	flags.String("status", "", "PENDING, IN_PROGRESS, COMPLETED, CANCELLED or PAUSED")
	flags.String("priority", "", "URGENT, HIGH, MEDIUM or LOW")
	flags.String("assignee", "", "New assignee")
	flags.String("category", "", "New category")
	flags.String("tags", "", "New tags")
	flags.Int("estimated-hours", 0, "Estimated effort in hours")
	flags.Int("actual-hours", 0, "Actual effort in hours")
	flags.String("notes", "", "New notes")
	return cmd
}

func (r *RootCommand) newTransitionCommand(use, short, operation string, op func(*App) transitionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			id, err := parseID(args[0])
			if err != nil {
				return r.errors.Handle(operation, err)
			}
			view, err := op(r.app)(ctx, id)
			if err != nil {
				return r.errors.Handle(operation, err)
			}
			r.app.printer.Message("Task %d is now %s", view.ID, view.Status)
			if r.app.printer.asJSON {
				return r.app.printer.Task(view)
			}
			return nil
		},
	}
}

func (r *RootCommand) newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			id, err := parseID(args[0])
			if err != nil {
				return r.errors.Handle("delete task", err)
			}
			if err := r.app.api.DeleteTask(ctx, id); err != nil {
				return r.errors.Handle("delete task", err)
			}
			r.app.printer.Message("Deleted task %d", id)
			return nil
		},
	}
}

// changedString returns the flag value only when the user set it.
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func changedInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}
