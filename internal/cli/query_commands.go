package cli

import (
	"strings"

	"task-tracker/internal/api"

	"github.com/spf13/cobra"
)

func (r *RootCommand) newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks a page at a time",
		Long: `List tasks with optional filters. Filters are combined with AND.

Sortable fields: id, title, status, priority, createdAt, updatedAt,
completedAt, assignee, category, estimatedHours, actualHours

Examples:
  tk list                                  # Newest first, first page
  tk list --page 1 --size 20
  tk list --status pending --priority urgent
  tk list --sort priority --dir asc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			q := api.ListQuery{
				Page:     flagText(cmd, "page"),
				Size:     flagText(cmd, "size"),
				Sort:     flagText(cmd, "sort"),
				Dir:      flagText(cmd, "dir"),
				Status:   flagText(cmd, "status"),
				Priority: flagText(cmd, "priority"),
				Assignee: flagText(cmd, "assignee"),
				Category: flagText(cmd, "category"),
			}
			page, err := r.app.api.ListTasks(ctx, q)
			if err != nil {
				return r.errors.Handle("list tasks", err)
			}
			return r.app.printer.Page(page)
		},
	}

	flags := cmd.Flags()
	flags.Int("page", 0, "Page number, starting at 0")
	flags.Int("size", 0, "Page size (default TK_PAGE_SIZE)")
	flags.String("sort", "", "Sort field (default createdAt)")
	flags.String("dir", "", "Sort direction: asc or desc (default desc)")
	flags.String("status", "", "Only tasks with this status")
	flags.String("priority", "", "Only tasks with this priority")
	flags.String("assignee", "", "Only tasks assigned to this person")
	flags.String("category", "", "Only tasks in this category")
	return cmd
}

func (r *RootCommand) newByStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "by-status <status>",
		Short: "List tasks in a status, most urgent and oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			views, err := r.app.api.ListByStatus(ctx, args[0])
			if err != nil {
				return r.errors.Handle("list tasks by status", err)
			}
			return r.app.printer.Tasks(views)
		},
	}
}

func (r *RootCommand) newByPriorityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "by-priority <priority>",
		Short: "List tasks with a priority",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			views, err := r.app.api.ListByPriority(ctx, args[0])
			if err != nil {
				return r.errors.Handle("list tasks by priority", err)
			}
			return r.app.printer.Tasks(views)
		},
	}
}

func (r *RootCommand) newByAssigneeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "by-assignee <name>",
		Short: "List tasks assigned to a person",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			views, err := r.app.api.ListByAssignee(ctx, strings.Join(args, " "))
			if err != nil {
				return r.errors.Handle("list tasks by assignee", err)
			}
			return r.app.printer.Tasks(views)
		},
	}
}

func (r *RootCommand) newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Find tasks whose title or description contains text",
		Long: `Search titles and descriptions, ignoring case.

Examples:
  tk search report
  tk search "quarterly report" --page 1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			page, err := r.app.api.SearchTasks(ctx, strings.Join(args, " "), flagText(cmd, "page"), flagText(cmd, "size"))
			if err != nil {
				return r.errors.Handle("search tasks", err)
			}
			return r.app.printer.Page(page)
		},
	}
	cmd.Flags().Int("page", 0, "Page number, starting at 0")
	cmd.Flags().Int("size", 0, "Page size (default TK_PAGE_SIZE)")
	return cmd
}

func (r *RootCommand) newOverdueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List pending tasks with an estimate that are more than 7 days old",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			views, err := r.app.api.ListOverdue(ctx)
			if err != nil {
				return r.errors.Handle("list overdue tasks", err)
			}
			return r.app.printer.Tasks(views)
		},
	}
}

func (r *RootCommand) newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counts by status and priority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			stats, err := r.app.api.GetStatistics(ctx)
			if err != nil {
				return r.errors.Handle("get statistics", err)
			}
			return r.app.printer.Statistics(stats)
		},
	}
}

// flagText returns a set flag as text for the facade, or "" to take the default.
func flagText(cmd *cobra.Command, name string) string {
	flag := cmd.Flags().Lookup(name)
	if flag == nil || !flag.Changed {
		return ""
	}
	return flag.Value.String()
}
