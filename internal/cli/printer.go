package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"task-tracker/internal/domain"
)

// Printer renders command results as an aligned table or as JSON.
type Printer struct {
	out    io.Writer
	asJSON bool
}

// NewPrinter creates a printer for the "table" or "json" format.
func NewPrinter(out io.Writer, format string) *Printer {
	return &Printer{out: out, asJSON: format == "json"}
}

func (p *Printer) json(v interface{}) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Task prints a single task as a field/value listing.
func (p *Printer) Task(view *domain.TaskView) error {
	if p.asJSON {
		return p.json(view)
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%d\n", view.ID)
	fmt.Fprintf(w, "Title:\t%s\n", view.Title)
	fmt.Fprintf(w, "Description:\t%s\n", deref(view.Description))
	fmt.Fprintf(w, "Status:\t%s\n", view.Status)
	fmt.Fprintf(w, "Priority:\t%s\n", view.Priority)
	fmt.Fprintf(w, "Assignee:\t%s\n", deref(view.Assignee))
	fmt.Fprintf(w, "Category:\t%s\n", deref(view.Category))
	fmt.Fprintf(w, "Tags:\t%s\n", deref(view.Tags))
	fmt.Fprintf(w, "Estimated hours:\t%s\n", intOrDash(view.EstimatedHours))
	fmt.Fprintf(w, "Actual hours:\t%s\n", intOrDash(view.ActualHours))
	fmt.Fprintf(w, "Notes:\t%s\n", deref(view.Notes))
	fmt.Fprintf(w, "Created:\t%s\n", view.CreatedAt)
	fmt.Fprintf(w, "Updated:\t%s\n", view.UpdatedAt)
	fmt.Fprintf(w, "Completed:\t%s\n", deref(view.CompletedAt))
	return w.Flush()
}

// Tasks prints one row per task.
func (p *Printer) Tasks(views []domain.TaskView) error {
	if p.asJSON {
		return p.json(views)
	}
	if len(views) == 0 {
		fmt.Fprintln(p.out, "No tasks found")
		return nil
	}
	return p.table(views)
}

// Page prints a page of tasks followed by the paging summary.
func (p *Printer) Page(page *domain.Page[domain.TaskView]) error {
	if p.asJSON {
		return p.json(page)
	}
	if err := p.Tasks(page.Items); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.out, "\nPage %d of %d (%d tasks)\n", page.Page+1, page.TotalPages, page.TotalElements)
	return err
}

// Statistics prints grouped counts in a fixed enum order.
func (p *Printer) Statistics(stats *domain.Statistics) error {
	if p.asJSON {
		return p.json(stats)
	}

	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tCOUNT")
	for _, s := range domain.Statuses {
		fmt.Fprintf(w, "%s\t%d\n", s, stats.ByStatus[s])
	}
	fmt.Fprintln(w, "\nPRIORITY\tCOUNT")
	for _, pr := range domain.Priorities {
		fmt.Fprintf(w, "%s\t%d\n", pr, stats.ByPriority[pr])
	}
	fmt.Fprintf(w, "\nTOTAL\t%d\n", stats.Total)
	return w.Flush()
}

// Message prints a confirmation line. JSON output stays silent so it can be piped.
func (p *Printer) Message(format string, args ...interface{}) {
	if p.asJSON {
		return
	}
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) table(views []domain.TaskView) error {
	w := tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tASSIGNEE\tCATEGORY\tEST\tCREATED")
	for _, v := range views {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.Title, v.Status, v.Priority,
			deref(v.Assignee), deref(v.Category), intOrDash(v.EstimatedHours), v.CreatedAt)
	}
	return w.Flush()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func intOrDash(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}
