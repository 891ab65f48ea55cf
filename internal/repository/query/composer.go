// Package query builds the WHERE and ORDER BY fragments shared by the SQL
// task stores. Fragments use ? placeholders and portable SQL so they run on
// SQLite and, through gorm, on PostgreSQL.
package query

import (
	"strings"
	"time"

	"task-tracker/internal/domain"
)

// PriorityRank maps priority to 1 (URGENT) through 4 (LOW).
const PriorityRank = `CASE priority WHEN 'URGENT' THEN 1 WHEN 'HIGH' THEN 2 WHEN 'MEDIUM' THEN 3 WHEN 'LOW' THEN 4 ELSE 5 END`

// StatusListingOrder sorts most urgent first, then oldest first.
const StatusListingOrder = PriorityRank + ` ASC, created_at ASC, id ASC`

// NativeOrder is the order used by the unpaginated exact-match listings.
const NativeOrder = `id ASC`

var sortColumns = map[domain.SortField]string{
	domain.SortByID:             "id",
	domain.SortByTitle:          "title",
	domain.SortByStatus:         "status",
	domain.SortByPriority:       PriorityRank,
	domain.SortByCreatedAt:      "created_at",
	domain.SortByUpdatedAt:      "updated_at",
	domain.SortByCompletedAt:    "completed_at",
	domain.SortByAssignee:       "assignee",
	domain.SortByCategory:       "category",
	domain.SortByEstimatedHours: "estimated_hours",
	domain.SortByActualHours:    "actual_hours",
}

// Clause is a SQL condition and its arguments. An empty SQL means no condition.
type Clause struct {
	SQL  string
	Args []interface{}
}

// Where renders the clause as a WHERE suffix, or "" when empty.
func (c Clause) Where() string {
	if c.SQL == "" {
		return ""
	}
	return " WHERE " + c.SQL
}

// Composer translates task criteria into SQL fragments.
type Composer struct {
	// TimeArg converts a time into the store's bind value.
	TimeArg func(time.Time) interface{}
}

// Filter ANDs together the criteria that are set. Unset criteria add nothing.
func (c Composer) Filter(f domain.TaskFilter) Clause {
	var conditions []string
	var args []interface{}

	if f.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*f.Status))
	}
	if f.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, string(*f.Priority))
	}
	if f.Assignee != nil {
		conditions = append(conditions, "assignee = ?")
		args = append(args, *f.Assignee)
	}
	if f.Category != nil {
		conditions = append(conditions, "category = ?")
		args = append(args, *f.Category)
	}

	return Clause{SQL: strings.Join(conditions, " AND "), Args: args}
}

// Search matches text anywhere in title or description, ignoring case.
// LIKE wildcards in text are matched literally.
func (c Composer) Search(text string) Clause {
	pattern := "%" + EscapeLike(strings.ToLower(text)) + "%"
	return Clause{
		SQL:  `(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`,
		Args: []interface{}{pattern, pattern},
	}
}

// Overdue selects pending tasks with an estimate created before cutoff.
func (c Composer) Overdue(cutoff time.Time) Clause {
	return Clause{
		SQL:  "status = ? AND estimated_hours IS NOT NULL AND created_at < ?",
		Args: []interface{}{string(domain.StatusPending), c.timeArg(cutoff)},
	}
}

// OrderBy renders the sort for a page request. Nulls come first ascending
// and last descending; id breaks ties.
func (c Composer) OrderBy(page domain.PageRequest) string {
	column, ok := sortColumns[page.SortField]
	if !ok {
		column = sortColumns[domain.DefaultSortField]
	}
	if page.SortDir == domain.SortAsc {
		return column + " ASC NULLS FIRST, id ASC"
	}
	return column + " DESC NULLS LAST, id ASC"
}

func (c Composer) timeArg(t time.Time) interface{} {
	if c.TimeArg == nil {
		return t
	}
	return c.TimeArg(t)
}

// EscapeLike escapes LIKE metacharacters with a backslash.
func EscapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
