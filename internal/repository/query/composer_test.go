package query

import (
	"testing"
	"time"

	"task-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestComposer_Filter(t *testing.T) {
	composer := Composer{}
	pending := domain.StatusPending
	urgent := domain.PriorityUrgent
	ana := "ana"
	work := "work"

	tests := []struct {
		name         string
		filter       domain.TaskFilter
		expectedSQL  string
		expectedArgs []interface{}
	}{
		{
			name:        "empty filter adds no condition",
			filter:      domain.TaskFilter{},
			expectedSQL: "",
		},
		{
			name:         "single criterion",
			filter:       domain.TaskFilter{Assignee: &ana},
			expectedSQL:  "assignee = ?",
			expectedArgs: []interface{}{"ana"},
		},
		{
			name:         "all criteria are joined with AND",
			filter:       domain.TaskFilter{Status: &pending, Priority: &urgent, Assignee: &ana, Category: &work},
			expectedSQL:  "status = ? AND priority = ? AND assignee = ? AND category = ?",
			expectedArgs: []interface{}{"PENDING", "URGENT", "ana", "work"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause := composer.Filter(tt.filter)
			assert.Equal(t, tt.expectedSQL, clause.SQL)
			assert.Equal(t, tt.expectedArgs, clause.Args)
		})
	}
}

func TestClause_Where(t *testing.T) {
	assert.Equal(t, "", Clause{}.Where())
	assert.Equal(t, " WHERE status = ?", Clause{SQL: "status = ?"}.Where())
}

func TestComposer_Search(t *testing.T) {
	clause := Composer{}.Search("50% Off_")

	assert.Contains(t, clause.SQL, "LOWER(title) LIKE ?")
	assert.Contains(t, clause.SQL, "OR LOWER(description) LIKE ?")
	assert.Equal(t, []interface{}{`%50\% off\_%`, `%50\% off\_%`}, clause.Args)
}

func TestComposer_Overdue(t *testing.T) {
	cutoff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	composer := Composer{TimeArg: func(t time.Time) interface{} { return t.Format(time.RFC3339) }}

	clause := composer.Overdue(cutoff)

	assert.Equal(t, "status = ? AND estimated_hours IS NOT NULL AND created_at < ?", clause.SQL)
	assert.Equal(t, []interface{}{"PENDING", "2025-01-01T00:00:00Z"}, clause.Args)
}

func TestComposer_OrderBy(t *testing.T) {
	composer := Composer{}

	tests := []struct {
		name     string
		page     domain.PageRequest
		expected string
	}{
		{
			name:     "default newest first",
			page:     domain.DefaultPageRequest(),
			expected: "created_at DESC NULLS LAST, id ASC",
		},
		{
			name:     "nullable column ascending",
			page:     domain.PageRequest{SortField: domain.SortByEstimatedHours, SortDir: domain.SortAsc},
			expected: "estimated_hours ASC NULLS FIRST, id ASC",
		},
		{
			name:     "priority sorts by rank",
			page:     domain.PageRequest{SortField: domain.SortByPriority, SortDir: domain.SortAsc},
			expected: PriorityRank + " ASC NULLS FIRST, id ASC",
		},
		{
			name:     "unknown field falls back to creation time",
			page:     domain.PageRequest{SortField: "dropTable", SortDir: domain.SortDesc},
			expected: "created_at DESC NULLS LAST, id ASC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, composer.OrderBy(tt.page))
		})
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, EscapeLike("100%"))
	assert.Equal(t, `a\_b`, EscapeLike("a_b"))
	assert.Equal(t, `c:\\tmp`, EscapeLike(`c:\tmp`))
	assert.Equal(t, "plain", EscapeLike("plain"))
}
