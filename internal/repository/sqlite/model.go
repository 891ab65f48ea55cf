package sqlite

import (
	"database/sql"

	"task-tracker/internal/domain"
)

// taskRow mirrors a row of the tasks table.
type taskRow struct {
	ID             int64
	Title          string
	Description    sql.NullString
	Status         string
	Priority       string
	CreatedAt      string
	UpdatedAt      string
	CompletedAt    sql.NullString
	Assignee       sql.NullString
	Category       sql.NullString
	Tags           sql.NullString
	EstimatedHours sql.NullInt64
	ActualHours    sql.NullInt64
	Notes          sql.NullString
}

// taskColumns lists the columns in the order ScanTask expects them.
const taskColumns = `id, title, description, status, priority, created_at, updated_at,
	completed_at, assignee, category, tags, estimated_hours, actual_hours, notes`

func (r taskRow) toDomain() (*domain.Task, error) {
	createdAt, err := ParseTimeFromDB(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := ParseTimeFromDB(r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:             r.ID,
		Title:          r.Title,
		Description:    nullableString(r.Description),
		Status:         domain.Status(r.Status),
		Priority:       domain.Priority(r.Priority),
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
		Assignee:       nullableString(r.Assignee),
		Category:       nullableString(r.Category),
		Tags:           nullableString(r.Tags),
		EstimatedHours: nullableInt(r.EstimatedHours),
		ActualHours:    nullableInt(r.ActualHours),
		Notes:          nullableString(r.Notes),
	}
	if r.CompletedAt.Valid {
		completedAt, err := ParseTimeFromDB(r.CompletedAt.String)
		if err != nil {
			return nil, err
		}
		task.CompletedAt = &completedAt
	}
	return task, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullableInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	i := int(ni.Int64)
	return &i
}

func stringArg(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func intArg(i *int) interface{} {
	if i == nil {
		return nil
	}
	return *i
}
