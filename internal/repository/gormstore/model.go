package gormstore

import (
	"time"

	"task-tracker/internal/domain"
)

// taskModel is the gorm mapping of the tasks table. Timestamps are written by
// the repository clock, so gorm's automatic time tracking is disabled.
type taskModel struct {
	ID             int64      `gorm:"primaryKey;autoIncrement"`
	Title          string     `gorm:"size:100;not null;uniqueIndex:uq_tasks_title"`
	Description    *string    `gorm:"size:500"`
	Status         string     `gorm:"size:20;not null;index:idx_tasks_status_priority,priority:1"`
	Priority       string     `gorm:"size:10;not null;index:idx_tasks_status_priority,priority:2"`
	CreatedAt      time.Time  `gorm:"not null;autoCreateTime:false;index:idx_tasks_status_priority,priority:3"`
	UpdatedAt      time.Time  `gorm:"not null;autoUpdateTime:false"`
	CompletedAt    *time.Time
	Assignee       *string `gorm:"size:100;index:idx_tasks_assignee"`
	Category       *string `gorm:"size:50;index:idx_tasks_category"`
	Tags           *string `gorm:"size:200"`
	EstimatedHours *int
	ActualHours    *int
	Notes          *string `gorm:"size:1000"`
}

func (taskModel) TableName() string {
	return "tasks"
}

func fromDomain(t *domain.Task) taskModel {
	m := taskModel{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		CreatedAt:      t.CreatedAt.UTC(),
		UpdatedAt:      t.UpdatedAt.UTC(),
		Assignee:       t.Assignee,
		Category:       t.Category,
		Tags:           t.Tags,
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
		Notes:          t.Notes,
	}
	if t.CompletedAt != nil {
		completed := t.CompletedAt.UTC()
		m.CompletedAt = &completed
	}
	return m
}

func (m taskModel) toDomain() *domain.Task {
	return &domain.Task{
		ID:             m.ID,
		Title:          m.Title,
		Description:    m.Description,
		Status:         domain.Status(m.Status),
		Priority:       domain.Priority(m.Priority),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		CompletedAt:    m.CompletedAt,
		Assignee:       m.Assignee,
		Category:       m.Category,
		Tags:           m.Tags,
		EstimatedHours: m.EstimatedHours,
		ActualHours:    m.ActualHours,
		Notes:          m.Notes,
	}
}

func toDomainList(models []taskModel) []*domain.Task {
	tasks := make([]*domain.Task, len(models))
	for i, m := range models {
		tasks[i] = m.toDomain()
	}
	return tasks
}
