package domain

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusPaused     Status = "PAUSED"
)

// Statuses lists every status in declaration order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled, StatusPaused}

// IsValid reports whether s is one of the defined statuses.
func (s Status) IsValid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus parses a status name case-insensitively.
func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", fmt.Errorf("unknown status %q", value)
	}
	return s, nil
}

// Priority is how urgent a task is. URGENT is the most urgent.
type Priority string

const (
	PriorityUrgent Priority = "URGENT"
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Priorities lists every priority from most to least urgent.
var Priorities = []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}

// Rank returns 1 for URGENT through 4 for LOW, and 0 for unknown values.
func (p Priority) Rank() int {
	for i, known := range Priorities {
		if p == known {
			return i + 1
		}
	}
	return 0
}

// IsValid reports whether p is one of the defined priorities.
func (p Priority) IsValid() bool {
	return p.Rank() > 0
}

// ParsePriority parses a priority name case-insensitively.
func ParsePriority(value string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(value)))
	if !p.IsValid() {
		return "", fmt.Errorf("unknown priority %q", value)
	}
	return p, nil
}
