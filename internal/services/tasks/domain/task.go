// Package domain holds task-tracking entities and the role-gated mutation rules.
package domain

import (
	"time"

	apperrors "github.com/louisbranch/tasktrack/internal/platform/errors"
)

// Status is the task lifecycle state.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// DefaultStatus is assigned when a create request omits the status.
const DefaultStatus = StatusTodo

// ParseStatus converts a wire literal into a Status.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return Status(value), nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeTaskInvalidStatus,
			"invalid task status: "+value,
			map[string]string{"status": value})
	}
}

// Priority orders tasks by urgency.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// DefaultPriority is assigned when a create request omits the priority.
const DefaultPriority = PriorityMedium

// ParsePriority converts a wire literal into a Priority.
func ParsePriority(value string) (Priority, error) {
	switch Priority(value) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(value), nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeTaskInvalidPriority,
			"invalid task priority: "+value,
			map[string]string{"priority": value})
	}
}

// Task is the mutable work-item aggregate.
//
// AuthorID is set at creation and immutable thereafter. AssigneeID is a weak
// reference by id: it may be unset, and it is only resolved to a User record
// when an operation explicitly needs one.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	AuthorID    string
	AssigneeID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskFilter narrows task listings. Empty fields impose no constraint; the
// effective query is the conjunction of the supplied predicates.
type TaskFilter struct {
	Title      string // case-insensitive substring
	Status     string // exact enum literal
	Priority   string // exact enum literal
	AuthorID   string
	AssigneeID string
	Expression string // optional AIP-160 filter expression, ANDed in
}

// TaskPage is one page of a filtered task listing.
type TaskPage struct {
	Tasks         []Task
	Page          int
	Size          int
	TotalElements int64
}
