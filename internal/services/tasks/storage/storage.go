// Package storage defines persistence contracts for tasks service state.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// Task stores one work item. Status and priority are persisted as their wire
// literals; enum validation lives in the domain layer.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      string
	Priority    string
	AuthorID    string
	AssigneeID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// User stores one identity record referenced by tasks.
type User struct {
	ID    string
	Email string
	Role  string
}

// TaskFilter narrows task listings. Empty fields impose no constraint.
type TaskFilter struct {
	Title      string // case-insensitive substring
	Status     string
	Priority   string
	AuthorID   string
	AssigneeID string
	Expression string // AIP-160 filter expression, ANDed with the rest
}

// PageRequest is a zero-based offset page.
type PageRequest struct {
	Page int
	Size int
}

// Offset returns the row offset for the request.
func (p PageRequest) Offset() int {
	if p.Page < 0 || p.Size < 0 {
		return 0
	}
	return p.Page * p.Size
}

// TaskPage stores one page of tasks plus the total matching element count.
type TaskPage struct {
	Tasks         []Task
	TotalElements int64
}

// TaskStore persists tasks.
type TaskStore interface {
	PutTask(ctx context.Context, task Task) error
	GetTask(ctx context.Context, taskID string) (Task, error)
	DeleteTask(ctx context.Context, taskID string) error
	TaskExists(ctx context.Context, taskID string) (bool, error)
	ListTasks(ctx context.Context, filter TaskFilter, page PageRequest) (TaskPage, error)
	ListAllTasks(ctx context.Context) ([]Task, error)
}

// UserStore persists identity records.
type UserStore interface {
	PutUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, userID string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UserExists(ctx context.Context, userID string) (bool, error)
	ListUsers(ctx context.Context) ([]User, error)
}
