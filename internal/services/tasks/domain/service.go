package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/tasktrack/internal/platform/errors"
	"github.com/louisbranch/tasktrack/internal/platform/id"
	"github.com/louisbranch/tasktrack/internal/platform/pagination"
)

// ErrNotFound is returned by Store implementations for missing records. The
// service translates it into the task- or user-specific coded error.
var ErrNotFound = errors.New("record not found")

var (
	errStoreNotConfigured = errors.New("task store is not configured")
)

const (
	defaultListPageSize = 20
	maxListPageSize     = 100
)

// Store is the persistence boundary consumed by the task service.
type Store interface {
	GetTask(ctx context.Context, taskID string) (Task, error)
	PutTask(ctx context.Context, task Task) error
	DeleteTask(ctx context.Context, taskID string) error
	TaskExists(ctx context.Context, taskID string) (bool, error)
	ListTasks(ctx context.Context, filter TaskFilter, page pagination.PageRequest) (TaskPage, error)
	ListAllTasks(ctx context.Context) ([]Task, error)

	GetUser(ctx context.Context, userID string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UserExists(ctx context.Context, userID string) (bool, error)
}

// Service implements task mutation authorization and filtered queries.
type Service struct {
	store Store
	clock func() time.Time
	newID func() (string, error)
}

// NewService constructs the task service.
func NewService(store Store, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store: store,
		clock: clock,
		newID: newID,
	}
}

// CreateTaskInput describes a task creation request.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string // optional wire literal; defaults to TODO
	Priority    string // optional wire literal; defaults to MEDIUM
	AuthorID    string
	AssigneeID  string
}

// CreateTask validates and persists a new task, returning the stored form.
func (s *Service) CreateTask(ctx context.Context, input CreateTaskInput) (Task, error) {
	if s == nil || s.store == nil {
		return Task{}, errStoreNotConfigured
	}
	if strings.TrimSpace(input.Title) == "" {
		return Task{}, apperrors.New(apperrors.CodeTaskTitleEmpty, "title cannot be null or empty")
	}

	taskStatus := DefaultStatus
	if input.Status != "" {
		parsed, err := ParseStatus(input.Status)
		if err != nil {
			return Task{}, err
		}
		taskStatus = parsed
	}
	taskPriority := DefaultPriority
	if input.Priority != "" {
		parsed, err := ParsePriority(input.Priority)
		if err != nil {
			return Task{}, err
		}
		taskPriority = parsed
	}

	taskID, err := s.newID()
	if err != nil {
		return Task{}, fmt.Errorf("generate task id: %w", err)
	}
	now := s.clock().UTC()
	task := Task{
		ID:          taskID,
		Title:       input.Title,
		Description: input.Description,
		Status:      taskStatus,
		Priority:    taskPriority,
		AuthorID:    input.AuthorID,
		AssigneeID:  input.AssigneeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.PutTask(ctx, task); err != nil {
		return Task{}, fmt.Errorf("save task: %w", err)
	}
	return task, nil
}

// GetTask returns a task by id.
func (s *Service) GetTask(ctx context.Context, taskID string) (Task, error) {
	if s == nil || s.store == nil {
		return Task{}, errStoreNotConfigured
	}
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Task{}, taskNotFound(taskID)
		}
		return Task{}, fmt.Errorf("load task: %w", err)
	}
	return task, nil
}

// ListTasksInput configures a filtered, paginated task listing.
type ListTasksInput struct {
	Filter TaskFilter
	Page   int // zero-based
	Size   int
}

// ListTasks returns the tasks matching the conjunction of the supplied filter
// predicates, plus the total matching element count for client page math.
func (s *Service) ListTasks(ctx context.Context, input ListTasksInput) (TaskPage, error) {
	if s == nil || s.store == nil {
		return TaskPage{}, errStoreNotConfigured
	}
	if input.Filter.Status != "" {
		if _, err := ParseStatus(input.Filter.Status); err != nil {
			return TaskPage{}, err
		}
	}
	if input.Filter.Priority != "" {
		if _, err := ParsePriority(input.Filter.Priority); err != nil {
			return TaskPage{}, err
		}
	}
	page := pagination.Normalize(input.Page, input.Size, pagination.PageSizeConfig{
		Default: defaultListPageSize,
		Max:     maxListPageSize,
	})
	result, err := s.store.ListTasks(ctx, input.Filter, page)
	if err != nil {
		return TaskPage{}, fmt.Errorf("list tasks: %w", err)
	}
	result.Page = page.Page
	result.Size = page.Size
	return result, nil
}

// ListAllTasks returns every task, unpaginated, in creation order.
func (s *Service) ListAllTasks(ctx context.Context) ([]Task, error) {
	if s == nil || s.store == nil {
		return nil, errStoreNotConfigured
	}
	tasks, err := s.store.ListAllTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies a role-gated partial update and persists the result.
//
// Admins may change title, description, status, priority, and assignee, each
// only when supplied by the patch. Regular users may only change the status
// of tasks assigned to them. All patch values are validated before any field
// is applied, so a rejected update never partially mutates the task.
func (s *Service) UpdateTask(ctx context.Context, taskID string, patch TaskPatch, caller Caller) (Task, error) {
	if s == nil || s.store == nil {
		return Task{}, errStoreNotConfigured
	}
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Task{}, taskNotFound(taskID)
		}
		return Task{}, fmt.Errorf("load task: %w", err)
	}

	switch caller.ResolveAccessRole() {
	case AccessAdmin:
		if err := s.applyAdminPatch(ctx, &task, patch); err != nil {
			return Task{}, err
		}
	case AccessUser:
		if err := s.applyAssigneeStatusPatch(ctx, &task, patch, caller); err != nil {
			return Task{}, err
		}
	default:
		return Task{}, apperrors.New(apperrors.CodeTaskRoleUnauthorized, "unauthorized role")
	}

	task.UpdatedAt = s.clock().UTC()
	if err := s.store.PutTask(ctx, task); err != nil {
		return Task{}, fmt.Errorf("save task: %w", err)
	}
	return task, nil
}

// applyAdminPatch applies every supplied patch field. Conversions and the
// assignee existence check run before the first field is written.
func (s *Service) applyAdminPatch(ctx context.Context, task *Task, patch TaskPatch) error {
	var (
		parsedStatus   Status
		parsedPriority Priority
	)
	if raw, ok := patch.Status.Get(); ok {
		parsed, err := ParseStatus(raw)
		if err != nil {
			return err
		}
		parsedStatus = parsed
	}
	if raw, ok := patch.Priority.Get(); ok {
		parsed, err := ParsePriority(raw)
		if err != nil {
			return err
		}
		parsedPriority = parsed
	}
	if assigneeID, ok := patch.AssigneeID.Get(); ok && assigneeID != "" {
		exists, err := s.store.UserExists(ctx, assigneeID)
		if err != nil {
			return fmt.Errorf("check assignee: %w", err)
		}
		if !exists {
			return userNotFound(assigneeID)
		}
	}

	if title, ok := patch.Title.Get(); ok && strings.TrimSpace(title) != "" {
		task.Title = title
	}
	if description, ok := patch.Description.Get(); ok {
		task.Description = description
	}
	if patch.Status.IsSet() {
		task.Status = parsedStatus
	}
	if patch.Priority.IsSet() {
		task.Priority = parsedPriority
	}
	if assigneeID, ok := patch.AssigneeID.Get(); ok {
		task.AssigneeID = assigneeID
	}
	return nil
}

// applyAssigneeStatusPatch enforces the regular-user rule: status only, and
// only on tasks whose assignee matches the caller identity.
func (s *Service) applyAssigneeStatusPatch(ctx context.Context, task *Task, patch TaskPatch, caller Caller) error {
	if task.AssigneeID == "" {
		return notAllowed(task.ID)
	}
	assignee, err := s.store.GetUser(ctx, task.AssigneeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Dangling assignee reference: the caller cannot be the assignee.
			return notAllowed(task.ID)
		}
		return fmt.Errorf("load assignee: %w", err)
	}
	if !strings.EqualFold(assignee.Email, strings.TrimSpace(caller.Email)) {
		return notAllowed(task.ID)
	}
	raw, ok := patch.Status.Get()
	if !ok {
		return apperrors.New(apperrors.CodeTaskStatusRequired,
			"users can only update the status of their assigned tasks")
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	task.Status = parsed
	return nil
}

// DeleteTask removes a task after an existence check and returns a
// confirmation message naming the deleted id.
func (s *Service) DeleteTask(ctx context.Context, taskID string) (string, error) {
	if s == nil || s.store == nil {
		return "", errStoreNotConfigured
	}
	exists, err := s.store.TaskExists(ctx, taskID)
	if err != nil {
		return "", fmt.Errorf("check task: %w", err)
	}
	if !exists {
		return "", taskNotFound(taskID)
	}
	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		return "", fmt.Errorf("delete task: %w", err)
	}
	return fmt.Sprintf("task with id: %s deleted successfully", taskID), nil
}

// AssignTask sets the assignee of a non-completed task to an existing user.
func (s *Service) AssignTask(ctx context.Context, taskID, userID string) (Task, error) {
	if s == nil || s.store == nil {
		return Task{}, errStoreNotConfigured
	}
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Task{}, taskNotFound(taskID)
		}
		return Task{}, fmt.Errorf("load task: %w", err)
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Task{}, userNotFound(userID)
		}
		return Task{}, fmt.Errorf("load user: %w", err)
	}
	if task.Status == StatusCompleted {
		return Task{}, apperrors.WithMetadata(apperrors.CodeTaskAssignCompleted,
			"cannot assign a completed task",
			map[string]string{"task_id": taskID})
	}
	task.AssigneeID = user.ID
	task.UpdatedAt = s.clock().UTC()
	if err := s.store.PutTask(ctx, task); err != nil {
		return Task{}, fmt.Errorf("save task: %w", err)
	}
	return task, nil
}

// GetUser returns a user record by id.
func (s *Service) GetUser(ctx context.Context, userID string) (User, error) {
	if s == nil || s.store == nil {
		return User{}, errStoreNotConfigured
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, userNotFound(userID)
		}
		return User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// ResolveCallerUser resolves the caller email to the backing user record.
func (s *Service) ResolveCallerUser(ctx context.Context, email string) (User, error) {
	if s == nil || s.store == nil {
		return User{}, errStoreNotConfigured
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return User{}, apperrors.New(apperrors.CodeUserEmailEmpty, "caller email is required")
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, apperrors.WithMetadata(apperrors.CodeUserNotFound,
				"no user for email "+email,
				map[string]string{"email": email})
		}
		return User{}, fmt.Errorf("load user by email: %w", err)
	}
	return user, nil
}

func taskNotFound(taskID string) error {
	return apperrors.WithMetadata(apperrors.CodeTaskNotFound,
		"task not found with id: "+taskID,
		map[string]string{"task_id": taskID})
}

func notAllowed(taskID string) error {
	return apperrors.WithMetadata(apperrors.CodeTaskUpdateForbidden,
		"you are not allowed to update this task",
		map[string]string{"task_id": taskID})
}

func userNotFound(userID string) error {
	return apperrors.WithMetadata(apperrors.CodeUserNotFound,
		"user not found with id: "+userID,
		map[string]string{"user_id": userID})
}
