package server

import (
	"context"
	"errors"

	"github.com/louisbranch/tasktrack/internal/platform/pagination"
	"github.com/louisbranch/tasktrack/internal/services/tasks/domain"
	"github.com/louisbranch/tasktrack/internal/services/tasks/storage"
)

var errStoreNotConfigured = errors.New("task storage is not configured")

// domainStoreAdapter bridges the domain store contract onto the storage-layer
// interfaces, translating record shapes and the not-found sentinel.
type domainStoreAdapter struct {
	taskStore storage.TaskStore
	userStore storage.UserStore
}

func newDomainStoreAdapter(taskStore storage.TaskStore, userStore storage.UserStore) *domainStoreAdapter {
	return &domainStoreAdapter{
		taskStore: taskStore,
		userStore: userStore,
	}
}

var _ domain.Store = (*domainStoreAdapter)(nil)

func (a *domainStoreAdapter) GetTask(ctx context.Context, taskID string) (domain.Task, error) {
	if a == nil || a.taskStore == nil {
		return domain.Task{}, errStoreNotConfigured
	}
	record, err := a.taskStore.GetTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, mapStorageError(err)
	}
	return toDomainTask(record), nil
}

func (a *domainStoreAdapter) PutTask(ctx context.Context, task domain.Task) error {
	if a == nil || a.taskStore == nil {
		return errStoreNotConfigured
	}
	return mapStorageError(a.taskStore.PutTask(ctx, toStorageTask(task)))
}

func (a *domainStoreAdapter) DeleteTask(ctx context.Context, taskID string) error {
	if a == nil || a.taskStore == nil {
		return errStoreNotConfigured
	}
	return mapStorageError(a.taskStore.DeleteTask(ctx, taskID))
}

func (a *domainStoreAdapter) TaskExists(ctx context.Context, taskID string) (bool, error) {
	if a == nil || a.taskStore == nil {
		return false, errStoreNotConfigured
	}
	return a.taskStore.TaskExists(ctx, taskID)
}

func (a *domainStoreAdapter) ListTasks(ctx context.Context, filter domain.TaskFilter, page pagination.PageRequest) (domain.TaskPage, error) {
	if a == nil || a.taskStore == nil {
		return domain.TaskPage{}, errStoreNotConfigured
	}
	recordPage, err := a.taskStore.ListTasks(ctx, storage.TaskFilter{
		Title:      filter.Title,
		Status:     filter.Status,
		Priority:   filter.Priority,
		AuthorID:   filter.AuthorID,
		AssigneeID: filter.AssigneeID,
		Expression: filter.Expression,
	}, storage.PageRequest{Page: page.Page, Size: page.Size})
	if err != nil {
		return domain.TaskPage{}, mapStorageError(err)
	}
	result := domain.TaskPage{
		Tasks:         make([]domain.Task, 0, len(recordPage.Tasks)),
		TotalElements: recordPage.TotalElements,
	}
	for _, record := range recordPage.Tasks {
		result.Tasks = append(result.Tasks, toDomainTask(record))
	}
	return result, nil
}

func (a *domainStoreAdapter) ListAllTasks(ctx context.Context) ([]domain.Task, error) {
	if a == nil || a.taskStore == nil {
		return nil, errStoreNotConfigured
	}
	records, err := a.taskStore.ListAllTasks(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}
	tasks := make([]domain.Task, 0, len(records))
	for _, record := range records {
		tasks = append(tasks, toDomainTask(record))
	}
	return tasks, nil
}

func (a *domainStoreAdapter) GetUser(ctx context.Context, userID string) (domain.User, error) {
	if a == nil || a.userStore == nil {
		return domain.User{}, errStoreNotConfigured
	}
	record, err := a.userStore.GetUser(ctx, userID)
	if err != nil {
		return domain.User{}, mapStorageError(err)
	}
	return toDomainUser(record), nil
}

func (a *domainStoreAdapter) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	if a == nil || a.userStore == nil {
		return domain.User{}, errStoreNotConfigured
	}
	record, err := a.userStore.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, mapStorageError(err)
	}
	return toDomainUser(record), nil
}

func (a *domainStoreAdapter) UserExists(ctx context.Context, userID string) (bool, error) {
	if a == nil || a.userStore == nil {
		return false, errStoreNotConfigured
	}
	return a.userStore.UserExists(ctx, userID)
}

func toStorageTask(task domain.Task) storage.Task {
	return storage.Task{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		AuthorID:    task.AuthorID,
		AssigneeID:  task.AssigneeID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func toDomainTask(record storage.Task) domain.Task {
	return domain.Task{
		ID:          record.ID,
		Title:       record.Title,
		Description: record.Description,
		Status:      domain.Status(record.Status),
		Priority:    domain.Priority(record.Priority),
		AuthorID:    record.AuthorID,
		AssigneeID:  record.AssigneeID,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func toDomainUser(record storage.User) domain.User {
	return domain.User{
		ID:    record.ID,
		Email: record.Email,
		Role:  domain.Role(record.Role),
	}
}

func mapStorageError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}
