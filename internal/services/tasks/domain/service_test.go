package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "github.com/louisbranch/tasktrack/internal/platform/errors"
	"github.com/louisbranch/tasktrack/internal/platform/pagination"
)

type fakeStore struct {
	mu    sync.Mutex
	tasks map[string]Task
	order []string
	users map[string]User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tasks: make(map[string]Task),
		users: make(map[string]User),
	}
}

func (f *fakeStore) GetTask(_ context.Context, taskID string) (Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[taskID]
	if !ok {
		return Task{}, ErrNotFound
	}
	return task, nil
}

func (f *fakeStore) PutTask(_ context.Context, task Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[task.ID]; !ok {
		f.order = append(f.order, task.ID)
	}
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeStore) DeleteTask(_ context.Context, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tasks, taskID)
	for i, id := range f.order {
		if id == taskID {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeStore) TaskExists(_ context.Context, taskID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tasks[taskID]
	return ok, nil
}

func (f *fakeStore) ListTasks(_ context.Context, filter TaskFilter, page pagination.PageRequest) (TaskPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []Task
	for _, id := range f.order {
		task := f.tasks[id]
		if filter.Title != "" && !strings.Contains(strings.ToLower(task.Title), strings.ToLower(filter.Title)) {
			continue
		}
		if filter.Status != "" && string(task.Status) != filter.Status {
			continue
		}
		if filter.Priority != "" && string(task.Priority) != filter.Priority {
			continue
		}
		if filter.AuthorID != "" && task.AuthorID != filter.AuthorID {
			continue
		}
		if filter.AssigneeID != "" && task.AssigneeID != filter.AssigneeID {
			continue
		}
		matched = append(matched, task)
	}
	total := int64(len(matched))
	start := page.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + page.Size
	if end > len(matched) {
		end = len(matched)
	}
	return TaskPage{Tasks: matched[start:end], TotalElements: total}, nil
}

func (f *fakeStore) ListAllTasks(_ context.Context) ([]Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := make([]Task, 0, len(f.order))
	for _, id := range f.order {
		tasks = append(tasks, f.tasks[id])
	}
	return tasks, nil
}

func (f *fakeStore) GetUser(_ context.Context, userID string) (User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (f *fakeStore) UserExists(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[userID]
	return ok, nil
}

func (f *fakeStore) addUser(user User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func sequentialIDGenerator(ids ...string) func() (string, error) {
	index := 0
	return func() (string, error) {
		if index >= len(ids) {
			return "", errors.New("id sequence exhausted")
		}
		id := ids[index]
		index++
		return id, nil
	}
}

var (
	adminCaller = Caller{Email: "root@example.com", Authorities: []string{"ROLE_ADMIN"}}
	aliceCaller = Caller{Email: "alice@example.com", Authorities: []string{"ROLE_USER"}}
	bobCaller   = Caller{Email: "bob@example.com", Authorities: []string{"ROLE_USER"}}
)

func newTestService(t *testing.T, ids ...string) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	store.addUser(User{ID: "user-admin", Email: "root@example.com", Role: RoleAdmin})
	store.addUser(User{ID: "user-alice", Email: "alice@example.com", Role: RoleUser})
	store.addUser(User{ID: "user-bob", Email: "bob@example.com", Role: RoleUser})
	if len(ids) == 0 {
		ids = []string{"task-1", "task-2", "task-3", "task-4"}
	}
	now := time.Date(2026, time.August, 20, 9, 0, 0, 0, time.UTC)
	return NewService(store, fixedClock(now), sequentialIDGenerator(ids...)), store
}

func mustCreate(t *testing.T, svc *Service, input CreateTaskInput) Task {
	t.Helper()
	task, err := svc.CreateTask(context.Background(), input)
	if err != nil {
		t.Fatalf("create task %q: %v", input.Title, err)
	}
	return task
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	for _, title := range []string{"", "   "} {
		_, err := svc.CreateTask(context.Background(), CreateTaskInput{Title: title, AuthorID: "user-admin"})
		if apperrors.CodeOf(err) != apperrors.CodeTaskTitleEmpty {
			t.Fatalf("title %q: expected TASK_TITLE_EMPTY, got %v", title, err)
		}
	}
}

func TestCreateTaskAppliesDefaultsAndGeneratesID(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t, "task-42")
	task := mustCreate(t, svc, CreateTaskInput{Title: "Write release notes", AuthorID: "user-admin"})

	if task.ID != "task-42" {
		t.Fatalf("task id = %q, want generated id", task.ID)
	}
	if task.Status != StatusTodo || task.Priority != PriorityMedium {
		t.Fatalf("defaults = %s/%s, want TODO/MEDIUM", task.Status, task.Priority)
	}
	stored, err := store.GetTask(context.Background(), "task-42")
	if err != nil {
		t.Fatalf("stored task missing: %v", err)
	}
	if stored.Title != "Write release notes" {
		t.Fatalf("stored title = %q", stored.Title)
	}
}

func TestCreateTaskRejectsUnknownEnumLiterals(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.CreateTask(context.Background(), CreateTaskInput{Title: "x", Status: "DONE"})
	if apperrors.CodeOf(err) != apperrors.CodeTaskInvalidStatus {
		t.Fatalf("expected TASK_INVALID_STATUS, got %v", err)
	}
	_, err = svc.CreateTask(context.Background(), CreateTaskInput{Title: "x", Priority: "URGENT"})
	if apperrors.CodeOf(err) != apperrors.CodeTaskInvalidPriority {
		t.Fatalf("expected TASK_INVALID_PRIORITY, got %v", err)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.GetTask(context.Background(), "missing")
	if apperrors.CodeOf(err) != apperrors.CodeTaskNotFound {
		t.Fatalf("expected TASK_NOT_FOUND, got %v", err)
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.UpdateTask(context.Background(), "missing", TaskPatch{Status: NewOptional("COMPLETED")}, adminCaller)
	if apperrors.CodeOf(err) != apperrors.CodeTaskNotFound {
		t.Fatalf("expected TASK_NOT_FOUND, got %v", err)
	}
}

func TestUpdateTaskAdminPartialUpdateLeavesAbsentFieldsUntouched(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	created := mustCreate(t, svc, CreateTaskInput{
		Title:       "Ship v2",
		Description: "cut the release",
		Priority:    "HIGH",
		AuthorID:    "user-admin",
		AssigneeID:  "user-alice",
	})

	updated, err := svc.UpdateTask(context.Background(), created.ID, TaskPatch{
		Status: NewOptional("COMPLETED"),
	}, adminCaller)
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", updated.Status)
	}
	if updated.Title != created.Title || updated.Description != created.Description ||
		updated.Priority != created.Priority || updated.AssigneeID != created.AssigneeID ||
		updated.AuthorID != created.AuthorID {
		t.Fatalf("absent fields changed: %+v", updated)
	}
}

func TestUpdateTaskAdminRejectsUnknownStatusBeforeMutating(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	created := mustCreate(t, svc, CreateTaskInput{Title: "Ship v2", AuthorID: "user-admin"})

	_, err := svc.UpdateTask(context.Background(), created.ID, TaskPatch{
		Title:  NewOptional("Renamed"),
		Status: NewOptional("DONE"),
	}, adminCaller)
	if apperrors.CodeOf(err) != apperrors.CodeTaskInvalidStatus {
		t.Fatalf("expected TASK_INVALID_STATUS, got %v", err)
	}

	stored, _ := store.GetTask(context.Background(), created.ID)
	if stored.Title != "Ship v2" {
		t.Fatalf("rejected update must not partially apply, title = %q", stored.Title)
	}
}

func TestUpdateTaskAdminIgnoresEmptyTitle(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	created := mustCreate(t, svc, CreateTaskInput{Title: "Keep me", AuthorID: "user-admin"})

	updated, err := svc.UpdateTask(context.Background(), created.ID, TaskPatch{
		Title:       NewOptional("  "),
		Description: NewOptional(""),
	}, adminCaller)
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if updated.Title != "Keep me" {
		t.Fatalf("blank title should be ignored, got %q", updated.Title)
	}
	if updated.Description != "" {
		t.Fatalf("explicit empty description should apply, got %q", updated.Description)
	}
}

func TestUpdateTaskAdminCanClearAssignee(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	created := mustCreate(t, svc, CreateTaskInput{Title: "Triage", AuthorID: "user-admin", AssigneeID: "user-alice"})

	updated, err := svc.UpdateTask(context.Background(), created.ID, TaskPatch{
		AssigneeID: NewOptional(""),
	}, adminCaller)
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if updated.AssigneeID != "" {
		t.Fatalf("assignee = %q, want cleared", updated.AssigneeID)
	}
}

func TestUpdateTaskAdminReassignValidatesUserExists(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	created := mustCreate(t, svc, CreateTaskInput{Title: "Triage", AuthorID: "user-admin"})

	_, err := svc.UpdateTask(context.Background(), created.ID, TaskPatch{
		AssigneeID: NewOptional("user-ghost"),
	}, adminCaller)
	if apperrors.CodeOf(err) != apperrors.CodeUserNotFound {
		t.Fatalf("expected USER_NOT_FOUND for dangling assignee, got %v", err)
	}

	updated, err := svc.UpdateTask(context.Background(), created.ID, TaskPatch{
		AssigneeID: NewOptional("user-bob"),
	}, adminCaller)
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if updated.AssigneeID != "user-bob" {
		t.Fatalf("assignee = %q, want user-bob", updated.AssigneeID)
	}
}

func TestUpdateTaskUserAssigneeMayChangeStatusOnly(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	created := mustCreate(t, svc, CreateTaskInput{Title: "My Task 1", AuthorID: "user-admin", AssigneeID: "user-alice"})

	updated, err := svc.UpdateTask(context.Background(), created.ID, TaskPatch{
		Status: NewOptional("IN_PROGRESS"),
	}, aliceCaller)
	if err != nil {
		t.Fatalf("assignee status update: %v", err)
	}
	if updated.Status != StatusInProgress {
		t.Fatalf("status = %s, want IN_PROGRESS", updated.Status)
	}
	if updated.Title != created.Title || updated.Priority != created.Priority {
		t.Fatalf("other fields changed: %+v", updated)
	}
}

func TestUpdateTaskUserAssigneeWithoutStatusFails(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	created := mustCreate(t, svc, CreateTaskInput{Title: "My Task 1", AuthorID: "user-admin", AssigneeID: "user-alice"})

	_, err := svc.UpdateTask(context.Background(), created.ID, TaskPatch{
		Title: NewOptional("x"),
	}, aliceCaller)
	if apperrors.CodeOf(err) != apperrors.CodeTaskStatusRequired {
		t.Fatalf("expected TASK_STATUS_REQUIRED, got %v", err)
	}
}

func TestUpdateTaskUserNotAssigneeForbidden(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	assigned := mustCreate(t, svc, CreateTaskInput{Title: "Alice's task", AuthorID: "user-admin", AssigneeID: "user-alice"})
	unassigned := mustCreate(t, svc, CreateTaskInput{Title: "Nobody's task", AuthorID: "user-admin"})

	for _, taskID := range []string{assigned.ID, unassigned.ID} {
		_, err := svc.UpdateTask(context.Background(), taskID, TaskPatch{
			Status: NewOptional("COMPLETED"),
		}, bobCaller)
		if apperrors.CodeOf(err) != apperrors.CodeTaskUpdateForbidden {
			t.Fatalf("task %s: expected TASK_UPDATE_FORBIDDEN, got %v", taskID, err)
		}
	}
}

func TestUpdateTaskUnauthorizedRole(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	created := mustCreate(t, svc, CreateTaskInput{Title: "Locked down", AuthorID: "user-admin", AssigneeID: "user-alice"})

	caller := Caller{Email: "alice@example.com", Authorities: []string{"ROLE_AUDITOR"}}
	_, err := svc.UpdateTask(context.Background(), created.ID, TaskPatch{
		Status: NewOptional("COMPLETED"),
	}, caller)
	if apperrors.CodeOf(err) != apperrors.CodeTaskRoleUnauthorized {
		t.Fatalf("expected TASK_ROLE_UNAUTHORIZED, got %v", err)
	}
}

// Two racing updates are not isolated from each other: the design accepts a
// last-writer-wins outcome on the update path rather than guarding the
// load+save pair with a lock or version check.
func TestUpdateTaskLastWriterWins(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	created := mustCreate(t, svc, CreateTaskInput{Title: "Contended", AuthorID: "user-admin"})

	if _, err := svc.UpdateTask(context.Background(), created.ID, TaskPatch{
		Description: NewOptional("first writer"),
	}, adminCaller); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if _, err := svc.UpdateTask(context.Background(), created.ID, TaskPatch{
		Description: NewOptional("second writer"),
	}, adminCaller); err != nil {
		t.Fatalf("second update: %v", err)
	}

	stored, _ := store.GetTask(context.Background(), created.ID)
	if stored.Description != "second writer" {
		t.Fatalf("description = %q, want the last write", stored.Description)
	}
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t)
	created := mustCreate(t, svc, CreateTaskInput{Title: "Ephemeral", AuthorID: "user-admin"})

	message, err := svc.DeleteTask(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(message, created.ID) {
		t.Fatalf("confirmation %q should name the deleted id", message)
	}
	exists, _ := store.TaskExists(context.Background(), created.ID)
	if exists {
		t.Fatal("task should not exist after delete")
	}

	_, err = svc.DeleteTask(context.Background(), created.ID)
	if apperrors.CodeOf(err) != apperrors.CodeTaskNotFound {
		t.Fatalf("expected TASK_NOT_FOUND on second delete, got %v", err)
	}
}

func TestAssignTask(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	created := mustCreate(t, svc, CreateTaskInput{Title: "Handoff", AuthorID: "user-admin"})

	assigned, err := svc.AssignTask(context.Background(), created.ID, "user-bob")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.AssigneeID != "user-bob" {
		t.Fatalf("assignee = %q, want user-bob", assigned.AssigneeID)
	}
}

func TestAssignTaskPreconditions(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	created := mustCreate(t, svc, CreateTaskInput{Title: "Handoff", AuthorID: "user-admin"})

	_, err := svc.AssignTask(context.Background(), "missing", "user-bob")
	if apperrors.CodeOf(err) != apperrors.CodeTaskNotFound {
		t.Fatalf("expected TASK_NOT_FOUND, got %v", err)
	}
	_, err = svc.AssignTask(context.Background(), created.ID, "user-ghost")
	if apperrors.CodeOf(err) != apperrors.CodeUserNotFound {
		t.Fatalf("expected USER_NOT_FOUND, got %v", err)
	}
}

func TestAssignTaskRejectsCompletedTask(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	created := mustCreate(t, svc, CreateTaskInput{Title: "Closed out", Status: "COMPLETED", AuthorID: "user-admin"})

	_, err := svc.AssignTask(context.Background(), created.ID, "user-bob")
	if apperrors.CodeOf(err) != apperrors.CodeTaskAssignCompleted {
		t.Fatalf("expected TASK_ASSIGN_COMPLETED, got %v", err)
	}
}

func TestListTasksConjunctionOfPredicates(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, "t1", "t2", "t3", "t4")
	mustCreate(t, svc, CreateTaskInput{Title: "My Task 1", Priority: "HIGH", AuthorID: "user-admin", AssigneeID: "user-alice"})
	mustCreate(t, svc, CreateTaskInput{Title: "My Task 2", Priority: "LOW", AuthorID: "user-admin", AssigneeID: "user-bob"})
	mustCreate(t, svc, CreateTaskInput{Title: "Chores", Priority: "HIGH", AuthorID: "user-alice"})

	page, err := svc.ListTasks(context.Background(), ListTasksInput{
		Filter: TaskFilter{Title: "task", Priority: "HIGH"},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalElements != 1 || len(page.Tasks) != 1 {
		t.Fatalf("matched %d/%d tasks, want exactly one", len(page.Tasks), page.TotalElements)
	}
	if page.Tasks[0].Title != "My Task 1" {
		t.Fatalf("matched %q, want case-insensitive substring hit on My Task 1", page.Tasks[0].Title)
	}
}

func TestListTasksEmptyFilterReturnsAllPaginated(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, "t1", "t2", "t3", "t4")
	for i := 0; i < 3; i++ {
		mustCreate(t, svc, CreateTaskInput{Title: fmt.Sprintf("Task %d", i), AuthorID: "user-admin"})
	}

	page, err := svc.ListTasks(context.Background(), ListTasksInput{Page: 1, Size: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalElements != 3 {
		t.Fatalf("total = %d, want 3", page.TotalElements)
	}
	if len(page.Tasks) != 1 {
		t.Fatalf("second page length = %d, want 1", len(page.Tasks))
	}
	if page.Page != 1 || page.Size != 2 {
		t.Fatalf("page meta = %d/%d", page.Page, page.Size)
	}
}

func TestListTasksRejectsInvalidFilterLiterals(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.ListTasks(context.Background(), ListTasksInput{Filter: TaskFilter{Status: "DONE"}})
	if apperrors.CodeOf(err) != apperrors.CodeTaskInvalidStatus {
		t.Fatalf("expected TASK_INVALID_STATUS, got %v", err)
	}
}

func TestListAllTasksReturnsCreationOrder(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, "t1", "t2", "t3", "t4")
	mustCreate(t, svc, CreateTaskInput{Title: "first", AuthorID: "user-admin"})
	mustCreate(t, svc, CreateTaskInput{Title: "second", AuthorID: "user-admin"})

	tasks, err := svc.ListAllTasks(context.Background())
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Title != "first" || tasks[1].Title != "second" {
		t.Fatalf("unexpected order: %+v", tasks)
	}
}

func TestResolveCallerUser(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	user, err := svc.ResolveCallerUser(context.Background(), "Alice@Example.com")
	if err != nil {
		t.Fatalf("resolve caller: %v", err)
	}
	if user.ID != "user-alice" {
		t.Fatalf("resolved %q, want user-alice", user.ID)
	}

	_, err = svc.ResolveCallerUser(context.Background(), "nobody@example.com")
	if apperrors.CodeOf(err) != apperrors.CodeUserNotFound {
		t.Fatalf("expected USER_NOT_FOUND, got %v", err)
	}
	_, err = svc.ResolveCallerUser(context.Background(), "  ")
	if apperrors.CodeOf(err) != apperrors.CodeUserEmailEmpty {
		t.Fatalf("expected USER_EMAIL_EMPTY, got %v", err)
	}
}
