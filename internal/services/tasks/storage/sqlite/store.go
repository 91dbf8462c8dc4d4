// Package sqlite provides a SQLite-backed tasks storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/tasktrack/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/tasktrack/internal/services/tasks/filter"
	"github.com/louisbranch/tasktrack/internal/services/tasks/storage"
	"github.com/louisbranch/tasktrack/internal/services/tasks/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists tasks service state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite tasks store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

const taskColumns = "id, title, description, status, priority, author_id, assignee_id, created_at, updated_at"

// PutTask upserts one task row.
func (s *Store) PutTask(ctx context.Context, task storage.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(task.ID) == "" {
		return fmt.Errorf("task id is required")
	}
	if strings.TrimSpace(task.Title) == "" {
		return fmt.Errorf("task title is required")
	}

	var assigneeID any
	if task.AssigneeID != "" {
		assigneeID = task.AssigneeID
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   description = excluded.description,
		   status = excluded.status,
		   priority = excluded.priority,
		   assignee_id = excluded.assignee_id,
		   updated_at = excluded.updated_at`,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.AuthorID,
		assigneeID,
		toMillis(task.CreatedAt),
		toMillis(task.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put task: %w", err)
	}
	return nil
}

// GetTask returns one task by id.
func (s *Store) GetTask(ctx context.Context, taskID string) (storage.Task, error) {
	if err := ctx.Err(); err != nil {
		return storage.Task{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Task{}, fmt.Errorf("storage is not configured")
	}
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return storage.Task{}, fmt.Errorf("task id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`,
		taskID,
	)
	task, err := scanTask(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Task{}, storage.ErrNotFound
		}
		return storage.Task{}, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// DeleteTask removes one task row.
func (s *Store) DeleteTask(ctx context.Context, taskID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return fmt.Errorf("task id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, taskID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// TaskExists reports whether a task row exists.
func (s *Store) TaskExists(ctx context.Context, taskID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return false, fmt.Errorf("task id is required")
	}

	var found int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id = ?`, taskID).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("task exists: %w", err)
	}
	return true, nil
}

// ListTasks returns one zero-based page of tasks matching the conjunction of
// the supplied filter predicates, plus the total matching count.
func (s *Store) ListTasks(ctx context.Context, taskFilter storage.TaskFilter, page storage.PageRequest) (storage.TaskPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.TaskPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.TaskPage{}, fmt.Errorf("storage is not configured")
	}
	if page.Size <= 0 {
		return storage.TaskPage{}, fmt.Errorf("page size must be greater than zero")
	}

	whereClause, params, err := buildTaskWhere(taskFilter)
	if err != nil {
		return storage.TaskPage{}, err
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM tasks` + whereClause
	if err := s.sqlDB.QueryRowContext(ctx, countQuery, params...).Scan(&total); err != nil {
		return storage.TaskPage{}, fmt.Errorf("count tasks: %w", err)
	}

	listQuery := `SELECT ` + taskColumns + ` FROM tasks` + whereClause +
		` ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?`
	listParams := append(append([]any{}, params...), page.Size, page.Offset())
	rows, err := s.sqlDB.QueryContext(ctx, listQuery, listParams...)
	if err != nil {
		return storage.TaskPage{}, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	result := storage.TaskPage{
		Tasks:         make([]storage.Task, 0, page.Size),
		TotalElements: total,
	}
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return storage.TaskPage{}, fmt.Errorf("list tasks: %w", err)
		}
		result.Tasks = append(result.Tasks, task)
	}
	if err := rows.Err(); err != nil {
		return storage.TaskPage{}, fmt.Errorf("list tasks: %w", err)
	}
	return result, nil
}

// ListAllTasks returns every task in creation order.
func (s *Store) ListAllTasks(ctx context.Context) ([]storage.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY created_at ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list all tasks: %w", err)
	}
	defer rows.Close()

	var tasks []storage.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list all tasks: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list all tasks: %w", err)
	}
	return tasks, nil
}

// buildTaskWhere translates a task filter into a SQL WHERE clause. Structured
// predicates are ANDed together; an AIP-160 expression, when present, is
// parsed and ANDed in as one more condition.
func buildTaskWhere(taskFilter storage.TaskFilter) (string, []any, error) {
	var clauses []string
	var params []any

	if title := strings.TrimSpace(taskFilter.Title); title != "" {
		clauses = append(clauses, "instr(lower(title), lower(?)) > 0")
		params = append(params, title)
	}
	if taskFilter.Status != "" {
		clauses = append(clauses, "status = ?")
		params = append(params, taskFilter.Status)
	}
	if taskFilter.Priority != "" {
		clauses = append(clauses, "priority = ?")
		params = append(params, taskFilter.Priority)
	}
	if taskFilter.AuthorID != "" {
		clauses = append(clauses, "author_id = ?")
		params = append(params, taskFilter.AuthorID)
	}
	if taskFilter.AssigneeID != "" {
		clauses = append(clauses, "assignee_id = ?")
		params = append(params, taskFilter.AssigneeID)
	}
	if taskFilter.Expression != "" {
		condition, err := filter.ParseTaskFilter(taskFilter.Expression)
		if err != nil {
			return "", nil, err
		}
		if !condition.IsEmpty() {
			clauses = append(clauses, condition.Clause)
			params = append(params, condition.Params...)
		}
	}

	if len(clauses) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), params, nil
}

func scanTask(scan func(dest ...any) error) (storage.Task, error) {
	var (
		task       storage.Task
		assigneeID sql.NullString
		createdAt  int64
		updatedAt  int64
	)
	err := scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.AuthorID,
		&assigneeID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return storage.Task{}, err
	}
	if assigneeID.Valid {
		task.AssigneeID = assigneeID.String
	}
	task.CreatedAt = fromMillis(createdAt)
	task.UpdatedAt = fromMillis(updatedAt)
	return task, nil
}

var _ storage.TaskStore = (*Store)(nil)
