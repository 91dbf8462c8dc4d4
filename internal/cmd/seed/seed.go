// Package seed provisions demo users and tasks into a tasks database.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"time"

	entrypoint "github.com/louisbranch/tasktrack/internal/platform/cmd"
	"github.com/louisbranch/tasktrack/internal/platform/id"
	"github.com/louisbranch/tasktrack/internal/services/tasks/storage"
	"github.com/louisbranch/tasktrack/internal/services/tasks/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath  string `env:"TASKTRACK_TASKS_DB_PATH"`
	Verbose bool
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "tasks.db")
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the tasks database file")
	fs.BoolVar(&cfg.Verbose, "v", false, "verbose output")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// demo fixtures: an admin plus two regular users and a small task board.
var demoUsers = []storage.User{
	{ID: "user-admin", Email: "admin@example.com", Role: "ADMIN"},
	{ID: "user-alice", Email: "alice@example.com", Role: "USER"},
	{ID: "user-bob", Email: "bob@example.com", Role: "USER"},
}

type demoTask struct {
	title       string
	description string
	status      string
	priority    string
	assigneeID  string
}

var demoTasks = []demoTask{
	{title: "Set up project board", description: "Agree on columns and labels", status: "COMPLETED", priority: "LOW"},
	{title: "Write API documentation", status: "IN_PROGRESS", priority: "MEDIUM", assigneeID: "user-alice"},
	{title: "Fix login session expiry", description: "Cookie expires after 5 minutes", status: "TODO", priority: "HIGH", assigneeID: "user-bob"},
	{title: "Plan next sprint", status: "TODO", priority: "MEDIUM"},
}

// Run seeds the database at cfg.DBPath with the demo fixtures.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open tasks store: %w", err)
	}
	defer func() { _ = store.Close() }()

	for _, user := range demoUsers {
		if err := store.PutUser(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", user.ID, err)
		}
	}

	now := time.Now().UTC()
	for i, fixture := range demoTasks {
		taskID, err := id.NewID()
		if err != nil {
			return fmt.Errorf("generate task id: %w", err)
		}
		createdAt := now.Add(time.Duration(i) * time.Second)
		task := storage.Task{
			ID:          taskID,
			Title:       fixture.title,
			Description: fixture.description,
			Status:      fixture.status,
			Priority:    fixture.priority,
			AuthorID:    "user-admin",
			AssigneeID:  fixture.assigneeID,
			CreatedAt:   createdAt,
			UpdatedAt:   createdAt,
		}
		if err := store.PutTask(ctx, task); err != nil {
			return fmt.Errorf("seed task %q: %w", fixture.title, err)
		}
	}

	fmt.Fprintf(out, "seeded %d users and %d tasks into %s\n", len(demoUsers), len(demoTasks), cfg.DBPath)
	if cfg.Verbose {
		tasks, err := store.ListAllTasks(ctx)
		if err != nil {
			return fmt.Errorf("list seeded tasks: %w", err)
		}
		for _, task := range tasks {
			fmt.Fprintf(out, "  %s  %-11s %-6s  %s\n", task.ID, task.Status, task.Priority, task.Title)
		}
	}
	return nil
}
