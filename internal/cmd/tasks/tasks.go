// Package tasks parses tasks service flags and launches the service.
package tasks

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/tasktrack/internal/platform/cmd"
	server "github.com/louisbranch/tasktrack/internal/services/tasks/app"
)

// Config holds tasks command configuration.
type Config struct {
	Port int `env:"TASKTRACK_TASKS_PORT" envDefault:"8080"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The tasks HTTP server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the tasks HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceTasks, func(context.Context) error {
		return server.Run(ctx, cfg.Port)
	})
}
