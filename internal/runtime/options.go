package runtime

import (
	"fmt"
	"log/slog"

	"github.com/rezamirzapour/nextjs-middleware-runner/internal/pipeline"
)

// Option is a functional option for configuring a Runner.
type Option func(*Runner) error

// WithConfigFile uses file-based configuration with hot-reload. The path
// should point to a YAML file that will be watched for changes.
func WithConfigFile(path string) Option {
	return func(r *Runner) error {
		if path == "" {
			return fmt.Errorf("config path cannot be empty")
		}
		r.configPath = path
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) error {
		r.logger = logger
		return nil
	}
}

// WithStages registers stages programmatically, in addition to any stages
// declared in configuration. Programmatic stages survive config reloads.
func WithStages(stages ...*pipeline.Stage) Option {
	return func(r *Runner) error {
		r.stages = append(r.stages, stages...)
		return nil
	}
}

// WithSQLiteAudit records every pipeline run to the SQLite database at
// path. Overrides the audit settings from configuration. ":memory:" is
// accepted for ephemeral audit trails.
func WithSQLiteAudit(path string) Option {
	return func(r *Runner) error {
		if path == "" {
			return fmt.Errorf("audit path cannot be empty")
		}
		r.auditPath = path
		return nil
	}
}
