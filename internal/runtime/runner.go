// Package runtime provides the Runner struct and lifecycle management for
// hosting a middleware pipeline behind an HTTP server.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rezamirzapour/nextjs-middleware-runner/internal/config"
	"github.com/rezamirzapour/nextjs-middleware-runner/internal/pipeline"
	"github.com/rezamirzapour/nextjs-middleware-runner/internal/registry"
	"github.com/rezamirzapour/nextjs-middleware-runner/internal/server"
	"github.com/rezamirzapour/nextjs-middleware-runner/internal/store"
)

// Runner manages configuration, the pipeline engine, the audit store, and
// the HTTP server lifecycle. It can be embedded in larger applications or
// run standalone from cmd/runner.
type Runner struct {
	// Dependencies (injected via options)
	configPath string
	logger     *slog.Logger
	stages     []*pipeline.Stage
	auditPath  string

	// Internal state
	provider *config.Provider
	engine   *pipeline.Engine
	audit    *store.Store
	server   *server.Server

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

// New creates a Runner with the given options.
func New(opts ...Option) (*Runner, error) {
	r := &Runner{logger: slog.Default()}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	registry.RegisterBuiltins()
	return r, nil
}

// Engine returns the runner's engine for programmatic stage management.
// Nil before Start.
func (r *Runner) Engine() *pipeline.Engine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine
}

// Start loads configuration, builds the pipeline, and starts the HTTP
// server. When a config file is set, it is watched for changes and the
// stage set is rebuilt on every reload.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ctx, r.cancel = context.WithCancel(ctx)

	cfg := &config.Config{Server: config.Server{Port: 8080}}
	if r.configPath != "" {
		provider, err := config.NewProvider(r.configPath, r.logger)
		if err != nil {
			return fmt.Errorf("create config provider: %w", err)
		}
		r.provider = provider

		cfg, err = provider.Load(r.ctx)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	if err := r.initAudit(cfg); err != nil {
		return err
	}

	engineOpts := []pipeline.Option{pipeline.WithLogger(r.logger)}
	if r.audit != nil {
		engineOpts = append(engineOpts, pipeline.WithObserver(r.audit))
	}
	r.engine = pipeline.New(engineOpts...).SetDebug(cfg.Debug)

	if err := r.installStages(cfg); err != nil {
		return err
	}

	r.server = server.New(cfg.Server.Port, r.logger, r.engine, r.audit)
	r.server.Start()

	if r.provider != nil {
		go r.watchConfig()
	}

	r.logger.Info("runner started",
		slog.Int("port", cfg.Server.Port),
		slog.Int("stages", len(r.engine.Stages())),
		slog.Bool("audit", r.audit != nil))
	return nil
}

// initAudit opens the audit store when enabled by option or config.
func (r *Runner) initAudit(cfg *config.Config) error {
	path := r.auditPath
	if path == "" && cfg.Audit.Enabled {
		path = cfg.Audit.Path
		if path == "" {
			path = "./runner-audit.db"
		}
	}
	if path == "" {
		return nil
	}

	audit, err := store.Open(path, r.logger)
	if err != nil {
		return fmt.Errorf("open audit store: %w", err)
	}
	r.audit = audit
	return nil
}

// installStages resets the engine's stage set to the config-declared
// stages plus any programmatically registered ones.
func (r *Runner) installStages(cfg *config.Config) error {
	built, err := registry.BuildAll(cfg.Stages, r.logger)
	if err != nil {
		return fmt.Errorf("build stages: %w", err)
	}

	r.engine.Clear()
	if len(built) > 0 {
		r.engine.Use(built...)
	}
	if len(r.stages) > 0 {
		r.engine.Use(r.stages...)
	}
	return nil
}

// watchConfig watches for config changes and rebuilds the stage set.
func (r *Runner) watchConfig() {
	onChange := func(cfg *config.Config) {
		r.logger.Info("config changed, rebuilding pipeline")
		if err := r.reload(cfg); err != nil {
			r.logger.Error("failed to reload", slog.String("error", err.Error()))
		}
	}

	if err := r.provider.Watch(r.ctx, onChange); err != nil && err != context.Canceled {
		r.logger.Error("config watch failed", slog.String("error", err.Error()))
	}
}

// reload rebuilds the engine's stages from new configuration. In-flight
// runs may observe either the old or the new stage set; the swap is not
// synchronized against them.
func (r *Runner) reload(cfg *config.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.installStages(cfg); err != nil {
		return err
	}
	r.engine.SetDebug(cfg.Debug)

	r.logger.Info("reload complete", slog.Int("stages", len(r.engine.Stages())))
	return nil
}

// Shutdown gracefully stops the runner.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Info("shutting down runner")

	if r.cancel != nil {
		r.cancel()
	}

	if r.server != nil {
		if err := r.server.Shutdown(ctx); err != nil {
			r.logger.Error("failed to shutdown server", slog.String("error", err.Error()))
			return err
		}
	}

	if r.audit != nil {
		if err := r.audit.Close(); err != nil {
			r.logger.Error("failed to close audit store", slog.String("error", err.Error()))
		}
	}

	r.logger.Info("runner shutdown complete")
	return nil
}
