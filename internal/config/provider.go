package config

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Provider serves file-based configuration and watches the file for
// changes, triggering reload callbacks.
type Provider struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	watcher *fsnotify.Watcher
	current *Config
}

// NewProvider creates a file-based config provider.
func NewProvider(path string, logger *slog.Logger) (*Provider, error) {
	if path == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{path: path, logger: logger}, nil
}

// Load reads the configuration from the file.
func (p *Provider) Load(ctx context.Context) (*Config, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cfg, err := Load(p.path)
	if err != nil {
		return nil, err
	}

	p.current = cfg
	p.logger.Info("config loaded",
		slog.String("path", p.path),
		slog.Int("stages", len(cfg.Stages)))
	return cfg, nil
}

// Current returns the last successfully loaded configuration, nil before
// the first Load.
func (p *Provider) Current() *Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Watch blocks watching the config file, calling onChange with the newly
// loaded configuration on every write. It returns when ctx is done.
func (p *Provider) Watch(ctx context.Context, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	p.mu.Lock()
	p.watcher = watcher
	p.mu.Unlock()

	if err := watcher.Add(p.path); err != nil {
		return fmt.Errorf("watch %s: %w", p.path, err)
	}

	p.logger.Info("watching config file for changes", slog.String("path", p.path))

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("config watch stopped")
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write != fsnotify.Write {
				continue
			}

			p.logger.Info("config file changed, reloading", slog.String("path", event.Name))

			cfg, err := Load(p.path)
			if err != nil {
				p.logger.Error("failed to reload config",
					slog.String("path", p.path),
					slog.String("error", err.Error()))
				continue
			}

			p.mu.Lock()
			p.current = cfg
			p.mu.Unlock()

			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Error("config watch error", slog.String("error", err.Error()))
		}
	}
}
