// Package registry maps handler kind names from configuration to the code
// that implements them. Each handler kind registers a HandlerFactory;
// declarative stage definitions are then built into pipeline stages.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/rezamirzapour/nextjs-middleware-runner/internal/config"
	"github.com/rezamirzapour/nextjs-middleware-runner/internal/matcher"
	"github.com/rezamirzapour/nextjs-middleware-runner/internal/pipeline"
)

// HandlerFactory defines how to create handlers of a specific kind.
type HandlerFactory struct {
	// Kind is the handler identifier used in configuration
	// (e.g., "headers", "deny", "redirect").
	Kind string

	// Description is a human-readable summary of the handler.
	Description string

	// Create instantiates a handler from its configured params.
	Create func(params map[string]any, logger *slog.Logger) (pipeline.Handler, error)
}

var (
	factoryMu  sync.RWMutex
	factoryMap = make(map[string]HandlerFactory)
)

// RegisterFactory registers a handler factory. Panics on an empty kind, a
// nil Create, or a duplicate registration.
func RegisterFactory(f HandlerFactory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()

	if f.Kind == "" {
		panic("handler factory kind cannot be empty")
	}
	if f.Create == nil {
		panic(fmt.Sprintf("handler factory %q must have a Create function", f.Kind))
	}
	if _, exists := factoryMap[f.Kind]; exists {
		panic(fmt.Sprintf("handler factory %q already registered", f.Kind))
	}

	factoryMap[f.Kind] = f
}

// GetFactory returns the factory for a handler kind, if registered.
func GetFactory(kind string) (HandlerFactory, bool) {
	factoryMu.RLock()
	defer factoryMu.RUnlock()

	f, ok := factoryMap[kind]
	return f, ok
}

// ListKinds returns all registered handler kinds, sorted.
func ListKinds() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()

	kinds := make([]string, 0, len(factoryMap))
	for k := range factoryMap {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// ClearFactories removes all registered factories. For testing only.
func ClearFactories() {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factoryMap = make(map[string]HandlerFactory)
}

// Build creates a pipeline stage from a declarative stage definition.
func Build(def config.Stage, logger *slog.Logger) (*pipeline.Stage, error) {
	factory, ok := GetFactory(def.Handler)
	if !ok {
		return nil, fmt.Errorf("unknown handler kind %q (registered: %v)", def.Handler, ListKinds())
	}

	handler, err := factory.Create(def.Params, logger)
	if err != nil {
		return nil, fmt.Errorf("create handler %q for stage %q: %w", def.Handler, def.Name, err)
	}

	var selector *matcher.Selector
	if len(def.Paths) > 0 {
		selector = matcher.Patterns(def.Paths...)
	}

	return pipeline.NewStage(handler, pipeline.StageConfig{
		Name:            def.Name,
		Priority:        def.Priority,
		Selector:        selector,
		ContinueOnError: def.ContinueOnError,
	}), nil
}

// BuildAll creates stages for every definition, failing on the first
// definition that cannot be built.
func BuildAll(defs []config.Stage, logger *slog.Logger) ([]*pipeline.Stage, error) {
	stages := make([]*pipeline.Stage, 0, len(defs))
	for _, def := range defs {
		stage, err := Build(def, logger)
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	return stages, nil
}
