package pipeline

import (
	"context"

	"github.com/rezamirzapour/nextjs-middleware-runner/internal/matcher"
)

// Handler is one unit of middleware work. It receives the run's Context
// and returns a Result. A handler may block on its own internal work; the
// engine waits for it before moving to the next stage. Cancellation and
// deadlines arrive through ctx.
type Handler func(ctx context.Context, c *Context) (*Result, error)

// Result is a stage's output.
type Result struct {
	// Continue is false to stop the pipeline immediately.
	Continue bool

	// Response, when non-nil, replaces the current response from this
	// point onward, regardless of Continue.
	Response *Response
}

// Stop returns a short-circuit result carrying the given response.
func Stop(resp *Response) *Result {
	return &Result{Continue: false, Response: resp}
}

// Continue returns a result that lets the run proceed. resp may be nil to
// leave the current response unchanged.
func Continue(resp *Response) *Result {
	return &Result{Continue: true, Response: resp}
}

// Context is the request/response pair threaded through one pipeline run.
// Response is never nil once a run has started.
type Context struct {
	Request  *Request
	Response *Response
}

// StageConfig is a stage's immutable descriptor.
type StageConfig struct {
	// Name identifies the stage for removal and diagnostics. Names are
	// not required to be unique.
	Name string

	// Priority orders stages; higher runs earlier. Defaults to 0.
	Priority int

	// Selector restricts the stage to matching paths. Nil applies to all.
	Selector *matcher.Selector

	// ContinueOnError makes a handler failure recoverable: the failure is
	// logged and the run proceeds as if the stage had been skipped. When
	// false (the default) a failure aborts the run.
	ContinueOnError bool
}

// Stage is one registered middleware unit. Stages are immutable after
// creation.
type Stage struct {
	handler Handler
	config  StageConfig
}

// NewStage creates a stage from a handler and its configuration.
func NewStage(handler Handler, cfg StageConfig) *Stage {
	return &Stage{handler: handler, config: cfg}
}

// Name returns the stage's configured name.
func (s *Stage) Name() string { return s.config.Name }

// Priority returns the stage's configured priority.
func (s *Stage) Priority() int { return s.config.Priority }

// Config returns a copy of the stage's configuration.
func (s *Stage) Config() StageConfig { return s.config }

// applies reports whether the stage's selector matches the path.
func (s *Stage) applies(path string) bool {
	return s.config.Selector.Matches(path)
}
