package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"
)

// Outcome classifies how a run terminated.
type Outcome string

const (
	// OutcomeCompleted means every stage was skipped, completed, or
	// error-contained without a stop signal.
	OutcomeCompleted Outcome = "completed"
	// OutcomeStopped means a stage short-circuited the run.
	OutcomeStopped Outcome = "stopped"
	// OutcomeErrored means a fatal stage failure aborted the run.
	OutcomeErrored Outcome = "errored"
)

// RunStats describes one finished run for observers.
type RunStats struct {
	Path      string
	Outcome   Outcome
	StagesRun int
	Duration  time.Duration
}

// Observer receives a notification after each run completes. Used to feed
// audit storage without coupling the engine to it.
type Observer interface {
	RunCompleted(ctx context.Context, stats RunStats)
}

// Engine owns the ordered stage collection and drives pipeline runs.
//
// The fluent mutators (Use, Remove, Clear, SetDebug) return the engine for
// chaining and are intended for setup time; they are not synchronized
// against in-flight Run calls.
type Engine struct {
	stages   []*Stage
	logger   *slog.Logger
	observer Observer
	debug    bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithObserver sets an observer notified after each run.
func WithObserver(obs Observer) Option {
	return func(e *Engine) { e.observer = obs }
}

// New creates an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Use registers one or more stages and re-sorts the collection by
// descending priority. The sort is stable: stages of equal priority keep
// registration order. Duplicate names are permitted.
func (e *Engine) Use(stages ...*Stage) *Engine {
	e.stages = append(e.stages, stages...)
	sort.SliceStable(e.stages, func(i, j int) bool {
		return e.stages[i].config.Priority > e.stages[j].config.Priority
	})
	return e
}

// Remove drops every stage whose name equals name. Removing an unknown
// name is a no-op.
func (e *Engine) Remove(name string) *Engine {
	kept := e.stages[:0]
	for _, s := range e.stages {
		if s.config.Name != name {
			kept = append(kept, s)
		}
	}
	for i := len(kept); i < len(e.stages); i++ {
		e.stages[i] = nil
	}
	e.stages = kept
	return e
}

// Clear drops all stages.
func (e *Engine) Clear() *Engine {
	e.stages = nil
	return e
}

// Stages returns a snapshot of the current ordered collection. Mutating
// the returned slice does not affect the engine.
func (e *Engine) Stages() []*Stage {
	out := make([]*Stage, len(e.stages))
	copy(out, e.stages)
	return out
}

// SetDebug toggles per-stage diagnostic logging. Purely observational.
func (e *Engine) SetDebug(enabled bool) *Engine {
	e.debug = enabled
	return e
}

// errInternal is the fixed response returned for fatal stage failures.
// Failure detail never reaches the pipeline's output.
func errInternal() *Response {
	return NewResponse(http.StatusInternalServerError, "Internal Server Error")
}

// Run executes the pipeline for one request and returns the final
// response. Failures never escape: a fatal stage failure yields a generic
// server-error response.
func (e *Engine) Run(ctx context.Context, req *Request) *Response {
	start := time.Now()
	c := &Context{Request: req, Response: Next()}

	resp, outcome, executed := e.run(ctx, c)

	if e.observer != nil {
		e.observer.RunCompleted(ctx, RunStats{
			Path:      req.Path,
			Outcome:   outcome,
			StagesRun: executed,
			Duration:  time.Since(start),
		})
	}
	return resp
}

func (e *Engine) run(ctx context.Context, c *Context) (*Response, Outcome, int) {
	executed := 0
	for _, stage := range e.stages {
		if !stage.applies(c.Request.Path) {
			if e.debug {
				e.logger.Debug("stage skipped",
					slog.String("stage", stage.config.Name),
					slog.String("path", c.Request.Path))
			}
			continue
		}

		result, err := e.invoke(ctx, stage, c)
		executed++

		if err != nil {
			if stage.config.ContinueOnError {
				e.logger.Warn("stage failed, continuing",
					slog.String("stage", stage.config.Name),
					slog.String("path", c.Request.Path),
					slog.String("error", err.Error()))
				continue
			}
			e.logger.Error("stage failed, aborting run",
				slog.String("stage", stage.config.Name),
				slog.String("path", c.Request.Path),
				slog.String("error", err.Error()))
			return errInternal(), OutcomeErrored, executed
		}

		if e.debug {
			e.logger.Debug("stage executed",
				slog.String("stage", stage.config.Name),
				slog.String("path", c.Request.Path),
				slog.Bool("continue", result.Continue))
		}

		if !result.Continue {
			if result.Response != nil {
				return result.Response, OutcomeStopped, executed
			}
			return c.Response, OutcomeStopped, executed
		}
		if result.Response != nil {
			c.Response = result.Response
		}
	}

	return c.Response, OutcomeCompleted, executed
}

// invoke runs one handler, converting panics to errors so the engine
// remains the failure boundary for the run.
func (e *Engine) invoke(ctx context.Context, stage *Stage, c *Context) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("stage %s panicked: %v", stage.config.Name, r)
		}
	}()

	result, err = stage.handler(ctx, c)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("stage %s returned no result", stage.config.Name)
	}
	return result, nil
}
