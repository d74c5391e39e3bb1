// Package runner provides the public API for embedding the middleware
// runner. This is the stable surface for external consumers.
package runner

import (
	"github.com/rezamirzapour/nextjs-middleware-runner/internal/matcher"
	"github.com/rezamirzapour/nextjs-middleware-runner/internal/pipeline"
	"github.com/rezamirzapour/nextjs-middleware-runner/internal/runtime"
)

// Runner hosts a middleware pipeline behind an HTTP server.
// See internal/runtime.Runner for full documentation.
type Runner = runtime.Runner

// Option is a functional option for configuring a Runner.
type Option = runtime.Option

// New creates a new Runner with the given options. Example:
//
//	r, err := runner.New(
//	    runner.WithConfigFile("runner.yaml"),
//	    runner.WithSQLiteAudit("./runner-audit.db"),
//	)
var New = runtime.New

// Configuration options.
var (
	WithConfigFile  = runtime.WithConfigFile
	WithLogger      = runtime.WithLogger
	WithStages      = runtime.WithStages
	WithSQLiteAudit = runtime.WithSQLiteAudit
)

// Pipeline building blocks re-exported for programmatic stages.
type (
	Engine      = pipeline.Engine
	Stage       = pipeline.Stage
	StageConfig = pipeline.StageConfig
	Handler     = pipeline.Handler
	Result      = pipeline.Result
	Context     = pipeline.Context
	Request     = pipeline.Request
	Response    = pipeline.Response
	Selector    = matcher.Selector
)

var (
	NewStage    = pipeline.NewStage
	NewEngine   = pipeline.New
	NewRequest  = pipeline.NewRequest
	NewResponse = pipeline.NewResponse
	Next        = pipeline.Next
	Stop        = pipeline.Stop
	Continue    = pipeline.Continue

	Pattern   = matcher.Pattern
	Patterns  = matcher.Patterns
	Predicate = matcher.Predicate
)
