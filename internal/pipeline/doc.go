// Package pipeline provides the middleware pipeline execution engine.
//
// An Engine owns an ordered collection of stages. Each stage pairs a
// handler with a configuration: an optional name, a priority (higher runs
// earlier), a path selector, and an error-containment policy. For every
// incoming request the engine walks the stages in priority order, skipping
// stages whose selector does not match the request path, threading the
// evolving response from stage to stage, and stopping early when a stage
// signals a short-circuit.
//
// # Error containment
//
// The engine is the failure boundary for a run: handler errors and panics
// never escape Run. A failing stage with ContinueOnError set is logged and
// skipped; otherwise the run aborts and the caller receives a fixed
// generic server-error response. Failure detail is only surfaced through
// the engine's logger, never through the pipeline's output.
//
// # Concurrency
//
// Each Run call is an independent sequential computation; stages of a
// single run never interleave, though independent runs may. The stage
// collection itself is read-mostly shared state: Use, Remove, and Clear
// are setup-time operations and must not race with in-flight runs.
package pipeline
