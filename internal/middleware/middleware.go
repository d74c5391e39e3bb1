// Package middleware provides the built-in pipeline stages. Each function
// returns a pipeline.Handler; stages are registered with the engine via
// the registry or directly with pipeline.NewStage.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rezamirzapour/nextjs-middleware-runner/internal/pipeline"
)

// RequestIDHeader is the header carrying the generated request ID.
const RequestIDHeader = "X-Request-ID"

// RequestID stamps each response with a unique request ID.
func RequestID() pipeline.Handler {
	return func(ctx context.Context, c *pipeline.Context) (*pipeline.Result, error) {
		id := uuid.New().String()
		return pipeline.Continue(c.Response.WithHeader(RequestIDHeader, id)), nil
	}
}

// AccessLog logs each request passing through the pipeline.
func AccessLog(logger *slog.Logger) pipeline.Handler {
	return func(ctx context.Context, c *pipeline.Context) (*pipeline.Result, error) {
		logger.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.Path),
			slog.Time("at", time.Now()),
		)
		return pipeline.Continue(nil), nil
	}
}

// SetHeaders adds fixed headers to the current response.
func SetHeaders(headers map[string]string) pipeline.Handler {
	return func(ctx context.Context, c *pipeline.Context) (*pipeline.Result, error) {
		resp := c.Response
		for k, v := range headers {
			resp = resp.WithHeader(k, v)
		}
		return pipeline.Continue(resp), nil
	}
}

// RedirectTo short-circuits with a redirect to location.
func RedirectTo(status int, location string) pipeline.Handler {
	if status == 0 {
		status = http.StatusTemporaryRedirect
	}
	return func(ctx context.Context, c *pipeline.Context) (*pipeline.Result, error) {
		return pipeline.Stop(pipeline.Redirect(status, location)), nil
	}
}

// Deny short-circuits with 403 Forbidden. Pair it with a selector to
// block a path subtree.
func Deny(body string) pipeline.Handler {
	if body == "" {
		body = "Forbidden"
	}
	return func(ctx context.Context, c *pipeline.Context) (*pipeline.Result, error) {
		return pipeline.Stop(pipeline.NewResponse(http.StatusForbidden, body)), nil
	}
}

// Maintenance short-circuits every matching request with 503 and the
// given page body.
func Maintenance(body string) pipeline.Handler {
	if body == "" {
		body = "Service temporarily unavailable"
	}
	return func(ctx context.Context, c *pipeline.Context) (*pipeline.Result, error) {
		resp := pipeline.NewResponse(http.StatusServiceUnavailable, body)
		resp.Header.Set("Retry-After", "300")
		return pipeline.Stop(resp), nil
	}
}
