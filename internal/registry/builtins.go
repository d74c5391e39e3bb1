package registry

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/rezamirzapour/nextjs-middleware-runner/internal/middleware"
	"github.com/rezamirzapour/nextjs-middleware-runner/internal/pipeline"
)

var builtinsOnce sync.Once

// RegisterBuiltins registers the built-in handler factories. Intended to
// be called from cmd/runner and tests before building stages; avoids
// init() side effects. Safe to call more than once.
func RegisterBuiltins() {
	builtinsOnce.Do(registerBuiltins)
}

func registerBuiltins() {
	RegisterFactory(HandlerFactory{
		Kind:        "request-id",
		Description: "stamps responses with a unique X-Request-ID header",
		Create: func(params map[string]any, logger *slog.Logger) (pipeline.Handler, error) {
			return middleware.RequestID(), nil
		},
	})

	RegisterFactory(HandlerFactory{
		Kind:        "access-log",
		Description: "logs each request passing through the pipeline",
		Create: func(params map[string]any, logger *slog.Logger) (pipeline.Handler, error) {
			return middleware.AccessLog(logger), nil
		},
	})

	RegisterFactory(HandlerFactory{
		Kind:        "headers",
		Description: "adds fixed headers to the response",
		Create: func(params map[string]any, logger *slog.Logger) (pipeline.Handler, error) {
			headers := make(map[string]string, len(params))
			for k, v := range params {
				s, ok := v.(string)
				if !ok {
					return nil, fmt.Errorf("header %q: value must be a string", k)
				}
				headers[k] = s
			}
			return middleware.SetHeaders(headers), nil
		},
	})

	RegisterFactory(HandlerFactory{
		Kind:        "redirect",
		Description: "short-circuits with a redirect",
		Create: func(params map[string]any, logger *slog.Logger) (pipeline.Handler, error) {
			location, _ := params["location"].(string)
			if location == "" {
				return nil, fmt.Errorf("redirect handler requires a location param")
			}
			status := http.StatusTemporaryRedirect
			if raw, ok := params["status"]; ok {
				// YAML integers arrive as int; koanf may also hand back float64.
				switch v := raw.(type) {
				case int:
					status = v
				case int64:
					status = int(v)
				case float64:
					status = int(v)
				default:
					return nil, fmt.Errorf("redirect status must be an integer, got %T", raw)
				}
			}
			return middleware.RedirectTo(status, location), nil
		},
	})

	RegisterFactory(HandlerFactory{
		Kind:        "deny",
		Description: "short-circuits with 403 Forbidden",
		Create: func(params map[string]any, logger *slog.Logger) (pipeline.Handler, error) {
			body, _ := params["body"].(string)
			return middleware.Deny(body), nil
		},
	})

	RegisterFactory(HandlerFactory{
		Kind:        "maintenance",
		Description: "short-circuits with a 503 maintenance page",
		Create: func(params map[string]any, logger *slog.Logger) (pipeline.Handler, error) {
			body, _ := params["body"].(string)
			return middleware.Maintenance(body), nil
		},
	})
}
