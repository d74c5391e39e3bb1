// Package server hosts the pipeline engine behind an HTTP server. It
// adapts *http.Request to the engine's request type, runs the pipeline,
// and either writes the pipeline's terminal response or falls through to
// the application handler on pass-through.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rezamirzapour/nextjs-middleware-runner/internal/pipeline"
	"github.com/rezamirzapour/nextjs-middleware-runner/internal/store"
)

// Middleware adapts the pipeline engine to the standard
// func(http.Handler) http.Handler middleware shape. A pass-through
// pipeline response forwards to next, carrying over any headers the
// stages accumulated; any other response is written as-is and next never
// runs.
func Middleware(engine *pipeline.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resp := engine.Run(r.Context(), pipeline.FromHTTP(r))

			for k, vals := range resp.Header {
				for _, v := range vals {
					w.Header().Add(k, v)
				}
			}

			if resp.PassThrough() {
				next.ServeHTTP(w, r)
				return
			}

			w.WriteHeader(resp.Status)
			if resp.Body != "" {
				fmt.Fprint(w, resp.Body)
			}
		})
	}
}

// Server wires the engine, the audit store, and the application routes
// behind a chi router.
type Server struct {
	Router *chi.Mux
	Port   int
	logger *slog.Logger
	http   *http.Server
}

// New builds a server hosting the engine. audit may be nil.
func New(port int, logger *slog.Logger, engine *pipeline.Engine, audit *store.Store) *Server {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "middleware-runner")
	})
	r.Use(Middleware(engine))

	if audit != nil {
		r.Get("/_runner/runs", runsHandler(audit, logger))
	}

	// Default application handler: requests the pipeline passed through
	// land here.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	return &Server{Router: r, Port: port, logger: logger}
}

// runsHandler serves the recent audit trail as JSON.
func runsHandler(audit *store.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		runs, err := audit.RecentRuns(r.Context(), limit)
		if err != nil {
			logger.Error("failed to query runs", slog.String("error", err.Error()))
			http.Error(w, "failed to query runs", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(runs); err != nil {
			logger.Error("failed to encode runs", slog.String("error", err.Error()))
		}
	}
}

// Start begins serving in the background.
func (s *Server) Start() {
	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.Router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		s.logger.Info("HTTP server listening", slog.Int("port", s.Port))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server error", slog.String("error", err.Error()))
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
