package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/rezamirzapour/nextjs-middleware-runner/internal/pipeline"
)

func runContext(path string) *pipeline.Context {
	return &pipeline.Context{Request: pipeline.NewRequest(path), Response: pipeline.Next()}
}

func TestRequestID(t *testing.T) {
	h := RequestID()
	c := runContext("/")

	result, err := h(context.Background(), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Continue {
		t.Error("RequestID should continue the run")
	}
	if result.Response == nil || result.Response.Header.Get(RequestIDHeader) == "" {
		t.Error("expected a request ID header on the replacement response")
	}
}

func TestAccessLog_Continues(t *testing.T) {
	h := AccessLog(slog.New(slog.NewTextHandler(io.Discard, nil)))

	result, err := h(context.Background(), runContext("/api"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Continue || result.Response != nil {
		t.Error("AccessLog must continue without replacing the response")
	}
}

func TestSetHeaders(t *testing.T) {
	h := SetHeaders(map[string]string{"X-Frame-Options": "DENY", "X-Powered-By": "runner"})

	result, err := h(context.Background(), runContext("/"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Response.Header.Get("X-Frame-Options") != "DENY" {
		t.Error("expected X-Frame-Options header")
	}
	if !result.Response.PassThrough() {
		t.Error("header-only stage should preserve the pass-through marker")
	}
}

func TestRedirectTo(t *testing.T) {
	h := RedirectTo(0, "/login")

	result, _ := h(context.Background(), runContext("/account"))
	if result.Continue {
		t.Error("redirect should stop the run")
	}
	if result.Response.Status != http.StatusTemporaryRedirect {
		t.Errorf("expected 307, got %d", result.Response.Status)
	}
	if result.Response.Header.Get("Location") != "/login" {
		t.Error("expected Location header")
	}
}

func TestDeny(t *testing.T) {
	h := Deny("")

	result, _ := h(context.Background(), runContext("/admin"))
	if result.Continue {
		t.Error("deny should stop the run")
	}
	if result.Response.Status != http.StatusForbidden {
		t.Errorf("expected 403, got %d", result.Response.Status)
	}
}

func TestMaintenance(t *testing.T) {
	h := Maintenance("down for upgrades")

	result, _ := h(context.Background(), runContext("/"))
	if result.Response.Status != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", result.Response.Status)
	}
	if result.Response.Header.Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
	if result.Response.Body != "down for upgrades" {
		t.Errorf("unexpected body: %q", result.Response.Body)
	}
}
