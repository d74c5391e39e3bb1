package matcher

import (
	"strings"
	"testing"
)

func TestMatch_LiteralExactAndPrefix(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/api/users", "/api/users", true},
		{"/api/users", "/api/users/1", true},
		{"/api/users", "/api/posts", false},
		{"/api", "/api/users", true},
		{"/dashboard", "/api", false},
	}

	for _, tt := range tests {
		if got := Match(tt.pattern, tt.path); got != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestMatch_Wildcard(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"*", "/anything", true},
		{"*", "/", true},
		{"/api/*", "/api/users", true},
		{"/api/*", "/api/posts", true},
		{"/api/*", "/api/comments/123", true},
		{"/api/*", "/dashboard", false},
		{"/api/v?", "/api/v1", true},
		{"/api/v?", "/api/v12", false},
	}

	for _, tt := range tests {
		if got := Match(tt.pattern, tt.path); got != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestMatch_Parameters(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/api/users/:id", "/api/users/123", true},
		{"/api/users/:id", "/api/users/abc", true},
		{"/api/users/:id", "/api/users", false},
		{"/api/users/:id", "/api/users/1/posts", false},
		{"/users/[id]", "/users/123", true},
		{"/users/[id]", "/users", false},
		{"/users/[id]/posts/:postId", "/users/1/posts/2", true},
		// A parameter token combined with a literal "*" stays on the
		// parameter branch: "*" spans path separators there.
		{"/users/:id/*", "/users/1/a/b/c", true},
		{"/users/:id/*", "/users/1", false},
	}

	for _, tt := range tests {
		if got := Match(tt.pattern, tt.path); got != tt.want {
			t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestSelector_NilAppliesToAll(t *testing.T) {
	var s *Selector
	for _, path := range []string{"/", "/api", "/dashboard"} {
		if !s.Matches(path) {
			t.Errorf("nil selector should match %q", path)
		}
	}
}

func TestSelector_NegativePrecedence(t *testing.T) {
	s := Patterns("!/api/public/*", "/api/*")

	if !s.Matches("/api/users") {
		t.Error("expected /api/users to match")
	}
	if !s.Matches("/api/posts") {
		t.Error("expected /api/posts to match")
	}
	if s.Matches("/api/public/data") {
		t.Error("negative pattern should veto /api/public/data")
	}
}

func TestSelector_NegativeOnlyIsExcludeList(t *testing.T) {
	s := Patterns("!/internal/*")

	if !s.Matches("/api/users") {
		t.Error("negative-only selector should match paths outside the exclude list")
	}
	if s.Matches("/internal/metrics") {
		t.Error("negative-only selector should exclude /internal/metrics")
	}
}

func TestSelector_PositiveList(t *testing.T) {
	s := Patterns("/api/*", "/admin")

	if !s.Matches("/admin/settings") {
		t.Error("expected prefix match on /admin")
	}
	if s.Matches("/dashboard") {
		t.Error("expected no match for /dashboard")
	}
}

func TestSelector_Predicate(t *testing.T) {
	s := Predicate(func(path string) bool {
		return strings.HasSuffix(path, ".json")
	})

	if !s.Matches("/data/feed.json") {
		t.Error("predicate should match .json paths")
	}
	if s.Matches("/data/feed.xml") {
		t.Error("predicate should reject .xml paths")
	}
}

func TestCompile_InvalidRegexpMatchesNothing(t *testing.T) {
	// Unescaped metacharacters can produce an invalid expression once
	// wildcards are expanded.
	if Match("/api/(*", "/api/x") {
		t.Error("invalid pattern should match nothing")
	}
}
