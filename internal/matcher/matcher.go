// Package matcher decides which request paths a pipeline stage applies to.
//
// A stage's selector is one of three kinds: a single pattern, an ordered
// list of patterns, or an arbitrary predicate over the path. Patterns
// support Next.js-style parameter segments (":id" or "[id]"), wildcards
// ("*", "?"), and negation ("!" prefix).
package matcher

import (
	"regexp"
	"strings"
)

// Selector is the rule that determines whether a stage applies to a path.
// The three kinds are constructed via Pattern, Patterns, and Predicate;
// a nil *Selector applies to every path.
type Selector struct {
	kind      selectorKind
	patterns  []compiledPattern
	predicate func(path string) bool
}

type selectorKind int

const (
	kindPatterns selectorKind = iota
	kindPredicate
)

// Pattern builds a selector from a single pattern string.
func Pattern(p string) *Selector {
	return Patterns(p)
}

// Patterns builds a selector from an ordered list of pattern strings.
// Patterns prefixed with "!" are negative: a path matching any negative
// pattern never applies, regardless of positive matches. A list made only
// of negative patterns acts as an exclude-list over an implicit
// match-everything.
func Patterns(ps ...string) *Selector {
	s := &Selector{kind: kindPatterns, patterns: make([]compiledPattern, 0, len(ps))}
	for _, p := range ps {
		s.patterns = append(s.patterns, compile(p))
	}
	return s
}

// Predicate builds a selector from an arbitrary path predicate.
// The predicate has full discretion; no pattern semantics apply.
func Predicate(fn func(path string) bool) *Selector {
	return &Selector{kind: kindPredicate, predicate: fn}
}

// Matches reports whether the selector applies to the given path.
func (s *Selector) Matches(path string) bool {
	if s == nil {
		return true
	}

	if s.kind == kindPredicate {
		return s.predicate != nil && s.predicate(path)
	}

	positives := 0
	positiveHit := false
	for _, p := range s.patterns {
		if p.negate {
			// A negative match vetoes the stage unconditionally.
			if p.matches(path) {
				return false
			}
			continue
		}
		positives++
		if p.matches(path) {
			positiveHit = true
		}
	}

	if positives == 0 {
		return true
	}
	return positiveHit
}

// Match reports whether a single pattern (without list or negation
// semantics) matches the path.
func Match(pattern, path string) bool {
	c := compile(pattern)
	c.negate = false
	return c.matches(path)
}

type matchKind int

const (
	matchAll matchKind = iota
	matchRegexp
	matchPrefix
	matchNever
)

// compiledPattern is a pattern classified and compiled once, at selector
// construction time.
type compiledPattern struct {
	negate  bool
	kind    matchKind
	literal string
	re      *regexp.Regexp
}

func (c compiledPattern) matches(path string) bool {
	switch c.kind {
	case matchAll:
		return true
	case matchRegexp:
		return c.re.MatchString(path)
	case matchPrefix:
		return path == c.literal || strings.HasPrefix(path, c.literal)
	default:
		return false
	}
}

// paramToken finds the next parameter segment token (":name" or "[name]")
// in the pattern, returning its bounds or (-1, -1).
func paramToken(p string) (start, end int) {
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case ':':
			j := i + 1
			for j < len(p) && p[j] != '/' {
				j++
			}
			if j > i+1 {
				return i, j
			}
		case '[':
			if j := strings.IndexByte(p[i:], ']'); j > 1 {
				return i, i + j + 1
			}
		}
	}
	return -1, -1
}

// compile classifies a pattern according to the matching precedence:
// literal "*", parameter-token regexp, generic-wildcard regexp, then
// literal prefix. Regex metacharacters in literal text are deliberately
// not escaped; pattern authors are responsible for quoting.
func compile(pattern string) compiledPattern {
	c := compiledPattern{}
	if strings.HasPrefix(pattern, "!") {
		c.negate = true
		pattern = pattern[1:]
	}
	c.literal = pattern

	if pattern == "*" {
		c.kind = matchAll
		return c
	}

	if start, _ := paramToken(pattern); start >= 0 {
		// Parameter tokens become non-slash wildcards; any literal "*"
		// in the same pattern becomes an unrestricted wildcard. This
		// branch wins even when the pattern also contains "*".
		var expr strings.Builder
		rest := pattern
		for {
			s, e := paramToken(rest)
			if s < 0 {
				expr.WriteString(strings.ReplaceAll(rest, "*", ".*"))
				break
			}
			expr.WriteString(strings.ReplaceAll(rest[:s], "*", ".*"))
			expr.WriteString("[^/]+")
			rest = rest[e:]
		}
		return compileRegexp(c, expr.String())
	}

	if strings.ContainsAny(pattern, "*?") {
		expr := strings.ReplaceAll(pattern, "*", ".*")
		expr = strings.ReplaceAll(expr, "?", ".")
		return compileRegexp(c, expr)
	}

	c.kind = matchPrefix
	return c
}

func compileRegexp(c compiledPattern, expr string) compiledPattern {
	re, err := regexp.Compile("^" + expr + "$")
	if err != nil {
		// Unquoted metacharacters can yield an invalid expression; such
		// a pattern matches nothing.
		c.kind = matchNever
		return c
	}
	c.kind = matchRegexp
	c.re = re
	return c
}
