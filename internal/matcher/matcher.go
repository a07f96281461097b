// Package matcher matches filesystem paths against glob and regex patterns.
// Globs are matched against the base name of a path, regular expressions
// against the whole path.
package matcher

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/agentstation/propscan/pkg/errors"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto attempts to detect the pattern type.
	Auto
)

// regexPrefix forces a pattern to be read as a regular expression.
const regexPrefix = "re:"

// Matcher matches paths against one compiled pattern.
type Matcher struct {
	pattern     string
	patternType PatternType
	compiled    *regexp.Regexp
}

// New compiles pattern. With Auto, a "re:" prefix or regex metacharacters
// select Regex; anything else is a glob.
func New(patternType PatternType, pattern string) (*Matcher, error) {
	if patternType == Auto {
		pattern, patternType = detectPatternType(pattern)
	}

	m := &Matcher{pattern: pattern, patternType: patternType}
	switch patternType {
	case Glob:
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
	case Regex:
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		m.compiled = compiled
	default:
		return nil, fmt.Errorf("unsupported pattern type: %v", patternType)
	}
	return m, nil
}

// Match reports whether path matches the pattern.
func (m *Matcher) Match(path string) bool {
	switch m.patternType {
	case Glob:
		matched, _ := filepath.Match(m.pattern, filepath.Base(path))
		return matched
	case Regex:
		return m.compiled.MatchString(path)
	default:
		return false
	}
}

// Pattern returns the pattern string, without any "re:" prefix.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// Type returns the pattern type being used.
func (m *Matcher) Type() PatternType {
	return m.patternType
}

// detectPatternType strips a "re:" prefix or guesses from metacharacters
// that globs do not use.
func detectPatternType(pattern string) (string, PatternType) {
	if rest, ok := strings.CutPrefix(pattern, regexPrefix); ok {
		return rest, Regex
	}

	regexIndicators := []string{
		"^", "$", "\\d", "\\w", "\\s", "(?:", "(?i)", "{", "}", "+", "|", "(", ")",
	}
	for _, indicator := range regexIndicators {
		if strings.Contains(pattern, indicator) {
			return pattern, Regex
		}
	}
	return pattern, Glob
}

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Set matches a path when any of its patterns does. The zero Set matches
// nothing.
type Set struct {
	matchers []*Matcher
}

// NewSet compiles every pattern with Auto detection.
func NewSet(patterns ...string) (*Set, error) {
	set := &Set{matchers: make([]*Matcher, 0, len(patterns))}
	for _, pattern := range patterns {
		m, err := New(Auto, pattern)
		if err != nil {
			return nil, errors.NewValidationError("exclude", pattern, err.Error())
		}
		set.matchers = append(set.matchers, m)
	}
	return set, nil
}

// Match returns the first matching pattern, if any.
func (s *Set) Match(path string) (*Matcher, bool) {
	if s == nil {
		return nil, false
	}
	for _, m := range s.matchers {
		if m.Match(path) {
			return m, true
		}
	}
	return nil, false
}

// Len returns the number of patterns.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.matchers)
}
