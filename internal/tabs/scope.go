package tabs

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Scope decides which tab URLs get a TabContext.
type Scope struct {
	patterns []string
}

// NewScope validates patterns. An empty pattern list puts every URL in scope.
func NewScope(patterns []string) (*Scope, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid scope pattern %q", p)
		}
	}
	return &Scope{patterns: append([]string(nil), patterns...)}, nil
}

// InScope reports whether url matches any pattern.
func (s *Scope) InScope(url string) bool {
	if len(s.patterns) == 0 {
		return true
	}
	if url == "" {
		return false
	}
	for _, p := range s.patterns {
		if ok, _ := doublestar.Match(p, url); ok {
			return true
		}
	}
	return false
}

// Patterns returns the configured globs.
func (s *Scope) Patterns() []string {
	return append([]string(nil), s.patterns...)
}
