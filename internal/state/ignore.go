package state

import "github.com/fancybread-com/cursor-plans/internal/fsops"

// DefaultIgnorePatterns are the paths capture never records: the state
// directory itself, VCS internals, plan files, and common build litter.
var DefaultIgnorePatterns = []string{
	".devstate",
	".git",
	".devplan.yaml",
	"node_modules",
	"__pycache__",
	".venv",
	"venv",
	".DS_Store",
	"*.pyc",
	"*.devplan",
}

// IgnoreSet decides which relative paths a capture walk skips. Patterns
// use fsops.MatchGlob semantics: bare patterns match any path element,
// patterns with a separator match the whole relative path.
type IgnoreSet struct {
	patterns []string
}

// NewIgnoreSet builds an IgnoreSet from the given patterns only.
func NewIgnoreSet(patterns ...string) *IgnoreSet {
	s := &IgnoreSet{}
	s.Add(patterns...)
	return s
}

// DefaultIgnores returns an IgnoreSet preloaded with
// DefaultIgnorePatterns.
func DefaultIgnores() *IgnoreSet {
	return NewIgnoreSet(DefaultIgnorePatterns...)
}

// Add appends patterns to the set.
func (s *IgnoreSet) Add(patterns ...string) {
	for _, p := range patterns {
		if p != "" {
			s.patterns = append(s.patterns, p)
		}
	}
}

// Match reports whether relPath is ignored.
func (s *IgnoreSet) Match(relPath string) bool {
	for _, p := range s.patterns {
		if fsops.MatchGlob(p, relPath) {
			return true
		}
	}
	return false
}

// Patterns returns a copy of the configured patterns.
func (s *IgnoreSet) Patterns() []string {
	out := make([]string, len(s.patterns))
	copy(out, s.patterns)
	return out
}
