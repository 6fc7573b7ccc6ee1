package service

import (
	"path"
	"strings"

	"github.com/yndnr/myke/internal/core/domain"
)

// Match reports whether t matches any glob pattern. A pattern matches
// the task key ("docker/build"), the bare task name, or the key of any
// ancestor, so "docker" selects the whole docker namespace.
// An empty pattern list matches everything.
func Match(t *domain.Task, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	p := t.Path()
	for _, pattern := range patterns {
		pattern = strings.Trim(strings.ReplaceAll(strings.TrimSpace(pattern), " ", "/"), "/")
		if pattern == "" {
			continue
		}
		if ok, _ := path.Match(pattern, t.Name); ok {
			return true
		}
		for i := len(p); i > 0; i-- {
			if ok, _ := path.Match(pattern, strings.Join(p[:i], "/")); ok {
				return true
			}
		}
	}
	return false
}

// ValidatePatterns rejects malformed glob patterns.
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if _, err := path.Match(pattern, ""); err != nil {
			return domain.ErrInvalidArgument.WithDetailsf("bad filter pattern %q", pattern)
		}
	}
	return nil
}

// Filter returns a new registry holding the tasks that match patterns.
// The root task is carried over unfiltered since it is never addressed by name.
func (r *Registry) Filter(patterns []string) (*Registry, error) {
	if err := ValidatePatterns(patterns); err != nil {
		return nil, err
	}

	out := NewRegistry(WithRunner(r.runner), WithLogger(r.logger), WithDefaultSource(r.source))
	for _, t := range r.Tasks() {
		if Match(t, patterns) {
			out.tasks[t.Key()] = t
		}
	}
	if root := r.Root(); root != nil {
		out.root = root
	}
	out.added = len(out.tasks)
	if out.root != nil {
		out.added++
	}

	r.logger.Debug("tasks filtered", "patterns", patterns, "before", r.Len(), "after", out.Len())
	return out, nil
}
