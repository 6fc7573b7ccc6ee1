package domain

import (
	"context"
	"slices"
	"strings"
)

// Handler is the callable behind a task.
type Handler func(ctx context.Context, args Args) error

// ScriptFunc produces the command a shell task runs.
type ScriptFunc func(ctx context.Context, args Args) (any, error)

// Kind distinguishes plain tasks from shell tasks.
type Kind string

const (
	KindFunc  Kind = "func"
	KindShell Kind = "shell"
)

// Task is a named, invocable unit of work.
type Task struct {
	Name        string   `json:"name" yaml:"name"`
	Parents     []string `json:"parents,omitempty" yaml:"parents,omitempty"`
	Root        bool     `json:"root,omitempty" yaml:"root,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Source      string   `json:"source,omitempty" yaml:"source,omitempty"`
	Kind        Kind     `json:"kind" yaml:"kind"`
	Params      []Param  `json:"params,omitempty" yaml:"params,omitempty"`

	Handler Handler      `json:"-" yaml:"-"`
	Script  ScriptFunc   `json:"-" yaml:"-"`
	Shell   ShellOptions `json:"-" yaml:"-"`
}

// Path returns the namespace path including the task name.
func (t *Task) Path() []string {
	p := make([]string, 0, len(t.Parents)+1)
	p = append(p, t.Parents...)
	return append(p, t.Name)
}

// Key is the slash-joined path that identifies the task in a registry.
func (t *Task) Key() string {
	return strings.Join(t.Path(), "/")
}

// DisplayName is the space-joined path as typed on the command line.
func (t *Task) DisplayName() string {
	return strings.Join(t.Path(), " ")
}

// Param returns the declared parameter named name.
func (t *Task) Param(name string) (Param, bool) {
	for _, p := range t.Params {
		if p.Name == name || p.FlagName() == CommandName(name) {
			return p, true
		}
	}
	return Param{}, false
}

// Validate normalizes names and parameters in place.
func (t *Task) Validate() error {
	t.Name = CommandName(t.Name)
	if t.Name == "" {
		return ErrInvalidTask.WithDetails("task name is empty")
	}
	t.Parents = slices.Clone(t.Parents)
	for i, p := range t.Parents {
		t.Parents[i] = CommandName(p)
		if t.Parents[i] == "" {
			return ErrInvalidTask.WithDetailsf("task %q has an empty parent name", t.Name)
		}
	}
	if t.Kind == "" {
		t.Kind = KindFunc
	}
	if t.Handler == nil {
		return ErrInvalidTask.WithDetailsf("task %q has no handler", t.Name)
	}

	seen := make(map[string]bool, len(t.Params))
	for i := range t.Params {
		if err := t.Params[i].Validate(); err != nil {
			return ErrInvalidTask.WithDetailsf("task %q", t.Name).WithCause(err)
		}
		name := t.Params[i].FlagName()
		if seen[name] {
			return ErrInvalidTask.WithDetailsf("task %q declares parameter %q twice", t.Name, name)
		}
		seen[name] = true
	}
	return nil
}

// SplitPath splits a "docker/build" or "docker build" key into a path.
func SplitPath(key string) []string {
	return strings.FieldsFunc(key, func(r rune) bool {
		return r == '/' || r == ' '
	})
}
