package service

import (
	"github.com/yndnr/myke/internal/core/domain"
	"github.com/yndnr/myke/internal/telemetry/logger"
)

// Option configures a Registry.
type Option func(*Registry)

// WithRunner sets the runner used by shell tasks.
func WithRunner(r ScriptRunner) Option {
	return func(reg *Registry) {
		reg.runner = r
	}
}

// WithLogger sets the registry logger.
func WithLogger(l logger.Logger) Option {
	return func(reg *Registry) {
		reg.logger = l
	}
}

// WithDefaultSource sets the Source recorded on tasks that do not set one.
func WithDefaultSource(src string) Option {
	return func(reg *Registry) {
		reg.source = src
	}
}

// TaskOption configures a task at registration.
type TaskOption func(*domain.Task)

// WithParents places the task under the given namespace path.
func WithParents(parents ...string) TaskOption {
	return func(t *domain.Task) {
		t.Parents = append([]string(nil), parents...)
	}
}

// WithDescription sets the help text.
func WithDescription(desc string) TaskOption {
	return func(t *domain.Task) {
		t.Description = desc
	}
}

// WithParams declares the task parameters.
func WithParams(params ...domain.Param) TaskOption {
	return func(t *domain.Task) {
		t.Params = append(t.Params, params...)
	}
}

// AsRoot marks the task as the default task.
func AsRoot() TaskOption {
	return func(t *domain.Task) {
		t.Root = true
	}
}

// WithSource records where the task was defined.
func WithSource(src string) TaskOption {
	return func(t *domain.Task) {
		t.Source = src
	}
}

// WithShellOptions sets how a shell task runs its script.
func WithShellOptions(opts domain.ShellOptions) TaskOption {
	return func(t *domain.Task) {
		t.Shell = opts
	}
}
