package loader

import (
	"io"

	"github.com/yndnr/myke/internal/cli/output"
	"github.com/yndnr/myke/internal/infra/fetch"
	"github.com/yndnr/myke/internal/runner"
	"github.com/yndnr/myke/internal/telemetry/logger"
)

// Option configures a Loader.
type Option func(*Loader)

// WithRunner sets the runner used by myke.sh.
func WithRunner(r *runner.Runner) Option {
	return func(l *Loader) {
		l.runner = r
	}
}

// WithFetcher sets the HTTP client for remote modules and documents.
func WithFetcher(c *fetch.Client) Option {
	return func(l *Loader) {
		l.fetcher = c
	}
}

// WithModulesDir sets where remote modules are downloaded.
func WithModulesDir(dir string) Option {
	return func(l *Loader) {
		if dir != "" {
			l.modulesDir = dir
		}
	}
}

// WithModulePaths sets the directories searched for dotted module names.
func WithModulePaths(paths ...string) Option {
	return func(l *Loader) {
		if len(paths) > 0 {
			l.modulePaths = paths
		}
	}
}

// WithUpdateModules re-downloads remote modules that already exist.
func WithUpdateModules(update bool) Option {
	return func(l *Loader) {
		l.update = update
	}
}

// WithStdout sets where Mykefile output helpers write.
func WithStdout(w io.Writer) Option {
	return func(l *Loader) {
		l.stdout = w
	}
}

// WithOutput sets the task listing format and program name.
func WithOutput(format output.Format, prog string) Option {
	return func(l *Loader) {
		l.format = format
		l.prog = prog
	}
}

// WithLogger sets the loader logger.
func WithLogger(lg logger.Logger) Option {
	return func(l *Loader) {
		l.logger = lg
	}
}
