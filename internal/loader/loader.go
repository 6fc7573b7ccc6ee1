package loader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yndnr/myke/internal/cli/output"
	"github.com/yndnr/myke/internal/core/domain"
	"github.com/yndnr/myke/internal/core/service"
	"github.com/yndnr/myke/internal/infra/fetch"
	"github.com/yndnr/myke/internal/loader/luasrc"
	"github.com/yndnr/myke/internal/loader/yamlsrc"
	"github.com/yndnr/myke/internal/runner"
	"github.com/yndnr/myke/internal/telemetry/logger"
)

// Source evaluates one kind of Mykefile.
type Source interface {
	// Name returns the source name ("lua", "yaml").
	Name() string

	// Patterns returns base-name globs of the files this source handles.
	Patterns() []string

	// Load evaluates path, attributing its tasks to source.
	Load(ctx context.Context, path, source string) error
}

// Loader imports Mykefiles and modules into a registry.
type Loader struct {
	registry *service.Registry
	runner   *runner.Runner
	fetcher  *fetch.Client
	lua      *luasrc.Runtime
	sources  []Source
	logger   logger.Logger

	stdout io.Writer
	format output.Format
	prog   string

	modulesDir  string
	modulePaths []string
	update      bool

	// imported maps each file or module key to its load error, nil on
	// success. Failed loads stay recorded since their tasks may be
	// partly registered.
	imported map[string]error
	files    []string
}

// New creates a Loader feeding reg.
func New(reg *service.Registry, opts ...Option) *Loader {
	l := &Loader{
		registry:   reg,
		logger:     logger.Default(),
		stdout:     os.Stdout,
		format:     output.FormatTable,
		prog:       "myke",
		modulesDir: DefaultModulesDir,
		imported:   make(map[string]error),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.runner == nil {
		l.runner = runner.New(runner.WithLogger(l.logger))
	}
	if l.fetcher == nil {
		l.fetcher = fetch.NewClient()
	}
	if l.modulePaths == nil {
		l.modulePaths = DefaultModulePaths(l.modulesDir)
	}

	l.lua = luasrc.New(reg,
		luasrc.WithHost(l),
		luasrc.WithRunner(l.runner),
		luasrc.WithFetcher(l.fetcher),
		luasrc.WithStdout(l.stdout),
		luasrc.WithOutput(l.format, l.prog),
		luasrc.WithLogger(l.logger),
	)
	l.sources = []Source{
		yamlsrc.New(reg, l, l.logger),
		&luaSource{rt: l.lua},
	}
	return l
}

// Registry returns the registry the loader feeds.
func (l *Loader) Registry() *service.Registry {
	return l.registry
}

// Files returns the absolute paths of the imported files in import order.
func (l *Loader) Files() []string {
	return append([]string(nil), l.files...)
}

// Close releases the Lua runtime. Tasks loaded from Lua files stop
// working afterwards.
func (l *Loader) Close() {
	l.lua.Close()
}

// ImportFile evaluates the Mykefile at path. A directory imports its
// Mykefile. Importing a file twice is a no-op, or returns the first
// import's error when it failed.
func (l *Loader) ImportFile(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.ErrMykefileNotFound.WithDetails(path).WithCause(err)
	}
	info, err := os.Stat(abs)
	if err == nil && info.IsDir() {
		abs = filepath.Join(abs, DefaultMykefile)
		info, err = os.Stat(abs)
	}
	if err != nil {
		return domain.ErrMykefileNotFound.WithDetails(path).WithCause(err)
	}
	if err, ok := l.imported[abs]; ok {
		l.logger.Debug("mykefile already imported", "path", abs, "failed", err != nil)
		return err
	}

	src := l.sourceFor(abs)
	rel := relative(abs)
	l.imported[abs] = nil
	mark := l.registry.Mark()

	l.logger.Debug("importing mykefile", "path", rel, "source", src.Name())
	if err := src.Load(ctx, abs, rel); err != nil {
		err = loadError(rel, err)
		l.imported[abs] = err
		return err
	}
	if l.registry.Since(mark) == 0 {
		return domain.ErrNoTasksFound.WithDetails(rel)
	}
	l.files = append(l.files, abs)
	return nil
}

// loadError keeps domain, process and context errors intact and wraps
// everything else in ErrLoadFailed.
func loadError(path string, err error) error {
	var de *domain.DomainError
	var pe *domain.ProcessError
	switch {
	case errors.As(err, &de), errors.As(err, &pe):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return domain.ErrLoadFailed.WithDetails(path).WithCause(err)
}

func (l *Loader) sourceFor(path string) Source {
	base := filepath.Base(path)
	for _, src := range l.sources {
		for _, pattern := range src.Patterns() {
			if ok, _ := filepath.Match(pattern, base); ok {
				return src
			}
		}
	}
	// Mykefile, *.lua and extensionless files
	return l.sources[len(l.sources)-1]
}

// relative returns path relative to the working directory when it lies
// beneath it.
func relative(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

type luaSource struct {
	rt *luasrc.Runtime
}

func (s *luaSource) Name() string { return "lua" }

func (s *luaSource) Patterns() []string {
	return []string{DefaultMykefile, "*.lua"}
}

func (s *luaSource) Load(ctx context.Context, path, source string) error {
	return s.rt.Load(ctx, path, source)
}
