package luasrc

import (
	"context"
	"fmt"
	"io"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/yndnr/myke/internal/cli/output"
	"github.com/yndnr/myke/internal/core/service"
	"github.com/yndnr/myke/internal/runner"
	"github.com/yndnr/myke/internal/telemetry/logger"
	"github.com/yndnr/myke/internal/textio"
)

// ModuleName is the name Mykefiles use with require.
const ModuleName = "myke"

// Host is what Mykefiles reach through the myke module besides the
// registry: nested imports and remote modules.
type Host interface {
	ImportFile(ctx context.Context, path string) error
	ImportModule(ctx context.Context, name string) error
	InstallModule(ctx context.Context, url string) error
}

// Runtime evaluates Mykefiles into a registry.
type Runtime struct {
	L *lua.LState

	registry *service.Registry
	runner   *runner.Runner
	host     Host
	fetcher  textio.Fetcher
	stdout   io.Writer
	format   output.Format
	prog     string
	logger   logger.Logger

	source string
	closed bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithHost enables myke.import, myke.import_module and myke.install_module.
func WithHost(h Host) Option {
	return func(rt *Runtime) {
		rt.host = h
	}
}

// WithRunner sets the runner behind myke.sh.
func WithRunner(r *runner.Runner) Option {
	return func(rt *Runtime) {
		rt.runner = r
	}
}

// WithFetcher sets the client behind myke.read.url.
func WithFetcher(f textio.Fetcher) Option {
	return func(rt *Runtime) {
		rt.fetcher = f
	}
}

// WithStdout sets where myke.echo writes.
func WithStdout(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.stdout = w
	}
}

// WithOutput sets the task listing format and program name used by
// myke.echo.tasks.
func WithOutput(format output.Format, prog string) Option {
	return func(rt *Runtime) {
		rt.format = format
		rt.prog = prog
	}
}

// WithLogger sets the runtime logger.
func WithLogger(l logger.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// New creates a Runtime that registers tasks into reg.
func New(reg *service.Registry, opts ...Option) *Runtime {
	rt := &Runtime{
		registry: reg,
		stdout:   os.Stdout,
		format:   output.FormatTable,
		prog:     "myke",
		logger:   logger.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.runner == nil {
		rt.runner = runner.New(runner.WithLogger(rt.logger))
	}

	rt.L = lua.NewState()
	registerErrorType(rt.L)
	mod := rt.module()
	rt.L.PreloadModule(ModuleName, func(L *lua.LState) int {
		L.Push(mod)
		return 1
	})
	rt.L.SetGlobal(ModuleName, mod)
	return rt
}

// Load evaluates the Lua file at path. Tasks it registers without an
// explicit source are attributed to source.
func (rt *Runtime) Load(ctx context.Context, path, source string) error {
	if rt.closed {
		return ErrRuntimeClosed
	}
	fn, err := rt.L.LoadFile(path)
	if err != nil {
		return unwrapError(err)
	}
	return rt.eval(ctx, fn, source)
}

// LoadString evaluates a chunk of Lua code.
func (rt *Runtime) LoadString(ctx context.Context, code, source string) error {
	if rt.closed {
		return ErrRuntimeClosed
	}
	fn, err := rt.L.LoadString(code)
	if err != nil {
		return unwrapError(err)
	}
	return rt.eval(ctx, fn, source)
}

func (rt *Runtime) eval(ctx context.Context, fn *lua.LFunction, source string) error {
	prev := rt.source
	rt.source = source
	defer func() { rt.source = prev }()

	_, err := rt.call(ctx, fn, 0)
	return err
}

// call runs fn in protected mode with ctx attached and returns nret
// converted results.
func (rt *Runtime) call(ctx context.Context, fn *lua.LFunction, nret int, args ...lua.LValue) (_ []lua.LValue, err error) {
	if rt.closed {
		return nil, ErrRuntimeClosed
	}
	L := rt.L

	prev := L.Context()
	L.SetContext(ctx)
	defer func() {
		if prev != nil {
			L.SetContext(prev)
		} else {
			L.RemoveContext()
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	if err := L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, args...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, unwrapError(err)
	}

	out := make([]lua.LValue, nret)
	for i := range nret {
		out[i] = L.Get(-nret + i)
	}
	L.Pop(nret)
	return out, nil
}

// currentContext returns the context of the running call.
func (rt *Runtime) currentContext() context.Context {
	if ctx := rt.L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Close releases the Lua state. Tasks registered through this Runtime
// fail with ErrRuntimeClosed afterwards.
func (rt *Runtime) Close() {
	if rt.closed {
		return
	}
	rt.closed = true
	rt.L.Close()
}
