package myke

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/yndnr/myke/internal/cli/command"
	"github.com/yndnr/myke/internal/core/domain"
	"github.com/yndnr/myke/internal/core/service"
	"github.com/yndnr/myke/internal/infra/shutdown"
	"github.com/yndnr/myke/internal/runner"
	"github.com/yndnr/myke/internal/telemetry/logger"
)

type (
	// Registry holds the tasks of a program.
	Registry = service.Registry
	// TaskOption configures a task passed to Registry.Add or Registry.Shell.
	TaskOption = service.TaskOption
	// Task is a registered command.
	Task = domain.Task
	// Param declares a flag or positional argument of a task.
	Param = domain.Param
	// ParamType is the value type of a Param.
	ParamType = domain.ParamType
	// Args carries the parsed arguments into a handler.
	Args = domain.Args
	// Handler runs a task.
	Handler = domain.Handler
	// ScriptFunc returns the shell script of a shell task.
	ScriptFunc = domain.ScriptFunc
	// Script is a shell string or an argv list.
	Script = domain.Script
	// ShellOptions controls how a shell task runs.
	ShellOptions = domain.ShellOptions
	// Result is the outcome of a finished command.
	Result = runner.Result
)

// Parameter types.
const (
	String  = domain.ParamString
	Int     = domain.ParamInt
	Float   = domain.ParamFloat
	Bool    = domain.ParamBool
	Strings = domain.ParamStrings
	Ints    = domain.ParamInts
	Floats  = domain.ParamFloats
)

// Task options.
var (
	// WithParents places the task under a command group.
	WithParents = service.WithParents
	// WithDescription sets the help text.
	WithDescription = service.WithDescription
	// WithParams declares the task parameters.
	WithParams = service.WithParams
	// WithShellOptions sets how a shell task runs.
	WithShellOptions = service.WithShellOptions
	// AsRoot makes the task run when no task name is given.
	AsRoot = service.AsRoot
)

// ShutdownTimeout bounds the cleanup hooks run by Main.
const ShutdownTimeout = 5 * time.Second

// New creates an empty registry whose shell tasks run on the process's
// standard streams.
func New() *Registry {
	return service.NewRegistry(
		service.WithRunner(runner.New(runner.WithLogger(logger.Nop()))),
		service.WithDefaultSource(progName()),
	)
}

// Run dispatches args (without the program name) against reg and the
// Mykefiles found by the usual lookup. reg may be nil.
func Run(ctx context.Context, reg *Registry, args []string) error {
	return newDispatcher(reg, nil).Run(ctx, args)
}

// Main runs os.Args against reg and exits. A failing shell command
// exits with its status; an interrupt exits with 128 plus the signal.
func Main(reg *Registry) {
	os.Exit(execute(reg, os.Args[1:], os.Stderr))
}

func execute(reg *Registry, args []string, stderr io.Writer) int {
	h := shutdown.NewHandler(ShutdownTimeout)
	ctx := h.Start(context.Background())

	err := newDispatcher(reg, h).Run(ctx, args)
	if serr := h.Shutdown(); serr != nil {
		fmt.Fprintf(stderr, "shutdown: %v\n", serr)
	}

	if sig, ok := h.Signal().(syscall.Signal); ok {
		return 128 + int(sig)
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return domain.ExitCode(err)
	}
	return 0
}

func newDispatcher(reg *Registry, h *shutdown.Handler) *command.Dispatcher {
	opts := []command.Option{command.WithProg(progName())}
	if reg != nil {
		opts = append(opts, command.WithTasks(reg))
	}
	if h != nil {
		opts = append(opts, command.WithShutdown(h))
	}
	return command.New(opts...)
}

func progName() string {
	if len(os.Args) == 0 {
		return "myke"
	}
	return filepath.Base(os.Args[0])
}

var sh = runner.New(runner.WithLogger(logger.Nop()))

// Sh runs cmdline with the system shell, echoing its output. A non-zero
// exit status is an error.
func Sh(ctx context.Context, cmdline string) (*Result, error) {
	return sh.Sh(ctx, cmdline, domain.DefaultShellOptions())
}

// ShWith runs cmdline with opts.
func ShWith(ctx context.Context, cmdline string, opts ShellOptions) (*Result, error) {
	return sh.Sh(ctx, cmdline, opts)
}

// ShStdout runs cmdline and returns its trimmed standard output.
func ShStdout(ctx context.Context, cmdline string) (string, error) {
	return sh.ShStdout(ctx, cmdline)
}

// ShStdoutLines runs cmdline and returns the non-empty lines of its
// standard output.
func ShStdoutLines(ctx context.Context, cmdline string) ([]string, error) {
	return sh.ShStdoutLines(ctx, cmdline)
}
