package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/yndnr/myke/internal/core/domain"
	"github.com/yndnr/myke/internal/telemetry/logger"
)

// DefaultShell runs string scripts when no executable is configured.
const DefaultShell = "/bin/sh"

// Result is the outcome of one command.
type Result struct {
	Cmd    string
	Code   int
	Stdout string
	Stderr string
}

// Runner executes scripts with fixed standard streams.
type Runner struct {
	shell  string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger logger.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithShell sets the default shell executable.
func WithShell(path string) Option {
	return func(r *Runner) {
		if path != "" {
			r.shell = path
		}
	}
}

// WithStdio replaces the standard streams.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdin = stdin
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithLogger sets the runner logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// New creates a Runner bound to the process's standard streams.
func New(opts ...Option) *Runner {
	r := &Runner{
		shell:  DefaultShell,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunScript runs script and discards the result. It satisfies the
// registry's ScriptRunner interface.
func (r *Runner) RunScript(ctx context.Context, script domain.Script, opts domain.ShellOptions) error {
	_, err := r.Run(ctx, script, opts)
	return err
}

// Run executes script. With opts.Check a non-zero exit returns a
// *domain.ProcessError; without it the code is only reported in Result.
func (r *Runner) Run(ctx context.Context, script domain.Script, opts domain.ShellOptions) (*Result, error) {
	if !script.IsArgv() && strings.TrimSpace(script.Shell) == "" {
		return nil, domain.ErrInvalidScript.WithDetails("empty script")
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var cmd *exec.Cmd
	if script.IsArgv() {
		cmd = exec.CommandContext(ctx, script.Argv[0], script.Argv[1:]...)
	} else {
		shell := opts.Executable
		if shell == "" {
			shell = r.shell
		}
		cmd = exec.CommandContext(ctx, shell, "-c", script.Shell)
	}
	cmd.Dir = opts.Cwd
	cmd.Env = BuildEnv(opts)
	cmd.Stdin = r.stdin
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	switch {
	case opts.CaptureOutput && opts.Echo:
		cmd.Stdout = io.MultiWriter(r.stdout, &stdout)
		cmd.Stderr = io.MultiWriter(r.stderr, &stderr)
	case opts.CaptureOutput:
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	case opts.Echo:
		cmd.Stdout = r.stdout
		cmd.Stderr = r.stderr
	default:
		// output discarded
	}

	res := &Result{Cmd: script.String()}
	r.logger.WithContext(ctx).Debug("+ "+res.Cmd,
		"cwd", opts.Cwd,
		"env_update", logger.RedactEnv(opts.EnvUpdate),
		"timeout", opts.Timeout,
	)

	err := cmd.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	if err != nil {
		var ee *exec.ExitError
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded) && opts.Timeout > 0:
			res.Code = 124
			return res, domain.ErrCommandTimeout.WithDetailsf("%s (after %s)", res.Cmd, opts.Timeout)
		case ctx.Err() != nil:
			res.Code = 130
			return res, ctx.Err()
		case errors.As(err, &ee):
			res.Code = ee.ExitCode()
		default:
			res.Code = 127
			return res, domain.ErrProcessFailed.WithDetails(res.Cmd).WithCause(err)
		}
	}

	if res.Code != 0 && opts.Check {
		return res, &domain.ProcessError{
			Cmd:      res.Cmd,
			ExitCode: res.Code,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		}
	}
	return res, nil
}

// BuildEnv returns the child environment: opts.Env (or the current
// environment) with EnvUpdate applied and EnvUnset removed.
func BuildEnv(opts domain.ShellOptions) []string {
	env := make(map[string]string)
	var order []string
	set := func(k, v string) {
		if _, ok := env[k]; !ok {
			order = append(order, k)
		}
		env[k] = v
	}

	if opts.Env != nil {
		for k, v := range opts.Env {
			set(k, v)
		}
	} else {
		for _, kv := range os.Environ() {
			if k, v, ok := strings.Cut(kv, "="); ok {
				set(k, v)
			}
		}
	}
	for k, v := range opts.EnvUpdate {
		set(k, v)
	}
	for _, k := range opts.EnvUnset {
		delete(env, k)
	}

	out := make([]string, 0, len(env))
	for _, k := range order {
		if v, ok := env[k]; ok {
			out = append(out, k+"="+v)
		}
	}
	return out
}
