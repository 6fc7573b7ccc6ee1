package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yndnr/myke/internal/cli/config"
	"github.com/yndnr/myke/internal/cli/output"
	"github.com/yndnr/myke/internal/cli/repl"
	"github.com/yndnr/myke/internal/core/domain"
	"github.com/yndnr/myke/internal/core/service"
	"github.com/yndnr/myke/internal/infra/buildinfo"
	"github.com/yndnr/myke/internal/infra/fetch"
	"github.com/yndnr/myke/internal/infra/shutdown"
	"github.com/yndnr/myke/internal/infra/tlsroots"
	"github.com/yndnr/myke/internal/loader"
	"github.com/yndnr/myke/internal/runner"
	"github.com/yndnr/myke/internal/telemetry/logger"
	"github.com/yndnr/myke/internal/textio"
)

// Dispatcher runs one myke command line.
type Dispatcher struct {
	prog     string
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	base     *service.Registry
	shutdown *shutdown.Handler

	// current is the open session closed by the shutdown hook.
	mu      sync.Mutex
	current *session
	hook    sync.Once
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithProg sets the program name shown in help and hints.
func WithProg(prog string) Option {
	return func(d *Dispatcher) {
		if prog != "" {
			d.prog = prog
		}
	}
}

// WithStdio replaces the standard streams.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(d *Dispatcher) {
		d.stdin = stdin
		d.stdout = stdout
		d.stderr = stderr
	}
}

// WithTasks adds the tasks of reg to every invocation, ahead of any
// Mykefile. Used by compiled Mykefiles.
func WithTasks(reg *service.Registry) Option {
	return func(d *Dispatcher) {
		d.base = reg
	}
}

// WithShutdown registers session cleanup with h so a signal still
// closes the Lua state.
func WithShutdown(h *shutdown.Handler) Option {
	return func(d *Dispatcher) {
		d.shutdown = h
	}
}

// New creates a Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		prog:   "myke",
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// session is the state of one load of all task sources.
type session struct {
	cfg      *config.Config
	format   output.Format
	loader   *loader.Loader
	registry *service.Registry
	root     *domain.Task

	closeOnce sync.Once
}

func (s *session) close() {
	s.closeOnce.Do(func() {
		if s.loader != nil {
			s.loader.Close()
		}
	})
}

// track makes sess the session closed on shutdown. The hook is
// registered once per Dispatcher, however often sources are reloaded.
func (d *Dispatcher) track(sess *session) {
	if d.shutdown == nil {
		return
	}
	d.mu.Lock()
	d.current = sess
	d.mu.Unlock()

	d.hook.Do(func() {
		d.shutdown.OnShutdown(func(context.Context) error {
			d.mu.Lock()
			cur := d.current
			d.mu.Unlock()
			if cur != nil {
				cur.close()
			}
			return nil
		})
	})
}

// Run dispatches args (without the program name).
func (d *Dispatcher) Run(ctx context.Context, args []string) error {
	inv, taskArgs, err := ParseInvocation(d.prog, args)
	if err != nil {
		return err
	}
	if inv.Version {
		fmt.Fprintf(d.stdout, "%s %s\n", d.prog, buildinfo.String())
		return nil
	}

	cfg, err := config.Load(inv.Config, inv.Overrides())
	if err != nil {
		return err
	}
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: d.stderr,
	})
	if err != nil {
		return domain.ErrInvalidConfig.WithCause(err)
	}
	ctx = logger.WithRunID(logger.WithLogger(ctx, log), logger.NewRunID())

	if inv.Create {
		path, err := textio.WriteMykefile(mykefilePath(cfg.File.Name), textio.WriteOptions{})
		if err != nil {
			return err
		}
		fmt.Fprintf(d.stdout, "Created: %s\n", path)
		return nil
	}

	if cfg.Env.File != "" {
		if err := textio.LoadEnvFile(cfg.Env.File); err != nil {
			return err
		}
	}

	if missing := d.missingMykefile(cfg); missing != "" {
		MykeHelp(d.stdout, d.prog)
		fmt.Fprintf(d.stdout, "'%s' not found. Create it using:\n> %s --myke-create --myke-file '%s'\n\n",
			cfg.File.Name, d.prog, missing)
		return nil
	}

	switch {
	case inv.REPL:
		return d.runREPL(ctx, cfg)
	case inv.Watch:
		return d.watch(ctx, cfg, inv, taskArgs)
	}

	sess, err := d.open(ctx, cfg)
	if err != nil {
		return err
	}
	defer sess.close()
	return d.dispatch(ctx, sess, inv, taskArgs)
}

// missingMykefile returns the absolute path of an explicitly named
// Mykefile that does not exist. Names without a directory are searched
// for and simply skipped when absent.
func (d *Dispatcher) missingMykefile(cfg *config.Config) string {
	for _, f := range loader.Locate(cfg.File.Name, cfg.File.Paths) {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			abs, _ := filepath.Abs(f)
			return abs
		}
	}
	return ""
}

// open builds a registry and imports every task source into it.
func (d *Dispatcher) open(ctx context.Context, cfg *config.Config) (*session, error) {
	log := logger.FromContext(ctx)
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, domain.ErrInvalidConfig.WithCause(err)
	}

	r := runner.New(
		runner.WithShell(cfg.Shell.Executable),
		runner.WithStdio(d.stdin, d.stdout, d.stderr),
		runner.WithLogger(log),
	)
	reg := service.NewRegistry(service.WithRunner(r), service.WithLogger(log))
	if d.base != nil {
		if err := reg.Merge(d.base); err != nil {
			return nil, err
		}
	}

	fetchOpts := []fetch.Option{
		fetch.WithTimeout(cfg.HTTP.Timeout),
		fetch.WithToken(cfg.HTTP.Token),
		fetch.WithProgress(d.stderr),
	}
	if cfg.HTTP.CAFile != "" {
		pool, err := tlsroots.Load(cfg.HTTP.CAFile)
		if err != nil {
			return nil, domain.ErrInvalidConfig.WithCause(err)
		}
		fetchOpts = append(fetchOpts, fetch.WithTLSConfig(pool.TLSConfig()))
	}
	client := fetch.NewClient(fetchOpts...)
	ld := loader.New(reg,
		loader.WithRunner(r),
		loader.WithFetcher(client),
		loader.WithModulesDir(cfg.Modules.Dir),
		loader.WithModulePaths(cfg.Modules.Paths...),
		loader.WithUpdateModules(cfg.Modules.Update),
		loader.WithStdout(d.stdout),
		loader.WithOutput(format, d.prog),
		loader.WithLogger(log),
	)
	sess := &session{cfg: cfg, format: format, loader: ld, registry: reg}
	d.track(sess)

	for _, f := range loader.Locate(cfg.File.Name, cfg.File.Paths) {
		if err := ld.ImportFile(ctx, f); err != nil {
			sess.close()
			return nil, err
		}
	}
	if err := ld.ImportModules(ctx, cfg.Modules.Preload...); err != nil {
		sess.close()
		return nil, err
	}

	if len(cfg.Filter) > 0 {
		filtered, err := reg.Filter(cfg.Filter)
		if err != nil {
			sess.close()
			return nil, err
		}
		sess.registry = filtered
	}
	sess.root = sess.registry.PopRoot()

	log.Debug("tasks loaded", "tasks", sess.registry.Len(), "files", len(ld.Files()), "root", sess.root != nil)
	return sess, nil
}

// dispatch resolves and runs the task named by taskArgs.
func (d *Dispatcher) dispatch(ctx context.Context, sess *session, inv *Invocation, taskArgs []string) error {
	if inv.MykeHelp || (len(taskArgs) == 0 && sess.root == nil && !inv.HelpAll) {
		if sess.format == output.FormatTable {
			MykeHelp(d.stdout, d.prog)
		}
		return output.PrintTasks(d.stdout, sess.registry.Tasks(), sess.format, d.prog)
	}

	if inv.Help {
		taskArgs = append(taskArgs, "--help")
	}
	if inv.HelpAll {
		return d.helpAll(ctx, sess)
	}
	return d.execute(ctx, sess, taskArgs, inv.Explain, d.suggestNotFound(sess))
}

// execute runs taskArgs against a fresh command tree.
func (d *Dispatcher) execute(ctx context.Context, sess *session, taskArgs []string, explain bool, notFound func([]string) error) error {
	taskArgs, passthrough := normalizeArgs(sess.registry, sess.root, taskArgs)
	app := buildApp(sess.registry, sess.root, treeOptions{
		prog:        d.prog,
		stdout:      d.stdout,
		stderr:      d.stderr,
		explain:     explain,
		shell:       sess.cfg.Shell.Executable,
		passthrough: passthrough,
		notFound:    notFound,
	})
	return app.RunContext(ctx, append([]string{d.prog}, taskArgs...))
}

// suggestNotFound returns a notFound hook that adds "did you mean"
// suggestions from the task names.
func (d *Dispatcher) suggestNotFound(sess *session) func([]string) error {
	completer := repl.NewCompleter(sess.registry.Keys()...)
	return func(path []string) error {
		name := strings.Join(path, " ")
		err := domain.ErrTaskNotFound.WithDetails(name)
		if s := completer.Suggest(name, 3); len(s) > 0 {
			err = domain.ErrTaskNotFound.WithDetailsf("%s. Did you mean: %s?", name, strings.Join(s, ", "))
		}
		return err
	}
}

// helpAll prints the help of the root and of every task.
func (d *Dispatcher) helpAll(ctx context.Context, sess *session) error {
	if sess.root != nil {
		if err := d.execute(ctx, sess, []string{"--help"}, false, nil); err != nil {
			return err
		}
	}
	for _, t := range sess.registry.Tasks() {
		fmt.Fprintf(d.stdout, "\n> %s %s --help\n\n", d.prog, t.DisplayName())
		if err := d.execute(ctx, sess, append(t.Path(), "--help"), false, nil); err != nil {
			return err
		}
	}
	return nil
}

// runREPL loads the tasks once and dispatches prompt lines against them.
func (d *Dispatcher) runREPL(ctx context.Context, cfg *config.Config) error {
	sess, err := d.open(ctx, cfg)
	if err != nil {
		return err
	}
	defer sess.close()

	r := repl.New(
		func(ctx context.Context, args []string) error {
			return d.execute(ctx, sess, args, false, nil)
		},
		repl.WithIO(d.stdin, d.stdout),
		repl.WithCompleter(repl.NewCompleter(sess.registry.Keys()...)),
		repl.WithHistory(repl.NewHistory(repl.DefaultHistoryPath())),
	)
	return r.Run(ctx)
}
