package command

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/myke/internal/cli/config"
	"github.com/yndnr/myke/internal/core/domain"
	"github.com/yndnr/myke/internal/core/service"
	"github.com/yndnr/myke/internal/infra/shutdown"
	"github.com/yndnr/myke/internal/telemetry/logger"
)

const testMykefile = `
myke.task{
  name = "hello",
  description = "Say hello.",
  params = { name = "world" },
  run = function(args) myke.echo.text("hello " .. args.name) end,
}

myke.task{
  name = "copy",
  params = {
    { name = "src", positional = true, required = true },
    { name = "dest", positional = true, default = "out" },
  },
  run = function(args, rest) myke.echo.text(args.src, args.dest, #rest) end,
}

myke.task{
  name = "pack",
  params = {
    { name = "src", positional = true },
    { name = "verbose", type = "bool" },
    { name = "level", short = "l", default = "info" },
  },
  run = function(args, rest) myke.echo.text(args.src, args.verbose, args.level, #rest) end,
}

myke.task{
  name = "deploy",
  params = { env = { required = true, choices = {"dev", "prod"} } },
  run = function(args) myke.echo.text("deploy " .. args.env) end,
}

myke.shell{ name = "build", parents = {"docker"}, run = "echo docker-build" }
myke.shell{ name = "fail", run = "exit 3" }
`

type harness struct {
	dir    string
	file   string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, mykefile string) *harness {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"MYKE_FILE", "MYKE_FILE_PATHS", "MYKE_MODULES", "MYKE_FILTER", "MYKE_OUTPUT", "MYKE_UPDATE_MODULES"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	t.Setenv("MYKE_CONFIG", filepath.Join(dir, "absent.yaml"))

	h := &harness{dir: dir, file: filepath.Join(dir, "Mykefile"), stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	if mykefile != "" {
		if err := os.WriteFile(h.file, []byte(mykefile), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return h
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	return h.runWith(t, nil, args...)
}

func (h *harness) runWith(t *testing.T, opts []Option, args ...string) error {
	t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()
	opts = append([]Option{WithStdio(strings.NewReader(""), h.stdout, h.stderr)}, opts...)
	full := append([]string{"--myke-file", h.file}, args...)
	return New(opts...).Run(context.Background(), full)
}

func TestDispatcher_Version(t *testing.T) {
	h := newHarness(t, "")
	if err := h.run(t, "--myke-version"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.HasPrefix(h.stdout.String(), "myke ") {
		t.Errorf("stdout = %q", h.stdout.String())
	}
}

func TestDispatcher_List(t *testing.T) {
	h := newHarness(t, testMykefile)
	if err := h.run(t); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := h.stdout.String()
	for _, want := range []string{"Myke options:", "--myke-file", "TASK", "docker build", "hello", "Say hello.", "To view task parameters, see:", "> myke <task-name> --help"} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}
}

func TestDispatcher_ListFiltered(t *testing.T) {
	h := newHarness(t, testMykefile)
	if err := h.run(t, "--myke-filter", "docker", "--myke-output", "json"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := h.stdout.String()
	if strings.Contains(out, "Myke options:") {
		t.Error("json listing should not include help text")
	}
	if !strings.Contains(out, `"task": "docker build"`) || strings.Contains(out, `"hello"`) {
		t.Errorf("filtered listing = %s", out)
	}
}

func TestDispatcher_RunTask(t *testing.T) {
	h := newHarness(t, testMykefile)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default param", []string{"hello"}, "hello world\n"},
		{"flag", []string{"hello", "--name", "bob"}, "hello bob\n"},
		{"interleaved myke flag", []string{"hello", "--myke-log-level", "error", "--name=ana"}, "hello ana\n"},
		{"positionals", []string{"copy", "a"}, "a out 0\n"},
		{"positionals and rest", []string{"copy", "a", "b", "c", "d"}, "a b 2\n"},
		{"rest after dashes", []string{"copy", "a", "--", "--name"}, "a out 1\n"},
		{"dashes keep positionals out of params", []string{"copy", "a", "--", "x", "y"}, "a out 2\n"},
		{"bool flag after positional", []string{"pack", "a", "--verbose"}, "a true info 0\n"},
		{"value flag after positional", []string{"pack", "a", "-l", "debug", "b"}, "a false debug 1\n"},
		{"flag after dashes is rest", []string{"pack", "a", "--", "--verbose"}, "a false info 1\n"},
		{"choice", []string{"deploy", "--env", "prod"}, "deploy prod\n"},
		{"nested shell task", []string{"docker", "build"}, "docker-build\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := h.run(t, tt.args...); err != nil {
				t.Fatalf("Run(%v) error = %v", tt.args, err)
			}
			if got := h.stdout.String(); got != tt.want {
				t.Errorf("stdout = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDispatcher_Errors(t *testing.T) {
	h := newHarness(t, testMykefile)

	tests := []struct {
		name string
		args []string
		want *domain.DomainError
	}{
		{"unknown task", []string{"helo"}, domain.ErrTaskNotFound},
		{"unknown nested task", []string{"docker", "push"}, domain.ErrTaskNotFound},
		{"missing positional", []string{"copy"}, domain.ErrMissingArgument},
		{"dashes do not fill positionals", []string{"copy", "--", "x"}, domain.ErrMissingArgument},
		{"missing required flag", []string{"deploy"}, domain.ErrMissingArgument},
		{"bad choice", []string{"deploy", "--env", "qa"}, domain.ErrInvalidArgument},
		{"unknown task flag", []string{"hello", "--nope"}, domain.ErrInvalidArgument},
		{"unknown myke flag", []string{"--myke-nope"}, domain.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.run(t, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("Run(%v) error = %v, want %v", tt.args, err, tt.want)
			}
		})
	}
}

func TestDispatcher_Suggestions(t *testing.T) {
	h := newHarness(t, testMykefile)
	err := h.run(t, "helo")
	if err == nil || !strings.Contains(err.Error(), "Did you mean: hello?") {
		t.Errorf("Run() error = %v, want suggestion", err)
	}
}

func TestDispatcher_ExitCode(t *testing.T) {
	h := newHarness(t, testMykefile)
	err := h.run(t, "fail")
	if code := domain.ExitCode(err); code != 3 {
		t.Errorf("ExitCode() = %d, want 3 (err = %v)", code, err)
	}
}

func TestDispatcher_Explain(t *testing.T) {
	h := newHarness(t, testMykefile)

	if err := h.run(t, "--myke-explain", "docker", "build"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	out := h.stdout.String()
	for _, want := range []string{"task:", "docker build", "kind:", "shell", "script:", "echo docker-build", "/bin/sh -c"} {
		if !strings.Contains(out, want) {
			t.Errorf("explain output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "docker-build\n") && !strings.Contains(out, "echo docker-build") {
		t.Error("explain should not run the command")
	}

	if err := h.run(t, "--myke-explain", "hello", "--name", "x"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out := h.stdout.String(); !strings.Contains(out, `name = "x"`) || strings.Contains(out, "hello x") {
		t.Errorf("explain output = %q", out)
	}
}

func TestDispatcher_TaskHelp(t *testing.T) {
	h := newHarness(t, testMykefile)

	if err := h.run(t, "hello", "-h"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out := h.stdout.String(); !strings.Contains(out, "--name") || strings.Contains(out, "hello world") {
		t.Errorf("task help = %q", out)
	}

	if err := h.run(t, "--help-all"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	out := h.stdout.String()
	for _, want := range []string{"> myke hello --help", "> myke docker build --help", "--env"} {
		if !strings.Contains(out, want) {
			t.Errorf("help-all missing %q", want)
		}
	}
}

func TestDispatcher_Root(t *testing.T) {
	h := newHarness(t, `
myke.add_tasks{
  __root__ = function(args, rest) myke.echo.text("root", #rest) end,
  other = function() myke.echo.text("other") end,
}
`)
	if err := h.run(t); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := h.stdout.String(); got != "root 0\n" {
		t.Errorf("stdout = %q, want root", got)
	}

	if err := h.run(t, "other"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := h.stdout.String(); got != "other\n" {
		t.Errorf("stdout = %q, want other", got)
	}

	if err := h.run(t, "--myke-help"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out := h.stdout.String(); !strings.Contains(out, "other") || strings.Contains(out, "root 0") {
		t.Errorf("--myke-help output = %q", out)
	}
}

func TestDispatcher_YAMLMykefile(t *testing.T) {
	h := newHarness(t, "")
	h.file = filepath.Join(h.dir, "tasks.yaml")
	content := `
tasks:
  - name: greet
    params:
      - name: who
        default: yaml
    shell: echo hi-{{ .who }}
`
	if err := os.WriteFile(h.file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := h.run(t, "greet"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := h.stdout.String(); got != "hi-yaml\n" {
		t.Errorf("stdout = %q, want hi-yaml", got)
	}
}

func TestDispatcher_MissingMykefile(t *testing.T) {
	h := newHarness(t, "")
	if err := h.run(t); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	out := h.stdout.String()
	want := "not found. Create it using:\n> myke --myke-create --myke-file '" + h.file + "'"
	if !strings.Contains(out, want) {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestDispatcher_Create(t *testing.T) {
	h := newHarness(t, "")
	h.file = filepath.Join(h.dir, "sub", "Mykefile")
	if err := h.run(t, "--myke-create"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(h.stdout.String(), "Created: "+h.file) {
		t.Errorf("stdout = %q", h.stdout.String())
	}

	// The scaffold is a working Mykefile.
	if err := h.run(t, "hello"); err != nil {
		t.Fatalf("Run(hello) error = %v", err)
	}

	if err := h.run(t, "--myke-create"); !errors.Is(err, domain.ErrFileExists) {
		t.Errorf("second create error = %v, want ErrFileExists", err)
	}
}

func TestDispatcher_WithTasks(t *testing.T) {
	h := newHarness(t, "")
	base := service.NewRegistry(service.WithLogger(logger.Nop()))
	var got string
	_, err := base.Add("compiled", func(_ context.Context, args domain.Args) error {
		got = args.String("level")
		return nil
	}, service.WithParams(domain.Param{Name: "level", Default: "low"}))
	if err != nil {
		t.Fatal(err)
	}

	empty := t.TempDir()
	args := []string{"--myke-file", "Mykefile", "--myke-file-paths", empty, "compiled", "--level", "high"}
	h.stdout.Reset()
	d := New(WithStdio(strings.NewReader(""), h.stdout, h.stderr), WithTasks(base))
	if err := d.Run(context.Background(), args); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != "high" {
		t.Errorf("level = %q, want high", got)
	}
}

func TestDispatcher_REPL(t *testing.T) {
	h := newHarness(t, testMykefile)
	t.Setenv("HOME", h.dir)

	d := New(WithStdio(strings.NewReader("hello --name repl\nhelo\nexit\n"), h.stdout, h.stderr))
	if err := d.Run(context.Background(), []string{"--myke-file", h.file, "--myke-repl"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	out := h.stdout.String()
	for _, want := range []string{"myke> ", "hello repl", "Did you mean: hello?"} {
		if !strings.Contains(out, want) {
			t.Errorf("repl output missing %q:\n%s", want, out)
		}
	}
}

func TestDispatcher_ShutdownHookRegisteredOnce(t *testing.T) {
	h := newHarness(t, testMykefile)
	sh := shutdown.NewHandler(time.Second)
	d := New(WithStdio(strings.NewReader(""), h.stdout, h.stderr), WithShutdown(sh))

	cfg, err := config.Load(filepath.Join(h.dir, "absent.yaml"), map[string]any{"file.name": h.file})
	if err != nil {
		t.Fatal(err)
	}
	ctx := logger.WithLogger(context.Background(), logger.Nop())

	var last *session
	for i := 0; i < 3; i++ {
		sess, err := d.open(ctx, cfg)
		if err != nil {
			t.Fatalf("open() #%d error = %v", i, err)
		}
		if last != nil {
			last.close()
		}
		last = sess
	}
	if n := sh.Len(); n != 1 {
		t.Errorf("shutdown hooks = %d after 3 loads, want 1", n)
	}

	if err := sh.Shutdown(); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	last.close()
}

// syncBuffer is a bytes.Buffer safe for the concurrent writes of a
// watch loop.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestDispatcher_Watch(t *testing.T) {
	h := newHarness(t, `myke.task("show", function() myke.echo.text("v1") end)`)
	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	d := New(WithStdio(strings.NewReader(""), stdout, stderr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx, []string{"--myke-file", h.file, "--myke-watch", "--myke-log-level", "debug", "show"})
	}()

	waitFor(t, "first run", func() bool { return strings.Contains(stdout.String(), "v1\n") })
	waitFor(t, "watcher", func() bool { return strings.Contains(stderr.String(), "watching for changes") })

	if err := os.WriteFile(h.file, []byte(`myke.task("show", function() myke.echo.text("v2") end)`), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "reload", func() bool { return strings.Contains(stdout.String(), "v2\n") })
	if !strings.Contains(stderr.String(), "Mykefile changed, reloading") {
		t.Errorf("stderr = %q, want reload notice", stderr.String())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
	if got := stdout.String(); got != "v1\nv2\n" {
		t.Errorf("stdout = %q, want v1 then v2", got)
	}
}
