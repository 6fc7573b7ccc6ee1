package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/yndnr/myke/internal/core/domain"
)

func TestRegistry_Shell(t *testing.T) {
	reg, rr := newTestRegistry()

	task, err := reg.Shell("greet", func(_ context.Context, args domain.Args) (any, error) {
		return "echo hello " + args.String("name"), nil
	}, WithParams(domain.Param{Name: "name", Default: "world"}))
	if err != nil {
		t.Fatalf("Shell() error = %v", err)
	}
	if task.Kind != domain.KindShell {
		t.Errorf("Kind = %q, want shell", task.Kind)
	}

	args := domain.NewArgs(map[string]any{"name": "myke"}, nil)
	if err := task.Handler(context.Background(), args); err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	if len(rr.scripts) != 1 || rr.scripts[0].Shell != "echo hello myke" {
		t.Errorf("scripts = %+v", rr.scripts)
	}
	if !reflect.DeepEqual(rr.opts[0], domain.DefaultShellOptions()) {
		t.Errorf("opts = %+v, want defaults", rr.opts[0])
	}
}

func TestRegistry_ShellOptions(t *testing.T) {
	reg, rr := newTestRegistry()
	opts := domain.ShellOptions{CaptureOutput: true, Timeout: time.Second, Cwd: "/tmp"}

	task, err := reg.Shell("ls", func(context.Context, domain.Args) (any, error) {
		return []string{"ls", "-l"}, nil
	}, WithShellOptions(opts))
	if err != nil {
		t.Fatalf("Shell() error = %v", err)
	}
	if err := task.Handler(context.Background(), domain.NewArgs(nil, nil)); err != nil {
		t.Fatalf("Handler() error = %v", err)
	}
	if !reflect.DeepEqual(rr.scripts[0].Argv, []string{"ls", "-l"}) {
		t.Errorf("argv = %v", rr.scripts[0].Argv)
	}
	if !reflect.DeepEqual(rr.opts[0], opts) {
		t.Errorf("opts = %+v, want %+v", rr.opts[0], opts)
	}
}

func TestRegistry_ShellInvalidScript(t *testing.T) {
	reg, rr := newTestRegistry()

	task, err := reg.Shell("bad", func(context.Context, domain.Args) (any, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Shell() error = %v", err)
	}
	err = task.Handler(context.Background(), domain.NewArgs(nil, nil))
	if !errors.Is(err, domain.ErrInvalidScript) {
		t.Fatalf("Handler() error = %v, want ErrInvalidScript", err)
	}
	if len(rr.scripts) != 0 {
		t.Error("runner should not be called for an invalid script")
	}
}

func TestRegistry_ShellPropagatesErrors(t *testing.T) {
	reg, rr := newTestRegistry()
	rr.err = &domain.ProcessError{Cmd: "false", ExitCode: 1}

	task, _ := reg.Shell("fail", func(context.Context, domain.Args) (any, error) {
		return "false", nil
	})
	err := task.Handler(context.Background(), domain.NewArgs(nil, nil))
	var pe *domain.ProcessError
	if !errors.As(err, &pe) {
		t.Fatalf("Handler() error = %v, want *ProcessError", err)
	}

	scriptErr := errors.New("cannot render")
	task2, _ := reg.Shell("broken", func(context.Context, domain.Args) (any, error) {
		return nil, scriptErr
	})
	if err := task2.Handler(context.Background(), domain.NewArgs(nil, nil)); !errors.Is(err, scriptErr) {
		t.Errorf("Handler() error = %v, want %v", err, scriptErr)
	}
}

func TestRenderScript(t *testing.T) {
	reg, rr := newTestRegistry()
	task, _ := reg.Shell("deploy", func(_ context.Context, args domain.Args) (any, error) {
		return "deploy --env " + args.String("env"), nil
	})

	script, err := RenderScript(context.Background(), task, domain.NewArgs(map[string]any{"env": "prod"}, nil))
	if err != nil {
		t.Fatalf("RenderScript() error = %v", err)
	}
	if script.String() != "deploy --env prod" {
		t.Errorf("RenderScript() = %q", script.String())
	}
	if len(rr.scripts) != 0 {
		t.Error("RenderScript must not run the script")
	}

	plain, _ := reg.Add("plain", noop)
	if _, err := RenderScript(context.Background(), plain, domain.NewArgs(nil, nil)); !errors.Is(err, domain.ErrInvalidTask) {
		t.Errorf("RenderScript(plain) error = %v", err)
	}
}
