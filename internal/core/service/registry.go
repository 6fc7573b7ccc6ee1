package service

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/yndnr/myke/internal/core/domain"
	"github.com/yndnr/myke/internal/runner"
	"github.com/yndnr/myke/internal/telemetry/logger"
)

// ScriptRunner executes the script produced by a shell task.
type ScriptRunner interface {
	RunScript(ctx context.Context, script domain.Script, opts domain.ShellOptions) error
}

// Registry holds every task known to one invocation.
type Registry struct {
	mu     sync.RWMutex
	tasks  map[string]*domain.Task
	root   *domain.Task
	added  int
	runner ScriptRunner
	logger logger.Logger
	source string
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		tasks:  make(map[string]*domain.Task),
		logger: logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.runner == nil {
		r.runner = runner.New(runner.WithLogger(r.logger))
	}
	return r
}

// Add registers a plain task. The name is converted to a command string.
func (r *Registry) Add(name string, h domain.Handler, opts ...TaskOption) (*domain.Task, error) {
	t := &domain.Task{Name: name, Kind: domain.KindFunc, Handler: h}
	for _, opt := range opts {
		opt(t)
	}
	if err := r.AddTask(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Shell registers a task whose function returns a command to run.
// The command runs with DefaultShellOptions unless WithShellOptions is given.
func (r *Registry) Shell(name string, fn domain.ScriptFunc, opts ...TaskOption) (*domain.Task, error) {
	if fn == nil {
		return nil, domain.ErrInvalidTask.WithDetailsf("shell task %q has no script function", name)
	}
	t := &domain.Task{
		Name:   name,
		Kind:   domain.KindShell,
		Script: fn,
		Shell:  domain.DefaultShellOptions(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.Handler = r.shellHandler(t)
	if err := r.AddTask(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *Registry) shellHandler(t *domain.Task) domain.Handler {
	return func(ctx context.Context, args domain.Args) error {
		script, err := RenderScript(ctx, t, args)
		if err != nil {
			return err
		}
		return r.runner.RunScript(ctx, script, t.Shell)
	}
}

// RenderScript calls a shell task's script function and normalizes the result.
func RenderScript(ctx context.Context, t *domain.Task, args domain.Args) (domain.Script, error) {
	if t.Script == nil {
		return domain.Script{}, domain.ErrInvalidTask.WithDetailsf("task %q is not a shell task", t.Name)
	}
	v, err := t.Script(ctx, args)
	if err != nil {
		return domain.Script{}, err
	}
	script, err := domain.NormalizeScript(v)
	if err != nil {
		return domain.Script{}, domain.ErrInvalidScript.WithDetailsf("task %q returned %T", t.Name, v)
	}
	return script, nil
}

// AddTask validates and inserts a task. A second task with the same
// key, or a second root, fails with ErrTaskAlreadyRegistered.
func (r *Registry) AddTask(t *domain.Task) error {
	if t == nil {
		return domain.ErrInvalidTask.WithDetails("nil task")
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if t.Source == "" {
		t.Source = r.source
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if t.Root {
		if r.root != nil {
			return domain.ErrTaskAlreadyRegistered.WithDetailsf("root task already set by %q (%s)", r.root.Name, r.root.Source)
		}
		r.root = t
	} else {
		key := t.Key()
		if prev, ok := r.tasks[key]; ok {
			return domain.ErrTaskAlreadyRegistered.WithDetailsf("%q already defined in %s", key, sourceOf(prev))
		}
		r.tasks[key] = t
	}
	r.added++

	r.logger.Debug("task registered", "task", t.Key(), "kind", t.Kind, "root", t.Root, "source", t.Source)
	return nil
}

func sourceOf(t *domain.Task) string {
	if t.Source == "" {
		return "an unknown source"
	}
	return t.Source
}

// AddFuncs registers plain tasks keyed by name. The key "__root__"
// registers the root task under the name "root".
func (r *Registry) AddFuncs(funcs map[string]domain.Handler, opts ...TaskOption) error {
	for _, name := range slices.Sorted(maps.Keys(funcs)) {
		taskOpts := opts
		taskName := name
		if name == domain.RootKey {
			taskName = "root"
			taskOpts = append(slices.Clone(opts), AsRoot())
		}
		if _, err := r.Add(taskName, funcs[name], taskOpts...); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the non-root task at path. A single argument may hold a
// slash- or space-separated path.
func (r *Registry) Get(path ...string) (*domain.Task, bool) {
	if len(path) == 1 {
		path = domain.SplitPath(path[0])
	}
	names := make([]string, len(path))
	for i, p := range path {
		names[i] = domain.CommandName(p)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[strings.Join(names, "/")]
	return t, ok
}

// Tasks returns the registered non-root tasks sorted by key.
func (r *Registry) Tasks() []*domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Task, 0, len(r.tasks))
	for _, key := range slices.Sorted(maps.Keys(r.tasks)) {
		out = append(out, r.tasks[key])
	}
	return out
}

// Keys returns the sorted keys of the non-root tasks.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.tasks))
}

// Len returns the number of tasks, including the root.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := len(r.tasks)
	if r.root != nil {
		n++
	}
	return n
}

// Root returns the root task, or nil.
func (r *Registry) Root() *domain.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.root
}

// PopRoot removes and returns the root task, or nil.
func (r *Registry) PopRoot() *domain.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.root
	r.root = nil
	return t
}

// Children returns the tasks directly under parent, sorted by key.
func (r *Registry) Children(parent ...string) []*domain.Task {
	var out []*domain.Task
	for _, t := range r.Tasks() {
		if slices.Equal(t.Parents, parent) {
			out = append(out, t)
		}
	}
	return out
}

// Mark returns a counter to pass to Since.
func (r *Registry) Mark() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.added
}

// Since returns how many tasks were registered after mark.
func (r *Registry) Since(mark int) int {
	return r.Mark() - mark
}

// Merge copies the tasks of other, including its root, into r. Shell
// tasks are rebound to r's runner.
func (r *Registry) Merge(other *Registry) error {
	tasks := other.Tasks()
	if root := other.Root(); root != nil {
		tasks = append(tasks, root)
	}
	for _, t := range tasks {
		c := *t
		c.Parents = slices.Clone(t.Parents)
		c.Params = slices.Clone(t.Params)
		if c.Kind == domain.KindShell {
			c.Handler = r.shellHandler(&c)
		}
		if err := r.AddTask(&c); err != nil {
			return err
		}
	}
	return nil
}
