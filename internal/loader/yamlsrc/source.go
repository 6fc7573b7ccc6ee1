package yamlsrc

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/yndnr/myke/internal/core/domain"
	"github.com/yndnr/myke/internal/core/service"
	"github.com/yndnr/myke/internal/telemetry/logger"
)

// Host resolves the imports and modules a YAML Mykefile lists.
type Host interface {
	ImportFile(ctx context.Context, path string) error
	ImportModule(ctx context.Context, name string) error
}

// Source registers the tasks of YAML Mykefiles.
type Source struct {
	registry *service.Registry
	host     Host
	logger   logger.Logger
}

// New creates a Source feeding reg. host may be nil when imports are
// not supported.
func New(reg *service.Registry, host Host, l logger.Logger) *Source {
	if l == nil {
		l = logger.Default()
	}
	return &Source{registry: reg, host: host, logger: l}
}

// Name returns "yaml".
func (s *Source) Name() string { return "yaml" }

// Patterns returns the file names this source handles.
func (s *Source) Patterns() []string {
	return []string{"*.yaml", "*.yml"}
}

// Load parses path and registers its tasks. Imports are resolved
// relative to the file's directory before any task is added.
func (s *Source) Load(ctx context.Context, path, source string) error {
	f, err := ParseFile(path)
	if err != nil {
		return err
	}

	if len(f.Imports) > 0 || len(f.Modules) > 0 {
		if s.host == nil {
			return domain.ErrLoadFailed.WithDetailsf("%s: imports are not available", path)
		}
	}
	for _, imp := range f.Imports {
		if !filepath.IsAbs(imp) {
			imp = filepath.Join(filepath.Dir(path), imp)
		}
		if err := s.host.ImportFile(ctx, imp); err != nil {
			return err
		}
	}
	for _, mod := range f.Modules {
		if err := s.host.ImportModule(ctx, mod); err != nil {
			return err
		}
	}

	for i := range f.Tasks {
		if err := s.register(&f.Tasks[i], source); err != nil {
			return err
		}
	}
	s.logger.Debug("yaml mykefile loaded", "path", path, "tasks", len(f.Tasks))
	return nil
}

func (s *Source) register(spec *TaskSpec, source string) error {
	shellOpts, err := spec.ShellOptions()
	if err != nil {
		return err
	}
	fn, err := scriptFunc(spec)
	if err != nil {
		return err
	}

	parents := []string(spec.Parents)
	if len(parents) == 1 {
		parents = domain.SplitPath(parents[0])
	}
	desc := spec.Description
	if desc == "" {
		desc = spec.Help
	}

	opts := []service.TaskOption{
		service.WithParents(parents...),
		service.WithDescription(desc),
		service.WithParams(spec.Params...),
		service.WithSource(source),
		service.WithShellOptions(shellOpts),
	}
	if spec.Root {
		opts = append(opts, service.AsRoot())
	}
	_, err = s.registry.Shell(spec.Name, fn, opts...)
	return err
}

// scriptFunc compiles the shell or cmd templates of spec.
func scriptFunc(spec *TaskSpec) (domain.ScriptFunc, error) {
	hasShell := strings.TrimSpace(spec.Shell) != ""
	switch {
	case hasShell && len(spec.Cmd) > 0:
		return nil, domain.ErrInvalidTask.WithDetailsf("task %q sets both shell and cmd", spec.Name)
	case !hasShell && len(spec.Cmd) == 0:
		return nil, domain.ErrInvalidTask.WithDetailsf("task %q needs shell or cmd", spec.Name)
	}

	if hasShell {
		tmpl, err := parseTemplate(spec.Name, spec.Shell)
		if err != nil {
			return nil, err
		}
		return func(_ context.Context, args domain.Args) (any, error) {
			return render(tmpl, args)
		}, nil
	}

	tmpls := make([]*template.Template, len(spec.Cmd))
	for i, arg := range spec.Cmd {
		tmpl, err := parseTemplate(spec.Name, arg)
		if err != nil {
			return nil, err
		}
		tmpls[i] = tmpl
	}
	return func(_ context.Context, args domain.Args) (any, error) {
		argv := make([]string, 0, len(tmpls)+len(args.Rest()))
		for _, tmpl := range tmpls {
			s, err := render(tmpl, args)
			if err != nil {
				return nil, err
			}
			argv = append(argv, s)
		}
		return append(argv, args.Rest()...), nil
	}, nil
}

var funcs = template.FuncMap{
	"join":  strings.Join,
	"quote": domain.QuoteArg,
	"env":   os.Getenv,
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}

func parseTemplate(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, domain.ErrInvalidTask.WithDetailsf("task %q template", name).WithCause(err)
	}
	return tmpl, nil
}

// render executes tmpl with the argument values. The trailing
// arguments are available as .rest.
func render(tmpl *template.Template, args domain.Args) (string, error) {
	data := args.Map()
	if _, ok := data["rest"]; !ok {
		data["rest"] = args.Rest()
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", domain.ErrInvalidScript.WithCause(err)
	}
	return b.String(), nil
}
