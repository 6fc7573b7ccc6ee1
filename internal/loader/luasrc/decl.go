package luasrc

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/yndnr/myke/internal/core/domain"
	"github.com/yndnr/myke/internal/core/service"
)

// taskDecl is a task definition read from a Lua table.
type taskDecl struct {
	name        string
	description string
	parents     []string
	root        bool
	params      []domain.Param
	run         lua.LValue
	shell       domain.ShellOptions
}

// readTaskDecl reads the fields shared by myke.task and myke.shell.
func readTaskDecl(t *lua.LTable) (*taskDecl, error) {
	d := &taskDecl{shell: domain.DefaultShellOptions()}

	if v := t.RawGetString("name"); v != lua.LNil {
		d.name = v.String()
	}
	d.description = lua.LVAsString(t.RawGetString("description"))
	if d.description == "" {
		d.description = lua.LVAsString(t.RawGetString("help"))
	}
	d.root = lua.LVAsBool(t.RawGetString("root"))

	parents, err := stringList(t.RawGetString("parents"))
	if err != nil {
		return nil, fmt.Errorf("parents: %w", err)
	}
	if len(parents) == 1 {
		parents = domain.SplitPath(parents[0])
	}
	d.parents = parents

	if d.params, err = readParams(t.RawGetString("params")); err != nil {
		return nil, err
	}

	d.run = t.RawGetString("run")
	if d.run == lua.LNil {
		d.run = t.RawGetString("script")
	}
	return d, nil
}

func (d *taskDecl) options(source string) []service.TaskOption {
	opts := []service.TaskOption{
		service.WithParents(d.parents...),
		service.WithDescription(d.description),
		service.WithParams(d.params...),
		service.WithSource(source),
	}
	if d.root {
		opts = append(opts, service.AsRoot())
	}
	return opts
}

// readParams accepts a list of names or parameter tables, and/or a map
// of name to default value (or to a parameter table). Map entries are
// added in name order after the list entries.
func readParams(lv lua.LValue) ([]domain.Param, error) {
	if lv == lua.LNil {
		return nil, nil
	}
	t, ok := lv.(*lua.LTable)
	if !ok {
		return nil, domain.ErrInvalidTask.WithDetailsf("params must be a table, got %s", lv.Type())
	}

	var params []domain.Param
	n := t.Len()
	for i := 1; i <= n; i++ {
		switch item := t.RawGetInt(i).(type) {
		case lua.LString:
			params = append(params, domain.Param{Name: string(item)})
		case *lua.LTable:
			p, err := paramFromTable("", item)
			if err != nil {
				return nil, err
			}
			params = append(params, p)
		default:
			return nil, domain.ErrInvalidTask.WithDetailsf("params[%d]: unexpected %s", i, item.Type())
		}
	}

	named := map[string]lua.LValue{}
	t.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			named[string(ks)] = v
		}
	})
	for _, name := range slices.Sorted(maps.Keys(named)) {
		v := named[name]
		if spec, ok := v.(*lua.LTable); ok && isParamSpec(spec) {
			p, err := paramFromTable(name, spec)
			if err != nil {
				return nil, err
			}
			params = append(params, p)
			continue
		}
		def := ToGo(v)
		params = append(params, domain.Param{Name: name, Type: inferType(def), Default: def})
	}
	return params, nil
}

func isParamSpec(t *lua.LTable) bool {
	for _, key := range []string{"type", "default", "usage", "help", "env", "required", "positional", "choices", "short"} {
		if t.RawGetString(key) != lua.LNil {
			return true
		}
	}
	return false
}

func paramFromTable(name string, t *lua.LTable) (domain.Param, error) {
	p := domain.Param{Name: name}
	if v := t.RawGetString("name"); v != lua.LNil {
		p.Name = v.String()
	}
	p.Default = ToGo(t.RawGetString("default"))
	if v := t.RawGetString("type"); v != lua.LNil {
		p.Type = domain.ParamType(v.String())
	} else {
		p.Type = inferType(p.Default)
	}
	p.Usage = lua.LVAsString(t.RawGetString("usage"))
	if p.Usage == "" {
		p.Usage = lua.LVAsString(t.RawGetString("help"))
	}
	p.EnvVar = lua.LVAsString(t.RawGetString("env"))
	p.Short = lua.LVAsString(t.RawGetString("short"))
	p.Required = lua.LVAsBool(t.RawGetString("required"))
	p.Positional = lua.LVAsBool(t.RawGetString("positional"))

	choices, err := stringList(t.RawGetString("choices"))
	if err != nil {
		return p, domain.ErrInvalidTask.WithDetailsf("param %q choices: %v", p.Name, err)
	}
	p.Choices = choices
	return p, nil
}

// inferType picks a parameter type from a default value.
func inferType(def any) domain.ParamType {
	switch x := def.(type) {
	case bool:
		return domain.ParamBool
	case int64, int:
		return domain.ParamInt
	case float64:
		return domain.ParamFloat
	case []any:
		if len(x) > 0 {
			switch x[0].(type) {
			case int64:
				return domain.ParamInts
			case float64:
				return domain.ParamFloats
			}
		}
		return domain.ParamStrings
	}
	return domain.ParamString
}

// readShellOptions overlays the shell option keys found in t on base.
func readShellOptions(t *lua.LTable, base domain.ShellOptions) (domain.ShellOptions, error) {
	opts := base
	if t == nil {
		return opts, nil
	}
	boolField := func(key string, dst *bool) {
		if v := t.RawGetString(key); v != lua.LNil {
			*dst = lua.LVAsBool(v)
		}
	}
	boolField("capture_output", &opts.CaptureOutput)
	boolField("echo", &opts.Echo)
	boolField("check", &opts.Check)

	if v := t.RawGetString("cwd"); v != lua.LNil {
		opts.Cwd = v.String()
	}
	if v := t.RawGetString("executable"); v != lua.LNil {
		opts.Executable = v.String()
	}

	var err error
	if v := t.RawGetString("env"); v != lua.LNil {
		if opts.Env, err = stringMap(v); err != nil {
			return opts, fmt.Errorf("env: %w", err)
		}
	}
	if v := t.RawGetString("env_update"); v != lua.LNil {
		if opts.EnvUpdate, err = stringMap(v); err != nil {
			return opts, fmt.Errorf("env_update: %w", err)
		}
	}
	if v := t.RawGetString("env_unset"); v != lua.LNil {
		if opts.EnvUnset, err = stringList(v); err != nil {
			return opts, fmt.Errorf("env_unset: %w", err)
		}
	}

	switch v := t.RawGetString("timeout").(type) {
	case *lua.LNilType:
	case lua.LNumber:
		opts.Timeout = time.Duration(float64(v) * float64(time.Second))
	case lua.LString:
		d, err := time.ParseDuration(strings.TrimSpace(string(v)))
		if err != nil {
			return opts, fmt.Errorf("timeout: %w", err)
		}
		opts.Timeout = d
	default:
		return opts, fmt.Errorf("timeout: expected seconds or a duration, got %s", v.Type())
	}
	return opts, nil
}

// argsTable exposes task arguments to Lua keyed by parameter name.
func (rt *Runtime) argsTable(args domain.Args) *lua.LTable {
	t := rt.L.NewTable()
	for _, name := range args.Names() {
		v, _ := args.Get(name)
		t.RawSetString(name, ToLua(rt.L, v))
	}
	return t
}

// handler adapts a Lua function into a task handler called with
// (args, rest).
func (rt *Runtime) handler(fn *lua.LFunction) domain.Handler {
	return func(ctx context.Context, args domain.Args) error {
		_, err := rt.call(ctx, fn, 0, rt.argsTable(args), ToLua(rt.L, args.Rest()))
		return err
	}
}

// scriptFunc adapts a shell task's run field: a function returning the
// command, or a constant string or argv list.
func (rt *Runtime) scriptFunc(run lua.LValue) (domain.ScriptFunc, error) {
	switch v := run.(type) {
	case *lua.LFunction:
		return func(ctx context.Context, args domain.Args) (any, error) {
			ret, err := rt.call(ctx, v, 1, rt.argsTable(args), ToLua(rt.L, args.Rest()))
			if err != nil {
				return nil, err
			}
			return ToGo(ret[0]), nil
		}, nil
	case lua.LString, *lua.LTable:
		script, err := domain.NormalizeScript(ToGo(v))
		if err != nil {
			return nil, err
		}
		return func(context.Context, domain.Args) (any, error) {
			return script, nil
		}, nil
	}
	return nil, domain.ErrInvalidScript.WithDetailsf("run must be a function, string or list, got %s", run.Type())
}
