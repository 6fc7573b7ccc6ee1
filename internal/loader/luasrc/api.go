package luasrc

import (
	"maps"
	"os"
	"slices"

	lua "github.com/yuin/gopher-lua"

	"github.com/yndnr/myke/internal/core/domain"
	"github.com/yndnr/myke/internal/core/service"
	"github.com/yndnr/myke/internal/runner"
)

// module builds the myke table.
func (rt *Runtime) module() *lua.LTable {
	L := rt.L
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"task":            rt.luaTask,
		"shell":           rt.luaShell,
		"add_tasks":       rt.luaAddTasks,
		"sh":              rt.luaSh,
		"sh_stdout":       rt.luaShStdout,
		"sh_stdout_lines": rt.luaShStdoutLines,
		"import":          rt.luaImport,
		"import_module":   rt.luaImportModule,
		"install_module":  rt.luaInstallModule,
		"env":             luaEnv,
		"setenv":          luaSetenv,
	})
	L.SetField(mod, "read", L.SetFuncs(L.NewTable(), rt.readFuncs()))
	L.SetField(mod, "write", L.SetFuncs(L.NewTable(), writeFuncs()))
	L.SetField(mod, "echo", L.SetFuncs(L.NewTable(), rt.echoFuncs()))
	L.SetField(mod, "utils", L.SetFuncs(L.NewTable(), rt.utilFuncs()))
	return mod
}

// declFromArgs accepts task{...}, task(name, fn[, spec]) and task(name, spec).
func declFromArgs(L *lua.LState) (*taskDecl, error) {
	if tbl, ok := L.Get(1).(*lua.LTable); ok && L.GetTop() == 1 {
		return readTaskDecl(tbl)
	}

	name := L.CheckString(1)
	spec := L.NewTable()
	var run lua.LValue = lua.LNil
	switch v := L.Get(2).(type) {
	case *lua.LTable:
		spec = v
	default:
		run = v
		if t, ok := L.Get(3).(*lua.LTable); ok {
			spec = t
		}
	}
	d, err := readTaskDecl(spec)
	if err != nil {
		return nil, err
	}
	d.name = name
	if run != lua.LNil {
		d.run = run
	}
	return d, nil
}

func (rt *Runtime) luaTask(L *lua.LState) int {
	d, err := declFromArgs(L)
	if err != nil {
		return raise(L, err)
	}
	fn, ok := d.run.(*lua.LFunction)
	if !ok {
		return raise(L, domain.ErrInvalidTask.WithDetailsf("task %q: run must be a function", d.name))
	}
	if _, err := rt.registry.Add(d.name, rt.handler(fn), d.options(rt.source)...); err != nil {
		return raise(L, err)
	}
	return 0
}

func (rt *Runtime) luaShell(L *lua.LState) int {
	d, err := declFromArgs(L)
	if err != nil {
		return raise(L, err)
	}
	spec, _ := L.Get(1).(*lua.LTable)
	if L.GetTop() > 1 {
		spec, _ = L.Get(L.GetTop()).(*lua.LTable)
	}
	if d.shell, err = readShellOptions(spec, d.shell); err != nil {
		return raise(L, domain.ErrInvalidTask.WithDetailsf("shell task %q", d.name).WithCause(err))
	}
	fn, err := rt.scriptFunc(d.run)
	if err != nil {
		return raise(L, err)
	}
	opts := append(d.options(rt.source), service.WithShellOptions(d.shell))
	if _, err := rt.registry.Shell(d.name, fn, opts...); err != nil {
		return raise(L, err)
	}
	return 0
}

func (rt *Runtime) luaAddTasks(L *lua.LState) int {
	tbl := L.CheckTable(1)
	spec := L.OptTable(2, L.NewTable())
	d, err := readTaskDecl(spec)
	if err != nil {
		return raise(L, err)
	}

	funcs := map[string]domain.Handler{}
	var bad string
	tbl.ForEach(func(k, v lua.LValue) {
		fn, ok := v.(*lua.LFunction)
		if !ok {
			bad = k.String()
			return
		}
		funcs[k.String()] = rt.handler(fn)
	})
	if bad != "" {
		return raise(L, domain.ErrInvalidTask.WithDetailsf("add_tasks: %q is not a function", bad))
	}
	if err := rt.registry.AddFuncs(funcs, d.options(rt.source)...); err != nil {
		return raise(L, err)
	}
	L.Push(ToLua(L, slices.Sorted(maps.Keys(funcs))))
	return 1
}

// scriptArg reads a command line or argv list from argument n.
func scriptArg(L *lua.LState, n int) (domain.Script, error) {
	return domain.NormalizeScript(ToGo(L.CheckAny(n)))
}

func (rt *Runtime) luaSh(L *lua.LState) int {
	script, err := scriptArg(L, 1)
	if err != nil {
		return raise(L, err)
	}
	opts, err := readShellOptions(L.OptTable(2, nil), domain.DefaultShellOptions())
	if err != nil {
		return raise(L, domain.ErrInvalidArgument.WithCause(err))
	}
	res, err := rt.runner.Run(rt.currentContext(), script, opts)
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LString(res.Stdout))
	L.Push(lua.LString(res.Stderr))
	L.Push(lua.LNumber(res.Code))
	return 3
}

func (rt *Runtime) stdoutOf(L *lua.LState) (string, error) {
	script, err := scriptArg(L, 1)
	if err != nil {
		return "", err
	}
	opts, err := readShellOptions(L.OptTable(2, nil), domain.ShellOptions{Check: true})
	if err != nil {
		return "", domain.ErrInvalidArgument.WithCause(err)
	}
	return rt.runner.Stdout(rt.currentContext(), script, opts)
}

func (rt *Runtime) luaShStdout(L *lua.LState) int {
	out, err := rt.stdoutOf(L)
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LString(out))
	return 1
}

func (rt *Runtime) luaShStdoutLines(L *lua.LState) int {
	out, err := rt.stdoutOf(L)
	if err != nil {
		return raise(L, err)
	}
	L.Push(ToLua(L, runner.SplitAndTrim(out)))
	return 1
}

func (rt *Runtime) luaImport(L *lua.LState) int {
	path := L.CheckString(1)
	if rt.host == nil {
		return raise(L, domain.ErrLoadFailed.WithDetails("imports are not available"))
	}
	if err := rt.host.ImportFile(rt.currentContext(), path); err != nil {
		return raise(L, err)
	}
	return 0
}

func (rt *Runtime) luaImportModule(L *lua.LState) int {
	name := L.CheckString(1)
	if rt.host == nil {
		return raise(L, domain.ErrModuleNotFound.WithDetails(name))
	}
	if err := rt.host.ImportModule(rt.currentContext(), name); err != nil {
		return raise(L, err)
	}
	return 0
}

func (rt *Runtime) luaInstallModule(L *lua.LState) int {
	url := L.CheckString(1)
	if rt.host == nil {
		return raise(L, domain.ErrModuleNotFound.WithDetails(url))
	}
	if err := rt.host.InstallModule(rt.currentContext(), url); err != nil {
		return raise(L, err)
	}
	return 0
}

func luaEnv(L *lua.LState) int {
	if v, ok := os.LookupEnv(L.CheckString(1)); ok {
		L.Push(lua.LString(v))
		return 1
	}
	L.Push(L.Get(2))
	return 1
}

func luaSetenv(L *lua.LState) int {
	name := L.CheckString(1)
	var err error
	if v := L.Get(2); v == lua.LNil {
		err = os.Unsetenv(name)
	} else {
		err = os.Setenv(name, v.String())
	}
	if err != nil {
		return raise(L, err)
	}
	return 0
}
