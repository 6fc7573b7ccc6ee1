package luasrc

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/yndnr/myke/internal/cli/output"
	"github.com/yndnr/myke/internal/core/domain"
	"github.com/yndnr/myke/internal/textio"
)

func (rt *Runtime) readFuncs() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"text": func(L *lua.LState) int {
			s, err := textio.ReadText(L.CheckString(1))
			return pushResult(L, s, err)
		},
		"lines": func(L *lua.LState) int {
			lines, err := textio.ReadLines(L.CheckString(1))
			return pushResult(L, lines, err)
		},
		"json": func(L *lua.LState) int {
			path := L.CheckString(1)
			if query := L.OptString(2, ""); query != "" {
				v, err := textio.QueryJSON(path, query)
				return pushResult(L, v, err)
			}
			m, err := textio.ReadJSON(path)
			return pushResult(L, m, err)
		},
		"yaml": func(L *lua.LState) int {
			m, err := textio.ReadYAML(L.CheckString(1))
			return pushResult(L, m, err)
		},
		"yaml_all": func(L *lua.LState) int {
			docs, err := textio.ReadYAMLAll(L.CheckString(1))
			return pushResult(L, docs, err)
		},
		"toml": func(L *lua.LState) int {
			m, err := textio.ReadTOML(L.CheckString(1))
			return pushResult(L, m, err)
		},
		"cfg":     readINI,
		"ini":     readINI,
		"envfile": readEnvFile,
		"dotfile": readEnvFile,
		"url": func(L *lua.LState) int {
			if rt.fetcher == nil {
				return raise(L, domain.ErrFetchFailed.WithDetails("no HTTP client configured"))
			}
			s, err := textio.ReadURL(rt.currentContext(), rt.fetcher, L.CheckString(1))
			return pushResult(L, s, err)
		},
		"url_json": func(L *lua.LState) int {
			if rt.fetcher == nil {
				return raise(L, domain.ErrFetchFailed.WithDetails("no HTTP client configured"))
			}
			m, err := textio.ReadURLJSON(rt.currentContext(), rt.fetcher, L.CheckString(1))
			return pushResult(L, m, err)
		},
	}
}

func readINI(L *lua.LState) int {
	sections, err := textio.ReadINI(L.CheckString(1))
	return pushResult(L, sections, err)
}

func readEnvFile(L *lua.LState) int {
	env, err := textio.ReadEnvFile(L.CheckString(1))
	return pushResult(L, env, err)
}

func writeOptions(L *lua.LState, n int) textio.WriteOptions {
	t := L.OptTable(n, nil)
	if t == nil {
		return textio.WriteOptions{}
	}
	return textio.WriteOptions{
		Append:    lua.LVAsBool(t.RawGetString("append")),
		Overwrite: lua.LVAsBool(t.RawGetString("overwrite")),
	}
}

func writeFuncs() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"text": func(L *lua.LState) int {
			err := textio.WriteText(L.CheckString(1), L.CheckString(2), writeOptions(L, 3))
			return pushResult(L, nil, err)
		},
		"lines": func(L *lua.LState) int {
			path := L.CheckString(1)
			tbl, ok := L.Get(2).(*lua.LTable)
			if !ok {
				return raise(L, domain.ErrInvalidArgument.WithDetailsf("write.lines expects a list, got %s", L.Get(2).Type()))
			}
			lines, err := stringList(tbl)
			if err != nil {
				return raise(L, domain.ErrInvalidArgument.WithCause(err))
			}
			return pushResult(L, nil, textio.WriteLines(path, lines, writeOptions(L, 3)))
		},
		"json_set": func(L *lua.LState) int {
			err := textio.SetJSON(L.CheckString(1), L.CheckString(2), ToGo(L.CheckAny(3)))
			return pushResult(L, nil, err)
		},
		"json_delete": func(L *lua.LState) int {
			return pushResult(L, nil, textio.DeleteJSON(L.CheckString(1), L.CheckString(2)))
		},
		"mykefile": func(L *lua.LState) int {
			path, err := textio.WriteMykefile(L.OptString(1, "Mykefile"), writeOptions(L, 2))
			return pushResult(L, path, err)
		},
	}
}

func (rt *Runtime) echoFuncs() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"text": func(L *lua.LState) int {
			parts := make([]string, L.GetTop())
			for i := range parts {
				parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
			}
			_, err := fmt.Fprintln(rt.stdout, strings.Join(parts, " "))
			return pushResult(L, nil, err)
		},
		"lines": func(L *lua.LState) int {
			lines, err := stringList(L.CheckAny(1))
			if err != nil {
				return raise(L, domain.ErrInvalidArgument.WithCause(err))
			}
			for _, line := range lines {
				if _, err := fmt.Fprintln(rt.stdout, line); err != nil {
					return raise(L, err)
				}
			}
			return 0
		},
		"json": func(L *lua.LState) int {
			err := (&output.JSONFormatter{}).Format(rt.stdout, ToGo(L.CheckAny(1)))
			return pushResult(L, nil, err)
		},
		"pretty": func(L *lua.LState) int {
			err := (&output.PrettyFormatter{}).Format(rt.stdout, ToGo(L.CheckAny(1)))
			return pushResult(L, nil, err)
		},
		"yaml": func(L *lua.LState) int {
			err := (&output.YAMLFormatter{}).Format(rt.stdout, ToGo(L.CheckAny(1)))
			return pushResult(L, nil, err)
		},
		"table": func(L *lua.LState) int {
			opts := L.OptTable(2, L.NewTable())
			f := &output.TableFormatter{
				Wide:      lua.LVAsBool(opts.RawGetString("wide")),
				NoHeaders: lua.LVAsBool(opts.RawGetString("no_headers")),
			}
			return pushResult(L, nil, f.Format(rt.stdout, ToGo(L.CheckTable(1))))
		},
		"tasks": func(L *lua.LState) int {
			err := output.PrintTasks(rt.stdout, rt.registry.Tasks(), rt.format, rt.prog)
			return pushResult(L, nil, err)
		},
	}
}

func (rt *Runtime) utilFuncs() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"command_name": func(L *lua.LState) int {
			L.Push(lua.LString(domain.CommandName(L.CheckString(1))))
			return 1
		},
		"is_version": func(L *lua.LState) int {
			L.Push(lua.LBool(textio.IsVersion(L.CheckString(1))))
			return 1
		},
		"repo_root": func(L *lua.LState) int {
			root, err := textio.RepoRoot(rt.currentContext(), L.OptString(1, ""))
			return pushResult(L, root, err)
		},
		"make_executable": func(L *lua.LState) int {
			return pushResult(L, nil, textio.MakeExecutable(L.CheckString(1)))
		},
	}
}

// pushResult raises err, or pushes v when it is non-nil.
func pushResult(L *lua.LState, v any, err error) int {
	if err != nil {
		return raise(L, err)
	}
	if v == nil {
		return 0
	}
	L.Push(ToLua(L, v))
	return 1
}
