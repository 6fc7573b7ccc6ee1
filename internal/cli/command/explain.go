package command

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/yndnr/myke/internal/cli/output"
	"github.com/yndnr/myke/internal/core/domain"
	"github.com/yndnr/myke/internal/core/service"
	"github.com/yndnr/myke/internal/runner"
	"github.com/yndnr/myke/internal/telemetry/logger"
)

// explain prints how an invocation of t resolves. Shell tasks have their
// script function evaluated so the rendered command can be shown; the
// command itself is not run.
// Values of sensitive environment variables are masked.
func explain(ctx context.Context, w io.Writer, t *domain.Task, args domain.Args, shell string) error {
	name := t.DisplayName()
	if t.Root {
		name += " (root)"
	}

	table := &output.Table{}
	table.AddRow("task:", name)
	table.AddRow("source:", t.Source)
	table.AddRow("kind:", string(t.Kind))
	if t.Description != "" {
		table.AddRow("description:", firstLine(t.Description))
	}
	for _, p := range t.Params {
		v, _ := args.Get(p.Name)
		table.AddRow("param:", p.FlagName()+" = "+formatArg(v))
	}
	if rest := args.Rest(); len(rest) > 0 {
		quoted := make([]string, len(rest))
		for i, r := range rest {
			quoted[i] = strconv.Quote(r)
		}
		table.AddRow("rest:", strings.Join(quoted, " "))
	}

	if t.Kind == domain.KindShell {
		script, err := service.RenderScript(ctx, t, args)
		if err != nil {
			return err
		}
		table.AddRow("script:", script.String())
		if script.IsArgv() {
			table.AddRow("exec:", "direct")
		} else {
			if t.Shell.Executable != "" {
				shell = t.Shell.Executable
			}
			if shell == "" {
				shell = runner.DefaultShell
			}
			table.AddRow("exec:", shell+" -c")
		}
		if t.Shell.Cwd != "" {
			table.AddRow("cwd:", t.Shell.Cwd)
		}
		if t.Shell.Timeout > 0 {
			table.AddRow("timeout:", t.Shell.Timeout.String())
		}
		env := logger.RedactEnv(t.Shell.EnvUpdate)
		for _, k := range slices.Sorted(maps.Keys(env)) {
			table.AddRow("env:", k+"="+env[k])
		}
	}
	return table.RenderWithOptions(w, true)
}

func formatArg(v any) string {
	switch x := v.(type) {
	case nil:
		return "<none>"
	case string:
		return strconv.Quote(x)
	case []string:
		quoted := make([]string, len(x))
		for i, s := range x {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return fmt.Sprint(x)
	}
}
