package command

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/myke/internal/core/domain"
	"github.com/yndnr/myke/internal/infra/confloader"
)

// Flag names. Every myke flag is prefixed so it never shadows a task
// parameter.
const (
	flagFile          = "myke-file"
	flagFilePaths     = "myke-file-paths"
	flagEnvFile       = "myke-env-file"
	flagUpdateModules = "myke-update-modules"
	flagModule        = "myke-module"
	flagFilter        = "myke-filter"
	flagOutput        = "myke-output"
	flagExplain       = "myke-explain"
	flagWatch         = "myke-watch"
	flagREPL          = "myke-repl"
	flagLogLevel      = "myke-log-level"
	flagConfig        = "myke-config"
	flagHelpAll       = "help-all"
	flagMykeHelp      = "myke-help"
	flagVersion       = "myke-version"
	flagCreate        = "myke-create"
)

// Invocation holds the parsed myke flags of one command line.
type Invocation struct {
	File          string
	FilePaths     []string
	EnvFile       string
	UpdateModules bool
	Modules       []string
	Filter        []string
	Output        string
	LogLevel      string
	Config        string

	Explain  bool
	Watch    bool
	REPL     bool
	Help     bool
	HelpAll  bool
	MykeHelp bool
	Version  bool
	Create   bool

	set map[string]bool
}

// Overrides returns the config keys set explicitly on the command line.
func (inv *Invocation) Overrides() map[string]any {
	out := make(map[string]any)
	if inv.set[flagFile] {
		out["file.name"] = inv.File
	}
	if inv.set[flagFilePaths] {
		out["file.paths"] = inv.FilePaths
	}
	if inv.set[flagEnvFile] {
		out["env.file"] = inv.EnvFile
	}
	if inv.set[flagUpdateModules] {
		out["modules.update"] = inv.UpdateModules
	}
	if inv.set[flagModule] {
		out["modules.preload"] = inv.Modules
	}
	if inv.set[flagFilter] {
		out["filter"] = inv.Filter
	}
	if inv.set[flagOutput] {
		out["output.format"] = inv.Output
	}
	if inv.set[flagLogLevel] {
		out["log.level"] = inv.LogLevel
	}
	return out
}

// mykeFlags returns the flags myke itself consumes.
func mykeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  flagFile,
			Usage: "Mykefile name or path",
			Value: "Mykefile",
		},
		&cli.StringSliceFlag{
			Name:  flagFilePaths,
			Usage: "directories searched for the Mykefile when its name has no directory",
		},
		&cli.StringFlag{
			Name:  flagEnvFile,
			Usage: "dotenv file loaded into the environment",
		},
		&cli.BoolFlag{
			Name:  flagUpdateModules,
			Usage: "re-download remote modules",
		},
		&cli.StringSliceFlag{
			Name:  flagModule,
			Usage: "extra module (name or URL) to import; repeatable",
		},
		&cli.StringSliceFlag{
			Name:  flagFilter,
			Usage: "glob pattern limiting the visible tasks; repeatable",
		},
		&cli.StringFlag{
			Name:  flagOutput,
			Usage: "task list format: table, json, yaml",
			Value: "table",
		},
		&cli.BoolFlag{
			Name:  flagExplain,
			Usage: "print how the invocation resolves without running it",
		},
		&cli.BoolFlag{
			Name:  flagWatch,
			Usage: "re-run the task whenever a Mykefile changes",
		},
		&cli.BoolFlag{
			Name:  flagREPL,
			Usage: "start an interactive prompt",
		},
		&cli.StringFlag{
			Name:  flagLogLevel,
			Usage: "log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  flagConfig,
			Usage: "config file path",
		},
		&cli.BoolFlag{
			Name:    "help",
			Aliases: []string{"h"},
			Usage:   "show task help",
		},
		&cli.BoolFlag{
			Name:  flagHelpAll,
			Usage: "show help for every task",
		},
		&cli.BoolFlag{
			Name:  flagMykeHelp,
			Usage: "show myke help and the task list",
		},
		&cli.BoolFlag{
			Name:  flagVersion,
			Usage: "print the version",
		},
		&cli.BoolFlag{
			Name:  flagCreate,
			Usage: "write a scaffold Mykefile and exit",
		},
	}
}

// valueFlags are the myke flags that take an argument.
var valueFlags = map[string]bool{
	flagFile:      true,
	flagFilePaths: true,
	flagEnvFile:   true,
	flagModule:    true,
	flagFilter:    true,
	flagOutput:    true,
	flagLogLevel:  true,
	flagConfig:    true,
}

// isMykeFlag reports whether name (without dashes) belongs to myke.
func isMykeFlag(name string) bool {
	return strings.HasPrefix(name, "myke-") || name == flagHelpAll || name == "help" || name == "h"
}

// SplitArgs separates myke flags from task arguments. Both may be
// interleaved; everything from "--" on belongs to the task.
func SplitArgs(args []string) (myke, task []string) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			task = append(task, args[i:]...)
			break
		}
		if !strings.HasPrefix(a, "-") || a == "-" {
			task = append(task, a)
			continue
		}
		name, _, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !isMykeFlag(name) {
			task = append(task, a)
			continue
		}
		myke = append(myke, a)
		if valueFlags[name] && !hasValue && i+1 < len(args) {
			i++
			myke = append(myke, args[i])
		}
	}
	return myke, task
}

// ParseInvocation parses the myke flags out of args and returns the
// remaining task arguments.
func ParseInvocation(prog string, args []string) (*Invocation, []string, error) {
	mykeArgs, taskArgs := SplitArgs(args)

	inv := &Invocation{set: make(map[string]bool)}
	app := &cli.App{
		Name:           prog,
		Flags:          mykeFlags(),
		HideHelp:       true,
		HideVersion:    true,
		Writer:         io.Discard,
		ErrWriter:      io.Discard,
		ExitErrHandler: func(*cli.Context, error) {},
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return domain.ErrInvalidArgument.WithCause(err)
		},
		Action: func(c *cli.Context) error {
			for _, f := range c.App.Flags {
				if name := f.Names()[0]; c.IsSet(name) {
					inv.set[name] = true
				}
			}
			inv.File = c.String(flagFile)
			inv.FilePaths = splitPaths(c.StringSlice(flagFilePaths))
			inv.EnvFile = c.String(flagEnvFile)
			inv.UpdateModules = c.Bool(flagUpdateModules)
			inv.Modules = splitEach(c.StringSlice(flagModule))
			inv.Filter = splitEach(c.StringSlice(flagFilter))
			inv.Output = c.String(flagOutput)
			inv.LogLevel = c.String(flagLogLevel)
			inv.Config = c.String(flagConfig)
			inv.Explain = c.Bool(flagExplain)
			inv.Watch = c.Bool(flagWatch)
			inv.REPL = c.Bool(flagREPL)
			inv.Help = c.Bool("help")
			inv.HelpAll = c.Bool(flagHelpAll)
			inv.MykeHelp = c.Bool(flagMykeHelp)
			inv.Version = c.Bool(flagVersion)
			inv.Create = c.Bool(flagCreate)
			if c.Args().Len() > 0 {
				return domain.ErrInvalidArgument.WithDetailsf("unexpected argument %q", c.Args().First())
			}
			return nil
		},
	}
	if err := app.Run(append([]string{prog}, mykeArgs...)); err != nil {
		return nil, nil, err
	}
	return inv, taskArgs, nil
}

func splitEach(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, confloader.SplitList(v)...)
	}
	return out
}

func splitPaths(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, confloader.SplitPathList(v)...)
	}
	return out
}

// MykeHelp writes the usage of the myke flags.
func MykeHelp(w io.Writer, prog string) {
	io.WriteString(w, "Usage: "+prog+" [myke options] <task> [task options] [args]\n\nMyke options:\n")
	for _, f := range mykeFlags() {
		io.WriteString(w, "   "+f.String()+"\n")
	}
	io.WriteString(w, "\n")
}

// mykefilePath is the path a scaffold is created at.
func mykefilePath(name string) string {
	if name == "" {
		return "Mykefile"
	}
	return filepath.Clean(name)
}
