package command

import (
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/myke/internal/core/domain"
	"github.com/yndnr/myke/internal/core/service"
	"github.com/yndnr/myke/internal/telemetry/logger"
)

// treeOptions controls how buildApp wires actions.
type treeOptions struct {
	prog    string
	stdout  io.Writer
	stderr  io.Writer
	explain bool
	shell   string

	// passthrough holds the arguments after "--", appended to Rest.
	passthrough []string

	// notFound builds the error for an unknown task path.
	notFound func(path []string) error
}

// builder turns a registry into a cli.App.
type builder struct {
	opts   treeOptions
	app    *cli.App
	groups map[string]*cli.Command
}

// buildApp creates the task command tree. Tasks become commands, parents
// become nested subcommands (synthetic groups when no task owns the
// parent name) and parameters become flags or positional arguments.
// root, when non-nil, is the app action: it runs when no task name is
// given.
func buildApp(reg *service.Registry, root *domain.Task, opts treeOptions) *cli.App {
	if opts.notFound == nil {
		opts.notFound = func(path []string) error {
			return domain.ErrTaskNotFound.WithDetails(strings.Join(path, " "))
		}
	}

	b := &builder{
		opts:   opts,
		groups: make(map[string]*cli.Command),
	}
	b.app = &cli.App{
		Name:            opts.prog,
		HideVersion:     true,
		HideHelpCommand: true,
		Writer:          opts.stdout,
		ErrWriter:       opts.stderr,
		ExitErrHandler:  func(*cli.Context, error) {},
		OnUsageError:    usageError,
	}

	if root != nil {
		b.app.Usage = firstLine(root.Description)
		b.app.Description = root.Description
		b.app.ArgsUsage = argsUsage(root)
		b.app.Flags = paramFlags(root)
		b.app.Action = b.action(root)
	} else {
		b.app.Action = b.groupAction(nil)
	}

	for _, t := range reg.Tasks() {
		cmd := b.command(t.Path())
		cmd.Usage = firstLine(t.Description)
		cmd.Description = t.Description
		cmd.ArgsUsage = argsUsage(t)
		cmd.Flags = paramFlags(t)
		cmd.Action = b.action(t)
	}
	return b.app
}

// command returns the command at path, creating synthetic groups for
// missing ancestors.
func (b *builder) command(path []string) *cli.Command {
	key := strings.Join(path, "/")
	if cmd, ok := b.groups[key]; ok {
		return cmd
	}

	cmd := &cli.Command{
		Name:            path[len(path)-1],
		Usage:           "tasks under " + strings.Join(path, " "),
		HideHelpCommand: true,
		OnUsageError:    usageError,
		Action:          b.groupAction(path),
	}
	b.groups[key] = cmd

	if len(path) == 1 {
		b.app.Commands = append(b.app.Commands, cmd)
	} else {
		parent := b.command(path[:len(path)-1])
		parent.Subcommands = append(parent.Subcommands, cmd)
	}
	return cmd
}

// groupAction handles a group invoked without a known subcommand.
func (b *builder) groupAction(path []string) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.Args().Present() {
			return b.opts.notFound(append(append([]string(nil), path...), c.Args().First()))
		}
		if len(path) == 0 {
			return cli.ShowAppHelp(c)
		}
		return cli.ShowSubcommandHelp(c)
	}
}

func (b *builder) action(t *domain.Task) cli.ActionFunc {
	return func(c *cli.Context) error {
		args, err := collectArgs(c, t, b.opts.passthrough)
		if err != nil {
			return err
		}
		ctx := logger.WithTask(c.Context, t.Key())
		if b.opts.explain {
			return explain(ctx, b.opts.stdout, t, args, b.opts.shell)
		}
		logger.L(ctx).Debug("dispatching task", "source", t.Source, "kind", t.Kind)
		return t.Handler(ctx, args)
	}
}

func usageError(_ *cli.Context, err error, _ bool) error {
	return domain.ErrInvalidArgument.WithCause(err)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	line, _, _ := strings.Cut(s, "\n")
	return line
}
