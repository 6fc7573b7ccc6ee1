package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/myke/internal/core/domain"
)

// paramFlags converts the non-positional parameters of t into flags.
// Required parameters are checked by collectArgs, not by cli, so a
// required flag on the root task does not block subcommands.
func paramFlags(t *domain.Task) []cli.Flag {
	var flags []cli.Flag
	for _, p := range t.Params {
		if p.Positional {
			continue
		}
		flags = append(flags, paramFlag(p))
	}
	return flags
}

func paramFlag(p domain.Param) cli.Flag {
	name := p.FlagName()
	usage := paramUsage(p)
	var aliases []string
	// -h always means help.
	if s := strings.TrimLeft(p.Short, "-"); s != "" && s != "h" {
		aliases = []string{s}
	}
	var env []string
	if p.EnvVar != "" {
		env = []string{p.EnvVar}
	}

	switch p.Type {
	case domain.ParamInt:
		f := &cli.IntFlag{Name: name, Aliases: aliases, Usage: usage, EnvVars: env}
		if v, ok := p.Default.(int); ok {
			f.Value = v
		}
		return f
	case domain.ParamFloat:
		f := &cli.Float64Flag{Name: name, Aliases: aliases, Usage: usage, EnvVars: env}
		if v, ok := p.Default.(float64); ok {
			f.Value = v
		}
		return f
	case domain.ParamBool:
		f := &cli.BoolFlag{Name: name, Aliases: aliases, Usage: usage, EnvVars: env}
		if v, ok := p.Default.(bool); ok {
			f.Value = v
		}
		return f
	case domain.ParamStrings:
		f := &cli.StringSliceFlag{Name: name, Aliases: aliases, Usage: usage, EnvVars: env}
		if v, ok := p.Default.([]string); ok {
			f.Value = cli.NewStringSlice(v...)
		}
		return f
	case domain.ParamInts:
		f := &cli.IntSliceFlag{Name: name, Aliases: aliases, Usage: usage, EnvVars: env}
		if v, ok := p.Default.([]int); ok {
			f.Value = cli.NewIntSlice(v...)
		}
		return f
	case domain.ParamFloats:
		f := &cli.Float64SliceFlag{Name: name, Aliases: aliases, Usage: usage, EnvVars: env}
		if v, ok := p.Default.([]float64); ok {
			f.Value = cli.NewFloat64Slice(v...)
		}
		return f
	default:
		f := &cli.StringFlag{Name: name, Aliases: aliases, Usage: usage, EnvVars: env}
		if v, ok := p.Default.(string); ok {
			f.Value = v
		}
		return f
	}
}

func paramUsage(p domain.Param) string {
	usage := p.Usage
	if len(p.Choices) > 0 {
		usage = strings.TrimSpace(usage + " (one of: " + strings.Join(p.Choices, ", ") + ")")
	}
	if p.Required && p.Default == nil {
		usage = strings.TrimSpace(usage + " (required)")
	}
	return usage
}

// argsUsage describes the positional parameters, e.g. "<src> [dest...]".
func argsUsage(t *domain.Task) string {
	var parts []string
	for _, p := range t.Params {
		if !p.Positional {
			continue
		}
		name := p.FlagName()
		if p.Type.IsList() {
			name += "..."
		}
		if p.Required && p.Default == nil {
			parts = append(parts, "<"+name+">")
		} else {
			parts = append(parts, "["+name+"]")
		}
	}
	return strings.Join(parts, " ")
}

// collectArgs reads the parsed flags and positional arguments of t.
// Positionals are consumed in declaration order; a list positional takes
// everything left. Arguments beyond the declared ones become Rest,
// followed by passthrough.
func collectArgs(c *cli.Context, t *domain.Task, passthrough []string) (domain.Args, error) {
	values := make(map[string]any, len(t.Params))
	positional := c.Args().Slice()

	for _, p := range t.Params {
		var (
			v   any
			err error
		)
		if p.Positional {
			v, positional, err = takePositional(p, positional)
		} else {
			v, err = flagValue(c, p)
		}
		if err != nil {
			return domain.Args{}, err
		}
		if err := p.CheckChoice(v); err != nil {
			return domain.Args{}, err
		}
		values[p.Name] = v
	}
	return domain.NewArgs(values, append(positional, passthrough...)), nil
}

func flagValue(c *cli.Context, p domain.Param) (any, error) {
	name := p.FlagName()
	if p.Required && p.Default == nil && !c.IsSet(name) {
		return nil, domain.ErrMissingArgument.WithDetailsf("--%s", name)
	}
	switch p.Type {
	case domain.ParamInt:
		return c.Int(name), nil
	case domain.ParamFloat:
		return c.Float64(name), nil
	case domain.ParamBool:
		return c.Bool(name), nil
	case domain.ParamStrings:
		return c.StringSlice(name), nil
	case domain.ParamInts:
		return c.IntSlice(name), nil
	case domain.ParamFloats:
		return c.Float64Slice(name), nil
	default:
		return c.String(name), nil
	}
}

func takePositional(p domain.Param, args []string) (any, []string, error) {
	if len(args) == 0 {
		if p.Required && p.Default == nil {
			return nil, nil, domain.ErrMissingArgument.WithDetails(p.FlagName())
		}
		if p.Default != nil {
			return p.Default, nil, nil
		}
		return p.Zero(), nil, nil
	}

	if p.Type.IsList() {
		items := make([]any, len(args))
		for i, a := range args {
			v, err := domain.ParseValue(p.Type.Elem(), a)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", p.FlagName(), err)
			}
			items[i] = v
		}
		v, err := domain.Coerce(p.Type, items)
		return v, nil, err
	}

	v, err := domain.ParseValue(p.Type, args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", p.FlagName(), err)
	}
	return v, args[1:], nil
}
