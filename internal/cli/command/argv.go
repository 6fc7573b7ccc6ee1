package command

import (
	"slices"
	"strconv"
	"strings"

	"github.com/yndnr/myke/internal/core/domain"
	"github.com/yndnr/myke/internal/core/service"
)

// normalizeArgs prepares task arguments for the command tree. The task
// path is resolved first. Everything after the first "--" is returned as
// passthrough and never reaches the flag parser. Flags of the resolved
// task, with their values, are moved ahead of the positionals so that
// "copy a --verbose" parses like "copy --verbose a". Arguments that do
// not resolve to a task are left as they are.
func normalizeArgs(reg *service.Registry, root *domain.Task, args []string) (out, passthrough []string) {
	if i := slices.Index(args, "--"); i >= 0 {
		passthrough = slices.Clone(args[i+1:])
		args = args[:i]
	}

	path := resolvePath(reg, args)
	t := root
	if len(path) > 0 {
		t, _ = reg.Get(path...)
	}

	if t == nil {
		return slices.Clone(args), passthrough
	}

	rest := args[len(path):]
	var flags, positional []string
	for i := 0; i < len(rest); i++ {
		tok := rest[i]
		if !isFlagToken(tok) {
			positional = append(positional, tok)
			continue
		}
		flags = append(flags, tok)
		if takesValue(t, tok) && i+1 < len(rest) {
			i++
			flags = append(flags, rest[i])
		}
	}

	out = make([]string, 0, len(args))
	out = append(out, path...)
	out = append(out, flags...)
	out = append(out, positional...)
	return out, passthrough
}

// resolvePath returns the leading arguments that name a task or group.
func resolvePath(reg *service.Registry, args []string) []string {
	keys := reg.Keys()
	var prefix string
	n := 0
	for _, a := range args {
		if isFlagToken(a) {
			break
		}
		next := domain.CommandName(a)
		if prefix != "" {
			next = prefix + "/" + next
		}
		if !slices.ContainsFunc(keys, func(k string) bool {
			return k == next || strings.HasPrefix(k, next+"/")
		}) {
			break
		}
		prefix = next
		n++
	}
	return args[:n]
}

func isFlagToken(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return false
	}
	return true
}

// takesValue reports whether tok names a non-bool flag of t without an
// inline value.
func takesValue(t *domain.Task, tok string) bool {
	if strings.Contains(tok, "=") {
		return false
	}
	name := strings.TrimLeft(tok, "-")
	for _, p := range t.Params {
		if p.Positional || p.Type == domain.ParamBool {
			continue
		}
		if name == p.FlagName() || (p.Short != "" && name == p.Short) {
			return true
		}
	}
	return false
}
