package repl

import (
	"slices"
	"strings"

	"github.com/xrash/smetrics"
)

// builtins are the words the REPL itself understands.
var builtins = []string{"exit", "help", "quit"}

// Completer provides task name completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer for the given task names. Names may
// be keys ("docker/build") or display names ("docker build").
func NewCompleter(names ...string) *Completer {
	seen := make(map[string]bool)
	var commands []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			commands = append(commands, s)
		}
	}
	for _, n := range names {
		add(strings.ReplaceAll(n, "/", " "))
	}
	for _, b := range builtins {
		add(b)
	}
	slices.Sort(commands)
	return &Completer{commands: commands}
}

// Complete returns completion suggestions for the given prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Suggest returns up to n known names close to name, nearest first.
// Names sharing name as a prefix always qualify; otherwise the edit
// distance must be at most a third of the longer word, rounded up.
func (c *Completer) Suggest(name string, n int) []string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "/", " ")
	if name == "" {
		return nil
	}

	type scored struct {
		cmd  string
		dist int
	}
	var found []scored
	for _, cmd := range c.commands {
		if slices.Contains(builtins, cmd) || cmd == name {
			continue
		}
		d := distance(name, cmd)
		if strings.HasPrefix(cmd, name) {
			d = 0
		}
		limit := (max(len(name), len(cmd)) + 2) / 3
		if d <= limit {
			found = append(found, scored{cmd, d})
		}
	}
	slices.SortStableFunc(found, func(a, b scored) int { return a.dist - b.dist })

	out := make([]string, 0, len(found))
	for _, s := range found {
		if n > 0 && len(out) == n {
			break
		}
		out = append(out, s.cmd)
	}
	return out
}

// distance is the Levenshtein edit distance between a and b.
func distance(a, b string) int {
	return smetrics.WagnerFischer(a, b, 1, 1, 1)
}
