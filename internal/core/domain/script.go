package domain

import (
	"fmt"
	"strings"
	"time"
)

// Script is the normalized output of a shell task: either a shell
// command line or an argument vector executed without a shell.
type Script struct {
	Shell string
	Argv  []string
}

// IsArgv reports whether the script runs as an argument vector.
func (s Script) IsArgv() bool {
	return len(s.Argv) > 0
}

// String renders the script for echo and explain output.
func (s Script) String() string {
	if !s.IsArgv() {
		return s.Shell
	}
	parts := make([]string, len(s.Argv))
	for i, a := range s.Argv {
		parts[i] = QuoteArg(a)
	}
	return strings.Join(parts, " ")
}

// QuoteArg quotes a for a POSIX shell. Plain words are returned as is.
func QuoteArg(a string) string {
	if a != "" && !strings.ContainsAny(a, " \t\n'\"\\$`|&;<>()*?[]#~") {
		return a
	}
	return "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
}

// NormalizeScript accepts a string or a sequence of strings. Anything
// else, including an empty result, fails with ErrInvalidScript.
func NormalizeScript(v any) (Script, error) {
	switch x := v.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return Script{}, ErrInvalidScript.WithDetails("empty script")
		}
		return Script{Shell: x}, nil
	case []string:
		if len(x) == 0 {
			return Script{}, ErrInvalidScript.WithDetails("empty argument list")
		}
		return Script{Argv: append([]string(nil), x...)}, nil
	case []any:
		if len(x) == 0 {
			return Script{}, ErrInvalidScript.WithDetails("empty argument list")
		}
		argv := make([]string, len(x))
		for i, it := range x {
			s, ok := it.(string)
			if !ok {
				return Script{}, ErrInvalidScript.WithDetailsf("argument %d is %T", i, it)
			}
			argv[i] = s
		}
		return Script{Argv: argv}, nil
	case Script:
		return x, nil
	}
	return Script{}, ErrInvalidScript.WithDetails(fmt.Sprintf("got %T", v))
}

// ShellOptions controls how a Script runs.
type ShellOptions struct {
	CaptureOutput bool              `json:"capture_output" yaml:"capture_output"`
	Echo          bool              `json:"echo" yaml:"echo"`
	Check         bool              `json:"check" yaml:"check"`
	Cwd           string            `json:"cwd,omitempty" yaml:"cwd,omitempty"`
	Env           map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	EnvUpdate     map[string]string `json:"env_update,omitempty" yaml:"env_update,omitempty"`
	EnvUnset      []string          `json:"env_unset,omitempty" yaml:"env_unset,omitempty"`
	Timeout       time.Duration     `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Executable    string            `json:"executable,omitempty" yaml:"executable,omitempty"`
}

// DefaultShellOptions echoes output and checks the exit status.
func DefaultShellOptions() ShellOptions {
	return ShellOptions{Echo: true, Check: true}
}
