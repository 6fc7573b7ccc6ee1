package runner

import (
	"context"
	"strings"

	"github.com/yndnr/myke/internal/core/domain"
)

// Sh runs a shell command line with opts.
func (r *Runner) Sh(ctx context.Context, cmdline string, opts domain.ShellOptions) (*Result, error) {
	return r.Run(ctx, domain.Script{Shell: cmdline}, opts)
}

// Stdout runs script with output captured and returns trimmed stdout.
// Output is not echoed unless opts.Echo is set.
func (r *Runner) Stdout(ctx context.Context, script domain.Script, opts domain.ShellOptions) (string, error) {
	opts.CaptureOutput = true
	res, err := r.Run(ctx, script, opts)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// ShStdout is Stdout for a shell command line with checking on and echo off.
func (r *Runner) ShStdout(ctx context.Context, cmdline string) (string, error) {
	return r.Stdout(ctx, domain.Script{Shell: cmdline}, domain.ShellOptions{Check: true})
}

// ShStdoutLines is ShStdout split into trimmed, non-empty lines.
func (r *Runner) ShStdoutLines(ctx context.Context, cmdline string) ([]string, error) {
	out, err := r.ShStdout(ctx, cmdline)
	if err != nil {
		return nil, err
	}
	return SplitAndTrim(out), nil
}

// SplitAndTrim splits text on newlines, trims each line and drops empty ones.
func SplitAndTrim(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
