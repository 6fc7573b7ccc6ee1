package textio

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	version "github.com/aquasecurity/go-pep440-version"

	"github.com/yndnr/myke/internal/core/domain"
)

// IsVersion reports whether s is a PEP 440 release version, with an
// optional leading "v".
func IsVersion(s string) bool {
	_, err := version.Parse(s)
	return err == nil
}

// RepoRoot returns the top-level directory of the git repository that
// contains dir (the working directory when dir is empty).
func RepoRoot(ctx context.Context, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &domain.ProcessError{
				Cmd:      "git rev-parse --show-toplevel",
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(string(exitErr.Stderr)),
			}
		}
		return "", domain.ErrProcessFailed.WithCause(err)
	}
	return strings.TrimSpace(string(out)), nil
}
