package fetch

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/yndnr/myke/internal/cli/output"
	"github.com/yndnr/myke/internal/core/domain"
)

// Download writes the body of url to dest, creating parent directories.
// The file appears atomically: a failed download leaves dest untouched.
func (c *Client) Download(ctx context.Context, url, dest string) (int64, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	var w io.Writer = tmp
	var bar *output.ProgressBar
	if c.progress != nil {
		bar = output.NewProgressBar(c.progress, filepath.Base(dest), resp.ContentLength)
		w = io.MultiWriter(tmp, bar)
	}

	n, err := io.Copy(w, resp.Body)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		tmp.Close()
		return n, domain.ErrFetchFailed.WithDetails(url).WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		return n, err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return n, err
	}
	return n, os.Rename(tmp.Name(), dest)
}
