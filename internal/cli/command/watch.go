package command

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/yndnr/myke/internal/cli/config"
	"github.com/yndnr/myke/internal/core/domain"
	"github.com/yndnr/myke/internal/infra/confloader"
	"github.com/yndnr/myke/internal/telemetry/logger"
)

// watch dispatches the invocation, then reloads every task source and
// dispatches again each time an imported file changes. Load and task
// errors are reported and watching goes on; it ends when ctx is done.
func (d *Dispatcher) watch(ctx context.Context, cfg *config.Config, inv *Invocation, taskArgs []string) error {
	log := logger.FromContext(ctx)
	var files []string

	for {
		sess, err := d.open(ctx, cfg)
		if err == nil {
			files = sess.loader.Files()
			err = d.dispatch(ctx, sess, inv, taskArgs)
			sess.close()
		}
		if ctx.Err() != nil {
			return nil
		}
		if len(files) == 0 {
			if err == nil {
				err = domain.ErrMykefileNotFound.WithDetails("nothing to watch")
			}
			return err
		}
		if err != nil {
			fmt.Fprintf(d.stderr, "error: %v\n", err)
		}

		changed, err := d.waitForChange(ctx, files, log)
		if err != nil {
			return err
		}
		if changed == "" {
			return nil
		}
		fmt.Fprintf(d.stderr, "%s changed, reloading\n", filepath.Base(changed))
	}
}

// waitForChange blocks until one of files changes and returns its path,
// or returns "" when ctx is done.
func (d *Dispatcher) waitForChange(ctx context.Context, files []string, log logger.Logger) (string, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return "", err
	}
	defer w.Stop()

	for _, f := range files {
		if err := w.Watch(f); err != nil {
			return "", err
		}
	}

	changed := make(chan string, 1)
	w.OnChange(func(path string) {
		select {
		case changed <- path:
		default:
		}
	})
	w.StartAsync()

	log.Debug("watching for changes", "files", len(files))
	select {
	case <-ctx.Done():
		return "", nil
	case path := <-changed:
		return path, nil
	}
}
