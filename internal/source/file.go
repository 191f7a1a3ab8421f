package source

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/pulse/internal/errors"
	"github.com/Iron-Ham/pulse/internal/logging"
	"github.com/Iron-Ham/pulse/internal/metrics"
)

// DefaultFileDebounce collapses the burst of events editors produce for a
// single save.
const DefaultFileDebounce = 50 * time.Millisecond

// File emits the integer stored in a file each time the file is written.
//
// The parent directory is watched rather than the file itself so that
// editors replacing the file through a rename are still observed. The
// current content is emitted once at startup if the file exists.
type File struct {
	Name     string // label for logs and metrics
	Path     string
	Debounce time.Duration
	Logger   *logging.Logger
}

// Run implements Source.
func (f File) Run(ctx context.Context, emit func(int64)) error {
	logger := logging.OrNop(f.Logger).WithComponent("source").With("source", f.Name, "path", f.Path)

	path, err := filepath.Abs(f.Path)
	if err != nil {
		return errors.NewSourceError("resolve counter file path", err).WithSource(f.Name)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewSourceError("create file watcher", err).WithSource(f.Name)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return errors.NewSourceError("watch counter directory", err).WithSource(f.Name)
	}

	debounce := f.Debounce
	if debounce <= 0 {
		debounce = DefaultFileDebounce
	}

	read := func() {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				metrics.SourceErrorsTotal.WithLabelValues(f.Name).Inc()
				logger.Warn("failed to read counter file", "error", err.Error())
			}
			return
		}
		v, err := parseCount(string(data))
		if err != nil {
			metrics.SourceErrorsTotal.WithLabelValues(f.Name).Inc()
			logger.Warn("ignoring counter file content", "error", err.Error())
			return
		}
		emit(v)
	}

	read()

	timer := time.NewTimer(0)
	<-timer.C // drain initial timer
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)

		case <-timer.C:
			read()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			metrics.SourceErrorsTotal.WithLabelValues(f.Name).Inc()
			logger.Warn("file watcher error", "error", err.Error())
		}
	}
}
