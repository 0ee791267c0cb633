package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher watches the configuration file and invokes a reload
// callback when it changes, debounced so editor write bursts trigger a
// single reload. Only the daemon uses this; one-shot commands read the
// config once and exit.
type ConfigWatcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

// NewConfigWatcher creates a watcher for the given config file path.
func NewConfigWatcher(path string, logger *slog.Logger) *ConfigWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigWatcher{
		path:     path,
		debounce: 250 * time.Millisecond,
		logger:   logger.With("component", "schedule.watcher"),
	}
}

// Watch blocks until ctx is canceled, calling onReload after each
// settled change to the config file. Reload errors are logged and the
// previous configuration stays in effect.
func (w *ConfigWatcher) Watch(ctx context.Context, onReload func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files by rename
	// and a file-level watch goes stale after the first save.
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	w.logger.Info("watching config file", "path", w.path)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.logger.Info("config file changed, reloading")
			if err := onReload(); err != nil {
				w.logger.Error("config reload failed, keeping previous configuration", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}
