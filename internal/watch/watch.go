// Package watch reruns work whenever a set of input files changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events a single save produces.
const DefaultDebounce = 250 * time.Millisecond

// Run calls onChange after any of paths is written, created or renamed into
// place, once events have been quiet for debounce. It blocks until ctx is
// cancelled and returns nil then.
//
// The parent directories are watched rather than the files, so editors and
// exporters that save atomically (write temp, rename over) keep triggering.
func Run(ctx context.Context, paths []string, debounce time.Duration, logger *slog.Logger, onChange func(context.Context)) error {
	if len(paths) == 0 {
		return fmt.Errorf("watch: no paths")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	targets := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("watch: %s: %w", p, err)
		}
		targets[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch: %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	logger.Info("watch: waiting for changes", "paths", paths)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !targets[name] {
				continue
			}
			logger.Debug("watch: change", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case <-timer.C:
			onChange(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch: watcher error", "err", err)
		}
	}
}
