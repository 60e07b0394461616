package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/workflow-setup/internal/logger"
)

type implWatcher struct {
	dirs    []string
	handler EventHandler
	logger  logger.Logger
	watcher *fsnotify.Watcher
	seen    map[string]bool
}

// Start reports files appearing under the watched directories until ctx is done
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Debug(ctx, "Cache watcher started. Monitoring: %s", strings.Join(w.dirs, ", "))

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug(ctx, "Cache watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			// Downloads either create the final file or rename a partial one into place
			if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.handleCreate(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Warn(ctx, "Cache watcher error: %v", err)
		}
	}
}

func (w *implWatcher) handleCreate(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil {
		// Renamed away or removed before we looked
		return
	}

	if !info.IsDir() {
		w.report(ctx, path)
		return
	}

	// Files may land in a new directory before it is watched
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.watcher.Add(p); err != nil {
				w.logger.Debug(ctx, "Cannot watch %s: %v", p, err)
			}
			return nil
		}
		w.report(ctx, p)
		return nil
	})
}

func (w *implWatcher) report(ctx context.Context, path string) {
	if w.seen[path] || isPartial(path) {
		return
	}
	w.seen[path] = true
	w.handler(ctx, path)
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

// isPartial reports download temporaries and lock files
func isPartial(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, suffix := range []string{".incomplete", ".lock", ".tmp", ".part"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
