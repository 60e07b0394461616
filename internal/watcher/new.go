package watcher

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/workflow-setup/internal/logger"
)

// New creates a Watcher over dirs and every directory below them
func New(dirs []string, handler EventHandler, log logger.Logger) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &implWatcher{
		dirs:    dirs,
		handler: handler,
		logger:  log,
		watcher: watcher,
		seen:    make(map[string]bool),
	}

	for _, dir := range dirs {
		if err := w.addTree(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("add watch path: %w", err)
		}
	}

	return w, nil
}

// addTree watches root and its existing subdirectories
func (w *implWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}
