package watcher

import "context"

// Watcher defines the interface for model cache monitoring
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// EventHandler is called once for every new file under the watched directories
type EventHandler func(ctx context.Context, filePath string)
