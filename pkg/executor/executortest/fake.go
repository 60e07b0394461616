// Package executortest provides a recording Executor for tests.
package executortest

import (
	"context"
	"strings"
	"sync"

	"github.com/nguyentantai21042004/workflow-setup/pkg/executor"
)

// Fake records every command and answers through Handler.
// A nil Handler makes every command succeed with empty output.
type Fake struct {
	Handler func(c executor.Command) (string, error)

	mu    sync.Mutex
	calls []executor.Command
}

func (f *Fake) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return f.Run(ctx, executor.Command{Name: name, Args: args})
}

func (f *Fake) Run(ctx context.Context, c executor.Command) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Handler == nil {
		return "", nil
	}
	return f.Handler(c)
}

// Commands returns a copy of the recorded commands in call order
func (f *Fake) Commands() []executor.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]executor.Command(nil), f.calls...)
}

// Find returns the recorded commands whose rendered command line contains substr
func (f *Fake) Find(substr string) []executor.Command {
	var found []executor.Command
	for _, c := range f.Commands() {
		if strings.Contains(c.String(), substr) {
			found = append(found, c)
		}
	}
	return found
}
