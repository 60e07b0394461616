package executor

import (
	"context"
	"io"
)

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	Run(ctx context.Context, cmd Command) (string, error)
}

// Command describes one blocking external invocation.
// A nil Env inherits the current process environment.
// When Output is set, stdout and stderr are also copied to it as the command runs.
type Command struct {
	Name   string
	Args   []string
	Dir    string
	Env    []string
	Output io.Writer
}

// String renders the command line for logs
func (c Command) String() string {
	return joinArgs(append([]string{c.Name}, c.Args...))
}
