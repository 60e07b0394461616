package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/nguyentantai21042004/workflow-setup/internal/config"
	"github.com/nguyentantai21042004/workflow-setup/internal/logger"
	"github.com/nguyentantai21042004/workflow-setup/internal/orchestrator"
	"github.com/nguyentantai21042004/workflow-setup/internal/prompt"
	"github.com/nguyentantai21042004/workflow-setup/internal/requirements"
	"github.com/nguyentantai21042004/workflow-setup/pkg/executor"
)

// errReported marks a failure that was already logged
var errReported = errors.New("setup failed")

func main() {
	// Ctrl+C kills the running child and aborts the chain
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd(os.Stdout, runSetup).ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func runSetup(ctx context.Context, cfg config.Config) error {
	log := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)
	log.Debug(ctx, "System: %s/%s, CPU cores: %d", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())

	exec := executor.New()
	orch := orchestrator.New(cfg, exec, requirements.New(exec), prompt.Interactive(), log, os.Stdout)

	if _, err := orch.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn(ctx, "Setup interrupted")
			return errReported
		}
		log.Error(ctx, "Setup failed: %v", err)
		if hint := orchestrator.Hint(err); hint != "" {
			log.Error(ctx, "Hint: %s", hint)
		}
		return errReported
	}
	return nil
}
