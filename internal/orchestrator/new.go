package orchestrator

import (
	"io"
	"os"
	"runtime"

	"github.com/nguyentantai21042004/workflow-setup/internal/config"
	"github.com/nguyentantai21042004/workflow-setup/internal/logger"
	"github.com/nguyentantai21042004/workflow-setup/internal/prompt"
	"github.com/nguyentantai21042004/workflow-setup/internal/requirements"
	"github.com/nguyentantai21042004/workflow-setup/pkg/executor"
)

type implOrchestrator struct {
	cfg      config.Config
	executor executor.Executor
	checker  requirements.Checker
	confirm  prompt.ConfirmFunc
	logger   logger.Logger
	output   io.Writer

	goos    string
	environ func() []string
}

// New creates a new Orchestrator instance.
// cfg is copied and never modified. Child process output is streamed to out when it is non-nil.
func New(cfg config.Config, exec executor.Executor, checker requirements.Checker, confirm prompt.ConfirmFunc, log logger.Logger, out io.Writer) Orchestrator {
	if confirm == nil {
		confirm = prompt.AssumeNo
	}
	return &implOrchestrator{
		cfg:      cfg,
		executor: exec,
		checker:  checker,
		confirm:  confirm,
		logger:   log,
		output:   out,
		goos:     runtime.GOOS,
		environ:  os.Environ,
	}
}
