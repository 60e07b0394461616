package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/workflow-setup/internal/pyenv"
	"github.com/nguyentantai21042004/workflow-setup/internal/requirements"
)

// checkRequirements fails with ErrEnvironment when the interpreter or pip is unusable
func (o *implOrchestrator) checkRequirements(ctx context.Context, st *runState) error {
	report := o.checker.Check(ctx, o.cfg)
	st.report = report

	for _, item := range report.Items {
		switch item.Status {
		case requirements.StatusPass:
			o.logger.Info(ctx, "[ok]   %s: %s", item.Name, item.Message)
		case requirements.StatusWarn:
			o.logger.Warn(ctx, "[warn] %s: %s", item.Name, item.Message)
			if item.Hint != "" {
				o.logger.Warn(ctx, "       %s", item.Hint)
			}
		case requirements.StatusFail:
			o.logger.Error(ctx, "[fail] %s: %s", item.Name, item.Message)
		}
	}

	if failures := report.Failures(); len(failures) > 0 {
		messages := make([]string, 0, len(failures))
		hints := make([]string, 0, len(failures))
		for _, item := range failures {
			messages = append(messages, item.Message)
			if item.Hint != "" {
				hints = append(hints, item.Hint)
			}
		}
		return newPhaseError(PhaseRequirements, ErrEnvironment, strings.Join(hints, " "),
			fmt.Errorf("%s", strings.Join(messages, "; ")))
	}

	// Later phases run against the host interpreter until a venv is activated
	st.env = pyenv.Ambient(report.Python)
	return nil
}
