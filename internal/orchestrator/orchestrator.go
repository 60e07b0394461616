package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nguyentantai21042004/workflow-setup/internal/logger"
	"github.com/nguyentantai21042004/workflow-setup/internal/pyenv"
	"github.com/nguyentantai21042004/workflow-setup/internal/requirements"
)

// runState is threaded through the phases of one Run
type runState struct {
	root string

	report requirements.Report
	layout pyenv.Layout
	env    pyenv.Environment

	venvStatus string
	created    []string
	existing   []string
	wheels     []string
	cacheSize  string
}

type step struct {
	phase Phase
	title string
	skip  bool
	run   func(ctx context.Context, st *runState) error
}

func (o *implOrchestrator) steps() []step {
	return []step{
		{PhaseRequirements, "Checking system requirements", false, o.checkRequirements},
		{PhaseProvision, "Provisioning virtual environment", o.cfg.Python.SkipVenv, o.provision},
		{PhaseActivate, "Activating virtual environment", o.cfg.Python.SkipVenv, o.activate},
		{PhaseBootstrap, "Upgrading pip and build tooling", false, o.bootstrap},
		{PhaseInstallDeps, "Installing dependencies", false, o.installDependencies},
		{PhaseScaffold, "Creating project directories", false, o.scaffold},
		{PhaseModels, "Downloading models", o.cfg.Models.Skip, o.acquireModels},
		{PhaseSummary, "Summary", false, o.summary},
	}
}

// Run executes the setup chain in order and stops at the first fatal error.
// Phases already completed are left as they are.
func (o *implOrchestrator) Run(ctx context.Context) (Result, error) {
	var res Result
	startTime := time.Now()

	root, err := filepath.Abs(o.cfg.Paths.ProjectRoot)
	if err != nil {
		return res, newPhaseError(PhaseRequirements, ErrConfiguration,
			"Pass an existing directory with --project-root.", fmt.Errorf("resolve project root: %w", err))
	}
	st := &runState{root: root}

	o.logger.Info(ctx, "========================================")
	o.logger.Info(ctx, "Audio Workflow Setup")
	o.logger.Info(ctx, "========================================")
	o.logger.Info(ctx, "Project root: %s", root)

	for _, s := range o.steps() {
		pctx := logger.WithPhase(ctx, string(s.phase))
		if s.skip {
			o.logger.Info(pctx, "Skipping: %s", s.title)
			res.Skipped = append(res.Skipped, s.phase)
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("setup interrupted before %s: %w", s.phase, err)
		}

		o.logger.Info(pctx, "==> %s", s.title)
		if err := s.run(pctx, st); err != nil {
			return res, err
		}
		res.Completed = append(res.Completed, s.phase)
	}

	o.logger.Debug(ctx, "Setup finished in %s", time.Since(startTime).Round(time.Millisecond))
	return res, nil
}

// resolve anchors a configured path at the project root
func (st *runState) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(st.root, p)
}
