package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/workflow-setup/internal/pyenv"
	"github.com/nguyentantai21042004/workflow-setup/pkg/executor"
)

const (
	venvCreated = "created"
	venvReused  = "reused"
	venvSkipped = "skipped"

	virtualEnvProbe = "import os; print(os.environ.get('VIRTUAL_ENV', ''))"
)

// provision creates the virtual environment, asking before replacing an existing one
func (o *implOrchestrator) provision(ctx context.Context, st *runState) error {
	layout := pyenv.NewLayout(st.resolve(o.cfg.Python.VenvPath), o.goos)
	st.layout = layout

	if layout.Exists() {
		if o.cfg.Force {
			o.logger.Info(ctx, "Reusing existing virtual environment: %s", layout.Root)
			st.venvStatus = venvReused
			return nil
		}

		question := fmt.Sprintf("Virtual environment already exists at %s. Recreate it?", layout.Root)
		if !o.confirm(ctx, question) {
			o.logger.Info(ctx, "Keeping existing virtual environment: %s", layout.Root)
			st.venvStatus = venvReused
			return nil
		}

		o.logger.Info(ctx, "Removing existing virtual environment: %s", layout.Root)
		if err := os.RemoveAll(layout.Root); err != nil {
			return newPhaseError(PhaseProvision, ErrProvisioning,
				"Close programs using the environment and delete it manually.",
				fmt.Errorf("remove existing environment: %w", err))
		}
	}

	o.logger.Info(ctx, "Creating virtual environment: %s", layout.Root)
	cmd := executor.Command{
		Name: st.env.Python,
		Args: []string{"-m", "venv", layout.Root},
		Dir:  st.root,
	}
	if _, err := o.executor.Run(ctx, cmd); err != nil {
		return newPhaseError(PhaseProvision, ErrProvisioning,
			"On Debian/Ubuntu install the python3-venv package; otherwise reinstall Python with venv support.",
			fmt.Errorf("create virtual environment: %w", err))
	}

	if !layout.Exists() {
		return newPhaseError(PhaseProvision, ErrProvisioning,
			"Delete the directory and run setup again, or use --skip-venv.",
			fmt.Errorf("activation script missing after creation: %s", layout.Activate))
	}

	st.venvStatus = venvCreated
	o.logger.Info(ctx, "Virtual environment ready")
	return nil
}

// activate binds later phases to the venv interpreter and verifies the binding took effect
func (o *implOrchestrator) activate(ctx context.Context, st *runState) error {
	env := pyenv.Activated(st.layout)

	out, err := o.executor.Run(ctx, executor.Command{
		Name: env.Python,
		Args: []string{"-c", virtualEnvProbe},
		Dir:  st.root,
		Env:  env.Environ(o.environ()),
	})
	if err != nil {
		return newPhaseError(PhaseActivate, ErrProvisioning,
			"The environment looks broken; rerun setup and answer yes to recreate it, or delete it manually.",
			fmt.Errorf("run environment interpreter: %w", err))
	}

	got := strings.TrimSpace(out)
	if !o.samePath(got, st.layout.Root) {
		return newPhaseError(PhaseActivate, ErrProvisioning,
			"Another tool may override VIRTUAL_ENV; deactivate other environments (conda, pyenv) and retry.",
			fmt.Errorf("%s not set after activation: got %q, want %q", pyenv.VirtualEnvVar, got, st.layout.Root))
	}

	st.env = env
	o.logger.Info(ctx, "Activated: %s=%s", pyenv.VirtualEnvVar, st.layout.Root)
	return nil
}

func (o *implOrchestrator) samePath(a, b string) bool {
	if a == "" {
		return false
	}
	a, b = filepath.Clean(a), filepath.Clean(b)
	if o.goos == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// errMissing reports whether err means the path does not exist
func errMissing(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
