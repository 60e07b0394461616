package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/nguyentantai21042004/workflow-setup/pkg/executor"
)

// pip runs `python -m pip args...` against the bound environment, streaming its output
func (o *implOrchestrator) pip(ctx context.Context, st *runState, args ...string) error {
	cmd := executor.Command{
		Name:   st.env.Python,
		Args:   append([]string{"-m", "pip"}, args...),
		Dir:    st.root,
		Env:    st.env.Environ(o.environ()),
		Output: o.output,
	}
	o.logger.Debug(ctx, "Running: %s", cmd)

	_, err := o.executor.Run(ctx, cmd)
	return err
}

// bootstrap upgrades pip and the baseline build tooling
func (o *implOrchestrator) bootstrap(ctx context.Context, st *runState) error {
	if err := o.pip(ctx, st, "install", "--upgrade", "pip", "setuptools", "wheel"); err != nil {
		return newPhaseError(PhaseBootstrap, ErrEnvironment,
			"Check network access and proxy settings (HTTPS_PROXY, PIP_INDEX_URL), then rerun setup.",
			fmt.Errorf("upgrade pip: %w", err))
	}

	o.logger.Info(ctx, "pip, setuptools and wheel are up to date")
	return nil
}

// installDependencies installs the manifest, then any local wheels next to it
func (o *implOrchestrator) installDependencies(ctx context.Context, st *runState) error {
	manifest := st.resolve(o.cfg.Python.Manifest)

	info, err := os.Stat(manifest)
	if err != nil || info.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s is a directory", manifest)
		} else if errMissing(err) {
			err = fmt.Errorf("manifest not found: %s", manifest)
		}
		return newPhaseError(PhaseInstallDeps, ErrConfiguration,
			"Run setup from the project root (where requirements.txt lives) or pass --project-root.", err)
	}

	args := []string{"install", "-r", manifest}
	if o.cfg.Force {
		args = append(args, "--force-reinstall")
		o.logger.Info(ctx, "Force reinstalling every package from %s", manifest)
	} else {
		o.logger.Info(ctx, "Installing packages from %s", manifest)
	}

	if err := o.pip(ctx, st, args...); err != nil {
		return newPhaseError(PhaseInstallDeps, ErrEnvironment,
			"Read the pip output above; missing system libraries or an unsupported Python version are the usual causes.",
			fmt.Errorf("install dependencies: %w", err))
	}
	o.logger.Info(ctx, "Dependencies installed")

	o.installLocalWheels(ctx, st, filepath.Dir(manifest))
	return nil
}

// installLocalWheels installs optional wheel artifacts; failures only warn
func (o *implOrchestrator) installLocalWheels(ctx context.Context, st *runState, dir string) {
	wheels, err := filepath.Glob(filepath.Join(dir, o.cfg.Python.WheelPattern))
	if err != nil {
		o.logger.Warn(ctx, "Invalid wheel pattern %q: %v", o.cfg.Python.WheelPattern, err)
		return
	}
	if len(wheels) == 0 {
		o.logger.Debug(ctx, "No local wheels matching %s in %s", o.cfg.Python.WheelPattern, dir)
		return
	}
	sort.Strings(wheels)

	for _, wheel := range wheels {
		args := []string{"install", wheel}
		if o.cfg.Force {
			args = append(args, "--force-reinstall")
		}

		o.logger.Info(ctx, "Installing local wheel: %s", filepath.Base(wheel))
		if err := o.pip(ctx, st, args...); err != nil {
			o.logger.Warn(ctx, "Local wheel %s failed to install, continuing: %v", filepath.Base(wheel), err)
			continue
		}
		st.wheels = append(st.wheels, filepath.Base(wheel))
	}
}
