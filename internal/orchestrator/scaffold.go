package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// projectDirs lists the working directories the application expects, in creation order
func (o *implOrchestrator) projectDirs() []string {
	models := o.cfg.Models.Dir
	return []string{
		models,
		filepath.Join(models, "whisper"),
		filepath.Join(models, "pyannote"),
		o.cfg.Paths.Input,
		o.cfg.Paths.Output,
		o.cfg.Paths.Config,
		o.cfg.Paths.Modules,
		o.cfg.Paths.Utils,
	}
}

// scaffold creates missing project directories and leaves existing ones untouched
func (o *implOrchestrator) scaffold(ctx context.Context, st *runState) error {
	for _, dir := range o.projectDirs() {
		path := st.resolve(dir)

		info, err := os.Stat(path)
		switch {
		case err == nil && info.IsDir():
			o.logger.Debug(ctx, "Directory exists: %s", path)
			st.existing = append(st.existing, path)
			continue
		case err == nil:
			return newPhaseError(PhaseScaffold, ErrConfiguration,
				"Move or rename the file so the directory can be created.",
				fmt.Errorf("%s exists and is not a directory", path))
		case !errMissing(err):
			return newPhaseError(PhaseScaffold, ErrConfiguration,
				"Check permissions on the project directory.",
				fmt.Errorf("inspect %s: %w", path, err))
		}

		if err := os.MkdirAll(path, 0o755); err != nil {
			return newPhaseError(PhaseScaffold, ErrConfiguration,
				"Check permissions on the project directory.",
				fmt.Errorf("create directory %s: %w", path, err))
		}
		o.logger.Info(ctx, "Created directory: %s", path)
		st.created = append(st.created, path)
	}

	o.logger.Info(ctx, "Directories ready (%d created, %d already present)", len(st.created), len(st.existing))
	return nil
}
