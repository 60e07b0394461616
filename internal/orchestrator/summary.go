package orchestrator

import (
	"context"
	"path/filepath"
	"strings"
)

// summary prints the resolved configuration and how to continue
func (o *implOrchestrator) summary(ctx context.Context, st *runState) error {
	env := o.downstreamEnv(st)
	base := o.environ()

	venv := venvSkipped
	if !o.cfg.Python.SkipVenv {
		venv = st.venvStatus + ": " + st.layout.Root
	}

	models := o.cfg.Models.Whisper
	switch {
	case o.cfg.Models.Skip:
		models += " (download skipped)"
	case st.cacheSize != "":
		models += " (cache " + st.cacheSize + ")"
	}

	o.logger.Info(ctx, "========================================")
	o.logger.Info(ctx, "Setup completed successfully!")
	o.logger.Info(ctx, "Python:            %s (%s)", st.env.Python, st.report.PythonVersion)
	o.logger.Info(ctx, "Environment:       %s", venv)
	o.logger.Info(ctx, "Models directory:  %s", st.resolve(o.cfg.Models.Dir))
	o.logger.Info(ctx, "Whisper model:     %s", models)
	o.logger.Info(ctx, "Force reinstall:   %t", o.cfg.Force)
	o.logger.Info(ctx, "Directories:       %d created, %d already present", len(st.created), len(st.existing))
	if len(st.wheels) > 0 {
		o.logger.Info(ctx, "Local wheels:      %s", strings.Join(st.wheels, ", "))
	}
	for _, kv := range env.Exports(nil) {
		o.logger.Debug(ctx, "Child environment: %s", kv)
	}

	o.logger.Info(ctx, "")
	o.logger.Info(ctx, "Environment for the application:")
	for _, key := range downstreamVars {
		if v, ok := env.Get(base, key); ok {
			o.logger.Info(ctx, "  %s", o.exportLine(key, v))
		}
	}

	o.logger.Info(ctx, "")
	o.logger.Info(ctx, "Next steps:")
	if !o.cfg.Python.SkipVenv {
		o.logger.Info(ctx, "  %s", o.activateHint(st))
	}
	o.logger.Info(ctx, "  Put audio files in %s", st.resolve(o.cfg.Paths.Input))
	o.logger.Info(ctx, "  python main.py <audio-file>        # transcribe, summarize, judge")
	o.logger.Info(ctx, "  python main.py --list-files        # list files in %s", o.cfg.Paths.Input)
	o.logger.Info(ctx, "  python run_api.py                  # start the API on http://localhost:8000")
	o.logger.Info(ctx, "========================================")

	return nil
}

func (o *implOrchestrator) exportLine(key, value string) string {
	if o.goos == "windows" {
		return "set " + key + "=" + value
	}
	return "export " + key + "=" + value
}

func (o *implOrchestrator) activateHint(st *runState) string {
	if o.goos == "windows" {
		return st.layout.Activate
	}
	return "source " + filepath.ToSlash(st.layout.Activate)
}
