package orchestrator

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nguyentantai21042004/workflow-setup/internal/config"
	"github.com/nguyentantai21042004/workflow-setup/internal/dotenv"
	"github.com/nguyentantai21042004/workflow-setup/internal/pyenv"
	"github.com/nguyentantai21042004/workflow-setup/internal/sysinfo"
	"github.com/nguyentantai21042004/workflow-setup/internal/watcher"
	"github.com/nguyentantai21042004/workflow-setup/pkg/executor"
)

// downstreamVars are exported to the downloader and printed for the application
var downstreamVars = []string{pyenv.PythonPathVar, pyenv.WhisperCacheVar, pyenv.HFHomeVar}

const (
	downloaderScript = "download_models.py"
	envFile          = ".env"
	envExampleFile   = ".env.example"
)

// downstreamEnv adds the variables the application and downloader read to the bound environment
func (o *implOrchestrator) downstreamEnv(st *runState) pyenv.Environment {
	models := st.resolve(o.cfg.Models.Dir)
	return st.env.
		Prepend(pyenv.PythonPathVar, st.root).
		Set(pyenv.WhisperCacheVar, filepath.Join(models, "whisper")).
		Set(pyenv.HFHomeVar, filepath.Join(models, "pyannote"))
}

// acquireModels delegates the weight download to the project's Python downloader
func (o *implOrchestrator) acquireModels(ctx context.Context, st *runState) error {
	o.prepareToken(ctx, st)

	env := o.downstreamEnv(st)
	base := o.environ()
	for _, key := range downstreamVars {
		if v, ok := env.Get(base, key); ok {
			o.logger.Info(ctx, "Exporting for downloader: %s=%s", key, v)
		}
	}

	cmd, ok := o.downloaderCommand(st, env)
	if !ok {
		o.logger.Warn(ctx, "Nothing to download: %s is missing and only the pyannote model was requested", downloaderScript)
		return nil
	}

	stopWatch := o.watchCache(ctx, st)
	o.logger.Info(ctx, "Running: %s", cmd)
	_, err := o.executor.Run(ctx, cmd)
	stopWatch()

	if err != nil {
		hint := "Check network access; for pyannote make sure HUGGINGFACE_TOKEN is valid and the model terms are accepted on huggingface.co."
		if code := executor.ExitCode(err); code >= 0 {
			err = fmt.Errorf("downloader exited with status %d: %w", code, err)
		}
		return newPhaseError(PhaseModels, ErrDownload, hint, err)
	}

	o.verifyCache(ctx, st)
	return nil
}

// prepareToken stores a token given on the command line and warns about a missing one
func (o *implOrchestrator) prepareToken(ctx context.Context, st *runState) {
	path := filepath.Join(st.root, envFile)

	if o.cfg.HFToken != "" {
		if err := dotenv.WriteToken(path, filepath.Join(st.root, envExampleFile), o.cfg.HFToken); err != nil {
			o.logger.Warn(ctx, "Could not save Hugging Face token to %s: %v", path, err)
		} else {
			o.logger.Info(ctx, "Saved %s to %s", dotenv.TokenKey, path)
		}
	}

	if o.cfg.Models.SkipPyannote {
		return
	}

	status, err := dotenv.CheckToken(path)
	if err != nil {
		o.logger.Warn(ctx, "Cannot read %s: %v", path, err)
		return
	}
	switch status {
	case dotenv.StatusMissing:
		o.logger.Warn(ctx, "%s is not set in %s; the pyannote download will fail", dotenv.TokenKey, path)
		o.logger.Warn(ctx, "Get a token from https://huggingface.co/settings/tokens and rerun with --hf-token")
	case dotenv.StatusPlaceholder:
		o.logger.Warn(ctx, "%s in %s still holds the placeholder value", dotenv.TokenKey, path)
		o.logger.Warn(ctx, "Replace it with a real token or rerun with --hf-token")
	}
}

// downloaderCommand prefers the project's downloader script and falls back to a direct whisper load.
// It reports false when the fallback has nothing to fetch.
func (o *implOrchestrator) downloaderCommand(st *runState, env pyenv.Environment) (executor.Command, bool) {
	cmd := executor.Command{
		Name:   env.Python,
		Dir:    st.root,
		Env:    env.Environ(o.environ()),
		Output: o.output,
	}

	script := filepath.Join(st.resolve(o.cfg.Paths.Utils), downloaderScript)
	if info, err := os.Stat(script); err == nil && !info.IsDir() {
		cmd.Args = []string{script,
			"--whisper-model", o.cfg.Models.Whisper,
			"--models-dir", o.cfg.Models.Dir,
		}
		if o.cfg.Models.SkipWhisper {
			cmd.Args = append(cmd.Args, "--skip-whisper")
		}
		if o.cfg.Models.SkipPyannote {
			cmd.Args = append(cmd.Args, "--skip-pyannote")
		}
		return cmd, true
	}

	if o.cfg.Models.SkipWhisper {
		return cmd, false
	}

	root := filepath.Join(st.resolve(o.cfg.Models.Dir), "whisper")
	cmd.Args = []string{"-c", fmt.Sprintf("import whisper; whisper.load_model(%s, download_root=%s)",
		strconv.Quote(o.cfg.Models.Whisper), strconv.Quote(root))}
	return cmd, true
}

// watchCache logs model files as they land. The returned func stops the watcher and waits for it.
func (o *implOrchestrator) watchCache(ctx context.Context, st *runState) func() {
	models := st.resolve(o.cfg.Models.Dir)
	dirs := []string{filepath.Join(models, "whisper"), filepath.Join(models, "pyannote")}

	w, err := watcher.New(dirs, func(ctx context.Context, path string) {
		rel, err := filepath.Rel(models, path)
		if err != nil {
			rel = path
		}
		o.logger.Info(ctx, "Cached: %s", rel)
	}, o.logger)
	if err != nil {
		o.logger.Debug(ctx, "Cache progress unavailable: %v", err)
		return func() {}
	}

	wctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Start(wctx)
	}()

	return func() {
		cancel()
		<-done
		_ = w.Stop()
	}
}

// verifyCache checks the expected weights are present and records the cache size; problems only warn
func (o *implOrchestrator) verifyCache(ctx context.Context, st *runState) {
	models := st.resolve(o.cfg.Models.Dir)

	if !o.cfg.Models.SkipWhisper {
		if path, ok := findWhisperCheckpoint(models, o.cfg.Models.Whisper); ok {
			o.logger.Info(ctx, "Whisper model found: %s", path)
		} else {
			o.logger.Warn(ctx, "Whisper model %q not found under %s", o.cfg.Models.Whisper, models)
		}
	}

	if !o.cfg.Models.SkipPyannote {
		if n := countFiles(filepath.Join(models, "pyannote")); n > 0 {
			o.logger.Info(ctx, "Pyannote model found: %d files", n)
		} else {
			o.logger.Warn(ctx, "Pyannote model not found under %s", filepath.Join(models, "pyannote"))
		}
	}

	size, err := dirSize(models)
	if err != nil {
		o.logger.Warn(ctx, "Cannot measure %s: %v", models, err)
		return
	}
	st.cacheSize = sysinfo.FormatBytes(size)
	o.logger.Info(ctx, "Model cache size: %s", st.cacheSize)
}

// findWhisperCheckpoint looks in the download roots the downloader and the fallback use
func findWhisperCheckpoint(models, name string) (string, bool) {
	m, ok := config.LookupWhisperModel(name)
	if !ok {
		return "", false
	}
	for _, dir := range []string{
		filepath.Join(models, "whisper"),
		filepath.Join(models, "whisper", "whisper"),
	} {
		path := filepath.Join(dir, m.CacheFile)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

func countFiles(root string) int {
	n := 0
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			n++
		}
		return nil
	})
	return n
}

func dirSize(root string) (uint64, error) {
	var total uint64
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += uint64(info.Size())
		return nil
	})
	return total, err
}
