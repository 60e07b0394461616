package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nguyentantai21042004/workflow-setup/internal/dotenv"
	"github.com/nguyentantai21042004/workflow-setup/internal/pyenv"
	"github.com/nguyentantai21042004/workflow-setup/pkg/executor"
)

var allPhases = []Phase{
	PhaseRequirements, PhaseProvision, PhaseActivate, PhaseBootstrap,
	PhaseInstallDeps, PhaseScaffold, PhaseModels, PhaseSummary,
}

func TestRunFullChain(t *testing.T) {
	h := newHarness(t)

	res, err := h.run(h.config(), h.confirm(false))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff(allPhases, res.Completed); diff != "" {
		t.Errorf("completed phases mismatch (-want +got):\n%s", diff)
	}
	if len(res.Skipped) != 0 {
		t.Errorf("skipped = %v, want none", res.Skipped)
	}

	venv := filepath.Join(h.root, "venv")
	if !pyenv.NewLayout(venv, "linux").Exists() {
		t.Errorf("virtual environment not created at %s", venv)
	}
	for _, dir := range []string{"models", "models/whisper", "models/pyannote", "audio_input", "outputs", "config", "modules", "utils"} {
		if !h.exists(dir) {
			t.Errorf("directory %s not created", dir)
		}
	}

	installs := h.pipInstalls()
	if len(installs) != 2 {
		t.Fatalf("pip installs = %d, want 2 (bootstrap, manifest)", len(installs))
	}
	for _, c := range installs {
		if c.Name != pyenv.NewLayout(venv, "linux").Python {
			t.Errorf("pip ran with %s, want the venv interpreter", c.Name)
		}
		if c.Dir != h.root {
			t.Errorf("pip ran in %s, want %s", c.Dir, h.root)
		}
	}
	if got := installs[0].Args; !hasArg(got, "--upgrade") || !hasArg(got, "setuptools") {
		t.Errorf("bootstrap args = %v", got)
	}
	if v, _ := argValue(installs[1].Args, "-r"); v != filepath.Join(h.root, "requirements.txt") {
		t.Errorf("manifest install -r %q", v)
	}
	if hasArg(installs[1].Args, "--force-reinstall") {
		t.Errorf("manifest install used --force-reinstall without force")
	}

	if n := len(h.downloads()); n != 1 {
		t.Errorf("downloader invocations = %d, want 1", n)
	}
	if !strings.Contains(h.logs.String(), "Setup completed successfully!") {
		t.Errorf("summary banner not logged")
	}
}

func TestSkipFlagMatrix(t *testing.T) {
	tcs := map[string]struct {
		skipVenv   bool
		skipModels bool
		skipped    []Phase
	}{
		"full":        {},
		"skip venv":   {skipVenv: true, skipped: []Phase{PhaseProvision, PhaseActivate}},
		"skip models": {skipModels: true, skipped: []Phase{PhaseModels}},
		"skip both":   {skipVenv: true, skipModels: true, skipped: []Phase{PhaseProvision, PhaseActivate, PhaseModels}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			cfg := h.config()
			cfg.Python.SkipVenv = tc.skipVenv
			cfg.Models.Skip = tc.skipModels
			cfg.HFToken = "hf_matrix"

			res, err := h.run(cfg, h.confirm(false))
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if diff := cmp.Diff(tc.skipped, res.Skipped); diff != "" {
				t.Errorf("skipped phases mismatch (-want +got):\n%s", diff)
			}
			if got, want := len(res.Completed)+len(res.Skipped), len(allPhases); got != want {
				t.Errorf("phases accounted = %d, want %d", got, want)
			}

			if tc.skipVenv {
				if h.exists("venv") {
					t.Errorf("venv directory created with skipVenv")
				}
				if n := len(h.venvCreations()); n != 0 {
					t.Errorf("venv creations = %d, want 0", n)
				}
				for _, c := range h.pipInstalls() {
					if c.Name != "python3" {
						t.Errorf("pip ran with %s, want the host interpreter", c.Name)
					}
				}
			}

			if tc.skipModels {
				if n := len(h.downloads()); n != 0 {
					t.Errorf("downloader invocations = %d, want 0", n)
				}
				if h.exists(".env") {
					t.Errorf(".env written with skipModels")
				}
			} else if n := len(h.downloads()); n != 1 {
				t.Errorf("downloader invocations = %d, want 1", n)
			}
		})
	}
}

func TestRerunKeepsExistingEnvironment(t *testing.T) {
	h := newHarness(t)
	cfg := h.config()

	if _, err := h.run(cfg, h.confirm(false)); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	h.logs.Reset()

	res, err := h.run(cfg, h.confirm(false))
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if diff := cmp.Diff(allPhases, res.Completed); diff != "" {
		t.Errorf("completed phases mismatch (-want +got):\n%s", diff)
	}
	if n := len(h.venvCreations()); n != 1 {
		t.Errorf("venv creations across two runs = %d, want 1", n)
	}
	if len(h.prompts) != 1 || !strings.Contains(h.prompts[0], "Recreate it?") {
		t.Errorf("prompts = %q, want one recreate question", h.prompts)
	}
	if !strings.Contains(h.logs.String(), "0 created, 8 already present") {
		t.Errorf("second run did not report every directory as present:\n%s", h.logs.String())
	}
}

func TestRerunRecreatesOnConfirm(t *testing.T) {
	h := newHarness(t)
	cfg := h.config()

	if _, err := h.run(cfg, h.confirm(false)); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	sentinel := h.writeFile("venv/stale.txt", "old")

	if _, err := h.run(cfg, h.confirm(true)); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if n := len(h.venvCreations()); n != 2 {
		t.Errorf("venv creations = %d, want 2", n)
	}
	if _, err := os.Stat(sentinel); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("old environment contents survived recreation: %v", err)
	}
}

func TestForceSkipsRecreatePrompt(t *testing.T) {
	h := newHarness(t)
	cfg := h.config()

	if _, err := h.run(cfg, h.confirm(true)); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	cfg.Force = true
	if _, err := h.run(cfg, h.confirm(true)); err != nil {
		t.Fatalf("forced Run() error = %v", err)
	}
	if len(h.prompts) != 0 {
		t.Errorf("prompts = %q, want none under force", h.prompts)
	}
	if n := len(h.venvCreations()); n != 1 {
		t.Errorf("venv creations = %d, want 1", n)
	}

	found := h.exec.Find("-r " + filepath.Join(h.root, "requirements.txt") + " --force-reinstall")
	if len(found) != 1 {
		t.Errorf("forced manifest installs = %d, want 1", len(found))
	}
}

func TestMissingManifest(t *testing.T) {
	h := newHarness(t)
	if err := os.Remove(filepath.Join(h.root, "requirements.txt")); err != nil {
		t.Fatal(err)
	}

	res, err := h.run(h.config(), nil)
	assertKind(t, err, ErrConfiguration, PhaseInstallDeps)

	for _, c := range h.pipInstalls() {
		if hasArg(c.Args, "-r") {
			t.Errorf("package install attempted without a manifest: %s", c)
		}
	}
	if diff := cmp.Diff(allPhases[:4], res.Completed); diff != "" {
		t.Errorf("completed phases mismatch (-want +got):\n%s", diff)
	}
	if h.exists("models") {
		t.Errorf("scaffold ran after a fatal error")
	}
}

func TestOldPythonFailsBeforeSideEffects(t *testing.T) {
	h := newHarness(t)
	h.pythonVersion = "3.7.9"

	res, err := h.run(h.config(), nil)
	assertKind(t, err, ErrEnvironment, PhaseRequirements)

	if len(res.Completed) != 0 {
		t.Errorf("completed = %v, want none", res.Completed)
	}
	cmds := h.exec.Commands()
	if len(cmds) != 1 {
		t.Fatalf("commands = %d, want only the version probe", len(cmds))
	}
	if !strings.Contains(cmds[0].String(), "version_info") {
		t.Errorf("unexpected command %s", cmds[0])
	}
	for _, p := range []string{"venv", "models", "audio_input"} {
		if h.exists(p) {
			t.Errorf("%s created despite the failed requirement check", p)
		}
	}
	if !strings.Contains(err.Error(), "3.7.9") {
		t.Errorf("error %q does not name the found version", err)
	}
}

func TestProvisionFailures(t *testing.T) {
	t.Run("marker missing", func(t *testing.T) {
		h := newHarness(t)
		h.skipMarker = true

		_, err := h.run(h.config(), nil)
		assertKind(t, err, ErrProvisioning, PhaseProvision)
	})

	t.Run("venv module fails", func(t *testing.T) {
		h := newHarness(t)
		h.failOn["-m venv"] = errors.New("exit status 1")

		_, err := h.run(h.config(), nil)
		assertKind(t, err, ErrProvisioning, PhaseProvision)
	})

	t.Run("activation not observed", func(t *testing.T) {
		h := newHarness(t)
		h.venvProbe = func(executor.Command) string { return "\n" }

		_, err := h.run(h.config(), nil)
		assertKind(t, err, ErrProvisioning, PhaseActivate)
	})
}

func TestBootstrapFailure(t *testing.T) {
	h := newHarness(t)
	h.failOn["--upgrade pip"] = errors.New("exit status 1")

	res, err := h.run(h.config(), nil)
	assertKind(t, err, ErrEnvironment, PhaseBootstrap)
	if diff := cmp.Diff(allPhases[:3], res.Completed); diff != "" {
		t.Errorf("completed phases mismatch (-want +got):\n%s", diff)
	}
}

func TestLocalWheels(t *testing.T) {
	tcs := map[string]struct {
		force   bool
		fail    bool
		reinst  bool
		install bool
	}{
		"installed":          {install: true},
		"force reinstalls":   {force: true, install: true, reinst: true},
		"failure only warns": {fail: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			wheel := h.writeFile("whisper_local-1.0-py3-none-any.whl", "")
			if tc.fail {
				h.failOn[".whl"] = errors.New("exit status 1")
			}
			cfg := h.config()
			cfg.Force = tc.force

			if _, err := h.run(cfg, nil); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			found := h.exec.Find(wheel)
			if len(found) != 1 {
				t.Fatalf("wheel installs = %d, want 1", len(found))
			}
			if got := hasArg(found[0].Args, "--force-reinstall"); got != tc.reinst {
				t.Errorf("--force-reinstall = %t, want %t", got, tc.reinst)
			}

			logged := strings.Contains(h.logs.String(), "Local wheels:")
			if logged != tc.install {
				t.Errorf("summary lists wheels = %t, want %t", logged, tc.install)
			}
		})
	}
}

func TestScaffoldConflict(t *testing.T) {
	h := newHarness(t)
	h.writeFile("outputs", "not a directory")

	_, err := h.run(h.config(), nil)
	assertKind(t, err, ErrConfiguration, PhaseScaffold)
}

func TestScaffoldKeepsExistingContents(t *testing.T) {
	h := newHarness(t)
	keep := h.writeFile("audio_input/meeting.wav", "RIFF")

	if _, err := h.run(h.config(), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	data, err := os.ReadFile(keep)
	if err != nil || string(data) != "RIFF" {
		t.Errorf("existing file changed: %q, %v", data, err)
	}
}

func TestDownloaderReceivesArgumentsVerbatim(t *testing.T) {
	h := newHarness(t)
	script := h.writeFile("utils/download_models.py", "# downloader")

	cfg := h.config()
	cfg.Models.Whisper = "base"
	cfg.Models.Dir = "custom/../custom/models"
	cfg.Models.SkipPyannote = true

	if _, err := h.run(cfg, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	downloads := h.downloads()
	if len(downloads) != 1 {
		t.Fatalf("downloader invocations = %d, want 1", len(downloads))
	}
	c := downloads[0]

	want := []string{script, "--whisper-model", "base", "--models-dir", "custom/../custom/models", "--skip-pyannote"}
	if diff := cmp.Diff(want, c.Args); diff != "" {
		t.Errorf("downloader args mismatch (-want +got):\n%s", diff)
	}
	if c.Dir != h.root {
		t.Errorf("downloader ran in %s, want %s", c.Dir, h.root)
	}

	venv := filepath.Join(h.root, "venv")
	env := map[string]string{}
	for _, kv := range c.Env {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	models := filepath.Join(h.root, "custom", "models")
	checks := map[string]string{
		pyenv.VirtualEnvVar:   venv,
		pyenv.WhisperCacheVar: filepath.Join(models, "whisper"),
		pyenv.HFHomeVar:       filepath.Join(models, "pyannote"),
		"HOME":                "/home/dev",
	}
	for k, want := range checks {
		if env[k] != want {
			t.Errorf("%s = %q, want %q", k, env[k], want)
		}
	}
	if !strings.HasPrefix(env[pyenv.PythonPathVar], h.root) {
		t.Errorf("PYTHONPATH = %q, want the project root first", env[pyenv.PythonPathVar])
	}
	if !strings.HasPrefix(env["PATH"], filepath.Join(venv, "bin")) {
		t.Errorf("PATH = %q, want the venv bin dir first", env["PATH"])
	}
}

func TestDownloaderFallback(t *testing.T) {
	t.Run("whisper only", func(t *testing.T) {
		h := newHarness(t)
		cfg := h.config()
		cfg.Models.Whisper = "small"

		if _, err := h.run(cfg, nil); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		downloads := h.downloads()
		if len(downloads) != 1 {
			t.Fatalf("downloader invocations = %d, want 1", len(downloads))
		}
		code := downloads[0].Args[1]
		if !strings.Contains(code, `whisper.load_model("small"`) {
			t.Errorf("fallback code = %s", code)
		}
		if !strings.Contains(code, filepath.Join(h.root, "models", "whisper")) {
			t.Errorf("fallback does not download into the cache: %s", code)
		}
	})

	t.Run("nothing to fetch", func(t *testing.T) {
		h := newHarness(t)
		cfg := h.config()
		cfg.Models.SkipWhisper = true

		res, err := h.run(cfg, nil)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if n := len(h.downloads()); n != 0 {
			t.Errorf("downloader invocations = %d, want 0", n)
		}
		if diff := cmp.Diff(allPhases, res.Completed); diff != "" {
			t.Errorf("completed phases mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestDownloadFailure(t *testing.T) {
	h := newHarness(t)
	h.failOn["load_model"] = errors.New("exit status 1")

	res, err := h.run(h.config(), nil)
	assertKind(t, err, ErrDownload, PhaseModels)
	if diff := cmp.Diff(allPhases[:6], res.Completed); diff != "" {
		t.Errorf("completed phases mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenIsSaved(t *testing.T) {
	h := newHarness(t)
	h.writeFile(".env.example", "OPENAI_API_KEY=sk-placeholder\nHUGGINGFACE_TOKEN=your_huggingface_token_here\n")

	cfg := h.config()
	cfg.HFToken = "hf_secret"
	if _, err := h.run(cfg, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	env, err := dotenv.Read(filepath.Join(h.root, ".env"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if env[dotenv.TokenKey] != "hf_secret" {
		t.Errorf("%s = %q, want hf_secret", dotenv.TokenKey, env[dotenv.TokenKey])
	}
	if env["OPENAI_API_KEY"] != "sk-placeholder" {
		t.Errorf("example keys not carried over: %v", env)
	}
	if strings.Contains(h.logs.String(), "hf_secret") {
		t.Errorf("token leaked into the log")
	}
}

func TestMissingTokenOnlyWarns(t *testing.T) {
	h := newHarness(t)

	if _, err := h.run(h.config(), nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(h.logs.String(), "HUGGINGFACE_TOKEN is not set") {
		t.Errorf("missing token not reported")
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := h.orchestrator(h.config(), nil).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(res.Completed) != 0 || len(h.exec.Commands()) != 0 {
		t.Errorf("work done after cancellation: %v, %d commands", res.Completed, len(h.exec.Commands()))
	}
}

func TestSummaryShellSyntax(t *testing.T) {
	tcs := map[string]struct {
		goos   string
		export string
	}{
		"linux":   {goos: "linux", export: "export HF_HOME=/p/models/pyannote"},
		"windows": {goos: "windows", export: "set HF_HOME=/p/models/pyannote"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			o := &implOrchestrator{goos: tc.goos}
			if got := o.exportLine(pyenv.HFHomeVar, "/p/models/pyannote"); got != tc.export {
				t.Errorf("exportLine() = %q, want %q", got, tc.export)
			}
		})
	}
}

func TestFindWhisperCheckpoint(t *testing.T) {
	models := t.TempDir()
	nested := filepath.Join(models, "whisper", "whisper")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "large-v3-turbo.pt"), []byte("weights"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := findWhisperCheckpoint(models, "turbo"); !ok {
		t.Errorf("turbo checkpoint not found in the nested download root")
	}
	if _, ok := findWhisperCheckpoint(models, "base"); ok {
		t.Errorf("base checkpoint reported without a file")
	}
	if _, ok := findWhisperCheckpoint(models, "huge"); ok {
		t.Errorf("unknown model reported as found")
	}
}
