package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nguyentantai21042004/workflow-setup/internal/config"
	"github.com/nguyentantai21042004/workflow-setup/internal/logger"
	"github.com/nguyentantai21042004/workflow-setup/internal/prompt"
	"github.com/nguyentantai21042004/workflow-setup/internal/pyenv"
	"github.com/nguyentantai21042004/workflow-setup/internal/requirements"
	"github.com/nguyentantai21042004/workflow-setup/pkg/executor"
	"github.com/nguyentantai21042004/workflow-setup/pkg/executor/executortest"
)

// harness simulates a host with python3 on PATH and a project checkout in a temp dir
type harness struct {
	t    *testing.T
	root string
	exec *executortest.Fake
	logs bytes.Buffer

	mu            sync.Mutex
	pythonVersion string
	skipMarker    bool
	venvProbe     func(c executor.Command) string
	failOn        map[string]error
	prompts       []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:             t,
		root:          t.TempDir(),
		pythonVersion: "3.11.4",
		failOn:        make(map[string]error),
	}
	h.writeFile("requirements.txt", "openai-whisper\npyannote.audio\n")
	h.exec = &executortest.Fake{Handler: h.handle}
	return h
}

func (h *harness) writeFile(rel, content string) string {
	h.t.Helper()
	path := filepath.Join(h.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		h.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		h.t.Fatal(err)
	}
	return path
}

// handle plays the part of python, pip and venv
func (h *harness) handle(c executor.Command) (string, error) {
	line := c.String()
	h.mu.Lock()
	for substr, err := range h.failOn {
		if strings.Contains(line, substr) {
			h.mu.Unlock()
			return "", err
		}
	}
	h.mu.Unlock()

	switch {
	case len(c.Args) >= 2 && c.Args[0] == "-c" && strings.Contains(c.Args[1], "version_info"):
		return h.pythonVersion + "\n", nil
	case len(c.Args) >= 2 && c.Args[0] == "-c" && c.Args[1] == virtualEnvProbe:
		if h.venvProbe != nil {
			return h.venvProbe(c), nil
		}
		for _, kv := range c.Env {
			if v, ok := strings.CutPrefix(kv, pyenv.VirtualEnvVar+"="); ok {
				return v + "\n", nil
			}
		}
		return "\n", nil
	case len(c.Args) >= 3 && c.Args[0] == "-m" && c.Args[1] == "venv":
		if !h.skipMarker {
			l := pyenv.NewLayout(c.Args[2], "linux")
			if err := os.MkdirAll(l.BinDir, 0o755); err != nil {
				return "", err
			}
			if err := os.WriteFile(l.Activate, []byte("# activate"), 0o644); err != nil {
				return "", err
			}
		}
		return "", nil
	case len(c.Args) >= 3 && c.Args[0] == "-m" && c.Args[1] == "pip" && c.Args[2] == "--version":
		return "pip 24.0\n", nil
	}
	return "", nil
}

func (h *harness) config() config.Config {
	cfg := config.Default()
	cfg.Paths.ProjectRoot = h.root
	return cfg
}

func (h *harness) confirm(answer bool) prompt.ConfirmFunc {
	return func(_ context.Context, question string) bool {
		h.mu.Lock()
		h.prompts = append(h.prompts, question)
		h.mu.Unlock()
		return answer
	}
}

func (h *harness) orchestrator(cfg config.Config, confirm prompt.ConfirmFunc) *implOrchestrator {
	checker := requirements.NewWithProbes(h.exec, requirements.Probes{
		LookPath:    func(name string) (string, error) { return "/usr/bin/" + name, nil },
		DiskFree:    func(string) (uint64, error) { return 500 << 30, nil },
		TotalMemory: func() (uint64, error) { return 32 << 30, nil },
		GOOS:        "linux",
	})
	log := logger.NewWithOutput("debug", "text", &h.logs)

	o := New(cfg, h.exec, checker, confirm, log, nil).(*implOrchestrator)
	o.goos = "linux"
	o.environ = func() []string { return []string{"PATH=/usr/bin", "HOME=/home/dev"} }
	return o
}

func (h *harness) run(cfg config.Config, confirm prompt.ConfirmFunc) (Result, error) {
	return h.orchestrator(cfg, confirm).Run(context.Background())
}

// pipInstalls returns every recorded pip install invocation
func (h *harness) pipInstalls() []executor.Command {
	var out []executor.Command
	for _, c := range h.exec.Commands() {
		if len(c.Args) >= 3 && c.Args[0] == "-m" && c.Args[1] == "pip" && c.Args[2] == "install" {
			out = append(out, c)
		}
	}
	return out
}

func (h *harness) venvCreations() []executor.Command {
	var out []executor.Command
	for _, c := range h.exec.Commands() {
		if len(c.Args) >= 2 && c.Args[0] == "-m" && c.Args[1] == "venv" {
			out = append(out, c)
		}
	}
	return out
}

func (h *harness) downloads() []executor.Command {
	var out []executor.Command
	for _, c := range h.exec.Commands() {
		if len(c.Args) == 0 {
			continue
		}
		if strings.HasSuffix(c.Args[0], downloaderScript) ||
			(c.Args[0] == "-c" && strings.Contains(c.Args[1], "load_model")) {
			out = append(out, c)
		}
	}
	return out
}

func (h *harness) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(h.root, rel))
	return err == nil
}

func assertKind(t *testing.T, err, kind error, phase Phase) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("error %v is not %v", err, kind)
	}
	var pe *PhaseError
	if !errors.As(err, &pe) {
		t.Fatalf("error %v is not a *PhaseError", err)
	}
	if pe.Phase != phase {
		t.Fatalf("failed phase = %s, want %s", pe.Phase, phase)
	}
	if pe.Hint == "" {
		t.Errorf("%v carries no remediation hint", kind)
	}
}

func argValue(args []string, flag string) (string, bool) {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

func hasArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}
