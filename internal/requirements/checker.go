package requirements

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/nguyentantai21042004/workflow-setup/internal/config"
	"github.com/nguyentantai21042004/workflow-setup/internal/sysinfo"
)

const (
	IDPython = "python"
	IDPip    = "pip"
	IDFFmpeg = "ffmpeg"
	IDDisk   = "disk"
	IDMemory = "memory"

	gigabyte = 1 << 30

	versionScript = "import sys; print('%d.%d.%d' % sys.version_info[:3])"
)

// Check runs every requirement check and returns the combined report
func (c *implChecker) Check(ctx context.Context, cfg config.Config) Report {
	report := Report{GeneratedAt: time.Now().UTC()}

	python, version, item := c.checkPython(ctx, cfg.Python.Command, cfg.Requirements.MinPython)
	report.Items = append(report.Items, item)
	if item.Status == StatusPass {
		report.Python = python
		report.PythonVersion = version
		report.Items = append(report.Items, c.checkPip(ctx, python))
	} else {
		report.Items = append(report.Items, Item{
			ID:      IDPip,
			Name:    "pip",
			Status:  StatusFail,
			Message: "Not checked: no usable Python interpreter.",
			Hint:    "Fix the Python interpreter first; pip is checked through it.",
		})
	}

	report.Items = append(report.Items,
		c.checkFFmpeg(),
		c.checkDisk(cfg.Paths.ProjectRoot, cfg.Requirements.MinDiskGB),
		c.checkMemory(cfg.Requirements.MinMemoryGB),
	)

	return report
}

// pythonCandidates lists the interpreter names tried when none was configured
func (c *implChecker) pythonCandidates(command string) []string {
	if command != "" {
		return []string{command}
	}
	if c.probes.GOOS == "windows" {
		return []string{"python", "python3"}
	}
	return []string{"python3", "python"}
}

// checkPython resolves the interpreter on PATH and enforces the minimum version
func (c *implChecker) checkPython(ctx context.Context, command, minVersion string) (string, string, Item) {
	item := Item{ID: IDPython, Name: "Python interpreter"}

	var python string
	for _, candidate := range c.pythonCandidates(command) {
		if _, err := c.probes.LookPath(candidate); err == nil {
			python = candidate
			break
		}
	}
	if python == "" {
		item.Status = StatusFail
		if command != "" {
			item.Message = fmt.Sprintf("Python command not found in PATH: %s", command)
		} else {
			item.Message = "No Python interpreter found in PATH (tried python3, python)."
		}
		item.Hint = fmt.Sprintf("Install Python %s or newer from https://www.python.org/downloads/ and make sure it is on PATH, or pass --python-cmd.", minVersion)
		return "", "", item
	}

	out, err := c.executor.Execute(ctx, python, "-c", versionScript)
	if err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Cannot run %s: %v", python, err)
		item.Hint = "Check that the interpreter starts from a terminal; on Windows disable the Microsoft Store python alias."
		return "", "", item
	}

	version := strings.TrimSpace(out)
	if !semver.IsValid("v" + version) {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Unrecognised version output from %s: %q", python, version)
		item.Hint = "Pass --python-cmd pointing at a CPython 3 interpreter."
		return "", "", item
	}

	if semver.Compare("v"+version, "v"+minVersion) < 0 {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Python %s found via %s, but %s or newer is required.", version, python, minVersion)
		item.Hint = fmt.Sprintf("Install Python %s or newer and pass it with --python-cmd.", minVersion)
		return "", "", item
	}

	item.Status = StatusPass
	item.Message = fmt.Sprintf("Python %s (%s)", version, python)
	return python, version, item
}

// checkPip verifies the package installer is reachable through the interpreter
func (c *implChecker) checkPip(ctx context.Context, python string) Item {
	item := Item{ID: IDPip, Name: "pip"}

	out, err := c.executor.Execute(ctx, python, "-m", "pip", "--version")
	if err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("pip is not available for %s", python)
		item.Hint = fmt.Sprintf("Run '%s -m ensurepip --upgrade' or install your distribution's python3-pip package.", python)
		return item
	}

	item.Status = StatusPass
	item.Message = strings.TrimSpace(out)
	return item
}

// checkFFmpeg probes the optional audio converter; absence only warns
func (c *implChecker) checkFFmpeg() Item {
	item := Item{ID: IDFFmpeg, Name: "ffmpeg"}

	path, err := c.probes.LookPath("ffmpeg")
	if err != nil {
		item.Status = StatusWarn
		item.Message = "ffmpeg not found in PATH; audio conversion will not work."
		item.Hint = "Install it: 'apt-get install ffmpeg', 'brew install ffmpeg' or 'winget install Gyan.FFmpeg'."
		return item
	}

	item.Status = StatusPass
	item.Message = fmt.Sprintf("Found at %s", path)
	return item
}

// checkDisk warns when the project filesystem has less than minGB free
func (c *implChecker) checkDisk(root string, minGB float64) Item {
	item := Item{ID: IDDisk, Name: "Free disk space"}

	free, err := c.probes.DiskFree(root)
	if err != nil {
		item.Status = StatusWarn
		item.Message = fmt.Sprintf("Cannot determine free disk space at %s: %v", root, err)
		return item
	}

	if float64(free) < minGB*gigabyte {
		item.Status = StatusWarn
		item.Message = fmt.Sprintf("Only %s free at %s; %.0f GB recommended.", sysinfo.FormatBytes(free), root, minGB)
		item.Hint = "Model weights and the Python environment need several gigabytes; free some space or use --models-dir on a larger volume."
		return item
	}

	item.Status = StatusPass
	item.Message = fmt.Sprintf("%s free", sysinfo.FormatBytes(free))
	return item
}

// checkMemory warns when installed memory is below minGB
func (c *implChecker) checkMemory(minGB float64) Item {
	item := Item{ID: IDMemory, Name: "Memory"}

	total, err := c.probes.TotalMemory()
	if err != nil {
		item.Status = StatusWarn
		if errors.Is(err, sysinfo.ErrUnsupported) {
			item.Message = "Installed memory is not probed on this platform."
		} else {
			item.Message = fmt.Sprintf("Cannot determine installed memory: %v", err)
		}
		return item
	}

	if float64(total) < minGB*gigabyte {
		item.Status = StatusWarn
		item.Message = fmt.Sprintf("%s installed; %.0f GB recommended.", sysinfo.FormatBytes(total), minGB)
		item.Hint = "Large whisper models may not fit; consider --whisper-model base or small."
		return item
	}

	item.Status = StatusPass
	item.Message = fmt.Sprintf("%s installed", sysinfo.FormatBytes(total))
	return item
}
