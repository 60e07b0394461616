package requirements

import (
	"os/exec"
	"runtime"

	"github.com/nguyentantai21042004/workflow-setup/internal/sysinfo"
	"github.com/nguyentantai21042004/workflow-setup/pkg/executor"
)

// Probes are the host lookups the checker depends on
type Probes struct {
	LookPath    func(string) (string, error)
	DiskFree    func(string) (uint64, error)
	TotalMemory func() (uint64, error)
	GOOS        string
}

type implChecker struct {
	executor executor.Executor
	probes   Probes
}

// New creates a Checker using the real OS probes
func New(exec executor.Executor) Checker {
	return NewWithProbes(exec, Probes{})
}

// NewWithProbes creates a Checker with injectable probes; nil fields fall back to the OS.
func NewWithProbes(exe executor.Executor, probes Probes) Checker {
	if probes.LookPath == nil {
		probes.LookPath = exec.LookPath
	}
	if probes.DiskFree == nil {
		probes.DiskFree = sysinfo.DiskFree
	}
	if probes.TotalMemory == nil {
		probes.TotalMemory = sysinfo.TotalMemory
	}
	if probes.GOOS == "" {
		probes.GOOS = runtime.GOOS
	}

	return &implChecker{
		executor: exe,
		probes:   probes,
	}
}
