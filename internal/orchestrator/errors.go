package orchestrator

import (
	"errors"
	"fmt"
)

// Fatal error kinds. A failed phase returns a *PhaseError wrapping one of them.
var (
	// ErrEnvironment indicates a missing or incompatible interpreter or installer
	ErrEnvironment = errors.New("EnvironmentError")

	// ErrProvisioning indicates the virtual environment post-conditions were not met
	ErrProvisioning = errors.New("ProvisioningError")

	// ErrConfiguration indicates missing or conflicting project files
	ErrConfiguration = errors.New("ConfigurationError")

	// ErrDownload indicates the model downloader exited unsuccessfully
	ErrDownload = errors.New("DownloadError")
)

// PhaseError is the fatal failure of one phase together with a remediation hint
type PhaseError struct {
	Phase Phase
	Kind  error
	Err   error
	Hint  string
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%v in %s: %v", e.Kind, e.Phase, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As
func (e *PhaseError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func newPhaseError(phase Phase, kind error, hint string, err error) *PhaseError {
	return &PhaseError{Phase: phase, Kind: kind, Err: err, Hint: hint}
}

// Hint returns the remediation hint carried by err, if any
func Hint(err error) string {
	var pe *PhaseError
	if errors.As(err, &pe) {
		return pe.Hint
	}
	return ""
}
