package orchestrator

import "context"

// Orchestrator drives the ordered setup phases for one invocation
type Orchestrator interface {
	Run(ctx context.Context) (Result, error)
}

// Phase names one step of the setup chain
type Phase string

const (
	PhaseRequirements Phase = "requirement-check"
	PhaseProvision    Phase = "provision"
	PhaseActivate     Phase = "activate"
	PhaseBootstrap    Phase = "bootstrap"
	PhaseInstallDeps  Phase = "install-deps"
	PhaseScaffold     Phase = "scaffold"
	PhaseModels       Phase = "acquire-models"
	PhaseSummary      Phase = "summary"
)

// Result records which phases ran and which were skipped by configuration
type Result struct {
	Completed []Phase
	Skipped   []Phase
}
