package types

import (
	"time"
)

// PhaseStatus is the outcome of a single phase.
type PhaseStatus string

const (
	// PhaseStatusCompleted means the phase body ran and returned no error
	PhaseStatusCompleted PhaseStatus = "completed"

	// PhaseStatusSkipped means the phase was excluded by base-only mode
	PhaseStatusSkipped PhaseStatus = "skipped"

	// PhaseStatusFailed means the phase returned an error and the run stopped
	PhaseStatusFailed PhaseStatus = "failed"
)

// ExecutionContext records what happened during one provisioning run
type ExecutionContext struct {
	// PhaseResults are in pipeline order; phases after a failure are absent
	PhaseResults []*PhaseResult

	StartTime time.Time
	EndTime   time.Time

	CompletedPhases int
	SkippedPhases   int
}

// PhaseResult tracks the result of a single phase
type PhaseResult struct {
	Name      string
	Status    PhaseStatus
	Error     error
	StartTime time.Time
	EndTime   time.Time
}

// NewExecutionContext creates a new execution context
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{
		PhaseResults: make([]*PhaseResult, 0),
		StartTime:    time.Now(),
	}
}

// AddPhaseResult appends a phase result and updates the counters
func (ec *ExecutionContext) AddPhaseResult(result *PhaseResult) {
	ec.PhaseResults = append(ec.PhaseResults, result)

	switch result.Status {
	case PhaseStatusCompleted:
		ec.CompletedPhases++
	case PhaseStatusSkipped:
		ec.SkippedPhases++
	}
}

// PhaseNames returns the names of phases with the given status, in order
func (ec *ExecutionContext) PhaseNames(status PhaseStatus) []string {
	var names []string
	for _, r := range ec.PhaseResults {
		if r.Status == status {
			names = append(names, r.Name)
		}
	}
	return names
}

// Complete marks the execution as complete
func (ec *ExecutionContext) Complete() {
	ec.EndTime = time.Now()
}

// Duration returns how long the run took; zero until Complete is called
func (ec *ExecutionContext) Duration() time.Duration {
	if ec.EndTime.IsZero() {
		return 0
	}
	return ec.EndTime.Sub(ec.StartTime)
}
