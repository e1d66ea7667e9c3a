package models

import "time"

// Resolution is the terminal (or pending) outcome of an incident resolution loop.
type Resolution string

const (
	ResolutionPending   Resolution = "pending"
	ResolutionResolved  Resolution = "resolved"
	ResolutionObserved  Resolution = "observed"
	ResolutionDismissed Resolution = "dismissed"
)

// FeasibilityAssessment records whether a deterministic, safely-verifiable
// remediation can be produced given the facts currently available.
type FeasibilityAssessment struct {
	Feasible       bool
	Summary        string
	BlockingReason string // present iff !Feasible
}

// PlanStep is a single command in a RemediationPlan, with the reasoner's
// justification for issuing it.
type PlanStep struct {
	Action string
	Reason string
}

// RemediationPlan pairs an ordered remediation sequence with an ordered
// verification sequence. Either list may be empty; an empty Steps list
// signals "no safe remediation exists".
type RemediationPlan struct {
	Summary      string
	Steps        []PlanStep
	Verification []PlanStep
}

// StepResult is the outcome of running a single command.
type StepResult struct {
	Step      PlanStep
	Status    StepStatus
	ExitCode  int
	Stdout    string
	Stderr    string
	Timestamp time.Time
}

// StepStatus enumerates the two possible step outcomes.
type StepStatus string

const (
	StepSuccess StepStatus = "success"
	StepFailure StepStatus = "failure"
)

// ExecutionResult is the ordered trace of a command sequence run by the
// executor. FailedAtStep is -1 iff every step succeeded; otherwise it is the
// zero-based index of the first failing step and len(Results) == FailedAtStep+1.
type ExecutionResult struct {
	Results      []StepResult
	FailedAtStep int
}

// Succeeded reports whether every step in the result completed successfully.
func (r ExecutionResult) Succeeded() bool {
	return r.FailedAtStep == -1
}

// FailureContextType enumerates the cross-capability back-channel reasons.
type FailureContextType string

const (
	FailureRemediationCommandRejected FailureContextType = "remediation_command_rejected"
	FailureVerificationCommandRejected FailureContextType = "verification_command_rejected"
	FailureExecutionFailed            FailureContextType = "execution_failed"
	FailureVerificationFailed         FailureContextType = "verification_failed"
	FailureUserRejected               FailureContextType = "user_rejected"
)

// FailureContext is the cross-capability back-channel describing the most
// recent setback, consulted by planRemediation to learn from it.
type FailureContext struct {
	Type   FailureContextType
	Step   *PlanStep
	Reason string
	Output string
}

// State is the only value passed between capabilities. Every capability
// returns a new State; nothing mutates a State in place.
type State struct {
	IncidentID         string
	Logs               []string
	IncidentGraph      *Graph
	Feasibility        *FeasibilityAssessment
	Plan               *RemediationPlan
	ExecutionResult    *ExecutionResult
	VerificationResult *ExecutionResult
	FailureContext     *FailureContext
	PlannerHistory      []string
	PlanValidated      bool
	Resolution         Resolution
}

// Clone returns a shallow-field copy suitable as the basis for a capability's
// "new state" return value. Callers then overwrite only the fields the
// capability contract says it changes.
func (s State) Clone() State {
	clone := s
	if s.Logs != nil {
		clone.Logs = append([]string(nil), s.Logs...)
	}
	if s.PlannerHistory != nil {
		clone.PlannerHistory = append([]string(nil), s.PlannerHistory...)
	}
	return clone
}

// Validate checks the cross-entity invariants from the data model.
func (s State) Validate() error {
	if s.PlanValidated && s.Plan == nil {
		return errPlanValidatedWithoutPlan
	}
	if s.ExecutionResult != nil && (s.Plan == nil || !s.PlanValidated) {
		return errExecutionWithoutValidatedPlan
	}
	if s.VerificationResult != nil && (s.ExecutionResult == nil || !s.ExecutionResult.Succeeded()) {
		return errVerificationWithoutSuccessfulExecution
	}
	if s.IncidentGraph != nil {
		if err := s.IncidentGraph.Validate(); err != nil {
			return err
		}
	}
	return nil
}
