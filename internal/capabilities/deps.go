// Package capabilities implements the nine capability functions the
// orchestrator dispatches. Every capability takes the current State and
// returns a new one plus an Outcome describing what happened; none of them
// mutate their input.
package capabilities

import (
	"context"

	"github.com/nightwatch-sre/nightwatch/internal/config"
	"github.com/nightwatch-sre/nightwatch/internal/executor"
	"github.com/nightwatch-sre/nightwatch/internal/human"
	"github.com/nightwatch-sre/nightwatch/internal/knowledge"
	"github.com/nightwatch-sre/nightwatch/internal/models"
	"github.com/nightwatch-sre/nightwatch/internal/reasoner"
	"github.com/nightwatch-sre/nightwatch/internal/runtime"
	"github.com/nightwatch-sre/nightwatch/internal/validator"
)

// Outcome is what a capability reports back to the orchestrator alongside
// its new State.
type Outcome struct {
	Success bool
	Idle    bool
	Summary string
	Err     error
}

// Deps bundles everything a capability needs to do its job. A single Deps
// value is shared across every capability invocation in a process.
type Deps struct {
	Gateway   *reasoner.Gateway
	Topology  *config.Topology
	Knowledge *knowledge.Store
	Human     *human.Surface
	Runtime   runtime.ContainerRuntime
	Executor  executor.Runner
	Params    config.ParametersConfig
}

// Capability is the shape every dispatchable function conforms to.
type Capability func(ctx context.Context, deps *Deps, state models.State) (models.State, Outcome)

// Registry maps capability names to their implementations, as used by the
// orchestrator's mode-based dispatch tables.
var Registry = map[string]Capability{
	"analyzeIncident":    AnalyzeIncident,
	"assessFeasibility":  AssessFeasibility,
	"planRemediation":    PlanRemediation,
	"validatePlan":       ValidatePlan,
	"requestApproval":    RequestApproval,
	"executePlan":        ExecutePlan,
	"verifyPlan":         VerifyPlan,
	"reportFindings":     ReportFindings,
	"escalate":           Escalate,
}

// capabilityDescriptions is shown to the reasoner alongside each capability
// name so it can pick sensibly between them.
var capabilityDescriptions = map[string]string{
	"analyzeIncident":   "Build or refresh the incident graph from the raw log buffer.",
	"assessFeasibility": "Decide whether a safe, deterministic remediation is possible for the current incident graph.",
	"planRemediation":   "Draft a remediation plan (and its verification) for a feasible incident.",
	"validatePlan":      "Run the current plan's commands through the safety grammar.",
	"requestApproval":   "Ask the operator to approve the validated plan before it runs.",
	"executePlan":       "Run the approved plan's remediation commands.",
	"verifyPlan":        "Run the plan's verification commands and judge whether the incident is resolved.",
	"reportFindings":    "Summarize the incident for the record; ends the loop.",
	"escalate":          "Hand control to the operator because the loop cannot make further automatic progress.",
}

// observeCapabilities and remediateCapabilities are the mode-permitted
// capability sets the reasoner is allowed to choose between.
var (
	observeCapabilities   = []string{"analyzeIncident", "assessFeasibility", "escalate", "reportFindings"}
	remediateCapabilities = []string{
		"analyzeIncident", "assessFeasibility", "escalate",
		"planRemediation", "validatePlan", "requestApproval", "executePlan", "verifyPlan",
	}
)

// ToolDeclarations exposes the capabilities mode permits as reasoner tools,
// named identically to their Registry entries, for Gateway.Select to choose
// between. They carry no handler: the orchestrator dispatches the chosen
// capability itself rather than letting the gateway execute it.
func ToolDeclarations(mode config.Mode) []reasoner.Tool {
	names := observeCapabilities
	if mode == config.ModeRemediate {
		names = remediateCapabilities
	}

	tools := make([]reasoner.Tool, len(names))
	for i, name := range names {
		tools[i] = reasoner.Tool{
			Name:        name,
			Description: capabilityDescriptions[name],
			Parameters:  objectSchema(map[string]any{}),
		}
	}
	return tools
}

func knownContainerSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func runSteps(ctx context.Context, deps *Deps, steps []models.PlanStep) models.ExecutionResult {
	if deps.Executor == nil {
		return executor.Run(ctx, steps)
	}
	return deps.Executor.Run(ctx, steps)
}

func validatePlanCommands(plan *models.RemediationPlan, containers map[string]struct{}) validator.PlanResult {
	return validator.ValidatePlan(plan, containers)
}
