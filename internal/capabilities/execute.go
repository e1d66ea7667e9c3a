package capabilities

import (
	"context"

	"github.com/nightwatch-sre/nightwatch/internal/models"
)

// ExecutePlan runs state.Plan.Steps in order, stopping at the first
// failure. It requires state.PlanValidated; the orchestrator's
// safetyViolation check is what guarantees that precondition in practice.
func ExecutePlan(ctx context.Context, deps *Deps, state models.State) (models.State, Outcome) {
	next := state.Clone()

	result := runSteps(ctx, deps, state.Plan.Steps)
	next.ExecutionResult = &result

	if !result.Succeeded() {
		failed := result.Results[result.FailedAtStep]
		next.FailureContext = &models.FailureContext{
			Type:   models.FailureExecutionFailed,
			Step:   &failed.Step,
			Reason: "command exited non-zero",
			Output: failed.Stderr,
		}
		return next, Outcome{Success: false, Summary: "execution failed"}
	}

	next.FailureContext = nil
	return next, Outcome{Success: true, Summary: "execution succeeded"}
}
