package capabilities

import (
	"context"

	"github.com/nightwatch-sre/nightwatch/internal/models"
)

// VerifyPlan runs state.Plan.Verification, confirming the remediation
// actually fixed the incident. It requires a fully successful ExecutionResult.
func VerifyPlan(ctx context.Context, deps *Deps, state models.State) (models.State, Outcome) {
	next := state.Clone()

	result := runSteps(ctx, deps, state.Plan.Verification)
	next.VerificationResult = &result

	if !result.Succeeded() {
		failed := result.Results[result.FailedAtStep]
		next.FailureContext = &models.FailureContext{
			Type:   models.FailureVerificationFailed,
			Step:   &failed.Step,
			Reason: "verification command exited non-zero",
			Output: failed.Stderr,
		}
		return next, Outcome{Success: false, Summary: "verification failed"}
	}

	next.Resolution = models.ResolutionResolved
	next.FailureContext = nil
	return next, Outcome{Success: true, Summary: "verification succeeded"}
}
