package validator

import (
	"fmt"

	"github.com/nightwatch-sre/nightwatch/internal/models"
)

// PlanResult is the outcome of validating a full remediation plan.
type PlanResult struct {
	Valid   bool
	Failure *models.FailureContext
}

// ValidatePlan checks every step in plan.Verification, then every step in
// plan.Steps, against the command safety grammar. The first rejected
// command produces the FailureContext; a command present in both lists is
// reported as a verification rejection, since the verification list is
// checked first.
func ValidatePlan(plan *models.RemediationPlan, knownContainers map[string]struct{}) PlanResult {
	if plan == nil {
		return PlanResult{Valid: false, Failure: &models.FailureContext{
			Type:   models.FailureRemediationCommandRejected,
			Reason: "no plan to validate",
		}}
	}

	if fc := validateSteps(plan.Verification, models.FailureVerificationCommandRejected, knownContainers); fc != nil {
		return PlanResult{Valid: false, Failure: fc}
	}
	if fc := validateSteps(plan.Steps, models.FailureRemediationCommandRejected, knownContainers); fc != nil {
		return PlanResult{Valid: false, Failure: fc}
	}
	return PlanResult{Valid: true}
}

func validateSteps(steps []models.PlanStep, failureType models.FailureContextType, knownContainers map[string]struct{}) *models.FailureContext {
	for i := range steps {
		step := steps[i]
		v := ValidateCommand(step.Action, knownContainers)
		if !v.Accepted {
			return &models.FailureContext{
				Type:   failureType,
				Step:   &step,
				Reason: fmt.Sprintf("rejected: %s", v.Reason),
			}
		}
	}
	return nil
}
