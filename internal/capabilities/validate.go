package capabilities

import (
	"context"

	"github.com/nightwatch-sre/nightwatch/internal/models"
)

// ValidatePlan runs every command in state.Plan through the command safety
// grammar. It never calls the reasoner; the result is purely local.
func ValidatePlan(ctx context.Context, deps *Deps, state models.State) (models.State, Outcome) {
	next := state.Clone()

	result := validatePlanCommands(state.Plan, knownContainerSet(deps.Topology.Names()))
	if !result.Valid {
		next.PlanValidated = false
		next.FailureContext = result.Failure
		return next, Outcome{Success: false, Summary: result.Failure.Reason}
	}

	next.PlanValidated = true
	next.FailureContext = nil
	return next, Outcome{Success: true, Summary: "plan validated"}
}
