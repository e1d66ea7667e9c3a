package capabilities

import (
	"context"
	"fmt"

	"github.com/nightwatch-sre/nightwatch/internal/models"
)

// RequestApproval presents the validated plan to the operator and only
// lets the loop continue toward execution if they approve it.
func RequestApproval(ctx context.Context, deps *Deps, state models.State) (models.State, Outcome) {
	next := state.Clone()

	approved, err := deps.Human.ConfirmPlan(planSummaryText(state.Plan))
	if err != nil {
		return state, Outcome{Success: false, Err: err}
	}

	if !approved {
		next.FailureContext = &models.FailureContext{
			Type:   models.FailureUserRejected,
			Reason: "operator declined the proposed plan",
		}
		return next, Outcome{Success: false, Summary: "plan rejected"}
	}

	return next, Outcome{Success: true, Summary: "plan approved"}
}

func planSummaryText(plan *models.RemediationPlan) string {
	if plan == nil {
		return ""
	}
	text := plan.Summary + "\n"
	for i, step := range plan.Steps {
		text += fmt.Sprintf("  %d. %s (%s)\n", i+1, step.Action, step.Reason)
	}
	return text
}
