package capabilities

import (
	"context"

	"github.com/nightwatch-sre/nightwatch/internal/models"
)

// Escalate hands control to the operator when the loop cannot make further
// progress on its own: an unsafe plan, a failed verification, or a
// blocking feasibility assessment. Unlike every other capability, it talks
// to the human surface directly rather than the reasoner.
//
// There are exactly two outcomes: dismiss, which closes the incident, or
// continue with guidance, which persists the guidance as a confirmed fact,
// clears the failure context, and re-opens feasibility if it had been
// assessed infeasible so the next loop re-assesses it in light of the new
// fact.
func Escalate(ctx context.Context, deps *Deps, state models.State) (models.State, Outcome) {
	next := state.Clone()

	reason := escalationReason(state)
	resp, err := deps.Human.Escalate(reason)
	if err != nil {
		return state, Outcome{Success: false, Err: err}
	}

	if resp.Dismissed {
		next.Resolution = models.ResolutionDismissed
		next.FailureContext = nil
		return next, Outcome{Success: true, Summary: "operator dismissed the incident"}
	}

	if deps.Knowledge != nil {
		if err := deps.Knowledge.Append(reason, resp.Guidance); err != nil {
			return state, Outcome{Success: false, Err: err}
		}
	}
	next.FailureContext = nil
	if next.Feasibility != nil && !next.Feasibility.Feasible {
		next.Feasibility = nil
	}
	return next, Outcome{Success: true, Summary: "operator supplied guidance"}
}

func escalationReason(state models.State) string {
	if state.FailureContext != nil {
		return failureContextSummary(state.FailureContext)
	}
	if state.Feasibility != nil && !state.Feasibility.Feasible {
		return state.Feasibility.BlockingReason
	}
	return "the loop could not make further automatic progress"
}
