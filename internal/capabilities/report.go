package capabilities

import (
	"context"

	"github.com/nightwatch-sre/nightwatch/internal/models"
	"github.com/nightwatch-sre/nightwatch/internal/reasoner"
)

const reportSystemPrompt = `You are the reporting stage of an incident-resolution loop. Summarize what
was observed and, if applicable, what was done about it, in two or three
sentences suitable for an operator reading it after the fact.`

func reportSchema() map[string]any {
	return objectSchema(map[string]any{
		"summary": stringProp(),
	}, "summary")
}

// ReportFindings produces the final human-readable summary for an incident
// whose loop has ended, successfully or not.
func ReportFindings(ctx context.Context, deps *Deps, state models.State) (models.State, Outcome) {
	next := state.Clone()

	data, err := deps.Gateway.Complete(ctx, reasoner.StructuredRequest{
		SystemPrompt: reportSystemPrompt,
		History:      []reasoner.Turn{{Role: "user", Content: graphSummary(state)}},
		Schema:       reportSchema(),
	})
	if err != nil {
		return state, Outcome{Success: false, Err: err}
	}

	if next.Resolution == "" || next.Resolution == models.ResolutionPending {
		next.Resolution = models.ResolutionObserved
	}
	return next, Outcome{Success: true, Summary: getString(data, "summary")}
}
