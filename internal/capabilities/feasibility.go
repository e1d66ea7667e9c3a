package capabilities

import (
	"context"
	"sort"
	"strings"

	"github.com/nightwatch-sre/nightwatch/internal/models"
	"github.com/nightwatch-sre/nightwatch/internal/reasoner"
)

const feasibilitySystemPrompt = `You are the feasibility stage of an incident-resolution loop. Given an
incident graph and any previously confirmed facts about the environment,
decide whether a safe, deterministic remediation is possible.

You may call inspect_container or list_containers to check current
container state. If you need a fact only an operator would know (whether a
restart is safe, whether a dependency is expected to be down, etc.), call
ask_user with a single clear question instead of guessing. If the operator
skips the question, the assessment must be feasible = false with a specific
blocking reason.`

func feasibilitySchema() map[string]any {
	return objectSchema(map[string]any{
		"feasible":       boolProp(),
		"summary":        stringProp(),
		"blockingReason": stringProp(),
	}, "feasible", "summary")
}

// AssessFeasibility decides whether a deterministic remediation is possible
// given the current IncidentGraph. It reads the parameters declared in
// configuration and the confirmed facts from the knowledge store before
// asking, and offers the reasoner tools to inspect
// containers or ask the operator a clarifying question.
func AssessFeasibility(ctx context.Context, deps *Deps, state models.State) (models.State, Outcome) {
	next := state.Clone()

	prompt := graphSummary(state)
	if len(deps.Params.Declared) > 0 {
		keys := make([]string, 0, len(deps.Params.Declared))
		for k := range deps.Params.Declared {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		prompt += "\n\nDeclared parameters:\n"
		for _, k := range keys {
			prompt += "- " + k + ": " + deps.Params.Declared[k] + "\n"
		}
	}
	if deps.Knowledge != nil {
		if known, err := deps.Knowledge.All(); err == nil && known != "" {
			prompt += "\n\nConfirmed facts about the environment:\n" + known
		}
	}

	tools := append(inspectionTools(deps), askUserTool(deps))
	data, err := deps.Gateway.Complete(ctx, reasoner.StructuredRequest{
		SystemPrompt: feasibilitySystemPrompt,
		History:      []reasoner.Turn{{Role: "user", Content: prompt}},
		Schema:       feasibilitySchema(),
		Tools:        tools,
	})
	if err != nil {
		return state, Outcome{Success: false, Err: err}
	}

	next.Feasibility = &models.FeasibilityAssessment{
		Feasible:       getBool(data, "feasible"),
		Summary:        getString(data, "summary"),
		BlockingReason: getString(data, "blockingReason"),
	}
	return next, Outcome{Success: true, Summary: next.Feasibility.Summary}
}

func graphSummary(state models.State) string {
	if state.IncidentGraph == nil {
		return strings.Join(state.Logs, "\n")
	}
	var b strings.Builder
	b.WriteString(state.IncidentGraph.Summary)
	b.WriteString("\n")
	for _, n := range state.IncidentGraph.Nodes {
		b.WriteString("- " + n.Container + ": " + n.Type + "\n")
	}
	return b.String()
}
