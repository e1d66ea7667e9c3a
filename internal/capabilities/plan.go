package capabilities

import (
	"context"
	"strings"

	"github.com/nightwatch-sre/nightwatch/internal/models"
	"github.com/nightwatch-sre/nightwatch/internal/reasoner"
)

const planSystemPrompt = `You are the planning stage of an incident-resolution loop. Given an
incident graph and, if present, the reason a previous attempt failed, produce
an ordered list of docker commands that remediate the incident, plus an
ordered list of docker commands that verify the remediation worked. Every
command must target exactly one known container and must be a plain docker
invocation: no shells, pipes, redirection, or chaining. If no safe
remediation exists, return an empty steps list.`

func planSchema() map[string]any {
	stepSchema := objectSchema(map[string]any{
		"action": stringProp(),
		"reason": stringProp(),
	}, "action", "reason")

	return objectSchema(map[string]any{
		"summary":      stringProp(),
		"steps":        map[string]any{"type": "array", "items": stepSchema},
		"verification": map[string]any{"type": "array", "items": stepSchema},
	}, "summary", "steps", "verification")
}

// PlanRemediation produces a RemediationPlan from the current IncidentGraph,
// taking the prior FailureContext into account when this is a replan.
func PlanRemediation(ctx context.Context, deps *Deps, state models.State) (models.State, Outcome) {
	next := state.Clone()

	prompt := graphSummary(state)
	if state.FailureContext != nil {
		prompt += "\n\nPrevious attempt failed: " + failureContextSummary(state.FailureContext)
	}
	if len(state.PlannerHistory) > 0 {
		prompt += "\n\nPlans already tried:\n" + strings.Join(state.PlannerHistory, "\n---\n")
	}
	if deps.Knowledge != nil {
		if known, err := deps.Knowledge.All(); err == nil && known != "" {
			prompt += "\n\nConfirmed facts about the environment:\n" + known
		}
	}

	data, err := deps.Gateway.Complete(ctx, reasoner.StructuredRequest{
		SystemPrompt: planSystemPrompt,
		History:      []reasoner.Turn{{Role: "user", Content: prompt}},
		Schema:       planSchema(),
	})
	if err != nil {
		return state, Outcome{Success: false, Err: err}
	}

	plan := &models.RemediationPlan{
		Summary:      getString(data, "summary"),
		Steps:        stepsFrom(data, "steps"),
		Verification: stepsFrom(data, "verification"),
	}

	next.Plan = plan
	next.PlanValidated = false
	next.FailureContext = nil
	next.PlannerHistory = append(next.PlannerHistory, plan.Summary)

	if len(plan.Steps) == 0 {
		return next, Outcome{Success: true, Summary: "no safe remediation identified"}
	}
	return next, Outcome{Success: true, Summary: plan.Summary}
}

func stepsFrom(data map[string]any, key string) []models.PlanStep {
	raw, _ := data[key].([]any)
	steps := make([]models.PlanStep, 0, len(raw))
	for _, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		steps = append(steps, models.PlanStep{
			Action: getString(m, "action"),
			Reason: getString(m, "reason"),
		})
	}
	return steps
}

func failureContextSummary(fc *models.FailureContext) string {
	var b strings.Builder
	b.WriteString(string(fc.Type))
	b.WriteString(": ")
	b.WriteString(fc.Reason)
	if fc.Step != nil {
		b.WriteString(" (step: " + fc.Step.Action + ")")
	}
	if fc.Output != "" {
		b.WriteString("\noutput: " + fc.Output)
	}
	return b.String()
}
