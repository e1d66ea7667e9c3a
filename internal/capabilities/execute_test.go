package capabilities

import (
	"context"
	"testing"

	"github.com/nightwatch-sre/nightwatch/internal/models"
)

func TestExecutePlanSucceeds(t *testing.T) {
	state := models.State{
		Plan:          &models.RemediationPlan{Steps: []models.PlanStep{{Action: "true"}}},
		PlanValidated: true,
	}

	next, outcome := ExecutePlan(context.Background(), &Deps{}, state)
	if !outcome.Success || !next.ExecutionResult.Succeeded() {
		t.Fatalf("expected success, got %+v / %+v", outcome, next.ExecutionResult)
	}
}

func TestExecutePlanReportsFailure(t *testing.T) {
	state := models.State{
		Plan:          &models.RemediationPlan{Steps: []models.PlanStep{{Action: "false"}}},
		PlanValidated: true,
	}

	next, outcome := ExecutePlan(context.Background(), &Deps{}, state)
	if outcome.Success || next.ExecutionResult.Succeeded() {
		t.Fatalf("expected failure, got %+v", outcome)
	}
	if next.FailureContext.Type != models.FailureExecutionFailed {
		t.Fatalf("unexpected failure type: %v", next.FailureContext.Type)
	}
}
