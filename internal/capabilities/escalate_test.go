package capabilities

import (
	"context"
	"strings"
	"testing"

	"github.com/nightwatch-sre/nightwatch/internal/models"
)

func TestEscalateStopDismisses(t *testing.T) {
	deps := depsWithHumanInput("stop\n")
	state := models.State{FailureContext: &models.FailureContext{Type: models.FailureVerificationFailed, Reason: "still failing"}}

	next, outcome := Escalate(context.Background(), deps, state)
	if !outcome.Success {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if next.Resolution != models.ResolutionDismissed {
		t.Fatalf("expected dismissed resolution, got %v", next.Resolution)
	}
}

func TestEscalateDismiss(t *testing.T) {
	deps := depsWithHumanInput("dismiss\n")
	state := models.State{FailureContext: &models.FailureContext{Type: models.FailureVerificationFailed, Reason: "still failing"}}

	next, outcome := Escalate(context.Background(), deps, state)
	if !outcome.Success {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if next.Resolution != models.ResolutionDismissed {
		t.Fatalf("expected dismissed resolution, got %v", next.Resolution)
	}
	if next.FailureContext != nil {
		t.Fatal("expected failure context cleared on dismissal")
	}
}

func TestEscalateGuidanceContinuesLoop(t *testing.T) {
	deps := depsWithHumanInput("try stopping the dependent service first\n")
	state := models.State{
		FailureContext: &models.FailureContext{Type: models.FailureVerificationFailed, Reason: "still failing"},
		Feasibility:    &models.FeasibilityAssessment{Feasible: false, BlockingReason: "needed operator input"},
	}

	next, outcome := Escalate(context.Background(), deps, state)
	if !outcome.Success {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if next.FailureContext != nil {
		t.Fatalf("expected failure context cleared, got %+v", next.FailureContext)
	}
	if next.Feasibility != nil {
		t.Fatalf("expected feasibility reset after infeasible assessment, got %+v", next.Feasibility)
	}

	known, err := deps.Knowledge.All()
	if err != nil {
		t.Fatalf("unexpected error reading knowledge: %v", err)
	}
	if !strings.Contains(known, "try stopping the dependent service first") {
		t.Fatalf("expected guidance persisted to knowledge, got %q", known)
	}
}

func TestEscalateGuidanceKeepsFeasibleAssessment(t *testing.T) {
	deps := depsWithHumanInput("try stopping the dependent service first\n")
	state := models.State{
		FailureContext: &models.FailureContext{Type: models.FailureVerificationFailed, Reason: "still failing"},
		Feasibility:    &models.FeasibilityAssessment{Feasible: true},
	}

	next, outcome := Escalate(context.Background(), deps, state)
	if !outcome.Success {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if next.Feasibility == nil || !next.Feasibility.Feasible {
		t.Fatalf("expected feasible assessment left untouched, got %+v", next.Feasibility)
	}
}
