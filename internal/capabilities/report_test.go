package capabilities

import (
	"context"
	"testing"

	"github.com/nightwatch-sre/nightwatch/internal/models"
)

func TestReportFindingsDefaultsToObserved(t *testing.T) {
	deps, _ := newTestDeps(map[string]any{"summary": "cache was restarted successfully"})
	state := models.State{IncidentGraph: &models.Graph{Summary: "cache down"}}

	next, outcome := ReportFindings(context.Background(), deps, state)
	if !outcome.Success {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if next.Resolution != models.ResolutionObserved {
		t.Fatalf("expected observed resolution, got %v", next.Resolution)
	}
}

func TestReportFindingsPreservesExistingResolution(t *testing.T) {
	deps, _ := newTestDeps(map[string]any{"summary": "cache was restarted successfully"})
	state := models.State{
		IncidentGraph: &models.Graph{Summary: "cache down"},
		Resolution:    models.ResolutionResolved,
	}

	next, _ := ReportFindings(context.Background(), deps, state)
	if next.Resolution != models.ResolutionResolved {
		t.Fatalf("expected resolution to stay resolved, got %v", next.Resolution)
	}
}
