package capabilities

import (
	"context"
	"testing"

	"github.com/nightwatch-sre/nightwatch/internal/models"
)

func TestAnalyzeIncidentIdle(t *testing.T) {
	deps, _ := newTestDeps(map[string]any{
		"idle":    true,
		"summary": "nothing notable",
	})
	state := models.State{Logs: []string{"cache: ready to accept connections"}}

	_, outcome := AnalyzeIncident(context.Background(), deps, state)
	if !outcome.Success || !outcome.Idle {
		t.Fatalf("expected idle success, got %+v", outcome)
	}
}

func TestAnalyzeIncidentBuildsGraph(t *testing.T) {
	deps, _ := newTestDeps(map[string]any{
		"idle":    false,
		"summary": "cache container stopped",
		"hasRoot": true,
		"root":    float64(0),
		"nodes": []any{
			map[string]any{"container": "cache", "type": "stopped", "evidence": []any{"cache exited"}},
		},
		"edges": []any{},
	})
	state := models.State{Logs: []string{"cache: fatal error, exiting"}}

	next, outcome := AnalyzeIncident(context.Background(), deps, state)
	if !outcome.Success || outcome.Idle {
		t.Fatalf("expected non-idle success, got %+v", outcome)
	}
	if next.IncidentGraph == nil || len(next.IncidentGraph.Nodes) != 1 {
		t.Fatalf("expected a one-node graph, got %+v", next.IncidentGraph)
	}
}
