package capabilities

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nightwatch-sre/nightwatch/internal/models"
	"github.com/nightwatch-sre/nightwatch/internal/reasoner"
)

const analyzeSystemPrompt = `You are the analysis stage of an incident-resolution loop for a set of
Docker containers. Given raw log lines, decide whether they describe a real
incident. If so, build a directed acyclic graph connecting the containers
involved, with one node per container and edges pointing from cause to
effect. Identify the most likely root cause node by index, or omit it if the
evidence does not point to one. If the logs describe nothing worth acting on,
set idle to true and leave the graph empty.

You may call list_containers or inspect_container to check whether a
container logged as failing is healthy now. Discard the incident as stale
(idle) if the container it is about was observed healthy after the failure
was logged.`

func analyzeSchema() map[string]any {
	nodeSchema := objectSchema(map[string]any{
		"container": stringProp(),
		"type":      stringProp(),
		"evidence":  arrayOfStrings(),
	}, "container", "type")

	edgeSchema := objectSchema(map[string]any{
		"from": integerProp(),
		"to":   integerProp(),
	}, "from", "to")

	return objectSchema(map[string]any{
		"idle":    boolProp(),
		"summary": stringProp(),
		"root":    integerProp(),
		"hasRoot": boolProp(),
		"nodes":   map[string]any{"type": "array", "items": nodeSchema},
		"edges":   map[string]any{"type": "array", "items": edgeSchema},
	}, "idle", "summary")
}

// AnalyzeIncident turns the raw log buffer into an IncidentGraph, or reports
// Idle if nothing in the logs warrants action.
func AnalyzeIncident(ctx context.Context, deps *Deps, state models.State) (models.State, Outcome) {
	next := state.Clone()

	data, err := deps.Gateway.Complete(ctx, reasoner.StructuredRequest{
		SystemPrompt: analyzeSystemPrompt,
		History:      []reasoner.Turn{{Role: "user", Content: numberedLogLines(state.Logs)}},
		Schema:       analyzeSchema(),
		Tools:        inspectionTools(deps),
	})
	if err != nil {
		return state, Outcome{Success: false, Err: err}
	}

	if getBool(data, "idle") {
		return state, Outcome{Success: true, Idle: true, Summary: getString(data, "summary")}
	}

	graph := buildGraph(data)
	if err := graph.Validate(); err != nil {
		return state, Outcome{Success: false, Err: err}
	}

	next.IncidentGraph = graph
	return next, Outcome{Success: true, Summary: getString(data, "summary")}
}

// numberedLogLines prefixes each log line with its index, the form the
// reasoner is asked to reason about so it can reference specific lines.
func numberedLogLines(logs []string) string {
	lines := make([]string, len(logs))
	for i, l := range logs {
		lines[i] = fmt.Sprintf("[%d] %s", i, l)
	}
	return strings.Join(lines, "\n")
}

func buildGraph(data map[string]any) *models.Graph {
	rawNodes, _ := data["nodes"].([]any)
	nodes := make([]models.IncidentNode, 0, len(rawNodes))
	for _, rn := range rawNodes {
		m, ok := rn.(map[string]any)
		if !ok {
			continue
		}
		nodes = append(nodes, models.IncidentNode{
			Container: getString(m, "container"),
			Type:      getString(m, "type"),
			Evidence:  getStringSlice(m, "evidence"),
			Timestamp: time.Now(),
		})
	}

	rawEdges, _ := data["edges"].([]any)
	edges := make([]models.Edge, 0, len(rawEdges))
	for _, re := range rawEdges {
		m, ok := re.(map[string]any)
		if !ok {
			continue
		}
		edges = append(edges, models.Edge{From: intOf(m["from"]), To: intOf(m["to"])})
	}

	graph := &models.Graph{Nodes: nodes, Edges: edges, Summary: getString(data, "summary")}
	if getBool(data, "hasRoot") {
		root := intOf(data["root"])
		graph.Root = &root
	}
	return graph
}

func intOf(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
