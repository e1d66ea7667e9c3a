// Package orchestrator drives one incident through the capability state
// machine: asking an external reasoner which capability to dispatch next,
// enforcing the safety invariants no reasoner call is trusted to honor on
// its own, tracking how many remediation attempts an incident has burned,
// and recording every dispatch to the audit log.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nightwatch-sre/nightwatch/internal/audit"
	"github.com/nightwatch-sre/nightwatch/internal/capabilities"
	"github.com/nightwatch-sre/nightwatch/internal/config"
	"github.com/nightwatch-sre/nightwatch/internal/latency"
	"github.com/nightwatch-sre/nightwatch/internal/models"
	"github.com/nightwatch-sre/nightwatch/internal/reasoner"
)

const orchestratorSystemPrompt = `You are directing an incident-resolution loop for a Docker environment.
Given the incident's current state, choose exactly one of the offered
capabilities to run next, with no arguments. If a chosen capability is
rejected as unsafe given the current state, choose a different one.`

const maxSelectionNudges = 1

// Orchestrator dispatches capabilities against a single incident's State
// until it reaches a terminal resolution, the analyzer reports idle, or an
// error ends the loop. Once the replan budget (MaxActions) is spent, further
// replans are refused and the loop keeps running until another capability
// ends it.
type Orchestrator struct {
	Deps       *capabilities.Deps
	Mode       config.Mode
	MaxActions int
	Audit      *audit.Log
	Logger     *slog.Logger

	latencyOnce sync.Once
	latency     map[string]*latency.LatencyTracker
	latencyMu   sync.Mutex
}

func (o *Orchestrator) trackerFor(capability string) *latency.LatencyTracker {
	o.latencyOnce.Do(func() { o.latency = make(map[string]*latency.LatencyTracker) })
	o.latencyMu.Lock()
	defer o.latencyMu.Unlock()
	t, ok := o.latency[capability]
	if !ok {
		t = latency.NewLatencyTracker(256)
		o.latency[capability] = t
	}
	return t
}

// CapabilityLatency reports the p50/p99 dispatch latency observed so far
// for capability, and how many samples that is based on.
func (o *Orchestrator) CapabilityLatency(capability string) (p50, p99 time.Duration, count int) {
	o.latencyMu.Lock()
	t, ok := o.latency[capability]
	o.latencyMu.Unlock()
	if !ok {
		return 0, 0, 0
	}
	return t.Percentile(50), t.Percentile(99), t.Count()
}

// Run drives state through the capability state machine, returning the
// final State once the incident is resolved, observed, dismissed, or an
// unrecoverable error occurs. Each iteration asks the reasoner which
// mode-permitted capability to dispatch next; the choice is checked against
// every safety invariant before it is ever allowed to run.
func (o *Orchestrator) Run(ctx context.Context, state models.State) (models.State, error) {
	attempts := 0
	approved := false
	var reasonerHistory []reasoner.Turn

	for {
		if err := ctx.Err(); err != nil {
			return state, err
		}
		if isTerminal(state.Resolution) {
			return state, nil
		}

		reasonerHistory = append(reasonerHistory, reasoner.Turn{Role: "user", Content: serializeState(state)})

		call, err := o.selectNext(ctx, reasonerHistory)
		if err != nil {
			return state, err
		}

		name := call.Name
		if reason, violated := safetyViolation(name, o.Mode, state, attempts, approved, o.MaxActions); violated {
			reasonerHistory = append(reasonerHistory, reasoner.Turn{
				Role: "tool", ToolCallID: call.ID, ToolName: name,
				Content: toolResultJSON(map[string]any{"rejected": true, "reason": reason}),
			})
			continue
		}

		fn, ok := capabilities.Registry[name]
		if !ok {
			return state, errUnknownCapability(name)
		}

		replanning := name == "planRemediation" && state.FailureContext != nil
		dispatchStart := time.Now()
		newState, outcome := fn(ctx, o.Deps, state)
		o.trackerFor(name).Observe(time.Since(dispatchStart))

		o.record(state.IncidentID, name, outcome, attempts)

		if outcome.Err != nil {
			if o.Logger != nil {
				o.Logger.Error("capability failed", "capability", name, "error", outcome.Err)
			}
			return state, outcome.Err
		}

		if replanning {
			attempts++
		}
		if name == "validatePlan" {
			approved = false
		}
		if name == "requestApproval" && outcome.Success {
			approved = true
		}

		state = newState
		reasonerHistory = append(reasonerHistory, reasoner.Turn{
			Role: "tool", ToolCallID: call.ID, ToolName: name,
			Content: toolResultJSON(map[string]any{"success": outcome.Success, "summary": outcome.Summary}),
		})

		if outcome.Idle {
			return state, nil
		}
		if isTerminal(state.Resolution) {
			return state, nil
		}
	}
}

// selectNext asks the reasoner to choose the next capability to dispatch
// from the mode-permitted set, nudging once if it replies without choosing
// one at all.
func (o *Orchestrator) selectNext(ctx context.Context, history []reasoner.Turn) (reasoner.ToolCall, error) {
	tools := capabilities.ToolDeclarations(o.Mode)
	req := reasoner.StructuredRequest{SystemPrompt: orchestratorSystemPrompt, History: history, Tools: tools}

	for attempt := 0; attempt <= maxSelectionNudges; attempt++ {
		call, ok, err := o.Deps.Gateway.Select(ctx, req)
		if err != nil {
			return reasoner.ToolCall{}, err
		}
		if ok {
			return call, nil
		}
		req.History = append(req.History, reasoner.Turn{
			Role: "user", Content: "You must call exactly one of the offered capabilities.",
		})
	}

	return reasoner.ToolCall{}, fmt.Errorf("orchestrator: reasoner did not choose a capability")
}

func (o *Orchestrator) record(incidentID, capability string, outcome capabilities.Outcome, attempts int) {
	if o.Audit == nil {
		return
	}
	_ = o.Audit.Record(models.AuditEntry{
		Timestamp:    time.Now(),
		IncidentID:   incidentID,
		Capability:   capability,
		Success:      outcome.Success,
		Summary:      outcome.Summary,
		AttemptCount: attempts,
	})
}

func isTerminal(r models.Resolution) bool {
	return r == models.ResolutionResolved || r == models.ResolutionObserved || r == models.ResolutionDismissed
}

// safetyViolation re-derives, independently of whatever the reasoner
// claims, whether name is legal to dispatch given state. This is the
// defence-in-depth layer: the reasoner is directing the loop, but nothing
// it chooses runs unless it also satisfies these invariants.
func safetyViolation(name string, mode config.Mode, state models.State, attempts int, approved bool, maxActions int) (string, bool) {
	permitted := map[string]bool{}
	for _, t := range capabilities.ToolDeclarations(mode) {
		permitted[t.Name] = true
	}
	if !permitted[name] {
		return fmt.Sprintf("%s is not permitted in %s mode", name, mode), true
	}

	if state.Plan != nil && len(state.Plan.Steps) == 0 && state.FailureContext == nil && name != "escalate" {
		return "the drafted plan has no safe remediation steps; escalate instead", true
	}

	switch name {
	case "assessFeasibility":
		if state.IncidentGraph == nil {
			return "assessFeasibility requires an incident graph", true
		}
	case "planRemediation":
		if state.Feasibility == nil || !state.Feasibility.Feasible {
			return "planRemediation requires a feasible assessment", true
		}
		if state.Plan != nil && state.FailureContext == nil {
			return "a plan already exists with no failure to replan from", true
		}
		if state.FailureContext != nil && attempts >= maxActions {
			return "replan budget exhausted; escalate instead", true
		}
	case "validatePlan":
		if state.Plan == nil {
			return "validatePlan requires a plan", true
		}
	case "requestApproval":
		if !state.PlanValidated {
			return "requestApproval requires a validated plan", true
		}
	case "executePlan":
		if !state.PlanValidated || !approved {
			return "executePlan requires a validated, approved plan", true
		}
	case "verifyPlan":
		if state.ExecutionResult == nil || !state.ExecutionResult.Succeeded() {
			return "verifyPlan requires a successful execution", true
		}
	}

	return "", false
}

// serializeState renders the incident state as JSON for the reasoner's
// opening message each loop iteration.
func serializeState(state models.State) string {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Sprintf(`{"incidentId":%q}`, state.IncidentID)
	}
	return string(data)
}

func toolResultJSON(v map[string]any) string {
	data, _ := json.Marshal(v)
	return string(data)
}
