// Package reasoner wraps whatever LLM backend nightwatch talks to with the
// retry, backoff, tool-invocation, and response-repair logic every capability
// needs but none should have to reimplement.
package reasoner

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"context"
)

const (
	maxAttempts   = 3
	baseBackoff   = time.Second
	maxToolRounds = 6
)

// Gateway retries a Reasoner on transient failure, runs its tool-invocation
// loop to completion, and repairs mildly malformed JSON before giving up.
type Gateway struct {
	backend Reasoner
	sleep   func(time.Duration)
}

// NewGateway wraps backend in retry, tool-loop, and repair logic.
func NewGateway(backend Reasoner) *Gateway {
	return &Gateway{backend: backend, sleep: time.Sleep}
}

// Complete drives one structured call to completion: it sends the history,
// executes any tool calls the model makes (in parallel, appending their
// responses to the history) and resends, until the model returns a plain
// text reply. That reply is parsed as JSON; on a parse failure a single
// corrective message is sent requesting strict JSON, and the result of that
// retry is returned verbatim, success or failure.
func (g *Gateway) Complete(ctx context.Context, req StructuredRequest) (map[string]any, error) {
	history := append([]Turn(nil), req.History...)
	tools := indexTools(req.Tools)

	for round := 0; round < maxToolRounds; round++ {
		reply, err := g.callBackend(ctx, req.SystemPrompt, history, req.Schema, req.Tools)
		if err != nil {
			return nil, err
		}

		if len(reply.ToolCalls) > 0 {
			history = append(history, Turn{Role: "model", ToolCalls: reply.ToolCalls})
			history = append(history, g.invokeTools(ctx, tools, reply.ToolCalls)...)
			continue
		}

		if data, err := decodeJSON(reply.Text); err == nil {
			return data, nil
		}
		if data, err := decodeJSON(repair(reply.Text)); err == nil {
			return data, nil
		}

		history = append(history,
			Turn{Role: "model", Content: reply.Text},
			Turn{Role: "user", Content: "That was not valid JSON. Reply with strict JSON matching the schema, nothing else."},
		)
		reply, err = g.callBackend(ctx, req.SystemPrompt, history, req.Schema, nil)
		if err != nil {
			return nil, err
		}
		return decodeJSON(reply.Text)
	}

	return nil, fmt.Errorf("reasoner: exceeded %d tool-call rounds without a structured reply", maxToolRounds)
}

// Select asks the reasoner to pick exactly one of req.Tools and returns the
// chosen call, unexecuted — unlike Complete, Select never runs a tool's
// handler or demands a JSON reply; the tool call itself is the answer. ok is
// false when the model replied without calling any tool.
func (g *Gateway) Select(ctx context.Context, req StructuredRequest) (call ToolCall, ok bool, err error) {
	reply, err := g.callBackend(ctx, req.SystemPrompt, req.History, req.Schema, req.Tools)
	if err != nil {
		return ToolCall{}, false, err
	}
	if len(reply.ToolCalls) == 0 {
		return ToolCall{}, false, nil
	}
	return reply.ToolCalls[0], true, nil
}

// callBackend retries transient failures with exponential backoff (1s, then
// 2s) up to three attempts. A StatusError in the 4xx range is never retried.
func (g *Gateway) callBackend(ctx context.Context, systemPrompt string, history []Turn, schema map[string]any, tools []Tool) (ModelReply, error) {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			g.sleep(baseBackoff * (1 << (attempt - 1)))
		}

		reply, err := g.backend.Complete(ctx, StructuredRequest{
			SystemPrompt: systemPrompt,
			History:      history,
			Schema:       schema,
			Tools:        tools,
		})
		if err == nil {
			return reply, nil
		}
		lastErr = err
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return ModelReply{}, err
		}
	}

	return ModelReply{}, lastErr
}

func indexTools(tools []Tool) map[string]Tool {
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
	}
	return byName
}

// invokeTools runs every call concurrently against its registered handler
// and returns one tool-response Turn per call, in the same order as calls.
func (g *Gateway) invokeTools(ctx context.Context, tools map[string]Tool, calls []ToolCall) []Turn {
	results := make([]Turn, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call ToolCall) {
			defer wg.Done()
			results[i] = invokeTool(ctx, tools, call)
		}(i, call)
	}
	wg.Wait()
	return results
}

func invokeTool(ctx context.Context, tools map[string]Tool, call ToolCall) Turn {
	tool, ok := tools[call.Name]
	if !ok || tool.Handler == nil {
		return Turn{Role: "tool", ToolCallID: call.ID, ToolName: call.Name, Content: encodeResult(map[string]any{"error": fmt.Sprintf("unknown tool %q", call.Name)})}
	}
	result, err := tool.Handler(ctx, call.Args)
	if err != nil {
		result = map[string]any{"error": err.Error()}
	}
	return Turn{Role: "tool", ToolCallID: call.ID, ToolName: call.Name, Content: encodeResult(result)}
}

func encodeResult(v map[string]any) string {
	data, _ := json.Marshal(v)
	return string(data)
}

func decodeJSON(raw string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return data, nil
}

var (
	codeFenceRe   = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// repair strips common LLM formatting mistakes: markdown code fences around
// the JSON body, and trailing commas before a closing brace or bracket.
func repair(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if m := codeFenceRe.FindStringSubmatch(trimmed); len(m) == 2 {
		trimmed = m[1]
	}
	return trailingComma.ReplaceAllString(trimmed, "$1")
}
