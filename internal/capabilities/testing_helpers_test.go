package capabilities

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/nightwatch-sre/nightwatch/internal/config"
	"github.com/nightwatch-sre/nightwatch/internal/human"
	"github.com/nightwatch-sre/nightwatch/internal/knowledge"
	"github.com/nightwatch-sre/nightwatch/internal/reasoner"
)

// scriptedReasoner returns one canned reply per call, in order, and records
// every request it was handed for assertions on prompt content. A reply
// produced by toolCallReply yields tool calls instead of a final answer.
type scriptedReasoner struct {
	replies  []map[string]any
	requests []reasoner.StructuredRequest
	calls    int
}

const toolCallsKey = "__toolCalls"

// toolCallReply builds a scripted reply that makes a single tool call rather
// than returning a final structured answer.
func toolCallReply(name string, args map[string]any) map[string]any {
	return map[string]any{toolCallsKey: []reasoner.ToolCall{{ID: "call-1", Name: name, Args: args}}}
}

func (s *scriptedReasoner) Complete(ctx context.Context, req reasoner.StructuredRequest) (reasoner.ModelReply, error) {
	s.requests = append(s.requests, req)
	i := s.calls
	s.calls++
	reply := s.replies[i]

	if calls, ok := reply[toolCallsKey].([]reasoner.ToolCall); ok {
		return reasoner.ModelReply{ToolCalls: calls}, nil
	}
	data, _ := json.Marshal(reply)
	return reasoner.ModelReply{Text: string(data)}, nil
}

func newTestDeps(replies ...map[string]any) (*Deps, *scriptedReasoner) {
	backend := &scriptedReasoner{replies: replies}
	gw := reasoner.NewGateway(backend)
	var out bytes.Buffer
	return &Deps{
		Gateway:   gw,
		Topology:  &config.Topology{Containers: map[string]struct{}{"cache": {}, "api": {}}},
		Human:     human.NewSurface(&out, bytes.NewReader(nil)),
		Knowledge: noopKnowledgeStore(),
	}, backend
}

func depsWithHumanInput(input string, replies ...map[string]any) *Deps {
	backend := &scriptedReasoner{replies: replies}
	gw := reasoner.NewGateway(backend)
	var out bytes.Buffer
	return &Deps{
		Gateway:   gw,
		Topology:  &config.Topology{Containers: map[string]struct{}{"cache": {}, "api": {}}},
		Human:     human.NewSurface(&out, bytes.NewReader([]byte(input))),
		Knowledge: noopKnowledgeStore(),
	}
}

// noopKnowledgeStore returns a Store backed by a fresh temp file, so
// capabilities exercising deps.Knowledge in tests don't need a shared
// filesystem fixture wired into every test case.
func noopKnowledgeStore() *knowledge.Store {
	dir, err := os.MkdirTemp("", "nightwatch-knowledge-")
	if err != nil {
		panic(err)
	}
	store, err := knowledge.NewStore(filepath.Join(dir, "knowledge.md"))
	if err != nil {
		panic(err)
	}
	return store
}
