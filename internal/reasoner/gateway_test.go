package reasoner

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeReasoner struct {
	responses []ModelReply
	errs      []error
	calls     int
}

func (f *fakeReasoner) Complete(ctx context.Context, req StructuredRequest) (ModelReply, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp ModelReply
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func textReply(s string) ModelReply { return ModelReply{Text: s} }

func noSleep(time.Duration) {}

func TestGatewayCompleteFirstTryOK(t *testing.T) {
	fake := &fakeReasoner{responses: []ModelReply{textReply(`{"ok":true}`)}}
	g := NewGateway(fake)
	g.sleep = noSleep

	data, err := g.Complete(context.Background(), StructuredRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data["ok"] != true {
		t.Fatalf("unexpected data: %+v", data)
	}
	if fake.calls != 1 {
		t.Fatalf("expected 1 call, got %d", fake.calls)
	}
}

func TestGatewayRetriesTransientFailure(t *testing.T) {
	fake := &fakeReasoner{
		errs:      []error{errors.New("connection reset"), nil},
		responses: []ModelReply{{}, textReply(`{"ok":true}`)},
	}
	g := NewGateway(fake)
	g.sleep = noSleep

	data, err := g.Complete(context.Background(), StructuredRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data["ok"] != true {
		t.Fatalf("unexpected data: %+v", data)
	}
	if fake.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", fake.calls)
	}
}

func TestGatewayDoesNotRetry4xx(t *testing.T) {
	fake := &fakeReasoner{
		errs: []error{&StatusError{Code: 400, Err: errors.New("bad request")}},
	}
	g := NewGateway(fake)
	g.sleep = noSleep

	_, err := g.Complete(context.Background(), StructuredRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if fake.calls != 1 {
		t.Fatalf("expected exactly 1 call for a 4xx, got %d", fake.calls)
	}
}

func TestGatewayRepairsMarkdownFencedJSON(t *testing.T) {
	fake := &fakeReasoner{responses: []ModelReply{textReply("```json\n{\"ok\": true,}\n```")}}
	g := NewGateway(fake)
	g.sleep = noSleep

	data, err := g.Complete(context.Background(), StructuredRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data["ok"] != true {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestGatewayGivesUpAfterMaxAttempts(t *testing.T) {
	fake := &fakeReasoner{
		errs: []error{
			errors.New("timeout"),
			errors.New("timeout"),
			errors.New("timeout"),
		},
	}
	g := NewGateway(fake)
	g.sleep = noSleep

	_, err := g.Complete(context.Background(), StructuredRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	if fake.calls != maxAttempts {
		t.Fatalf("expected %d calls, got %d", maxAttempts, fake.calls)
	}
}

func TestGatewayRequestsCorrectiveRetryOnInvalidJSON(t *testing.T) {
	fake := &fakeReasoner{responses: []ModelReply{
		textReply("not json at all"),
		textReply(`{"ok":true}`),
	}}
	g := NewGateway(fake)
	g.sleep = noSleep

	data, err := g.Complete(context.Background(), StructuredRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data["ok"] != true {
		t.Fatalf("unexpected data: %+v", data)
	}
	if fake.calls != 2 {
		t.Fatalf("expected a single corrective retry (2 calls total), got %d", fake.calls)
	}
}

func TestGatewayCompleteRunsToolCallAndContinues(t *testing.T) {
	var gotArgs map[string]any
	tool := Tool{
		Name: "inspect_container",
		Handler: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			gotArgs = args
			return map[string]any{"status": "running"}, nil
		},
	}

	fake := &fakeReasoner{responses: []ModelReply{
		{ToolCalls: []ToolCall{{ID: "call-1", Name: "inspect_container", Args: map[string]any{"name": "cache"}}}},
		textReply(`{"idle":true,"summary":"container is healthy now"}`),
	}}
	g := NewGateway(fake)
	g.sleep = noSleep

	data, err := g.Complete(context.Background(), StructuredRequest{Tools: []Tool{tool}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data["idle"] != true {
		t.Fatalf("unexpected data: %+v", data)
	}
	if gotArgs["name"] != "cache" {
		t.Fatalf("expected tool handler to receive call args, got %+v", gotArgs)
	}
	if fake.calls != 2 {
		t.Fatalf("expected 2 calls (tool round + final), got %d", fake.calls)
	}
}

func TestGatewaySelectReturnsChosenCall(t *testing.T) {
	fake := &fakeReasoner{responses: []ModelReply{
		{ToolCalls: []ToolCall{{ID: "call-1", Name: "analyzeIncident"}}},
	}}
	g := NewGateway(fake)
	g.sleep = noSleep

	call, ok, err := g.Select(context.Background(), StructuredRequest{Tools: []Tool{{Name: "analyzeIncident"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || call.Name != "analyzeIncident" {
		t.Fatalf("expected analyzeIncident to be chosen, got ok=%v call=%+v", ok, call)
	}
	if fake.calls != 1 {
		t.Fatalf("Select must never execute the tool, expected 1 call, got %d", fake.calls)
	}
}

func TestGatewaySelectReportsNoChoice(t *testing.T) {
	fake := &fakeReasoner{responses: []ModelReply{textReply("I am not sure what to do")}}
	g := NewGateway(fake)
	g.sleep = noSleep

	_, ok, err := g.Select(context.Background(), StructuredRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false when the model makes no tool call")
	}
}
