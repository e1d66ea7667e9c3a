package reasoner

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// GenAIReasoner is the default hosted backend, backed by Gemini. When a
// request carries tool declarations it uses Gemini's function-calling mode;
// otherwise it attaches a JSON response schema for constrained decoding. The
// two are mutually exclusive on a single request, so the gateway never asks
// for both at once.
type GenAIReasoner struct {
	client *genai.Client
	model  string
}

// NewGenAIReasoner constructs a GenAIReasoner. model defaults to
// "gemini-2.5-pro" if empty.
func NewGenAIReasoner(ctx context.Context, apiKey, model string) (*GenAIReasoner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("reasoner: GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.5-pro"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("reasoner: creating GenAI client: %w", err)
	}

	return &GenAIReasoner{client: client, model: model}, nil
}

// Complete sends req to Gemini and translates the reply back into a
// ModelReply: either the plain text candidate, or the function calls the
// model chose to make.
func (g *GenAIReasoner) Complete(ctx context.Context, req StructuredRequest) (ModelReply, error) {
	contents := make([]*genai.Content, 0, len(req.History))
	for _, turn := range req.History {
		contents = append(contents, contentFromTurn(turn))
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
	}
	if len(req.Tools) > 0 {
		config.Tools = toolsToGenAI(req.Tools)
	} else {
		config.ResponseMIMEType = "application/json"
		if req.Schema != nil {
			config.ResponseSchema = schemaFromMap(req.Schema)
		}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		if apiErr, ok := err.(*genai.APIError); ok {
			return ModelReply{}, &StatusError{Code: apiErr.Code, Err: err}
		}
		return ModelReply{}, fmt.Errorf("reasoner: generate content: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ModelReply{}, fmt.Errorf("reasoner: empty response from model")
	}

	var reply ModelReply
	for i, part := range result.Candidates[0].Content.Parts {
		switch {
		case part.FunctionCall != nil:
			reply.ToolCalls = append(reply.ToolCalls, ToolCall{
				ID:   fmt.Sprintf("call-%d", i),
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		case part.Text != "":
			reply.Text += part.Text
		}
	}

	return reply, nil
}

// contentFromTurn translates one conversation turn into the genai content
// shape appropriate to its role: a tool's response becomes a function
// response part, a model turn with tool calls becomes function call parts,
// everything else becomes plain text.
func contentFromTurn(turn Turn) *genai.Content {
	switch turn.Role {
	case "tool":
		var resp map[string]any
		if err := json.Unmarshal([]byte(turn.Content), &resp); err != nil {
			resp = map[string]any{"raw": turn.Content}
		}
		return &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{genai.NewPartFromFunctionResponse(turn.ToolName, resp)},
		}
	case "model":
		if len(turn.ToolCalls) > 0 {
			parts := make([]*genai.Part, len(turn.ToolCalls))
			for i, call := range turn.ToolCalls {
				parts[i] = genai.NewPartFromFunctionCall(call.Name, call.Args)
			}
			return &genai.Content{Role: genai.RoleModel, Parts: parts}
		}
		return genai.NewContentFromText(turn.Content, genai.RoleModel)
	default:
		return genai.NewContentFromText(turn.Content, genai.RoleUser)
	}
}

// toolsToGenAI declares every tool as a single function-declaration set, the
// shape Gemini expects for function calling.
func toolsToGenAI(tools []Tool) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		decls[i] = &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schemaFromMap(t.Parameters),
		}
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// schemaFromMap translates a plain JSON-schema-shaped map into genai's
// Schema type. Only the subset nightwatch's capabilities emit (object,
// string, boolean, array, integer properties) is supported.
func schemaFromMap(m map[string]any) *genai.Schema {
	if m == nil {
		return nil
	}

	schema := &genai.Schema{}

	if t, ok := m["type"].(string); ok {
		schema.Type = genai.Type(t)
	}
	if props, ok := m["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if sub, ok := raw.(map[string]any); ok {
				schema.Properties[name] = schemaFromMap(sub)
			}
		}
	}
	if items, ok := m["items"].(map[string]any); ok {
		schema.Items = schemaFromMap(items)
	}
	if required, ok := m["required"].([]string); ok {
		schema.Required = required
	}

	return schema
}
