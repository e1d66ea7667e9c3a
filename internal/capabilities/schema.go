package capabilities

// schema helpers build the small JSON-schema-shaped maps each capability
// hands the reasoner gateway, mirroring the shapes google.golang.org/genai
// expects for constrained decoding.

func objectSchema(properties map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func stringProp() map[string]any  { return map[string]any{"type": "string"} }
func boolProp() map[string]any    { return map[string]any{"type": "boolean"} }
func integerProp() map[string]any { return map[string]any{"type": "integer"} }

func arrayOfStrings() map[string]any {
	return map[string]any{"type": "array", "items": stringProp()}
}

func getString(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func getBool(data map[string]any, key string) bool {
	if v, ok := data[key].(bool); ok {
		return v
	}
	return false
}

func getStringSlice(data map[string]any, key string) []string {
	raw, ok := data[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
