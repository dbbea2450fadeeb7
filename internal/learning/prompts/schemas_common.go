package prompts

func StringArraySchema() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}

func StringSchema() map[string]any { return map[string]any{"type": "string"} }

func IntSchema() map[string]any { return map[string]any{"type": "integer"} }

func EnumSchema(values ...string) map[string]any {
	arr := make([]any, 0, len(values))
	for _, v := range values {
		arr = append(arr, v)
	}
	return map[string]any{"type": "string", "enum": arr}
}

func ObjectSchema(properties map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func ArrayOf(item map[string]any) map[string]any {
	return map[string]any{"type": "array", "items": item}
}
