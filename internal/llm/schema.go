package llm

// ProductArraySchema returns the JSON-Schema (draft 2020-12 subset) the
// structuring output is checked against. Only product_name is required;
// every other field may be a string or null.
func ProductArraySchema() map[string]any {
	props := map[string]any{
		"product_name":   map[string]any{"type": "string", "minLength": 1},
		"company_name":   optionalString(),
		"contact_number": optionalString(),
		"website":        optionalString(),
		"description":    optionalString(),
		"catalogue_link": optionalString(),
	}
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":       "object",
			"properties": props,
			"required":   []string{"product_name"},
		},
	}
}

func optionalString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}
