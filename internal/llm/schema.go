package llm

// ResumeJSONSchema describes ResumeTemplate as JSON Schema. It is lenient:
// every key is optional, unknown keys are kept and scalars may be numbers.
func ResumeJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":           scalarProp(),
			"phoneNumbers":   listOf(scalarProp()),
			"websites":       listOf(scalarProp()),
			"emails":         listOf(scalarProp()),
			"dateOfBirth":    scalarProp(),
			"addresses":      listOf(objectOf("street", "city", "state", "zip", "country")),
			"summary":        scalarProp(),
			"education":      listOf(objectOf("school", "degree", "fieldOfStudy", "startDate", "endDate")),
			"workExperience": listOf(objectOf("company", "position", "startDate", "endDate")),
			"skills":         listOf(objectOf("name")),
			"certifications": listOf(objectOf("name")),
		},
	}
}

func scalarProp() map[string]any {
	return map[string]any{"type": []string{"string", "number", "null"}}
}

func listOf(item map[string]any) map[string]any {
	return map[string]any{
		"type":  []string{"array", "null"},
		"items": item,
	}
}

func objectOf(keys ...string) map[string]any {
	props := make(map[string]any, len(keys))
	for _, k := range keys {
		props[k] = scalarProp()
	}
	return map[string]any{"type": "object", "properties": props}
}
