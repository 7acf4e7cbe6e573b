package models

// StudySheetSchema is the JSON Schema the generation model must answer with.
// It is used both to configure structured output and to validate the reply.
func StudySheetSchema() map[string]any {
	stringArray := func(desc string) map[string]any {
		m := map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		}
		if desc != "" {
			m["description"] = desc
		}
		return m
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":         map[string]any{"type": "string"},
			"summaryPoints": stringArray(""),
			"keyConcepts": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"term":       map[string]any{"type": "string"},
						"definition": map[string]any{"type": "string"},
					},
					"required": []any{"term", "definition"},
				},
			},
			"activityFlow": stringArray("Résumé étape par étape de l'activité du TD. Tableau vide si aucun TD n'est fourni."),
			"quiz": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question":      map[string]any{"type": "string"},
						"options":       stringArray(""),
						"correctAnswer": map[string]any{"type": "string"},
					},
					"required": []any{"question", "options", "correctAnswer"},
				},
			},
		},
		"required": []any{"title", "summaryPoints", "keyConcepts", "activityFlow", "quiz"},
	}
}
