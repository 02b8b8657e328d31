package questiongen

import "github.com/abhisek/careercoach/internal/llm"

// QuestionSchema defines the JSON shape of a generated multiple-choice question.
var QuestionSchema = &llm.Schema{
	Name:        "career-mcq",
	Description: "A single multiple-choice question with four options, the correct option number and a short explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "The question shown to the learner",
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"minItems":    4,
				"maxItems":    4,
				"description": "Exactly four answer options, in display order 1 to 4",
			},
			"correct_answer": map[string]any{
				"type":        "string",
				"enum":        []any{"1", "2", "3", "4"},
				"description": "The number of the correct option as a string",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Why the correct option is right, in one or two sentences",
			},
		},
		"required":             []any{"question", "options", "correct_answer", "explanation"},
		"additionalProperties": false,
	},
}
