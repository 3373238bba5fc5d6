package tutor

import "github.com/verso-cli/verso/internal/llm"

// PassageSchema defines the JSON schema for passage generation.
var PassageSchema = &llm.Schema{
	Name:        "passage",
	Description: "A short graded passage split into sentences",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"passage": map[string]any{
				"type":        "string",
				"description": "The full passage as continuous prose",
			},
			"sentences": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "The passage split into individual sentences, in order",
			},
		},
		"required":             []any{"sentences"},
		"additionalProperties": false,
	},
}

// BatchFeedbackSchema defines the JSON schema for batched sentence rating.
var BatchFeedbackSchema = &llm.Schema{
	Name:        "sentence-feedback-batch",
	Description: "Graded feedback for a batch of translated sentences",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"index": map[string]any{
							"type":        "integer",
							"description": "Zero-based position of the sentence in the passage",
						},
						"feedback": map[string]any{
							"type":        "string",
							"description": "One or two sentences of qualitative feedback",
						},
						"grade": map[string]any{
							"type": "string",
							"enum": []any{"A", "B", "C", "D", "F"},
						},
						"reference": map[string]any{
							"type":        "string",
							"description": "Your own translation of the original sentence",
						},
					},
					"required":             []any{"index", "feedback"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"items"},
		"additionalProperties": false,
	},
}

// lessonSchemaJSON is the shape check applied to lesson output. The lesson
// request does not use native structured output (bad JSON degrades to a
// fallback lesson instead of erroring), so the check runs locally.
const lessonSchemaJSON = `{
	"type": "object",
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"grammarFocus": {"type": "string", "minLength": 1},
		"vocabulary": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"word": {"type": "string", "minLength": 1},
					"meaning": {"type": "string"},
					"example": {"type": "string"}
				},
				"required": ["word", "meaning"]
			}
		},
		"commonMistakes": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"mistake": {"type": "string", "minLength": 1},
					"correction": {"type": "string"},
					"example": {"type": "string"}
				},
				"required": ["mistake", "correction"]
			}
		},
		"exercises": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"type": {"type": "string"},
					"instruction": {"type": "string"},
					"question": {"type": "string", "minLength": 1},
					"answer": {"type": "string"},
					"explanation": {"type": "string"}
				},
				"required": ["question"]
			}
		}
	},
	"required": ["title", "grammarFocus", "vocabulary", "commonMistakes"]
}`
