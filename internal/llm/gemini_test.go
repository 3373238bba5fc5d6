package llm

import (
	"testing"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"word":    map[string]any{"type": "string"},
			"index":   map[string]any{"type": "integer"},
			"grade":   map[string]any{"type": "string", "enum": []any{"A", "B", "C"}},
			"samples": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"word", "index"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["word"].Type != "STRING" {
		t.Fatalf("expected STRING for word, got %s", schema.Properties["word"].Type)
	}
	if schema.Properties["samples"].Type != "ARRAY" {
		t.Fatalf("expected ARRAY for samples, got %s", schema.Properties["samples"].Type)
	}
	if schema.Properties["samples"].Items == nil || schema.Properties["samples"].Items.Type != "STRING" {
		t.Fatal("expected STRING items for samples")
	}
	if len(schema.Properties["grade"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["grade"].Enum))
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	if got := resolveModel("claude-haiku", anthropicModels); got != "claude-haiku-4-5-20251001" {
		t.Errorf("resolveModel(claude-haiku) = %q", got)
	}
	if got := resolveModel("custom-model-id", anthropicModels); got != "custom-model-id" {
		t.Errorf("expected pass-through for unknown model, got %q", got)
	}
}
