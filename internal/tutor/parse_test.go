package tutor

import (
	"strings"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFences(tt.input); got != tt.want {
				t.Errorf("stripCodeFences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"whitespace only", "   \n  ", 0},
		{"single sentence", "El gato duerme.", 1},
		{"three sentences", "El gato duerme. El sol brilla. Hace calor.", 3},
		{"question and exclamation", "¿Cómo estás? ¡Muy bien!", 2},
		{"no terminal punctuation", "una frase sin punto final", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSentences(tt.input)
			if len(got) != tt.want {
				t.Errorf("splitSentences(%q) = %d sentences %v, want %d", tt.input, len(got), got, tt.want)
			}
			for _, s := range got {
				if strings.TrimSpace(s) != s || s == "" {
					t.Errorf("sentence not trimmed: %q", s)
				}
			}
		})
	}
}

func TestScanSentences_AbsorbsTerminalRuns(t *testing.T) {
	got := scanSentences("¡No puede ser!? Claro que sí.")
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %v", len(got), got)
	}
	if !strings.HasSuffix(got[0], "!?") {
		t.Errorf("terminal run not kept together: %q", got[0])
	}
}

func TestParseLesson(t *testing.T) {
	valid := `{
		"title": "T",
		"grammarFocus": "G",
		"vocabulary": [{"word": "ser", "meaning": "to be"}],
		"commonMistakes": [{"mistake": "ser vs estar", "correction": "estar for location"}],
		"exercises": [{"question": "Translate: Estoy aquí."}]
	}`
	lesson, ok := parseLesson(valid)
	if !ok {
		t.Fatal("expected valid lesson to parse")
	}
	if lesson.Kind != LessonStructured || lesson.Title != "T" {
		t.Errorf("unexpected lesson: %+v", lesson)
	}
	if len(lesson.Vocabulary) != 1 || lesson.Vocabulary[0].Word != "ser" {
		t.Errorf("unexpected vocabulary: %+v", lesson.Vocabulary)
	}
	if len(lesson.Exercises) != 1 || lesson.Exercises[0].Question != "Translate: Estoy aquí." {
		t.Errorf("unexpected exercises: %+v", lesson.Exercises)
	}

	if _, ok := parseLesson("not json at all"); ok {
		t.Error("expected non-JSON to fail")
	}
	if _, ok := parseLesson(`{"title":""}`); ok {
		t.Error("expected missing fields to fail the shape check")
	}
	if _, ok := parseLesson(`{"title":"T","grammarFocus":"G","vocabulary":["flat"],"commonMistakes":[]}`); ok {
		t.Error("expected string vocabulary items to fail the shape check")
	}
	if _, ok := parseLesson(`{"title":"T","grammarFocus":"G","vocabulary":[{"word":"ser"}],"commonMistakes":[]}`); ok {
		t.Error("expected a vocabulary item without meaning to fail the shape check")
	}
}
