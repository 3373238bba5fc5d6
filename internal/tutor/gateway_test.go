package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/verso-cli/verso/internal/llm"
)

func newTestGateway(responses ...llm.MockResponse) (*Gateway, *llm.MockProvider) {
	mock := llm.NewMockProvider(responses...)
	return NewGateway(mock, DefaultConfig()), mock
}

func TestValidateKey_Classification(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
		want ProbeResult
	}{
		{
			name: "valid key",
			resp: llm.TextResponse(`OK`),
			want: ProbeValid,
		},
		{
			name: "rejected key",
			resp: llm.ErrorResponse(&llm.ErrAuth{Err: errors.New("401")}),
			want: ProbeKeyInvalid,
		},
		{
			name: "quota exhausted",
			resp: llm.ErrorResponse(&llm.ErrRateLimit{Err: errors.New("429")}),
			want: ProbeQuotaExceeded,
		},
		{
			name: "provider down",
			resp: llm.ErrorResponse(&llm.ErrProviderUnavailable{Err: errors.New("503")}),
			want: ProbeNetworkError,
		},
		{
			name: "something else",
			resp: llm.ErrorResponse(errors.New("weird")),
			want: ProbeUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGateway(tt.resp)
			got := g.ValidateKey(context.Background())
			if got != tt.want {
				t.Errorf("ValidateKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGeneratePassage_StructuredSentences(t *testing.T) {
	for _, level := range Levels() {
		t.Run(level, func(t *testing.T) {
			g, mock := newTestGateway(llm.JSONResponse(`{"passage":"El gato duerme. El sol brilla.","sentences":["El gato duerme.","El sol brilla."]}`))

			sents, err := g.GeneratePassage(context.Background(), PassageSpec{
				Language: "Spanish",
				Level:    level,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(sents) < 1 {
				t.Fatal("expected at least one sentence")
			}
			if sents[0].Index != 0 || sents[0].Text != "El gato duerme." {
				t.Errorf("unexpected first sentence: %+v", sents[0])
			}
			if !strings.Contains(mock.Calls[0].Messages[0].Content, level) {
				t.Errorf("prompt does not mention level %s", level)
			}
		})
	}
}

func TestGeneratePassage_SingleBlobResplit(t *testing.T) {
	g, _ := newTestGateway(llm.JSONResponse(`{"sentences":["El gato duerme. El sol brilla. Hace calor."]}`))

	sents, err := g.GeneratePassage(context.Background(), PassageSpec{Language: "Spanish", Level: "A1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sents) != 3 {
		t.Fatalf("expected 3 sentences after re-split, got %d: %+v", len(sents), sents)
	}
}

func TestGeneratePassage_ProseFallback(t *testing.T) {
	raw := json.RawMessage("El gato duerme. El sol brilla.")
	g, _ := newTestGateway(llm.MockResponse{
		Err: &llm.ErrInvalidResponse{Content: raw, Err: errors.New("invalid JSON")},
	})

	sents, err := g.GeneratePassage(context.Background(), PassageSpec{Language: "Spanish", Level: "A2"})
	if err != nil {
		t.Fatalf("expected prose fallback, got error: %v", err)
	}
	if len(sents) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(sents))
	}
}

func TestGeneratePassage_EmptyOutput(t *testing.T) {
	g, _ := newTestGateway(llm.JSONResponse(`{"sentences":[]}`))

	_, err := g.GeneratePassage(context.Background(), PassageSpec{Language: "Spanish", Level: "B1"})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got: %v", err)
	}
}

func TestGeneratePassage_ThemeValidation(t *testing.T) {
	tests := []struct {
		name    string
		theme   string
		wantErr bool
	}{
		{"empty theme allowed", "", false},
		{"too short", "ab", true},
		{"minimum length", "sea", false},
		{"too long", strings.Repeat("x", 121), true},
		{"maximum length", strings.Repeat("x", 120), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, mock := newTestGateway(llm.JSONResponse(`{"sentences":["Hola."]}`))
			_, err := g.GeneratePassage(context.Background(), PassageSpec{
				Language: "Spanish", Level: "A1", Theme: tt.theme,
			})
			if tt.wantErr {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("expected ValidationError, got: %v", err)
				}
				if mock.CallCount() != 0 {
					t.Error("validation failure must not reach the model")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestGeneratePassage_VariantInPrompt(t *testing.T) {
	g, mock := newTestGateway(llm.JSONResponse(`{"sentences":["Hola."]}`))
	_, err := g.GeneratePassage(context.Background(), PassageSpec{
		Language: "Spanish", Level: "A1", Variant: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "regeneration #2") {
		t.Error("expected variant nudge in prompt")
	}
}

func TestTranslate(t *testing.T) {
	g, mock := newTestGateway(llm.TextResponse(`The cat sleeps.`))

	out, err := g.Translate(context.Background(), "El gato duerme.", "Spanish", "English")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "The cat sleeps." {
		t.Errorf("unexpected translation: %q", out)
	}
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "El gato duerme.") {
		t.Error("prompt missing source text")
	}
}

func TestTranslate_EmptyResponse(t *testing.T) {
	g, _ := newTestGateway(llm.TextResponse(`   `))

	_, err := g.Translate(context.Background(), "El gato duerme.", "Spanish", "English")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got: %v", err)
	}
}

func TestRateTranslation(t *testing.T) {
	g, mock := newTestGateway(llm.TextResponse("Solid overall.\n- Watch the article usage."))

	out, err := g.RateTranslation(context.Background(),
		"El gato duerme.", "The cat sleep.", "The cat sleeps.", "Spanish", "English")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" {
		t.Fatal("expected non-empty feedback")
	}
	msg := mock.Calls[0].Messages[0].Content
	if !strings.Contains(msg, "The cat sleep.") || !strings.Contains(msg, "Reference translation") {
		t.Error("prompt missing attempt or reference")
	}
}

func TestRateSentenceBatch_BlankExcluded(t *testing.T) {
	g, mock := newTestGateway(llm.JSONResponse(`{"items":[{"index":0,"feedback":"Good.","grade":"A","reference":"Hello."}]}`))

	result, err := g.RateSentenceBatch(context.Background(),
		[]string{"Hola.", "Adiós."}, []string{"Hello.", ""}, "Spanish", "English")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", result.TotalCount)
	}
	if result.TranslatedCount != 1 {
		t.Errorf("TranslatedCount = %d, want 1", result.TranslatedCount)
	}
	if len(result.PerSentence) != 1 || result.PerSentence[0].Index != 0 {
		t.Fatalf("unexpected PerSentence: %+v", result.PerSentence)
	}
	if result.PerSentence[0].Grade != "A" {
		t.Errorf("grade = %q, want A", result.PerSentence[0].Grade)
	}

	// The blank sentence must not appear in the prompt.
	if strings.Contains(mock.Calls[0].Messages[0].Content, "Adiós.") {
		t.Error("blank attempt leaked into the prompt")
	}
}

func TestRateSentenceBatch_GradeDefaultsToC(t *testing.T) {
	g, _ := newTestGateway(llm.JSONResponse(`{"items":[{"index":0,"feedback":"Fine."}]}`))

	result, err := g.RateSentenceBatch(context.Background(),
		[]string{"Hola."}, []string{"Hello."}, "Spanish", "English")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.PerSentence) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(result.PerSentence))
	}
	if result.PerSentence[0].Grade != "C" {
		t.Errorf("grade = %q, want default C", result.PerSentence[0].Grade)
	}
}

func TestRateSentenceBatch_AllBlankSkipsModel(t *testing.T) {
	g, mock := newTestGateway()

	result, err := g.RateSentenceBatch(context.Background(),
		[]string{"Hola.", "Adiós."}, []string{"", "  "}, "Spanish", "English")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalCount != 2 || result.TranslatedCount != 0 {
		t.Errorf("unexpected counts: %+v", result)
	}
	if mock.CallCount() != 0 {
		t.Error("all-blank batch must not call the model")
	}
}

func TestRateSentenceBatch_BackfillsOmittedSentences(t *testing.T) {
	g, _ := newTestGateway(llm.JSONResponse(`{"items":[{"index":1,"feedback":"Good.","grade":"A","reference":"Goodbye."}]}`))

	result, err := g.RateSentenceBatch(context.Background(),
		[]string{"Hola.", "Adiós.", "Gracias."}, []string{"Hello.", "Goodbye.", ""}, "Spanish", "English")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TranslatedCount != 2 {
		t.Fatalf("TranslatedCount = %d, want 2", result.TranslatedCount)
	}
	if len(result.PerSentence) != result.TranslatedCount {
		t.Fatalf("PerSentence length = %d, want %d", len(result.PerSentence), result.TranslatedCount)
	}
	if result.PerSentence[0].Index != 0 || result.PerSentence[1].Index != 1 {
		t.Errorf("entries not in passage order: %+v", result.PerSentence)
	}
	if result.PerSentence[0].Grade != "C" || result.PerSentence[0].Feedback != "" {
		t.Errorf("omitted sentence not backfilled with default grade: %+v", result.PerSentence[0])
	}
	if result.PerSentence[1].Grade != "A" {
		t.Errorf("returned item lost: %+v", result.PerSentence[1])
	}
}

func TestRateSentenceBatch_IgnoresUnknownIndexes(t *testing.T) {
	g, _ := newTestGateway(llm.JSONResponse(`{"items":[
			{"index":0,"feedback":"Good.","grade":"B"},
			{"index":5,"feedback":"Ghost entry.","grade":"A"},
			{"index":0,"feedback":"Duplicate.","grade":"F"}
		]}`))

	result, err := g.RateSentenceBatch(context.Background(),
		[]string{"Hola."}, []string{"Hello."}, "Spanish", "English")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.PerSentence) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(result.PerSentence))
	}
	if result.PerSentence[0].Grade != "B" {
		t.Errorf("expected first entry kept, got %+v", result.PerSentence[0])
	}
}

func testAttempts() []TranslationAttempt {
	return []TranslationAttempt{
		{Original: "El gato duerme.", Attempt: "The cat sleep.", Feedback: "Third person -s missing."},
	}
}

func TestGenerateLesson_Structured(t *testing.T) {
	g, _ := newTestGateway(llm.JSONResponse(`{
			"title": "Present Tense Agreement",
			"grammarFocus": "Third-person singular verbs take -s in English.",
			"vocabulary": [{"word": "dormir", "meaning": "to sleep", "example": "El gato duerme."}],
			"commonMistakes": [{"mistake": "dropping the third-person -s", "correction": "add -s to he/she/it verbs", "example": "The cat sleeps."}],
			"exercises": [{"type": "translate", "instruction": "Translate into English.", "question": "El perro corre.", "answer": "The dog runs.", "explanation": "Third person takes -s."}]
		}`))

	lesson, err := g.GenerateLesson(context.Background(), testAttempts(), "Spanish", "English")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lesson.Kind != LessonStructured {
		t.Fatalf("expected structured lesson, got kind %v", lesson.Kind)
	}
	if lesson.Title != "Present Tense Agreement" {
		t.Errorf("title = %q", lesson.Title)
	}
	if len(lesson.Vocabulary) != 1 || lesson.Vocabulary[0].Word != "dormir" || lesson.Vocabulary[0].Meaning != "to sleep" {
		t.Errorf("unexpected vocabulary: %+v", lesson.Vocabulary)
	}
	if len(lesson.CommonMistakes) != 1 || lesson.CommonMistakes[0].Correction == "" {
		t.Errorf("unexpected mistakes: %+v", lesson.CommonMistakes)
	}
	if len(lesson.Exercises) != 1 || lesson.Exercises[0].Question != "El perro corre." || lesson.Exercises[0].Answer != "The dog runs." {
		t.Errorf("unexpected exercises: %+v", lesson.Exercises)
	}
}

func TestGenerateLesson_CodeFencedJSON(t *testing.T) {
	g, _ := newTestGateway(llm.TextResponse("```json\n{\"title\":\"T\",\"grammarFocus\":\"G\",\"vocabulary\":[],\"commonMistakes\":[]}\n```"))

	lesson, err := g.GenerateLesson(context.Background(), testAttempts(), "Spanish", "English")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lesson.Kind != LessonStructured {
		t.Errorf("expected fenced JSON to parse, got kind %v", lesson.Kind)
	}
}

func TestGenerateLesson_FallbackOnBadJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not JSON", "Here is your lesson: work on verb agreement."},
		{"missing required field", `{"title":"T","vocabulary":[],"commonMistakes":[]}`},
		{"wrong types", `{"title":"T","grammarFocus":"G","vocabulary":"not a list","commonMistakes":[]}`},
		{"flat string items", `{"title":"T","grammarFocus":"G","vocabulary":["dormir - to sleep"],"commonMistakes":["dropped -s"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGateway(llm.MockResponse{
				Content: json.RawMessage(tt.raw),
			})

			lesson, err := g.GenerateLesson(context.Background(), testAttempts(), "Spanish", "English")
			if err != nil {
				t.Fatalf("bad lesson JSON must not error, got: %v", err)
			}
			if lesson.Kind != LessonFallback {
				t.Fatalf("expected fallback lesson, got kind %v", lesson.Kind)
			}
			if lesson.Fallback == "" {
				t.Error("fallback lesson must carry the raw text")
			}
		})
	}
}

func TestChat_ContextBlockAheadOfMessage(t *testing.T) {
	g, mock := newTestGateway(llm.TextResponse(`"Duerme" is third person singular of "dormir".`))

	history := []ChatTurn{
		{Role: "user", Content: "Hi"},
		{Role: "assistant", Content: "Hello! Ask me anything."},
	}
	out, err := g.Chat(context.Background(), history, "Passage: El gato duerme.", "What does duerme mean?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" {
		t.Fatal("expected non-empty reply")
	}

	req := mock.Calls[0]
	if len(req.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(req.Messages))
	}
	if req.Messages[1].Role != llm.RoleAssistant {
		t.Errorf("history role not preserved: %v", req.Messages[1].Role)
	}
	last := req.Messages[2].Content
	ctxPos := strings.Index(last, "El gato duerme.")
	msgPos := strings.Index(last, "What does duerme mean?")
	if ctxPos < 0 || msgPos < 0 || ctxPos > msgPos {
		t.Errorf("context block not serialized ahead of the message:\n%s", last)
	}
}

func TestChat_NoContextBlock(t *testing.T) {
	g, mock := newTestGateway(llm.TextResponse(`Sure.`))

	_, err := g.Chat(context.Background(), nil, "", "Hello?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mock.Calls[0].Messages[0].Content; got != "Hello?" {
		t.Errorf("expected bare message, got %q", got)
	}
}
