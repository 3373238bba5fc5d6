package practice

import (
	"context"
	"errors"
	"testing"

	"github.com/verso-cli/verso/internal/tutor"
)

// fakeGateway counts calls and returns canned results.
type fakeGateway struct {
	passages   [][]tutor.Sentence
	passageErr error

	translateCalls int
	translateOut   string
	translateErr   error

	rateCalls int
	rateOut   string
	rateErr   error

	batchCalls int
	batchOut   *tutor.FeedbackResult
	batchErr   error

	lessonCalls  int
	lessonOut    *tutor.MiniLesson
	lessonErr    error
	lastAttempts []tutor.TranslationAttempt

	generateCalls int
	lastSpec      tutor.PassageSpec
}

func (f *fakeGateway) GeneratePassage(_ context.Context, spec tutor.PassageSpec) ([]tutor.Sentence, error) {
	f.generateCalls++
	f.lastSpec = spec
	if f.passageErr != nil {
		return nil, f.passageErr
	}
	idx := f.generateCalls - 1
	if idx >= len(f.passages) {
		idx = len(f.passages) - 1
	}
	return f.passages[idx], nil
}

func (f *fakeGateway) Translate(context.Context, string, string, string) (string, error) {
	f.translateCalls++
	return f.translateOut, f.translateErr
}

func (f *fakeGateway) RateTranslation(context.Context, string, string, string, string, string) (string, error) {
	f.rateCalls++
	return f.rateOut, f.rateErr
}

func (f *fakeGateway) RateSentenceBatch(context.Context, []string, []string, string, string) (*tutor.FeedbackResult, error) {
	f.batchCalls++
	return f.batchOut, f.batchErr
}

func (f *fakeGateway) GenerateLesson(_ context.Context, attempts []tutor.TranslationAttempt, _, _ string) (*tutor.MiniLesson, error) {
	f.lessonCalls++
	f.lastAttempts = attempts
	return f.lessonOut, f.lessonErr
}

func spanishPassage() []tutor.Sentence {
	return []tutor.Sentence{
		{Index: 0, Text: "El gato duerme."},
		{Index: 1, Text: "El sol brilla."},
	}
}

func newReadySession(t *testing.T, gw *fakeGateway) *Session {
	t.Helper()
	s := NewSession(gw, "Spanish", "English", "A2")
	if _, err := s.GeneratePassage(t.Context(), "animals"); err != nil {
		t.Fatalf("generate passage: %v", err)
	}
	return s
}

func TestNewSession_StartsEmpty(t *testing.T) {
	s := NewSession(&fakeGateway{}, "Spanish", "English", "B1")
	if s.Phase() != PhaseNoPassage {
		t.Errorf("phase = %v, want NoPassage", s.Phase())
	}
	if s.ID() == "" {
		t.Error("expected a session ID")
	}
	if s.PassageText() != "" {
		t.Error("expected empty passage text")
	}
}

func TestGeneratePassage_EntersPassageReady(t *testing.T) {
	gw := &fakeGateway{passages: [][]tutor.Sentence{spanishPassage()}}
	s := newReadySession(t, gw)

	if s.Phase() != PhasePassageReady {
		t.Errorf("phase = %v, want PassageReady", s.Phase())
	}
	if got := s.PassageText(); got != "El gato duerme. El sol brilla." {
		t.Errorf("passage text = %q", got)
	}
	if s.Theme() != "animals" {
		t.Errorf("theme = %q, want animals", s.Theme())
	}
}

func TestGeneratePassage_RegenerationClearsDerivedState(t *testing.T) {
	gw := &fakeGateway{
		passages:     [][]tutor.Sentence{spanishPassage(), {{Index: 0, Text: "Llueve mucho."}}},
		translateOut: "The cat sleeps. The sun shines.",
		rateOut:      "Good work.",
	}
	s := newReadySession(t, gw)

	if _, err := s.ProcessTranslation(t.Context(), "The cat sleeps. The sun shines."); err != nil {
		t.Fatalf("process translation: %v", err)
	}
	if s.Reference() == "" || s.PassageFeedback() == "" {
		t.Fatal("expected reference and feedback before regeneration")
	}

	if _, err := s.GeneratePassage(t.Context(), "weather"); err != nil {
		t.Fatalf("regenerate: %v", err)
	}

	if s.Phase() != PhasePassageReady {
		t.Errorf("phase = %v, want PassageReady", s.Phase())
	}
	if s.Reference() != "" {
		t.Error("regeneration must clear the memoized reference")
	}
	if s.PassageFeedback() != "" {
		t.Error("regeneration must clear feedback")
	}
	if s.Lesson() != nil {
		t.Error("regeneration must clear the lesson")
	}
	if gw.lastSpec.Variant != 1 {
		t.Errorf("second generation variant = %d, want 1", gw.lastSpec.Variant)
	}
}

func TestProcessTranslation_MemoizesReference(t *testing.T) {
	gw := &fakeGateway{
		passages:     [][]tutor.Sentence{spanishPassage()},
		translateOut: "The cat sleeps. The sun shines.",
		rateOut:      "Nice.",
	}
	s := newReadySession(t, gw)

	for i := 0; i < 2; i++ {
		if _, err := s.ProcessTranslation(t.Context(), "The cat sleeps. The sun is shining."); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}

	if gw.translateCalls != 1 {
		t.Errorf("Translate calls = %d, want exactly 1", gw.translateCalls)
	}
	if gw.rateCalls != 2 {
		t.Errorf("RateTranslation calls = %d, want 2", gw.rateCalls)
	}
	if s.Phase() != PhaseFeedbackReady {
		t.Errorf("phase = %v, want FeedbackReady", s.Phase())
	}
}

func TestProcessTranslation_BlankInput(t *testing.T) {
	gw := &fakeGateway{passages: [][]tutor.Sentence{spanishPassage()}}
	s := newReadySession(t, gw)

	_, err := s.ProcessTranslation(t.Context(), "   ")
	if !errors.Is(err, ErrNoInput) {
		t.Fatalf("expected ErrNoInput, got: %v", err)
	}
	if s.Phase() != PhasePassageReady {
		t.Errorf("phase changed on rejected input: %v", s.Phase())
	}
}

func TestProcessTranslation_NoPassage(t *testing.T) {
	s := NewSession(&fakeGateway{}, "Spanish", "English", "B1")
	_, err := s.ProcessTranslation(t.Context(), "Hello.")
	if !errors.Is(err, ErrNoPassage) {
		t.Fatalf("expected ErrNoPassage, got: %v", err)
	}
}

func TestProcessTranslation_GatewayFailureRestoresPhase(t *testing.T) {
	gw := &fakeGateway{
		passages:     [][]tutor.Sentence{spanishPassage()},
		translateErr: errors.New("provider down"),
	}
	s := newReadySession(t, gw)

	_, err := s.ProcessTranslation(t.Context(), "The cat sleeps.")
	if err == nil {
		t.Fatal("expected error")
	}
	if s.Phase() != PhasePassageReady {
		t.Errorf("phase = %v, want PassageReady restored", s.Phase())
	}
	if s.Reference() != "" {
		t.Error("failed translate must not memoize a reference")
	}

	// A later attempt retries the reference translation.
	gw.translateErr = nil
	gw.translateOut = "The cat sleeps. The sun shines."
	gw.rateOut = "Better."
	if _, err := s.ProcessTranslation(t.Context(), "The cat sleeps."); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if gw.translateCalls != 2 {
		t.Errorf("Translate calls = %d, want 2", gw.translateCalls)
	}
}

func TestProcessSentenceTranslations(t *testing.T) {
	gw := &fakeGateway{
		passages: [][]tutor.Sentence{spanishPassage()},
		batchOut: &tutor.FeedbackResult{
			TotalCount:      2,
			TranslatedCount: 1,
			PerSentence: []tutor.SentenceFeedback{
				{Index: 0, Feedback: "Good.", Grade: "A", Reference: "The cat sleeps."},
			},
		},
	}
	s := newReadySession(t, gw)

	result, err := s.ProcessSentenceTranslations(t.Context(), []string{"The cat sleeps.", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalCount != 2 || result.TranslatedCount != 1 {
		t.Errorf("unexpected counts: %+v", result)
	}
	if gw.batchCalls != 1 {
		t.Errorf("batch calls = %d, want 1", gw.batchCalls)
	}
	if gw.translateCalls != 0 {
		t.Error("sentence mode must not touch the whole-passage reference")
	}
	if s.Phase() != PhaseFeedbackReady {
		t.Errorf("phase = %v, want FeedbackReady", s.Phase())
	}
}

func TestProcessSentenceTranslations_AllBlank(t *testing.T) {
	gw := &fakeGateway{passages: [][]tutor.Sentence{spanishPassage()}}
	s := newReadySession(t, gw)

	_, err := s.ProcessSentenceTranslations(t.Context(), []string{"", "  "})
	if !errors.Is(err, ErrNoInput) {
		t.Fatalf("expected ErrNoInput, got: %v", err)
	}
	if gw.batchCalls != 0 {
		t.Error("all-blank batch must not reach the gateway")
	}
}

func TestAttempts_TracksBothInputStyles(t *testing.T) {
	gw := &fakeGateway{
		passages:     [][]tutor.Sentence{spanishPassage()},
		translateOut: "The cat sleeps. The sun shines.",
		rateOut:      "Good.",
		batchOut:     &tutor.FeedbackResult{TotalCount: 2, TranslatedCount: 1},
	}
	s := newReadySession(t, gw)

	if got := s.Attempts(); len(got) != 0 {
		t.Fatalf("expected no attempts before grading, got %v", got)
	}

	if _, err := s.ProcessSentenceTranslations(t.Context(), []string{"The cat sleeps.", ""}); err != nil {
		t.Fatalf("process sentences: %v", err)
	}
	got := s.Attempts()
	if len(got) != 2 || got[0] != "The cat sleeps." || got[1] != "" {
		t.Errorf("per-sentence attempts = %v", got)
	}

	// A fresh passage clears them; a whole-passage attempt surfaces as one entry.
	if _, err := s.GeneratePassage(t.Context(), "animals"); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if got := s.Attempts(); len(got) != 0 {
		t.Fatalf("expected attempts cleared on regeneration, got %v", got)
	}
	if _, err := s.ProcessTranslation(t.Context(), "The cat sleeps and the sun shines."); err != nil {
		t.Fatalf("process translation: %v", err)
	}
	got = s.Attempts()
	if len(got) != 1 || got[0] != "The cat sleeps and the sun shines." {
		t.Errorf("whole-passage attempts = %v", got)
	}
}

func TestGenerateSentenceMiniLesson(t *testing.T) {
	gw := &fakeGateway{
		passages: [][]tutor.Sentence{spanishPassage()},
		batchOut: &tutor.FeedbackResult{
			TotalCount:      2,
			TranslatedCount: 1,
			PerSentence: []tutor.SentenceFeedback{
				{Index: 0, Feedback: "Tense is off.", Grade: "C"},
			},
		},
		lessonOut: &tutor.MiniLesson{Kind: tutor.LessonStructured, Title: "Present Tense"},
	}
	s := newReadySession(t, gw)

	if _, err := s.ProcessSentenceTranslations(t.Context(), []string{"The cat sleep.", ""}); err != nil {
		t.Fatalf("batch: %v", err)
	}

	lesson, err := s.GenerateSentenceMiniLesson(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lesson.Title != "Present Tense" {
		t.Errorf("lesson title = %q", lesson.Title)
	}
	if s.Phase() != PhaseLessonReady {
		t.Errorf("phase = %v, want LessonReady", s.Phase())
	}

	// Only the non-blank attempt reaches the lesson prompt, with its feedback.
	if len(gw.lastAttempts) != 1 {
		t.Fatalf("expected 1 attempt, got %d", len(gw.lastAttempts))
	}
	if gw.lastAttempts[0].Feedback != "Tense is off." {
		t.Errorf("attempt feedback = %q", gw.lastAttempts[0].Feedback)
	}
}

func TestGenerateSentenceMiniLesson_RequiresFeedback(t *testing.T) {
	gw := &fakeGateway{passages: [][]tutor.Sentence{spanishPassage()}}
	s := newReadySession(t, gw)

	_, err := s.GenerateSentenceMiniLesson(t.Context())
	if !errors.Is(err, ErrNoInput) {
		t.Fatalf("expected ErrNoInput before feedback, got: %v", err)
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	release := make(chan struct{})
	gw := &blockingGateway{
		inner: &fakeGateway{
			passages:     [][]tutor.Sentence{spanishPassage(), spanishPassage()},
			translateOut: "The cat sleeps. The sun shines.",
			rateOut:      "Fine.",
		},
		release: release,
		entered: make(chan struct{}),
	}
	s := NewSession(gw, "Spanish", "English", "A2")
	if _, err := s.GeneratePassage(t.Context(), ""); err != nil {
		t.Fatalf("generate: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.ProcessTranslation(t.Context(), "The cat sleeps.")
		done <- err
	}()

	// Regenerate while the translation attempt is blocked in the gateway.
	gw.waitForBlock(t)
	if _, err := s.GeneratePassage(t.Context(), ""); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	close(release)

	if err := <-done; !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got: %v", err)
	}
	if s.PassageFeedback() != "" {
		t.Error("stale feedback leaked into the session")
	}
	if s.Phase() != PhasePassageReady {
		t.Errorf("phase = %v, want PassageReady from regeneration", s.Phase())
	}
}

// blockingGateway parks RateTranslation until released, so a regeneration
// can race it deterministically.
type blockingGateway struct {
	inner   *fakeGateway
	release chan struct{}
	entered chan struct{}
}

func (b *blockingGateway) waitForBlock(t *testing.T) {
	t.Helper()
	if b.entered == nil {
		t.Fatal("gateway never entered")
	}
	<-b.entered
}

func (b *blockingGateway) GeneratePassage(ctx context.Context, spec tutor.PassageSpec) ([]tutor.Sentence, error) {
	return b.inner.GeneratePassage(ctx, spec)
}

func (b *blockingGateway) Translate(ctx context.Context, text, from, to string) (string, error) {
	return b.inner.Translate(ctx, text, from, to)
}

func (b *blockingGateway) RateTranslation(ctx context.Context, original, userText, reference, from, to string) (string, error) {
	close(b.entered)
	<-b.release
	return b.inner.RateTranslation(ctx, original, userText, reference, from, to)
}

func (b *blockingGateway) RateSentenceBatch(ctx context.Context, originals, userTexts []string, from, to string) (*tutor.FeedbackResult, error) {
	return b.inner.RateSentenceBatch(ctx, originals, userTexts, from, to)
}

func (b *blockingGateway) GenerateLesson(ctx context.Context, attempts []tutor.TranslationAttempt, from, to string) (*tutor.MiniLesson, error) {
	return b.inner.GenerateLesson(ctx, attempts, from, to)
}

func TestSwapLanguages_ResetsToNoPassage(t *testing.T) {
	gw := &fakeGateway{
		passages:     [][]tutor.Sentence{spanishPassage()},
		translateOut: "ref",
		rateOut:      "fb",
	}
	s := newReadySession(t, gw)
	if _, err := s.ProcessTranslation(t.Context(), "The cat sleeps."); err != nil {
		t.Fatalf("process: %v", err)
	}

	s.SwapLanguages()

	study, user := s.Languages()
	if study != "English" || user != "Spanish" {
		t.Errorf("languages = %s/%s, want English/Spanish", study, user)
	}
	if s.Phase() != PhaseNoPassage {
		t.Errorf("phase = %v, want NoPassage", s.Phase())
	}
	if s.PassageText() != "" || s.Reference() != "" || s.PassageFeedback() != "" {
		t.Error("swap must clear the passage and derived state")
	}
}
