package study

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/verso-cli/verso/internal/practice"
	"github.com/verso-cli/verso/internal/store"
	"github.com/verso-cli/verso/internal/tutor"
)

// fakeGateway implements practice.Gateway for testing.
type fakeGateway struct {
	sentences []tutor.Sentence
	err       error
}

func (f *fakeGateway) GeneratePassage(_ context.Context, _ tutor.PassageSpec) ([]tutor.Sentence, error) {
	return f.sentences, f.err
}

func (f *fakeGateway) Translate(_ context.Context, _, _, _ string) (string, error) {
	return "reference", f.err
}

func (f *fakeGateway) RateTranslation(_ context.Context, _, _, _, _, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "Good effort.", nil
}

func (f *fakeGateway) RateSentenceBatch(_ context.Context, originals, userTexts []string, _, _ string) (*tutor.FeedbackResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := &tutor.FeedbackResult{TotalCount: len(originals)}
	for i, t := range userTexts {
		if t == "" {
			continue
		}
		result.TranslatedCount++
		result.PerSentence = append(result.PerSentence, tutor.SentenceFeedback{
			Index: i, Feedback: "ok", Grade: "B",
		})
	}
	return result, nil
}

func (f *fakeGateway) GenerateLesson(_ context.Context, _ []tutor.TranslationAttempt, _, _ string) (*tutor.MiniLesson, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &tutor.MiniLesson{Kind: tutor.LessonStructured, Title: "Verbs"}, nil
}

func testSentences() []tutor.Sentence {
	return []tutor.Sentence{
		{Index: 0, Text: "El gato duerme."},
		{Index: 1, Text: "El sol brilla."},
	}
}

func newTestScreen(gw *fakeGateway) (*StudyScreen, *practice.Session) {
	session := practice.NewSession(gw, "Spanish", "English", "B1")
	return New(session, nil, store.DefaultPrefs()), session
}

// runCmd executes a command and returns the resulting message.
func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return cmd()
}

func TestStartsInThemeMode(t *testing.T) {
	s, _ := newTestScreen(&fakeGateway{sentences: testSentences()})
	if s.mode != modeTheme {
		t.Errorf("mode = %v, want modeTheme", s.mode)
	}
}

func TestGenerateMovesToTranslate(t *testing.T) {
	s, _ := newTestScreen(&fakeGateway{sentences: testSentences()})

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !s.busy {
		t.Error("expected busy while generating")
	}

	msg := runCmd(t, cmd)
	s.Update(msg)

	if s.mode != modeTranslate {
		t.Fatalf("mode = %v, want modeTranslate", s.mode)
	}
	if len(s.sentInputs) != 2 {
		t.Errorf("sentence inputs = %d, want 2", len(s.sentInputs))
	}
	if s.busy {
		t.Error("busy should clear once the passage arrives")
	}
}

func TestGenerateFailureShowsError(t *testing.T) {
	s, _ := newTestScreen(&fakeGateway{err: errors.New("provider down")})

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(runCmd(t, cmd))

	if s.mode != modeTheme {
		t.Errorf("mode = %v, want modeTheme after failure", s.mode)
	}
	if s.errMsg == "" {
		t.Error("expected an error message")
	}
}

func TestEnterAdvancesFocusThenSubmits(t *testing.T) {
	gw := &fakeGateway{sentences: testSentences()}
	s, _ := newTestScreen(gw)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(runCmd(t, cmd))

	s.sentInputs[0].SetValue("The cat sleeps.")
	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("enter on a middle input must advance focus, not submit")
	}
	if s.focus != 1 {
		t.Errorf("focus = %d, want 1", s.focus)
	}

	s.sentInputs[1].SetValue("The sun shines.")
	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(runCmd(t, cmd))

	if s.mode != modeFeedback {
		t.Fatalf("mode = %v, want modeFeedback", s.mode)
	}
	if s.feedback == nil || s.feedback.TranslatedCount != 2 {
		t.Errorf("unexpected feedback: %+v", s.feedback)
	}
}

func TestTabTogglesInputStyle(t *testing.T) {
	s, _ := newTestScreen(&fakeGateway{sentences: testSentences()})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(runCmd(t, cmd))

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.inputStyle != wholePassage {
		t.Error("tab should switch to whole-passage input")
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.inputStyle != bySentence {
		t.Error("tab should switch back to by-sentence input")
	}
}

func TestWholePassageSubmit(t *testing.T) {
	s, _ := newTestScreen(&fakeGateway{sentences: testSentences()})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(runCmd(t, cmd))

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	s.passageInput.SetValue("The cat sleeps. The sun shines.")
	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(runCmd(t, cmd))

	if s.mode != modeFeedback {
		t.Fatalf("mode = %v, want modeFeedback", s.mode)
	}
	if s.passageFeedback == "" {
		t.Error("expected whole-passage feedback")
	}
	if s.feedback != nil {
		t.Error("per-sentence feedback should be nil in whole-passage mode")
	}
}

func TestLessonFromFeedback(t *testing.T) {
	s, _ := newTestScreen(&fakeGateway{sentences: testSentences()})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(runCmd(t, cmd))

	s.sentInputs[0].SetValue("The cat sleeps.")
	s.sentInputs[1].SetValue("The sun shines.")
	_, cmd = s.Update(tea.KeyPressMsg{Code: 'g', Mod: tea.ModCtrl})
	s.Update(runCmd(t, cmd))

	_, cmd = s.Update(tea.KeyPressMsg{Code: 'l'})
	s.Update(runCmd(t, cmd))

	if s.mode != modeLesson {
		t.Fatalf("mode = %v, want modeLesson", s.mode)
	}
	if s.lesson == nil || s.lesson.Title != "Verbs" {
		t.Errorf("unexpected lesson: %+v", s.lesson)
	}
}

func TestRehydratesFromSession(t *testing.T) {
	gw := &fakeGateway{sentences: testSentences()}
	session := practice.NewSession(gw, "Spanish", "English", "B1")
	if _, err := session.GeneratePassage(context.Background(), "cats"); err != nil {
		t.Fatal(err)
	}

	s := New(session, nil, store.DefaultPrefs())
	if s.mode != modeTranslate {
		t.Errorf("mode = %v, want modeTranslate for a session with a passage", s.mode)
	}
	if len(s.sentInputs) != 2 {
		t.Errorf("sentence inputs = %d, want 2", len(s.sentInputs))
	}
}

func TestGradeFailureKeepsAttempts(t *testing.T) {
	gw := &fakeGateway{sentences: testSentences()}
	s, _ := newTestScreen(gw)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(runCmd(t, cmd))

	gw.err = errors.New("rate limited")
	s.sentInputs[0].SetValue("The cat sleeps.")
	_, cmd = s.Update(tea.KeyPressMsg{Code: 'g', Mod: tea.ModCtrl})
	s.Update(runCmd(t, cmd))

	if s.mode != modeTranslate {
		t.Errorf("mode = %v, want modeTranslate after grade failure", s.mode)
	}
	if s.errMsg == "" {
		t.Error("expected an error message")
	}
	if s.sentInputs[0].Value() != "The cat sleeps." {
		t.Error("attempt text must survive a failed grade")
	}
}
