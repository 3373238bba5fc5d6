package practice

import (
	"context"
	"strings"

	"github.com/verso-cli/verso/internal/tutor"
)

// GeneratePassage fetches a fresh passage and moves the session to
// PassageReady from any phase. Everything derived from the previous
// passage is cleared and the session version is bumped, so in-flight
// results against the old passage are discarded on arrival.
func (s *Session) GeneratePassage(ctx context.Context, theme string) ([]tutor.Sentence, error) {
	s.mu.Lock()
	spec := tutor.PassageSpec{
		Language: s.studyLang,
		Level:    s.level,
		Theme:    theme,
		Variant:  s.regens,
	}
	s.mu.Unlock()

	sentences, err := s.gateway.GeneratePassage(ctx, spec)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentences = sentences
	s.theme = theme
	s.regens++
	s.resetPassageLocked()
	s.phase = PhasePassageReady
	s.version++
	return sentences, nil
}

// ProcessTranslation grades a whole-passage translation attempt. The
// reference translation is computed on first use and memoized for the
// life of the passage: repeated attempts reuse it. A failed gateway call
// restores the phase the session was in before the attempt.
func (s *Session) ProcessTranslation(ctx context.Context, userText string) (string, error) {
	if strings.TrimSpace(userText) == "" {
		return "", ErrNoInput
	}

	s.mu.Lock()
	if len(s.sentences) == 0 {
		s.mu.Unlock()
		return "", ErrNoPassage
	}
	v := s.version
	prior := s.phase
	passage := s.passageTextLocked()
	from, to := s.studyLang, s.userLang
	reference := s.reference
	haveRef := s.referenceSet
	s.phase = PhaseAwaitingFeedback
	s.mu.Unlock()

	restore := func() {
		s.mu.Lock()
		if s.version == v && s.phase == PhaseAwaitingFeedback {
			s.phase = prior
		}
		s.mu.Unlock()
	}

	if !haveRef {
		ref, err := s.gateway.Translate(ctx, passage, from, to)
		if err != nil {
			restore()
			return "", err
		}
		reference = ref

		s.mu.Lock()
		if s.version != v {
			s.mu.Unlock()
			return "", ErrStale
		}
		s.reference = ref
		s.referenceSet = true
		s.mu.Unlock()
	}

	feedback, err := s.gateway.RateTranslation(ctx, passage, userText, reference, from, to)
	if err != nil {
		restore()
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != v {
		return "", ErrStale
	}
	s.lastAttempt = userText
	s.passageFeedback = feedback
	s.sentenceFeedback = nil
	s.phase = PhaseFeedbackReady
	return feedback, nil
}

// ProcessSentenceTranslations grades per-sentence attempts in one batched
// gateway call. It does not touch the memoized whole-passage reference;
// per-sentence references come back in the same call.
func (s *Session) ProcessSentenceTranslations(ctx context.Context, userTexts []string) (*tutor.FeedbackResult, error) {
	anyInput := false
	for _, t := range userTexts {
		if strings.TrimSpace(t) != "" {
			anyInput = true
			break
		}
	}
	if !anyInput {
		return nil, ErrNoInput
	}

	s.mu.Lock()
	if len(s.sentences) == 0 {
		s.mu.Unlock()
		return nil, ErrNoPassage
	}
	v := s.version
	prior := s.phase
	originals := make([]string, len(s.sentences))
	for i, sent := range s.sentences {
		originals[i] = sent.Text
	}
	from, to := s.studyLang, s.userLang
	s.phase = PhaseAwaitingFeedback
	s.mu.Unlock()

	result, err := s.gateway.RateSentenceBatch(ctx, originals, userTexts, from, to)
	if err != nil {
		s.mu.Lock()
		if s.version == v && s.phase == PhaseAwaitingFeedback {
			s.phase = prior
		}
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != v {
		return nil, ErrStale
	}
	s.attempts = make([]string, len(userTexts))
	copy(s.attempts, userTexts)
	s.sentenceFeedback = result
	s.passageFeedback = ""
	s.phase = PhaseFeedbackReady
	return result, nil
}

// GenerateSentenceMiniLesson builds a lesson from the rated per-sentence
// attempts and moves the session to LessonReady. It requires feedback to
// be ready and at least one non-blank attempt.
func (s *Session) GenerateSentenceMiniLesson(ctx context.Context) (*tutor.MiniLesson, error) {
	s.mu.Lock()
	if s.phase != PhaseFeedbackReady || s.sentenceFeedback == nil {
		s.mu.Unlock()
		return nil, ErrNoInput
	}
	v := s.version
	from, to := s.studyLang, s.userLang

	feedbackByIndex := make(map[int]string, len(s.sentenceFeedback.PerSentence))
	for _, fb := range s.sentenceFeedback.PerSentence {
		feedbackByIndex[fb.Index] = fb.Feedback
	}

	var attempts []tutor.TranslationAttempt
	for i, sent := range s.sentences {
		if i >= len(s.attempts) {
			break
		}
		attempt := strings.TrimSpace(s.attempts[i])
		if attempt == "" {
			continue
		}
		attempts = append(attempts, tutor.TranslationAttempt{
			Original: sent.Text,
			Attempt:  attempt,
			Feedback: feedbackByIndex[i],
		})
	}
	s.mu.Unlock()

	if len(attempts) == 0 {
		return nil, ErrNoInput
	}

	lesson, err := s.gateway.GenerateLesson(ctx, attempts, from, to)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != v {
		return nil, ErrStale
	}
	s.lesson = lesson
	s.phase = PhaseLessonReady
	return lesson, nil
}
