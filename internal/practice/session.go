package practice

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/verso-cli/verso/internal/tutor"
)

// Phase is the pipeline state for a practice session.
type Phase int

const (
	PhaseNoPassage Phase = iota
	PhasePassageReady
	PhaseAwaitingFeedback
	PhaseFeedbackReady
	PhaseLessonReady
)

func (p Phase) String() string {
	switch p {
	case PhaseNoPassage:
		return "no passage"
	case PhasePassageReady:
		return "passage ready"
	case PhaseAwaitingFeedback:
		return "awaiting feedback"
	case PhaseFeedbackReady:
		return "feedback ready"
	case PhaseLessonReady:
		return "lesson ready"
	default:
		return "unknown"
	}
}

// ErrNoInput indicates the operation was invoked with nothing to process.
var ErrNoInput = errors.New("no input to process")

// ErrNoPassage indicates the operation requires a generated passage.
var ErrNoPassage = errors.New("no passage in session")

// ErrStale indicates the result raced a passage regeneration and was
// discarded. Callers should drop the result silently.
var ErrStale = errors.New("result is stale")

// Gateway is the subset of the model gateway the pipeline drives.
type Gateway interface {
	GeneratePassage(ctx context.Context, spec tutor.PassageSpec) ([]tutor.Sentence, error)
	Translate(ctx context.Context, text, from, to string) (string, error)
	RateTranslation(ctx context.Context, original, userText, reference, from, to string) (string, error)
	RateSentenceBatch(ctx context.Context, originals, userTexts []string, from, to string) (*tutor.FeedbackResult, error)
	GenerateLesson(ctx context.Context, attempts []tutor.TranslationAttempt, from, to string) (*tutor.MiniLesson, error)
}

// Session is one practice session: a passage in the study language, the
// user's translation attempts, and the feedback and lesson derived from
// them. All methods are safe for concurrent use; gateway calls run outside
// the lock, and results captured against a stale version are discarded.
type Session struct {
	gateway Gateway

	mu        sync.Mutex
	id        string
	version   uint64
	phase     Phase
	studyLang string // language of the passage
	userLang  string // language the user translates into
	level     string
	theme     string
	regens    int

	sentences []tutor.Sentence

	reference    string // memoized whole-passage reference translation
	referenceSet bool

	lastAttempt      string
	passageFeedback  string
	attempts         []string
	sentenceFeedback *tutor.FeedbackResult
	lesson           *tutor.MiniLesson
}

// NewSession creates an empty session for the given language pair and level.
// studyLang is the passage language; userLang is what the user translates into.
func NewSession(gateway Gateway, studyLang, userLang, level string) *Session {
	return &Session{
		gateway:   gateway,
		id:        uuid.NewString(),
		phase:     PhaseNoPassage,
		studyLang: studyLang,
		userLang:  userLang,
		level:     level,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Phase returns the current pipeline phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Languages returns the study language and the user's language.
func (s *Session) Languages() (studyLang, userLang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.studyLang, s.userLang
}

// Level returns the session's CEFR level.
func (s *Session) Level() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// SetLevel changes the CEFR level for subsequent passages.
func (s *Session) SetLevel(level string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = level
}

// Theme returns the theme of the current passage.
func (s *Session) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// Sentences returns the current passage's sentences.
func (s *Session) Sentences() []tutor.Sentence {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]tutor.Sentence, len(s.sentences))
	copy(out, s.sentences)
	return out
}

// PassageText returns the passage as continuous prose, or "" when no
// passage exists.
func (s *Session) PassageText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passageTextLocked()
}

func (s *Session) passageTextLocked() string {
	texts := make([]string, len(s.sentences))
	for i, sent := range s.sentences {
		texts[i] = sent.Text
	}
	return strings.Join(texts, " ")
}

// Attempts returns the user's translation attempts for the current
// passage, aligned with Sentences by index. After a whole-passage
// attempt it returns that single attempt.
func (s *Session) Attempts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.attempts) == 0 && s.lastAttempt != "" {
		return []string{s.lastAttempt}
	}
	out := make([]string, len(s.attempts))
	copy(out, s.attempts)
	return out
}

// Reference returns the memoized reference translation, or "" if none
// has been computed for the current passage.
func (s *Session) Reference() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reference
}

// PassageFeedback returns the latest whole-passage feedback.
func (s *Session) PassageFeedback() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passageFeedback
}

// SentenceFeedback returns the latest per-sentence feedback result.
func (s *Session) SentenceFeedback() *tutor.FeedbackResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sentenceFeedback
}

// Lesson returns the generated mini-lesson, or nil.
func (s *Session) Lesson() *tutor.MiniLesson {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lesson
}

// LatestFeedback returns whichever feedback the user saw last: the
// whole-passage markdown, or a compact rendering of per-sentence grades.
func (s *Session) LatestFeedback() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.passageFeedback != "" {
		return s.passageFeedback
	}
	if s.sentenceFeedback == nil {
		return ""
	}
	var b strings.Builder
	for _, fb := range s.sentenceFeedback.PerSentence {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fb.Grade)
		b.WriteString(": ")
		b.WriteString(fb.Feedback)
	}
	return b.String()
}

// SwapLanguages flips the language pair and resets the session to
// NoPassage. The old passage is in the wrong language for the new
// direction, so nothing carries over.
func (s *Session) SwapLanguages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.studyLang, s.userLang = s.userLang, s.studyLang
	s.resetPassageLocked()
	s.sentences = nil
	s.theme = ""
	s.regens = 0
	s.phase = PhaseNoPassage
	s.version++
}

// resetPassageLocked clears everything derived from the current passage.
func (s *Session) resetPassageLocked() {
	s.reference = ""
	s.referenceSet = false
	s.lastAttempt = ""
	s.passageFeedback = ""
	s.attempts = nil
	s.sentenceFeedback = nil
	s.lesson = nil
}
