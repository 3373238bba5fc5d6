package study

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/verso-cli/verso/internal/practice"
	"github.com/verso-cli/verso/internal/screen"
	"github.com/verso-cli/verso/internal/store"
	"github.com/verso-cli/verso/internal/tutor"
	"github.com/verso-cli/verso/internal/ui/components"
	"github.com/verso-cli/verso/internal/ui/layout"
)

// mode is the screen's display state.
type mode int

const (
	modeTheme mode = iota
	modeTranslate
	modeFeedback
	modeLesson
)

// inputStyle selects how the user enters their translation.
type inputStyle int

const (
	bySentence inputStyle = iota
	wholePassage
)

// StudyScreen drives one practice session: theme, passage, translation,
// feedback, mini-lesson.
type StudyScreen struct {
	session   *practice.Session
	prefsRepo store.PrefsRepo
	prefs     store.Prefs

	mode       mode
	inputStyle inputStyle

	themeInput   components.TextInput
	passageInput components.TextInput
	sentInputs   []components.TextInput
	focus        int

	sentences       []tutor.Sentence
	feedback        *tutor.FeedbackResult
	passageFeedback string
	lesson          *tutor.MiniLesson

	busy      bool
	busyLabel string
	errMsg    string
}

var _ screen.Screen = (*StudyScreen)(nil)
var _ screen.KeyHintProvider = (*StudyScreen)(nil)

// New creates a StudyScreen over the shared session. UI state is rebuilt
// from the session, so leaving and re-entering the screen keeps the
// current passage and feedback.
func New(session *practice.Session, prefsRepo store.PrefsRepo, prefs store.Prefs) *StudyScreen {
	s := &StudyScreen{
		session:    session,
		prefsRepo:  prefsRepo,
		prefs:      prefs,
		themeInput: components.NewTextInput("e.g. ordering food, a train journey (blank lets the model pick)", 120),
	}

	s.sentences = session.Sentences()
	switch session.Phase() {
	case practice.PhaseNoPassage:
		s.mode = modeTheme
		s.themeInput.SetValue(prefs.Theme)
	case practice.PhaseLessonReady:
		s.mode = modeLesson
		s.lesson = session.Lesson()
		s.feedback = session.SentenceFeedback()
	case practice.PhaseFeedbackReady:
		s.mode = modeFeedback
		s.feedback = session.SentenceFeedback()
		s.passageFeedback = session.PassageFeedback()
		if s.passageFeedback != "" {
			s.inputStyle = wholePassage
		}
	default:
		s.mode = modeTranslate
		s.rebuildInputs()
	}

	return s
}

// rebuildInputs creates one translation input per passage sentence.
func (s *StudyScreen) rebuildInputs() {
	s.sentInputs = make([]components.TextInput, len(s.sentences))
	for i := range s.sentences {
		s.sentInputs[i] = components.NewTextInput("your translation...", 500)
		s.sentInputs[i].Blur()
	}
	s.passageInput = components.NewTextInput("your translation of the whole passage...", 2000)
	s.passageInput.Blur()
	s.focus = 0
	s.applyFocus()
}

// applyFocus focuses the active input and blurs the rest.
func (s *StudyScreen) applyFocus() {
	for i := range s.sentInputs {
		if s.inputStyle == bySentence && i == s.focus {
			s.sentInputs[i].Focus()
		} else {
			s.sentInputs[i].Blur()
		}
	}
	if s.inputStyle == wholePassage {
		s.passageInput.Focus()
	} else {
		s.passageInput.Blur()
	}
}

func (s *StudyScreen) Init() tea.Cmd {
	if s.mode == modeTheme {
		return s.themeInput.Init()
	}
	return nil
}

func (s *StudyScreen) Title() string {
	return "Practice"
}

func (s *StudyScreen) KeyHints() []layout.KeyHint {
	if s.busy {
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	switch s.mode {
	case modeTheme:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Generate"},
			{Key: "Ctrl+W", Description: "Swap languages"},
			{Key: "Esc", Description: "Back"},
		}
	case modeTranslate:
		hints := []layout.KeyHint{
			{Key: "Enter", Description: "Next / submit"},
			{Key: "Tab", Description: "Input mode"},
			{Key: "Ctrl+G", Description: "Grade"},
			{Key: "Ctrl+R", Description: "Regenerate"},
			{Key: "Esc", Description: "Back"},
		}
		return hints
	case modeFeedback:
		hints := []layout.KeyHint{
			{Key: "N", Description: "New passage"},
			{Key: "R", Description: "Revise"},
			{Key: "Esc", Description: "Back"},
		}
		if s.feedback != nil {
			hints = append([]layout.KeyHint{{Key: "L", Description: "Mini-lesson"}}, hints...)
		}
		return hints
	case modeLesson:
		return []layout.KeyHint{
			{Key: "N", Description: "New passage"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return nil
}

func (s *StudyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case passageReadyMsg:
		return s.handlePassageReady(msg)
	case passageGradedMsg:
		return s.handlePassageGraded(msg)
	case sentencesGradedMsg:
		return s.handleSentencesGraded(msg)
	case lessonReadyMsg:
		return s.handleLessonReady(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	return s.forwardToInput(msg)
}

// forwardToInput routes a message to whichever input has focus.
func (s *StudyScreen) forwardToInput(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if s.busy {
		return s, nil
	}
	var cmd tea.Cmd
	switch {
	case s.mode == modeTheme:
		s.themeInput, cmd = s.themeInput.Update(msg)
	case s.mode == modeTranslate && s.inputStyle == wholePassage:
		s.passageInput, cmd = s.passageInput.Update(msg)
	case s.mode == modeTranslate && s.focus < len(s.sentInputs):
		s.sentInputs[s.focus], cmd = s.sentInputs[s.focus].Update(msg)
	}
	return s, cmd
}

func (s *StudyScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.busy {
		return s, nil
	}
	key := msg.String()

	switch s.mode {
	case modeTheme:
		switch key {
		case "enter":
			return s.startGenerate(s.themeInput.Value())
		case "ctrl+w":
			s.session.SwapLanguages()
			s.errMsg = ""
			return s, nil
		}

	case modeTranslate:
		switch key {
		case "tab":
			if s.inputStyle == bySentence {
				s.inputStyle = wholePassage
			} else {
				s.inputStyle = bySentence
			}
			s.applyFocus()
			return s, nil
		case "up":
			if s.inputStyle == bySentence && s.focus > 0 {
				s.focus--
				s.applyFocus()
			}
			return s, nil
		case "down":
			if s.inputStyle == bySentence && s.focus < len(s.sentInputs)-1 {
				s.focus++
				s.applyFocus()
			}
			return s, nil
		case "enter":
			if s.inputStyle == wholePassage {
				return s.startGradePassage()
			}
			if s.focus < len(s.sentInputs)-1 {
				s.focus++
				s.applyFocus()
				return s, nil
			}
			return s.startGradeSentences()
		case "ctrl+g":
			if s.inputStyle == wholePassage {
				return s.startGradePassage()
			}
			return s.startGradeSentences()
		case "ctrl+r":
			return s.startGenerate(s.session.Theme())
		}

	case modeFeedback:
		switch key {
		case "l", "L":
			if s.feedback != nil {
				return s.startLesson()
			}
			return s, nil
		case "n", "N":
			return s.backToTheme()
		case "r", "R":
			s.mode = modeTranslate
			s.errMsg = ""
			s.applyFocus()
			return s, nil
		}

	case modeLesson:
		switch key {
		case "n", "N":
			return s.backToTheme()
		}
	}

	return s.forwardToInput(msg)
}

// backToTheme returns to the theme prompt for a fresh passage.
func (s *StudyScreen) backToTheme() (screen.Screen, tea.Cmd) {
	s.mode = modeTheme
	s.errMsg = ""
	s.themeInput = components.NewTextInput("e.g. ordering food, a train journey (blank lets the model pick)", 120)
	s.themeInput.SetValue(s.session.Theme())
	return s, s.themeInput.Init()
}

func (s *StudyScreen) startGenerate(theme string) (screen.Screen, tea.Cmd) {
	s.busy = true
	s.busyLabel = "Generating passage..."
	s.errMsg = ""
	session := s.session
	return s, func() tea.Msg {
		sentences, err := session.GeneratePassage(context.Background(), theme)
		return passageReadyMsg{Sentences: sentences, Err: err}
	}
}

func (s *StudyScreen) handlePassageReady(msg passageReadyMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	if msg.Err != nil {
		s.errMsg = userFacing(msg.Err)
		return s, nil
	}
	s.sentences = msg.Sentences
	s.feedback = nil
	s.passageFeedback = ""
	s.lesson = nil
	s.mode = modeTranslate
	s.rebuildInputs()

	// Remember the theme for next time.
	s.prefs.Theme = s.session.Theme()
	prefs, repo := s.prefs, s.prefsRepo
	return s, func() tea.Msg {
		if repo != nil {
			_ = repo.Save(context.Background(), prefs)
		}
		return nil
	}
}

func (s *StudyScreen) startGradePassage() (screen.Screen, tea.Cmd) {
	text := s.passageInput.Value()
	s.busy = true
	s.busyLabel = "Grading your translation..."
	s.errMsg = ""
	session := s.session
	return s, func() tea.Msg {
		feedback, err := session.ProcessTranslation(context.Background(), text)
		return passageGradedMsg{Feedback: feedback, Err: err}
	}
}

func (s *StudyScreen) handlePassageGraded(msg passageGradedMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	if errors.Is(msg.Err, practice.ErrStale) {
		return s, nil
	}
	if msg.Err != nil {
		s.errMsg = userFacing(msg.Err)
		return s, nil
	}
	s.passageFeedback = msg.Feedback
	s.feedback = nil
	s.mode = modeFeedback
	return s, nil
}

func (s *StudyScreen) startGradeSentences() (screen.Screen, tea.Cmd) {
	attempts := make([]string, len(s.sentInputs))
	for i := range s.sentInputs {
		attempts[i] = s.sentInputs[i].Value()
	}
	s.busy = true
	s.busyLabel = "Grading your translations..."
	s.errMsg = ""
	session := s.session
	return s, func() tea.Msg {
		result, err := session.ProcessSentenceTranslations(context.Background(), attempts)
		return sentencesGradedMsg{Result: result, Err: err}
	}
}

func (s *StudyScreen) handleSentencesGraded(msg sentencesGradedMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	if errors.Is(msg.Err, practice.ErrStale) {
		return s, nil
	}
	if msg.Err != nil {
		s.errMsg = userFacing(msg.Err)
		return s, nil
	}
	s.feedback = msg.Result
	s.passageFeedback = ""
	s.mode = modeFeedback
	return s, nil
}

func (s *StudyScreen) startLesson() (screen.Screen, tea.Cmd) {
	s.busy = true
	s.busyLabel = "Building your mini-lesson..."
	s.errMsg = ""
	session := s.session
	return s, func() tea.Msg {
		lesson, err := session.GenerateSentenceMiniLesson(context.Background())
		return lessonReadyMsg{Lesson: lesson, Err: err}
	}
}

func (s *StudyScreen) handleLessonReady(msg lessonReadyMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	if errors.Is(msg.Err, practice.ErrStale) {
		return s, nil
	}
	if msg.Err != nil {
		s.errMsg = userFacing(msg.Err)
		return s, nil
	}
	s.lesson = msg.Lesson
	s.mode = modeLesson
	return s, nil
}

// userFacing maps pipeline errors to short display strings.
func userFacing(err error) string {
	switch {
	case errors.Is(err, practice.ErrNoInput):
		return "Type at least one translation first."
	case errors.Is(err, practice.ErrNoPassage):
		return "Generate a passage first."
	case errors.Is(err, tutor.ErrEmptyResponse), errors.Is(err, tutor.ErrMalformedResponse):
		return "The model returned an unusable answer. Try again."
	default:
		return err.Error()
	}
}
