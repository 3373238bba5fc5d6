package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/verso-cli/verso/internal/tutor"
)

// MaxTurns bounds the retained conversation history. Older turns fall off
// so long sessions don't grow the prompt without limit.
const MaxTurns = 50

// apologyReply is appended when the gateway fails; the conversation
// continues instead of surfacing a transport error to the user.
const apologyReply = "Sorry, I couldn't reach the language model just now. Please try again in a moment."

// SessionView is the read-only slice of a practice session the assistant
// grounds its answers in. A nil view means no session context.
type SessionView interface {
	PassageText() string
	Languages() (studyLang, userLang string)
	Level() string
	Attempts() []string
	LatestFeedback() string
	Lesson() *tutor.MiniLesson
}

// Context is the snapshot serialized ahead of each message.
type Context struct {
	CurrentPassageText  string
	StudyLang           string
	UserLang            string
	Level               string
	TranslationAttempts []string
	LatestFeedback      string
	LastLessonText      string
	Timestamp           time.Time
}

// SnapshotContext captures the session state at a point in time. An empty
// session yields a context with empty passage text; that is not an error.
func SnapshotContext(view SessionView) Context {
	if view == nil {
		return Context{Timestamp: time.Now()}
	}
	study, user := view.Languages()
	return Context{
		CurrentPassageText:  view.PassageText(),
		StudyLang:           study,
		UserLang:            user,
		Level:               view.Level(),
		TranslationAttempts: view.Attempts(),
		LatestFeedback:      view.LatestFeedback(),
		LastLessonText:      lessonText(view.Lesson()),
		Timestamp:           time.Now(),
	}
}

// lessonText flattens a lesson into the short form the context block uses.
func lessonText(l *tutor.MiniLesson) string {
	if l == nil {
		return ""
	}
	if l.Kind == tutor.LessonFallback {
		return l.Fallback
	}
	if l.GrammarFocus == "" {
		return l.Title
	}
	return l.Title + ": " + l.GrammarFocus
}

// serialize renders the context as the block placed ahead of the user's
// message. Returns "" when there is nothing worth including.
func (c Context) serialize() string {
	var b strings.Builder
	if c.StudyLang != "" {
		fmt.Fprintf(&b, "Studying %s (user speaks %s), level %s.\n", c.StudyLang, c.UserLang, c.Level)
	}
	if c.CurrentPassageText != "" {
		fmt.Fprintf(&b, "Current passage:\n%s\n", c.CurrentPassageText)
	}
	if attempted(c.TranslationAttempts) {
		b.WriteString("Student's translation attempts:\n")
		for i, a := range c.TranslationAttempts {
			if strings.TrimSpace(a) == "" {
				continue
			}
			fmt.Fprintf(&b, "%d. %s\n", i+1, a)
		}
	}
	if c.LatestFeedback != "" {
		fmt.Fprintf(&b, "Latest feedback:\n%s\n", c.LatestFeedback)
	}
	if c.LastLessonText != "" {
		fmt.Fprintf(&b, "Last mini-lesson:\n%s\n", c.LastLessonText)
	}
	return strings.TrimSpace(b.String())
}

func attempted(attempts []string) bool {
	for _, a := range attempts {
		if strings.TrimSpace(a) != "" {
			return true
		}
	}
	return false
}

// Gateway is the model call the assistant depends on.
type Gateway interface {
	Chat(ctx context.Context, history []tutor.ChatTurn, contextBlock, message string) (string, error)
}

// Assistant holds a bounded conversation grounded in the current
// practice session. Safe for concurrent use.
type Assistant struct {
	gateway Gateway
	view    SessionView

	mu      sync.Mutex
	history []tutor.ChatTurn
}

// NewAssistant creates an assistant over the given gateway. view may be
// nil when no practice session exists yet.
func NewAssistant(gateway Gateway, view SessionView) *Assistant {
	return &Assistant{gateway: gateway, view: view}
}

// SetView swaps the session the assistant grounds its answers in.
func (a *Assistant) SetView(view SessionView) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view = view
}

// History returns a copy of the retained conversation.
func (a *Assistant) History() []tutor.ChatTurn {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]tutor.ChatTurn, len(a.history))
	copy(out, a.history)
	return out
}

// Send asks the assistant a question. The session context is snapshotted
// immediately before the call. Gateway failures never propagate: the
// reply is a canned apology and the conversation stays usable.
func (a *Assistant) Send(ctx context.Context, message string) string {
	message = strings.TrimSpace(message)
	if message == "" {
		return ""
	}

	a.mu.Lock()
	view := a.view
	history := make([]tutor.ChatTurn, len(a.history))
	copy(history, a.history)
	a.mu.Unlock()

	contextBlock := SnapshotContext(view).serialize()

	reply, err := a.gateway.Chat(ctx, history, contextBlock, message)
	if err != nil {
		reply = apologyReply
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history,
		tutor.ChatTurn{Role: "user", Content: message},
		tutor.ChatTurn{Role: "assistant", Content: reply},
	)
	if len(a.history) > MaxTurns {
		a.history = a.history[len(a.history)-MaxTurns:]
	}
	return reply
}

// Reset clears the conversation history.
func (a *Assistant) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}
