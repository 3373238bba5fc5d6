package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/verso-cli/verso/internal/tutor"
)

type fakeChatGateway struct {
	calls       int
	lastHistory []tutor.ChatTurn
	lastContext string
	lastMessage string
	reply       string
	err         error
}

func (f *fakeChatGateway) Chat(_ context.Context, history []tutor.ChatTurn, contextBlock, message string) (string, error) {
	f.calls++
	f.lastHistory = append([]tutor.ChatTurn(nil), history...)
	f.lastContext = contextBlock
	f.lastMessage = message
	return f.reply, f.err
}

type fakeView struct {
	passage  string
	study    string
	user     string
	level    string
	attempts []string
	feedback string
	lesson   *tutor.MiniLesson
}

func (v *fakeView) PassageText() string         { return v.passage }
func (v *fakeView) Languages() (string, string) { return v.study, v.user }
func (v *fakeView) Level() string               { return v.level }
func (v *fakeView) Attempts() []string          { return v.attempts }
func (v *fakeView) LatestFeedback() string      { return v.feedback }
func (v *fakeView) Lesson() *tutor.MiniLesson   { return v.lesson }

func TestSend_AppendsBothTurns(t *testing.T) {
	gw := &fakeChatGateway{reply: "It means 'sleeps'."}
	a := NewAssistant(gw, nil)

	reply := a.Send(t.Context(), "What does duerme mean?")
	if reply != "It means 'sleeps'." {
		t.Errorf("reply = %q", reply)
	}

	h := a.History()
	if len(h) != 2 {
		t.Fatalf("history length = %d, want 2", len(h))
	}
	if h[0].Role != "user" || h[1].Role != "assistant" {
		t.Errorf("unexpected roles: %+v", h)
	}
}

func TestSend_SnapshotsContextBeforeCall(t *testing.T) {
	view := &fakeView{
		passage:  "El gato duerme.",
		study:    "Spanish",
		user:     "English",
		level:    "A1",
		feedback: "Watch the verb ending.",
	}
	gw := &fakeChatGateway{reply: "ok"}
	a := NewAssistant(gw, view)

	a.Send(t.Context(), "Why is it duerme?")

	if !strings.Contains(gw.lastContext, "El gato duerme.") {
		t.Error("context missing passage")
	}
	if !strings.Contains(gw.lastContext, "Spanish") || !strings.Contains(gw.lastContext, "A1") {
		t.Error("context missing language or level")
	}
	if !strings.Contains(gw.lastContext, "Watch the verb ending.") {
		t.Error("context missing feedback")
	}

	// Changing the view affects the next send, not the past one.
	view.passage = "El sol brilla."
	a.Send(t.Context(), "And now?")
	if !strings.Contains(gw.lastContext, "El sol brilla.") {
		t.Error("context not re-snapshotted on second send")
	}
}

func TestSend_ContextIncludesAttemptsAndLesson(t *testing.T) {
	view := &fakeView{
		passage:  "El gato duerme. El sol brilla.",
		study:    "Spanish",
		user:     "English",
		level:    "B1",
		attempts: []string{"The cat sleeps.", ""},
		feedback: "B: solid",
		lesson: &tutor.MiniLesson{
			Kind:         tutor.LessonStructured,
			Title:        "Present Tense",
			GrammarFocus: "Third person singular takes -s.",
		},
	}
	gw := &fakeChatGateway{reply: "ok"}
	a := NewAssistant(gw, view)

	a.Send(t.Context(), "How was my translation?")

	if !strings.Contains(gw.lastContext, "1. The cat sleeps.") {
		t.Errorf("context missing attempt text:\n%s", gw.lastContext)
	}
	if strings.Contains(gw.lastContext, "2. ") {
		t.Error("blank attempt must not be listed")
	}
	if !strings.Contains(gw.lastContext, "Present Tense: Third person singular takes -s.") {
		t.Errorf("context missing lesson text:\n%s", gw.lastContext)
	}

	// A fallback lesson contributes its raw text instead.
	view.lesson = &tutor.MiniLesson{Kind: tutor.LessonFallback, Fallback: "Work on verb endings."}
	a.Send(t.Context(), "And the lesson?")
	if !strings.Contains(gw.lastContext, "Work on verb endings.") {
		t.Errorf("context missing fallback lesson text:\n%s", gw.lastContext)
	}
}

func TestSnapshotContext_SetsTimestamp(t *testing.T) {
	before := time.Now()
	c := SnapshotContext(&fakeView{study: "Spanish", user: "English", level: "A1"})
	if c.Timestamp.Before(before) {
		t.Errorf("timestamp %v predates the snapshot", c.Timestamp)
	}
}

func TestSend_EmptySessionContext(t *testing.T) {
	gw := &fakeChatGateway{reply: "Hello!"}
	a := NewAssistant(gw, &fakeView{study: "Spanish", user: "English", level: "B1"})

	reply := a.Send(t.Context(), "Hi")
	if reply != "Hello!" {
		t.Errorf("reply = %q", reply)
	}
	if strings.Contains(gw.lastContext, "Current passage") {
		t.Error("empty passage must not appear in the context block")
	}
}

func TestSnapshotContext_NilView(t *testing.T) {
	c := SnapshotContext(nil)
	if c.CurrentPassageText != "" {
		t.Error("nil view must yield empty passage text")
	}
	if c.serialize() != "" {
		t.Error("empty context must serialize to nothing")
	}
}

func TestSend_GatewayFailureYieldsApology(t *testing.T) {
	gw := &fakeChatGateway{err: errors.New("provider down")}
	a := NewAssistant(gw, nil)

	reply := a.Send(t.Context(), "Hello?")
	if reply == "" {
		t.Fatal("expected an apology reply, got empty string")
	}
	if reply != apologyReply {
		t.Errorf("reply = %q", reply)
	}

	// The failed exchange is still recorded and the conversation continues.
	h := a.History()
	if len(h) != 2 {
		t.Fatalf("history length = %d, want 2", len(h))
	}
	gw.err = nil
	gw.reply = "Back now."
	if got := a.Send(t.Context(), "Still there?"); got != "Back now." {
		t.Errorf("follow-up reply = %q", got)
	}
}

func TestSend_BlankMessageIgnored(t *testing.T) {
	gw := &fakeChatGateway{reply: "?"}
	a := NewAssistant(gw, nil)

	if got := a.Send(t.Context(), "   "); got != "" {
		t.Errorf("expected empty reply for blank message, got %q", got)
	}
	if gw.calls != 0 {
		t.Error("blank message must not reach the gateway")
	}
	if len(a.History()) != 0 {
		t.Error("blank message must not be recorded")
	}
}

func TestHistoryBounded(t *testing.T) {
	gw := &fakeChatGateway{reply: "ok"}
	a := NewAssistant(gw, nil)

	for i := 0; i < MaxTurns; i++ {
		a.Send(t.Context(), fmt.Sprintf("message %d", i))
	}

	h := a.History()
	if len(h) != MaxTurns {
		t.Fatalf("history length = %d, want %d", len(h), MaxTurns)
	}
	// The oldest turns fell off; the newest survived.
	if h[len(h)-2].Content != fmt.Sprintf("message %d", MaxTurns-1) {
		t.Errorf("unexpected newest user turn: %q", h[len(h)-2].Content)
	}

	// The gateway sees the bounded history, not the full transcript.
	if len(gw.lastHistory) > MaxTurns {
		t.Errorf("gateway received %d turns, bound is %d", len(gw.lastHistory), MaxTurns)
	}
}

func TestReset(t *testing.T) {
	gw := &fakeChatGateway{reply: "ok"}
	a := NewAssistant(gw, nil)

	a.Send(t.Context(), "Hello")
	a.Reset()
	if len(a.History()) != 0 {
		t.Error("expected empty history after reset")
	}
}
