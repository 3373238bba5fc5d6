package chat

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	chatsvc "github.com/verso-cli/verso/internal/chat"
	"github.com/verso-cli/verso/internal/tutor"
)

type fakeGateway struct {
	calls int
}

func (f *fakeGateway) Chat(_ context.Context, _ []tutor.ChatTurn, _, _ string) (string, error) {
	f.calls++
	return "It means 'sleeps'.", nil
}

func TestSendAppendsToHistory(t *testing.T) {
	gw := &fakeGateway{}
	assistant := chatsvc.NewAssistant(gw, nil)
	s := New(assistant)

	s.input.SetValue("What does duerme mean?")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a send command")
	}
	if !s.waiting {
		t.Error("expected waiting while the assistant replies")
	}

	s.Update(cmd())

	if s.waiting {
		t.Error("waiting should clear once the reply arrives")
	}
	if gw.calls != 1 {
		t.Errorf("gateway calls = %d, want 1", gw.calls)
	}
	if len(assistant.History()) != 2 {
		t.Errorf("history length = %d, want 2", len(assistant.History()))
	}
}

func TestBlankMessageNotSent(t *testing.T) {
	gw := &fakeGateway{}
	s := New(chatsvc.NewAssistant(gw, nil))

	s.input.SetValue("   ")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("blank input must not produce a send command")
	}
	if gw.calls != 0 {
		t.Error("blank input must not reach the gateway")
	}
}

func TestClearResetsHistory(t *testing.T) {
	gw := &fakeGateway{}
	assistant := chatsvc.NewAssistant(gw, nil)
	s := New(assistant)

	s.input.SetValue("hi")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(cmd())

	s.Update(tea.KeyPressMsg{Code: 'l', Mod: tea.ModCtrl})
	if len(assistant.History()) != 0 {
		t.Error("expected empty history after clear")
	}
}
