package chat

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/verso-cli/verso/internal/chat"
	"github.com/verso-cli/verso/internal/screen"
	"github.com/verso-cli/verso/internal/tutor"
	"github.com/verso-cli/verso/internal/ui/components"
	"github.com/verso-cli/verso/internal/ui/layout"
	"github.com/verso-cli/verso/internal/ui/theme"
)

// replyMsg is sent when the assistant answers.
type replyMsg struct{}

// ChatScreen is the conversational assistant view.
type ChatScreen struct {
	assistant *chat.Assistant
	input     components.TextInput
	waiting   bool
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)

// New creates a ChatScreen over the shared assistant. History survives
// leaving and re-entering the screen.
func New(assistant *chat.Assistant) *ChatScreen {
	return &ChatScreen{
		assistant: assistant,
		input:     components.NewTextInput("Ask about the passage, grammar, a word...", 500),
	}
}

func (c *ChatScreen) Init() tea.Cmd {
	return c.input.Init()
}

func (c *ChatScreen) Title() string {
	return "Assistant"
}

func (c *ChatScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Ctrl+L", Description: "Clear"},
		{Key: "Esc", Description: "Back"},
	}
}

func (c *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case replyMsg:
		c.waiting = false
		return c, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if c.waiting {
				return c, nil
			}
			text := strings.TrimSpace(c.input.Value())
			if text == "" {
				return c, nil
			}
			c.input.Reset()
			c.waiting = true
			assistant := c.assistant
			return c, func() tea.Msg {
				assistant.Send(context.Background(), text)
				return replyMsg{}
			}
		case "ctrl+l":
			c.assistant.Reset()
			return c, nil
		}
	}

	if !c.waiting {
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		return c, cmd
	}
	return c, nil
}

func (c *ChatScreen) View(width, height int) string {
	inner := width - 8
	if inner > 88 {
		inner = 88
	}
	if inner < 20 {
		inner = 20
	}

	history := c.assistant.History()

	var lines []string
	for _, turn := range history {
		lines = append(lines, renderTurn(turn, inner)...)
		lines = append(lines, "")
	}
	if c.waiting {
		lines = append(lines, theme.Hint.Render("thinking..."))
	}

	// Keep the newest lines visible above the input.
	inputHeight := 2
	visible := height - inputHeight - 1
	if visible < 1 {
		visible = 1
	}
	if len(lines) > visible {
		lines = lines[len(lines)-visible:]
	}

	var b strings.Builder
	if len(history) == 0 && !c.waiting {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Foreground(theme.TextDim).
			Align(lipgloss.Center).
			Render("\nAsk anything about your current passage or the language you're studying."))
		b.WriteString("\n")
	} else {
		for _, line := range lines {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Width(inner).Render(line)))
			b.WriteString("\n")
		}
	}

	pad := height - lipgloss.Height(b.String()) - inputHeight
	if pad > 0 {
		b.WriteString(strings.Repeat("\n", pad))
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(inner).Render("> "+c.input.View())))

	return b.String()
}

// renderTurn formats one conversation turn as wrapped lines.
func renderTurn(turn tutor.ChatTurn, width int) []string {
	var style lipgloss.Style
	var label string
	if turn.Role == "user" {
		style = lipgloss.NewStyle().Foreground(theme.Secondary)
		label = "You: "
	} else {
		style = lipgloss.NewStyle().Foreground(theme.Text)
		label = "Tutor: "
	}
	wrapped := lipgloss.NewStyle().Width(width).Render(label + turn.Content)
	out := strings.Split(wrapped, "\n")
	for i := range out {
		out[i] = style.Render(out[i])
	}
	return out
}
