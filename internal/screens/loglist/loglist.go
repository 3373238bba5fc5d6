package loglist

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/verso-cli/verso/internal/screen"
	"github.com/verso-cli/verso/internal/store"
	"github.com/verso-cli/verso/internal/ui/layout"
	"github.com/verso-cli/verso/internal/ui/theme"
)

type eventsLoadedMsg struct {
	Events []store.LLMEvent
	Err    error
}

// LogScreen displays recent model request events.
type LogScreen struct {
	eventRepo store.EventRepo
	events    []store.LLMEvent
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*LogScreen)(nil)
var _ screen.KeyHintProvider = (*LogScreen)(nil)

// New creates a LogScreen.
func New(eventRepo store.EventRepo) *LogScreen {
	return &LogScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *LogScreen) Init() tea.Cmd {
	return func() tea.Msg {
		events, err := s.eventRepo.QueryLLMEvents(context.Background(), store.QueryOpts{Limit: 50})
		if err != nil {
			return eventsLoadedMsg{Err: err}
		}
		return eventsLoadedMsg{Events: events}
	}
}

func (s *LogScreen) Title() string {
	return "Request Log"
}

func (s *LogScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LogScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case eventsLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.events = msg.Events
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.events)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *LogScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading events...")
	}
	if len(s.events) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No model requests yet. Generate a passage!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, e := range s.events {
		ok := "✓"
		okStyle := lipgloss.NewStyle().Foreground(theme.Success)
		if !e.Success {
			ok = "✗"
			okStyle = lipgloss.NewStyle().Foreground(theme.Error)
		}

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		line := fmt.Sprintf("%s#%-5d %s  %-12s %-24s %5d in %5d out  %s",
			prefix,
			e.Sequence,
			e.Timestamp.Local().Format("Jan 02 15:04"),
			e.Purpose,
			truncate(e.Model, 24),
			e.InputTokens,
			e.OutputTokens,
			okStyle.Render(ok))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			details := []string{
				fmt.Sprintf("    Provider: %s   Latency: %dms", e.Provider, e.LatencyMs),
			}
			if e.ErrorMessage != "" {
				details = append(details, "    Error: "+truncate(e.ErrorMessage, 80))
			}
			if e.ResponseBody != "" {
				details = append(details, "    Response: "+truncate(strings.ReplaceAll(e.ResponseBody, "\n", " "), 80))
			}
			for _, d := range details {
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Render(d)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
