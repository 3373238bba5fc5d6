package settings

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/verso-cli/verso/internal/practice"
	"github.com/verso-cli/verso/internal/screen"
	"github.com/verso-cli/verso/internal/store"
	"github.com/verso-cli/verso/internal/tutor"
	"github.com/verso-cli/verso/internal/ui/components"
	"github.com/verso-cli/verso/internal/ui/layout"
	"github.com/verso-cli/verso/internal/ui/theme"
)

const (
	fieldSource = iota
	fieldTarget
	fieldLevel
	fieldSave
	fieldCount
)

// savedMsg is sent when preferences have been written.
type savedMsg struct {
	Err error
}

// SettingsScreen edits the language pair and difficulty level.
type SettingsScreen struct {
	session   *practice.Session
	prefsRepo store.PrefsRepo

	sourceInput components.TextInput
	targetInput components.TextInput
	levelIdx    int
	focus       int
	status      string
}

var _ screen.Screen = (*SettingsScreen)(nil)
var _ screen.KeyHintProvider = (*SettingsScreen)(nil)

// New creates a SettingsScreen seeded from the saved preferences.
// session may be nil when no provider is configured.
func New(session *practice.Session, prefsRepo store.PrefsRepo) *SettingsScreen {
	s := &SettingsScreen{
		session:     session,
		prefsRepo:   prefsRepo,
		sourceInput: components.NewTextInput("language of the passage", 40),
		targetInput: components.NewTextInput("language you translate into", 40),
	}

	prefs := store.DefaultPrefs()
	if prefsRepo != nil {
		if p, err := prefsRepo.Load(context.Background()); err == nil {
			prefs = p
		}
	}
	s.sourceInput.SetValue(prefs.SourceLang)
	s.targetInput.SetValue(prefs.TargetLang)
	s.levelIdx = levelIndex(prefs.Level)
	s.applyFocus()
	return s
}

func levelIndex(level string) int {
	for i, l := range tutor.Levels() {
		if l == level {
			return i
		}
	}
	return 0
}

func (s *SettingsScreen) applyFocus() {
	if s.focus == fieldSource {
		s.sourceInput.Focus()
	} else {
		s.sourceInput.Blur()
	}
	if s.focus == fieldTarget {
		s.targetInput.Focus()
	} else {
		s.targetInput.Blur()
	}
}

func (s *SettingsScreen) Init() tea.Cmd {
	return s.sourceInput.Init()
}

func (s *SettingsScreen) Title() string {
	return "Settings"
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Field"},
		{Key: "←→", Description: "Level"},
		{Key: "Enter", Description: "Save"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		if msg.Err != nil {
			s.status = "Save failed: " + msg.Err.Error()
		} else {
			s.status = "Saved."
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up":
			if s.focus > 0 {
				s.focus--
				s.applyFocus()
			}
			return s, nil
		case "down":
			if s.focus < fieldCount-1 {
				s.focus++
				s.applyFocus()
			}
			return s, nil
		case "left":
			if s.focus == fieldLevel && s.levelIdx > 0 {
				s.levelIdx--
			}
			return s, nil
		case "right":
			if s.focus == fieldLevel && s.levelIdx < len(tutor.Levels())-1 {
				s.levelIdx++
			}
			return s, nil
		case "enter":
			if s.focus == fieldSave {
				return s.save()
			}
			if s.focus < fieldCount-1 {
				s.focus++
				s.applyFocus()
			}
			return s, nil
		}
	}

	var cmd tea.Cmd
	switch s.focus {
	case fieldSource:
		s.sourceInput, cmd = s.sourceInput.Update(msg)
	case fieldTarget:
		s.targetInput, cmd = s.targetInput.Update(msg)
	}
	return s, cmd
}

func (s *SettingsScreen) save() (screen.Screen, tea.Cmd) {
	source := strings.TrimSpace(s.sourceInput.Value())
	target := strings.TrimSpace(s.targetInput.Value())
	if source == "" || target == "" {
		s.status = "Both languages are required."
		return s, nil
	}
	level := tutor.Levels()[s.levelIdx]

	// Level applies to the running session right away. A language change
	// needs a fresh session, so it takes effect on next launch.
	if s.session != nil {
		s.session.SetLevel(level)
	}

	repo := s.prefsRepo
	return s, func() tea.Msg {
		if repo == nil {
			return savedMsg{}
		}
		ctx := context.Background()
		prefs, err := repo.Load(ctx)
		if err != nil {
			return savedMsg{Err: err}
		}
		prefs.SourceLang = source
		prefs.TargetLang = target
		prefs.Level = level
		return savedMsg{Err: repo.Save(ctx, prefs)}
	}
}

func (s *SettingsScreen) View(width, height int) string {
	inner := width - 8
	if inner > 60 {
		inner = 60
	}

	row := func(idx int, label, value string) string {
		marker := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if idx == s.focus {
			marker = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		return style.Render(fmt.Sprintf("%s%-18s %s", marker, label, value))
	}

	levels := tutor.Levels()
	levelValue := ""
	for i, l := range levels {
		if i == s.levelIdx {
			levelValue += lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("[" + l + "]")
		} else {
			levelValue += lipgloss.NewStyle().Foreground(theme.TextDim).Render(" " + l + " ")
		}
	}

	var b strings.Builder
	b.WriteString("\n\n")
	rows := []string{
		row(fieldSource, "Passage language", s.sourceInput.View()),
		"",
		row(fieldTarget, "Your language", s.targetInput.View()),
		"",
		row(fieldLevel, "Level", levelValue),
		"",
		row(fieldSave, "Save", ""),
	}
	for _, r := range rows {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Width(inner).Render(r)))
		b.WriteString("\n")
	}

	if s.status != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Secondary).
			Render(s.status))
	}

	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Italic(true).
		Render("Language changes take effect on the next launch."))

	return b.String()
}
