package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/verso-cli/verso/internal/chat"
	"github.com/verso-cli/verso/internal/practice"
	"github.com/verso-cli/verso/internal/router"
	"github.com/verso-cli/verso/internal/screen"
	chatscreen "github.com/verso-cli/verso/internal/screens/chat"
	"github.com/verso-cli/verso/internal/screens/loglist"
	"github.com/verso-cli/verso/internal/screens/notice"
	"github.com/verso-cli/verso/internal/screens/settings"
	"github.com/verso-cli/verso/internal/screens/study"
	"github.com/verso-cli/verso/internal/store"
	"github.com/verso-cli/verso/internal/ui/components"
	"github.com/verso-cli/verso/internal/ui/theme"
)

const setupHint = "Model provider not configured.\n\nSet an API key (e.g. GEMINI_API_KEY) in your environment\nor run: verso key set <provider> <key>"

// Deps holds everything the home screen hands down to child screens.
type Deps struct {
	Session   *practice.Session
	Assistant *chat.Assistant
	EventRepo store.EventRepo
	PrefsRepo store.PrefsRepo
	Prefs     store.Prefs
}

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	deps Deps
	menu components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	items := []components.MenuItem{
		{Label: "PRACTICE", Action: func() tea.Cmd {
			if deps.Session == nil {
				return pushNotice("Practice")
			}
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: study.New(deps.Session, deps.PrefsRepo, deps.Prefs)}
			}
		}},
		{Label: "ASSISTANT", Action: func() tea.Cmd {
			if deps.Assistant == nil {
				return pushNotice("Assistant")
			}
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: chatscreen.New(deps.Assistant)}
			}
		}},
		{Label: "SETTINGS", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: settings.New(deps.Session, deps.PrefsRepo)}
			}
		}},
		{Label: "REQUEST LOG", Action: func() tea.Cmd {
			if deps.EventRepo == nil {
				return pushNotice("Request Log")
			}
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: loglist.New(deps.EventRepo)}
			}
		}},
		{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	return &HomeScreen{
		deps: deps,
		menu: components.NewMenu(items),
	}
}

func pushNotice(title string) tea.Cmd {
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: notice.New(title, setupHint)}
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	title := theme.Title.Width(width).Render("V E R S O")
	subtitle := theme.Subtitle.Width(width).Render("translation practice, one passage at a time")
	sections = append(sections, title, subtitle, "")

	if h.deps.Session != nil {
		studyLang, userLang := h.deps.Session.Languages()
		pair := fmt.Sprintf("%s → %s  ·  level %s", studyLang, userLang, h.deps.Session.Level())
		sections = append(sections, lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Secondary).
			Render(pair))
	} else {
		sections = append(sections, lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render("offline · no model provider configured"))
	}

	sections = append(sections, "", lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View()))

	content := strings.Join(sections, "\n")
	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Center, content)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
