package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/verso-cli/verso/internal/chat"
	"github.com/verso-cli/verso/internal/practice"
	"github.com/verso-cli/verso/internal/router"
	"github.com/verso-cli/verso/internal/screen"
	"github.com/verso-cli/verso/internal/screens/home"
	"github.com/verso-cli/verso/internal/store"
	"github.com/verso-cli/verso/internal/tutor"
	"github.com/verso-cli/verso/internal/ui/layout"
)

// Options carries the dependencies built by the CLI layer.
type Options struct {
	EventRepo store.EventRepo
	PrefsRepo store.PrefsRepo
	Prefs     store.Prefs

	// Gateway is nil when no model provider is configured. The TUI still
	// runs; AI screens show setup instructions instead.
	Gateway *tutor.Gateway
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	session *practice.Session
	width   int
	height  int
}

// newAppModel wires the practice session and chat assistant and creates
// the home screen.
func newAppModel(opts Options) AppModel {
	var session *practice.Session
	var assistant *chat.Assistant
	if opts.Gateway != nil {
		session = practice.NewSession(opts.Gateway, opts.Prefs.SourceLang, opts.Prefs.TargetLang, opts.Prefs.Level)
		assistant = chat.NewAssistant(opts.Gateway, session)
	}

	homeScreen := home.New(home.Deps{
		Session:   session,
		Assistant: assistant,
		EventRepo: opts.EventRepo,
		PrefsRepo: opts.PrefsRepo,
		Prefs:     opts.Prefs,
	})
	return AppModel{
		router:  router.New(homeScreen),
		session: session,
	}
}

func (m AppModel) Init() tea.Cmd {
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.headerStatus(), m.width)

	footerHints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	if hp, ok := active.(screen.KeyHintProvider); ok {
		if hints := hp.KeyHints(); hints != nil {
			footerHints = hints
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// headerStatus renders the language pair and level for the header.
func (m AppModel) headerStatus() string {
	if m.session == nil {
		return "offline"
	}
	study, user := m.session.Languages()
	return fmt.Sprintf("%s → %s   %s", study, user, m.session.Level())
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
