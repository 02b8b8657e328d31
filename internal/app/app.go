// Package app is the root Bubble Tea model: a screen stack under a shared
// header and footer.
package app

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	chatsvc "github.com/abhisek/careercoach/internal/chat"
	"github.com/abhisek/careercoach/internal/coach"
	"github.com/abhisek/careercoach/internal/router"
	"github.com/abhisek/careercoach/internal/screen"
	"github.com/abhisek/careercoach/internal/screens/home"
	"github.com/abhisek/careercoach/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	Coach  *coach.Coach
	Chat   *chatsvc.Service
	User   string
	Logger *zap.Logger

	// Start opens the program on a screen other than home. Leaving that
	// screen exits the program.
	Start screen.Screen
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router    *router.Router
	user      string
	quitOnPop bool
	width     int
	height    int
}

func newAppModel(opts Options) AppModel {
	if opts.Start != nil {
		return AppModel{router: router.New(opts.Start), user: opts.User, quitOnPop: true}
	}
	homeScreen := home.New(home.Options{
		Coach:  opts.Coach,
		Chat:   opts.Chat,
		User:   opts.User,
		Logger: opts.Logger,
	})
	return AppModel{router: router.New(homeScreen), user: opts.User}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case router.PopScreenMsg:
		if m.router.Depth() == 1 && m.quitOnPop {
			return m, m.quit()
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, m.quit()
		case "esc":
			if bi, ok := m.router.Active().(screen.BackInterceptor); ok && bi.InterceptBack() {
				break
			}
			if m.router.Depth() > 1 || m.quitOnPop {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) quit() tea.Cmd {
	m.router.CloseAll()
	return tea.Quit
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
	header := layout.RenderHeader(active.Title(), m.user, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return append(p.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program and blocks until it exits. Cancelling
// ctx stops the program; running sessions keep the rounds answered so far.
func Run(ctx context.Context, opts Options) error {
	m := newAppModel(opts)
	defer m.router.CloseAll()

	p := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
