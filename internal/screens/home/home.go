// Package home is the main menu.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/careercoach/internal/analysis"
	chatsvc "github.com/abhisek/careercoach/internal/chat"
	"github.com/abhisek/careercoach/internal/coach"
	"github.com/abhisek/careercoach/internal/router"
	"github.com/abhisek/careercoach/internal/screen"
	chatscreen "github.com/abhisek/careercoach/internal/screens/chat"
	"github.com/abhisek/careercoach/internal/screens/history"
	quizscreen "github.com/abhisek/careercoach/internal/screens/quiz"
	recscreen "github.com/abhisek/careercoach/internal/screens/recommend"
	"github.com/abhisek/careercoach/internal/screens/stats"
	"github.com/abhisek/careercoach/internal/ui/components"
	"github.com/abhisek/careercoach/internal/ui/theme"
)

const banner = "AI Career Coach"

const tagline = "Data & AI careers · adaptive quizzes · learning paths"

// Options holds what the home screen needs to build the other screens.
type Options struct {
	Coach  *coach.Coach
	Chat   *chatsvc.Service
	User   string
	Logger *zap.Logger
}

type summaryLoadedMsg struct {
	Sessions int
	Weakest  string
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	opts    Options
	menu    components.Menu
	summary string
}

var _ screen.Screen = (*HomeScreen)(nil)

func push(build func() screen.Screen) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg { return router.PushScreenMsg{Screen: build()} }
	}
}

// New creates a new HomeScreen.
func New(opts Options) *HomeScreen {
	c, user := opts.Coach, opts.User

	items := []components.MenuItem{
		{Label: "Take a Quiz", Hint: "adaptive multiple choice", Action: push(func() screen.Screen {
			return quizscreen.New(quizscreen.Options{Coach: c, User: user, Mode: quizscreen.ModeFull})
		})},
		{Label: "Quick Question", Hint: "one question on any topic", Action: push(func() screen.Screen {
			return quizscreen.New(quizscreen.Options{Coach: c, User: user, Mode: quizscreen.ModeSingle})
		})},
		{Label: "Chat with Coach", Hint: "career questions", Disabled: opts.Chat == nil, Action: push(func() screen.Screen {
			return chatscreen.New(chatscreen.Options{Chat: opts.Chat, Coach: c, User: user, Logger: opts.Logger})
		})},
		{Label: "My Performance", Hint: "accuracy by topic", Action: push(func() screen.Screen {
			return stats.New(c, user)
		})},
		{Label: "Recommendations", Hint: "courses for weak areas", Action: push(func() screen.Screen {
			return recscreen.New(c, user)
		})},
		{Label: "Quiz History", Hint: "past sessions", Action: push(func() screen.Screen {
			return history.New(c, user)
		})},
		{Label: "Exit", Action: func() tea.Cmd { return tea.Quit }},
	}

	return &HomeScreen{opts: opts, menu: components.NewMenu(items)}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadSummary()
}

// loadSummary refreshes the one-line progress summary.
func (h *HomeScreen) loadSummary() tea.Cmd {
	c, user := h.opts.Coach, h.opts.User
	return func() tea.Msg {
		ctx := context.Background()
		recs, err := c.History(ctx, user)
		if err != nil {
			return summaryLoadedMsg{}
		}
		msg := summaryLoadedMsg{Sessions: len(recs)}
		if len(recs) > 0 {
			if weak := analysis.Aggregate(recs).WeakestAreas(); len(weak) > 0 {
				msg.Weakest = weak[0]
			}
		}
		return msg
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryLoadedMsg:
		h.summary = summaryText(msg)
		return h, nil
	case tea.KeyMsg:
		var cmd tea.Cmd
		h.menu, cmd = h.menu.Update(msg)
		// Returning from a pushed screen shows fresh numbers.
		if cmd != nil {
			return h, tea.Batch(cmd, h.loadSummary())
		}
		return h, cmd
	}
	return h, nil
}

func summaryText(m summaryLoadedMsg) string {
	switch {
	case m.Sessions == 0:
		return "No quizzes yet. Start with a quiz to find your weak spots."
	case m.Weakest != "":
		return fmt.Sprintf("%s so far · focus on %s", sessions(m.Sessions), m.Weakest)
	default:
		return fmt.Sprintf("%s so far · no weak areas", sessions(m.Sessions))
	}
}

func sessions(n int) string {
	if n == 1 {
		return "1 session"
	}
	return fmt.Sprintf("%d sessions", n)
}

func (h *HomeScreen) View(width, height int) string {
	cw := min(components.ContentWidth(width), 60)

	var sections []string
	sections = append(sections,
		lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(theme.Title.Render(strings.ToUpper(banner))),
		lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(theme.Subtitle.Render(tagline)),
	)
	if h.summary != "" {
		sections = append(sections, lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(theme.Hint.Render(h.summary)))
	}
	sections = append(sections, theme.Card.Width(cw).Render(strings.TrimRight(h.menu.View(), "\n")))

	return components.Centered(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
