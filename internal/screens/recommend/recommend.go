// Package recommend shows learning resources for the user's weak areas.
package recommend

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/careercoach/internal/coach"
	rec "github.com/abhisek/careercoach/internal/recommend"
	"github.com/abhisek/careercoach/internal/screen"
	"github.com/abhisek/careercoach/internal/ui/components"
	"github.com/abhisek/careercoach/internal/ui/layout"
	"github.com/abhisek/careercoach/internal/ui/theme"
)

type resultMsg struct {
	Result *rec.Result
	Err    error
}

// RecommendScreen lists resources one card at a time.
type RecommendScreen struct {
	coach    *coach.Coach
	user     string
	result   *rec.Result
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*RecommendScreen)(nil)
var _ screen.KeyHintProvider = (*RecommendScreen)(nil)

// New creates a RecommendScreen for user.
func New(c *coach.Coach, user string) *RecommendScreen {
	return &RecommendScreen{coach: c, user: user}
}

func (s *RecommendScreen) Init() tea.Cmd {
	c, user := s.coach, s.user
	return func() tea.Msg {
		r, err := c.Recommend(context.Background(), user)
		return resultMsg{Result: r, Err: err}
	}
}

func (s *RecommendScreen) Title() string {
	return "Recommendations"
}

func (s *RecommendScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Browse"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *RecommendScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.result = msg.Result

	case tea.KeyMsg:
		if s.result == nil {
			return s, nil
		}
		switch msg.String() {
		case "up", "k", "left", "h":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j", "right", "l":
			if s.selected < len(s.result.Resources)-1 {
				s.selected++
			}
		}
	}
	return s, nil
}

func (s *RecommendScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	switch {
	case s.errMsg != "":
		return components.Centered(theme.Incorrect.Render("Error: "+s.errMsg), width, height)
	case !s.loaded:
		return components.Centered(theme.Hint.Render("Finding courses for your weak areas..."), width, height)
	case len(s.result.Resources) == 0:
		return components.Centered(components.Card("Nothing to recommend yet",
			"Take a few quizzes first. Topics where you answer less than 60% correctly show up here with courses to help.", cw), width, height)
	}

	var b strings.Builder
	if len(s.result.WeakAreas) > 0 {
		b.WriteString(theme.Subtitle.Render("Weak areas: " + strings.Join(s.result.WeakAreas, ", ")))
		b.WriteString("\n\n")
	}
	b.WriteString(s.renderResource(cw))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("%d of %d · %s", s.selected+1, len(s.result.Resources), sourceLabel(s.result.Source))))
	return components.Centered(b.String(), width, height)
}

func (s *RecommendScreen) renderResource(cw int) string {
	r := s.result.Resources[s.selected]

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Underline(true).Render(r.URL))
	b.WriteString("\n\n")
	b.WriteString(layout.Wrap(r.Description, cw-6))
	if len(r.TopicsCovered) > 0 || r.DifficultyLevel != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render(strings.TrimPrefix(strings.Join(r.TopicsCovered, ", ")+" · "+r.DifficultyLevel, " · ")))
	}
	return components.Card(r.Title, b.String(), cw)
}

func sourceLabel(src rec.Source) string {
	switch src {
	case rec.SourceLive:
		return "found online"
	case rec.SourceCatalogFiltered:
		return "from the course catalog"
	default:
		return "general catalog picks"
	}
}
