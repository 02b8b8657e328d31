// Package stats shows the per-topic performance report.
package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/careercoach/internal/analysis"
	"github.com/abhisek/careercoach/internal/coach"
	"github.com/abhisek/careercoach/internal/quiz"
	"github.com/abhisek/careercoach/internal/screen"
	"github.com/abhisek/careercoach/internal/ui/components"
	"github.com/abhisek/careercoach/internal/ui/layout"
	"github.com/abhisek/careercoach/internal/ui/theme"
)

type reportLoadedMsg struct {
	Report *analysis.Report
	Err    error
}

// StatsScreen renders accuracy bars per topic and the weak-area ranking.
type StatsScreen struct {
	coach  *coach.Coach
	user   string
	report *analysis.Report
	empty  bool
	loaded bool
	errMsg string
	offset int
}

var _ screen.Screen = (*StatsScreen)(nil)
var _ screen.KeyHintProvider = (*StatsScreen)(nil)

// New creates a StatsScreen for user.
func New(c *coach.Coach, user string) *StatsScreen {
	return &StatsScreen{coach: c, user: user}
}

func (s *StatsScreen) Init() tea.Cmd {
	c, user := s.coach, s.user
	return func() tea.Msg {
		r, err := c.Analyze(context.Background(), user)
		return reportLoadedMsg{Report: r, Err: err}
	}
}

func (s *StatsScreen) Title() string {
	return "My Performance"
}

func (s *StatsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case reportLoadedMsg:
		s.loaded = true
		switch {
		case errors.Is(msg.Err, analysis.ErrNotFound), errors.Is(msg.Err, analysis.ErrNoHistory):
			s.empty = true
		case msg.Err != nil:
			s.errMsg = msg.Err.Error()
		default:
			s.report = msg.Report
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			s.offset++
		}
	}
	return s, nil
}

func (s *StatsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	switch {
	case s.errMsg != "":
		return components.Centered(theme.Incorrect.Render("Error: "+s.errMsg), width, height)
	case !s.loaded:
		return components.Centered(theme.Hint.Render("Analyzing your quiz history..."), width, height)
	case s.empty:
		return components.Centered(components.Card("No data yet",
			"No quiz history available for analysis.\n\n"+theme.Hint.Render("Take a quiz to see how you are doing."), cw), width, height)
	}

	lines := s.reportLines(cw)
	if visible := height - 2; visible > 0 && len(lines) > visible {
		s.offset = min(s.offset, len(lines)-visible)
		lines = lines[s.offset : s.offset+visible]
	} else {
		s.offset = 0
	}
	return lipgloss.NewStyle().PaddingLeft((width - cw) / 2).Render("\n" + strings.Join(lines, "\n"))
}

func (s *StatsScreen) reportLines(cw int) []string {
	r := s.report
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	lines := []string{theme.Subtitle.Render("Accuracy by topic"), ""}
	for _, st := range r.Topics {
		bar := components.AccuracyBar{
			Label:     st.Topic,
			Percent:   st.Overall.Accuracy(),
			Threshold: analysis.WeakThreshold,
			Width:     cw,
		}
		lines = append(lines, bar.View())

		var parts []string
		for _, d := range quiz.AllDifficulties {
			if c, ok := st.ByDifficulty[d]; ok && c.Total > 0 {
				parts = append(parts, fmt.Sprintf("%s %s", d, c))
			}
		}
		lines = append(lines, dim.Render(fmt.Sprintf("  %d/%d correct · %s", st.Overall.Correct, st.Overall.Total, strings.Join(parts, " · "))))
	}

	lines = append(lines, "", theme.Body.Render(r.Message))
	for i, w := range r.WeakAreas {
		lines = append(lines, theme.Warning.Render(fmt.Sprintf("  %d. %s (%.1f%%)", i+1, w.Topic, w.Accuracy)))
	}
	return lines
}
