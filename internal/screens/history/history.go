// Package history lists a user's past quiz sessions.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/careercoach/internal/coach"
	"github.com/abhisek/careercoach/internal/quiz"
	"github.com/abhisek/careercoach/internal/screen"
	"github.com/abhisek/careercoach/internal/ui/layout"
	"github.com/abhisek/careercoach/internal/ui/theme"
)

type historyLoadedMsg struct {
	Sessions []quiz.SessionRecord
	Err      error
}

// HistoryScreen displays past sessions, newest first, with per-round
// details on demand.
type HistoryScreen struct {
	coach    *coach.Coach
	user     string
	sessions []quiz.SessionRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(c *coach.Coach, user string) *HistoryScreen {
	return &HistoryScreen{
		coach:    c,
		user:     user,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	c, user := s.coach, s.user
	return func() tea.Msg {
		sessions, err := c.History(context.Background(), user)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		newest := make([]quiz.SessionRecord, len(sessions))
		for i, rec := range sessions {
			newest[len(sessions)-1-i] = rec
		}
		return historyLoadedMsg{Sessions: newest}
	}
}

func (s *HistoryScreen) Title() string {
	return "Quiz History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No quizzes yet. Take one from the home screen!")
	}

	var lines []string
	for i, rec := range s.sessions {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		lines = append(lines, style.Render(prefix+sessionLine(rec)))

		if s.expanded[i] {
			lines = append(lines, resultLines(rec)...)
		}
	}

	// Keep the selected session on screen.
	start := 0
	if height > 2 && len(lines) > height-2 {
		start = max(0, min(s.selectedLine()-(height-2)/2, len(lines)-(height-2)))
		lines = lines[start : start+height-2]
	}

	block := strings.Join(lines, "\n")
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, "\n"+block)
}

// selectedLine returns the line index of the selected session header.
func (s *HistoryScreen) selectedLine() int {
	n := 0
	for i := 0; i < s.selected; i++ {
		n++
		if s.expanded[i] {
			n += len(resultLines(s.sessions[i]))
		}
	}
	return n
}

func sessionLine(rec quiz.SessionRecord) string {
	kind := "Quiz    "
	if rec.Type == quiz.SessionSingle {
		kind = "Question"
	}
	total := len(rec.Results)
	var accuracy float64
	if total > 0 {
		accuracy = float64(rec.CorrectCount()) / float64(total) * 100
	}

	line := fmt.Sprintf("%s  %s  %d/%d correct  %3.0f%%",
		rec.Timestamp.Local().Format("Jan 02, 2006 15:04"), kind, rec.CorrectCount(), total, accuracy)
	if rec.Score != nil {
		line += fmt.Sprintf("  %d pts", *rec.Score)
	}
	switch rec.EndReason {
	case quiz.EndAborted:
		line += "  (stopped)"
	case quiz.EndGenerationFailures:
		line += "  (ended early)"
	}
	return line
}

func resultLines(rec quiz.SessionRecord) []string {
	if len(rec.Results) == 0 {
		return []string{lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("      No questions answered")}
	}
	out := make([]string, 0, len(rec.Results))
	for i, res := range rec.Results {
		mark, style := "✓", theme.Correct
		if !res.Correct {
			mark, style = "✗", theme.Incorrect
		}
		out = append(out, style.Render(fmt.Sprintf("      %d. %s %s (%s)", i+1, mark, res.Topic, res.Difficulty)))
	}
	return out
}
