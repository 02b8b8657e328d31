package components

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/careercoach/internal/ui/theme"
)

// MultiChoice is a numbered multiple-choice selector. Options are chosen
// with the arrow keys and Enter, or directly with their number.
type MultiChoice struct {
	Question  string
	Options   []string
	Selected  int
	Submitted bool

	// Correct is the 1-based answer, set by Reveal after submission.
	Correct string
}

// NewMultiChoice creates a new multiple-choice component.
func NewMultiChoice(question string, options []string) MultiChoice {
	return MultiChoice{
		Question: question,
		Options:  options,
	}
}

// Update handles keyboard navigation and selection.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	case "enter":
		m.Submitted = true
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(m.Options) {
			m.Selected = n - 1
			m.Submitted = true
		}
	}

	return m, nil
}

// Answer returns the chosen option number, "1".."4".
func (m MultiChoice) Answer() string {
	return strconv.Itoa(m.Selected + 1)
}

// Reveal marks the correct option for rendering.
func (m *MultiChoice) Reveal(correct string) {
	m.Correct = correct
}

// View renders the question and options.
func (m MultiChoice) View(width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(width).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		num := strconv.Itoa(i + 1)
		prefix := "  "
		if i == m.Selected && !m.Submitted {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, num, opt)

		var style lipgloss.Style
		switch {
		case m.Correct != "" && num == m.Correct:
			style = theme.Correct
		case m.Submitted && i == m.Selected:
			style = theme.Incorrect
		case m.Submitted:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = theme.Selected
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
