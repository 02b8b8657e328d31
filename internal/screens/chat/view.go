package chat

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/careercoach/internal/ui/components"
	"github.com/abhisek/careercoach/internal/ui/layout"
	"github.com/abhisek/careercoach/internal/ui/theme"
)

const greeting = "Hi! I'm your career coach for data and AI. Ask me anything, or say \"give me a quiz\" to test yourself."

func (s *ChatScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	s.input.SetWidth(cw - 4)

	var footer []string
	switch {
	case s.errMsg != "":
		footer = append(footer, theme.Incorrect.Render(s.errMsg))
	case s.notice != "":
		footer = append(footer, theme.Hint.Render(s.notice))
	}
	footer = append(footer, s.input.View())
	bottom := strings.Join(footer, "\n")

	avail := height - lipgloss.Height(bottom) - 1
	transcript := s.renderTranscript(cw, avail)

	return lipgloss.NewStyle().
		Width(width).
		PaddingLeft((width - cw) / 2).
		Render(transcript + "\n\n" + bottom)
}

// renderTranscript renders the conversation, keeping the newest lines that
// fit in maxLines.
func (s *ChatScreen) renderTranscript(cw, maxLines int) string {
	var blocks []string
	blocks = append(blocks, coachLine(greeting, cw))
	for _, t := range s.turns {
		blocks = append(blocks, userLine(t.User, cw), coachLine(t.Bot, cw))
	}
	if s.waiting {
		blocks = append(blocks, userLine(s.pending, cw), theme.CoachLabel.Render("Coach")+" "+s.spinner.View())
	}

	lines := strings.Split(strings.Join(blocks, "\n\n"), "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}

func userLine(text string, cw int) string {
	return theme.UserLabel.Render("You") + "\n" + layout.Wrap(text, cw)
}

func coachLine(text string, cw int) string {
	return theme.CoachLabel.Render("Coach") + "\n" + theme.Body.Render(layout.Wrap(text, cw))
}
