package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/careercoach/internal/ui/theme"
)

// ContentWidth returns the inner width for boxed content.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 90 {
		w = 90
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Card wraps content in a rounded border with an optional title line.
func Card(title, content string, cw int) string {
	if title != "" {
		content = theme.Title.Render(title) + "\n\n" + content
	}
	return theme.Card.Width(cw).Render(content)
}

// Centered places content in the middle of the given area.
func Centered(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
