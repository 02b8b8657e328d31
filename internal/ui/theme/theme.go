// Package theme holds the colors and text styles shared by all screens.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

var (
	Primary   = lipgloss.Color("#6366F1") // indigo
	Secondary = lipgloss.Color("#06B6D4") // cyan
	Accent    = lipgloss.Color("#EAB308") // yellow
	Success   = lipgloss.Color("#10B981")
	Error     = lipgloss.Color("#EF4444")
	Text      = lipgloss.Color("#E5E7EB")
	TextDim   = lipgloss.Color("#9CA3AF")
	BgCard    = lipgloss.Color("#1F2937")
	Border    = lipgloss.Color("#374151")
)

func fg(c color.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

var (
	Title    = fg(Primary).Bold(true)
	Subtitle = fg(TextDim)
	Body     = fg(Text)
	Hint     = fg(TextDim).Italic(true)
	Warning  = fg(Accent)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Selected   = fg(Primary).Bold(true)
	Unselected = fg(Text)
	Correct    = fg(Success).Bold(true)
	Incorrect  = fg(Error).Bold(true)

	UserLabel  = fg(Secondary).Bold(true)
	CoachLabel = fg(Primary).Bold(true)
)

var difficultyColors = map[string]color.Color{
	"easy":   Success,
	"medium": Accent,
	"hard":   Error,
}

// Difficulty styles a difficulty label: green, yellow or red from easy to
// hard. Unknown levels render dim.
func Difficulty(level string) lipgloss.Style {
	c, ok := difficultyColors[level]
	if !ok {
		c = TextDim
	}
	return fg(c).Bold(true)
}
