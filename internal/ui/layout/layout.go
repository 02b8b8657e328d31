// Package layout draws the frame around every screen: a header bar with the
// screen title and active user, the content area and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/careercoach/internal/ui/theme"
)

// Smallest terminal the quiz screens render in without clipping options.
const (
	MinWidth  = 72
	MinHeight = 20
)

const appName = "Career Coach"

type KeyHint struct {
	Key         string
	Description string
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.Warning.GetForeground()).
		Render(fmt.Sprintf("The window is %d x %d.\nCareer Coach needs at least %d x %d.", width, height, MinWidth, MinHeight))
}

func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// RenderHeader shows "Career Coach › title" on the left and the user on
// the right.
func RenderHeader(title, user string, width int) string {
	left := theme.Title.Render(" " + appName)
	if title != "" {
		left += theme.Subtitle.Render(" › ") + lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	}
	right := ""
	if user != "" {
		right = lipgloss.NewStyle().Foreground(theme.Accent).Render(user + " ")
	}

	// Two columns of border plus the padding space.
	gap := max(1, width-4-lipgloss.Width(left)-lipgloss.Width(right))
	return bar(width).Render(left + strings.Repeat(" ", gap) + right)
}

func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = key.Render(h.Key) + " " + desc.Render(h.Description)
	}
	return bar(width).Render(" " + strings.Join(parts, desc.Render("  ·  ")))
}

// Wrap soft-wraps model output to width.
func Wrap(text string, width int) string {
	return lipgloss.NewStyle().Width(max(width, 10)).Render(text)
}

// RenderFrame stacks header, content and footer, giving the content all
// the height the bars leave over.
func RenderFrame(header, content, footer string, width, height int) string {
	bodyHeight := max(0, height-lipgloss.Height(header)-lipgloss.Height(footer))
	body := lipgloss.NewStyle().Width(width).Height(bodyHeight).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}
