package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/careercoach/internal/ui/theme"
)

// AccuracyBar is a horizontal bar for a percentage, colored by whether it
// is below a threshold.
type AccuracyBar struct {
	Label     string
	Percent   float64 // 0..100
	Threshold float64
	Width     int
}

// View renders the bar followed by the percentage.
func (p AccuracyBar) View() string {
	var result string
	if p.Label != "" {
		result = lipgloss.NewStyle().Foreground(theme.Text).Width(18).Render(p.Label) + " "
	}

	barWidth := p.Width - lipgloss.Width(result) - 8
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent / 100)
	filled = max(0, min(filled, barWidth))

	var fill color.Color = theme.Success
	if p.Percent < p.Threshold {
		fill = theme.Error
	}

	result += lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled))
	result += lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))
	result += lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf(" %5.1f%%", p.Percent))
	return result
}
