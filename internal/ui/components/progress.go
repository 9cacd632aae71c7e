package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillquest/internal/ui/theme"
)

// ScoreBar displays a 0..100 score as a horizontal bar.
type ScoreBar struct {
	Label string
	Score float64
	Width int

	// Fill colors the filled part. Nil uses the secondary color.
	Fill color.Color
}

// View renders the bar followed by the numeric score.
func (b ScoreBar) View() string {
	var out string
	if b.Label != "" {
		out = theme.Label.Render(b.Label) + " "
	}

	const scoreWidth = 6 // "  100"
	barWidth := max(b.Width-lipgloss.Width(out)-scoreWidth, 4)

	score := min(max(b.Score, 0), 100)
	filled := int(float64(barWidth) * score / 100)
	fill := b.Fill
	if fill == nil {
		fill = theme.Secondary
	}

	out += lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled))
	out += lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))
	out += lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("  %3.0f", score))
	return out
}
