package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillquest/internal/maturity"
	"github.com/abhisek/skillquest/internal/progress"
	"github.com/abhisek/skillquest/internal/quest"
)

// Palette
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#F97316") // Orange
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(20)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	ActiveCard = Card.
			BorderForeground(Primary)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)
)

// BandColor shades maturity bands from dim to bright.
func BandColor(b maturity.Band) color.Color {
	switch b {
	case maturity.Discovering:
		return Warning
	case maturity.Practicing:
		return Accent
	case maturity.Consistent:
		return Secondary
	case maturity.Independent, maturity.Adaptive:
		return Success
	default:
		return TextDim
	}
}

// Band renders a band's display name in its color.
func Band(b maturity.Band) string {
	return lipgloss.NewStyle().Foreground(BandColor(b)).Render(b.DisplayName())
}

// Comparison renders a guide comparison label.
func Comparison(c maturity.Comparison) string {
	fg := Secondary
	switch c {
	case maturity.BelowExpected:
		fg = Warning
	case maturity.AboveExpected:
		fg = Success
	}
	return lipgloss.NewStyle().Foreground(fg).Render(c.Label())
}

// Trend renders a trend as an arrow.
func Trend(t progress.Trend) string {
	switch t {
	case progress.Improving:
		return lipgloss.NewStyle().Foreground(Success).Render("▲")
	case progress.NeedsAttention:
		return lipgloss.NewStyle().Foreground(Warning).Render("▼")
	default:
		return lipgloss.NewStyle().Foreground(TextDim).Render("•")
	}
}

// QuestType renders a quest type tag.
func QuestType(t quest.Type) string {
	fg := Secondary
	switch t {
	case quest.TypeMiniGame:
		fg = Accent
	case quest.TypeReflection:
		fg = Primary
	}
	return lipgloss.NewStyle().Foreground(fg).Bold(true).Render(t.DisplayName())
}
