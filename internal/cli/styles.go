package cli

import (
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/yigit/svitlms/internal/pkg/format"
	"github.com/yigit/svitlms/internal/portal"
)

// Palette is the colour set of one theme.
type Palette struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	IsDark  bool
}

var (
	lightPalette = Palette{
		Primary: lipgloss.Color("#1F3A68"),
		Accent:  lipgloss.Color("#2E7D32"),
		Text:    lipgloss.Color("#1B1F24"),
		Muted:   lipgloss.Color("#6A737D"),
		Border:  lipgloss.Color("#D0D7DE"),
	}
	darkPalette = Palette{
		Primary: lipgloss.Color("#79B8FF"),
		Accent:  lipgloss.Color("#85E89D"),
		Text:    lipgloss.Color("#E1E4E8"),
		Muted:   lipgloss.Color("#959DA5"),
		Border:  lipgloss.Color("#444D56"),
		IsDark:  true,
	}

	danger  = lipgloss.Color("#D73A49")
	warning = lipgloss.Color("#DBAB09")
	info    = lipgloss.Color("#0366D6")
)

// Styles holds every rendered element of the CLI.
type Styles struct {
	Palette Palette

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Label    lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Card  lipgloss.Style
	Badge lipgloss.Style
}

// NewStyles builds the styles of a theme name. Unknown names render light.
func NewStyles(theme string) Styles {
	p := lightPalette
	if theme == portal.ThemeDark {
		p = darkPalette
	}

	return Styles{
		Palette: p,

		Title:    lipgloss.NewStyle().Foreground(p.Primary).Bold(true),
		Subtitle: lipgloss.NewStyle().Foreground(p.Muted).Italic(true),
		Body:     lipgloss.NewStyle().Foreground(p.Text),
		Muted:    lipgloss.NewStyle().Foreground(p.Muted),
		Bold:     lipgloss.NewStyle().Foreground(p.Text).Bold(true),
		Label:    lipgloss.NewStyle().Foreground(p.Muted).Width(14),

		Success: lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(danger).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(warning),
		Info:    lipgloss.NewStyle().Foreground(info),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
		Badge: lipgloss.NewStyle().Padding(0, 1).Bold(true),
	}
}

// Status renders a status word coloured by its meaning.
func (s Styles) Status(status string) string {
	label := strings.ReplaceAll(status, "_", " ")
	switch status {
	case "completed", "active", "excellent":
		return s.Success.Render(label)
	case "overdue", "at_risk", "archived":
		return s.Error.Render(label)
	case "pending", "upcoming", "in_progress", "draft":
		return s.Warning.Render(label)
	default:
		return s.Muted.Render(label)
	}
}

// Field renders one "label value" line.
func (s Styles) Field(label, value string) string {
	return s.Label.Render(label) + s.Body.Render(value)
}

// ProgressBar returns a bar in the theme's colours.
func (s Styles) ProgressBar(width int) progress.Model {
	return progress.New(
		progress.WithGradient(string(s.Palette.Primary), string(s.Palette.Accent)),
		progress.WithWidth(width),
	)
}

// Meter renders a static bar for a 0 to 100 value.
func (s Styles) Meter(percent int) string {
	bar := s.ProgressBar(20)
	bar.ShowPercentage = false
	return bar.ViewAs(float64(percent)/100) + " " + s.Muted.Render(format.PercentageDecimals(float64(percent), 0))
}
