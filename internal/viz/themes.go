package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Good    lipgloss.Color
	Warning lipgloss.Color
	Border  lipgloss.Color

	// Series colors for temperature, power, and the P/I/D terms.
	Temperature asciigraph.AnsiColor
	Power       asciigraph.AnsiColor
	Terms       [3]asciigraph.AnsiColor
	Draw        asciigraph.AnsiColor
}

var (
	ThemeEmber = Theme{
		Name:        "ember",
		Primary:     lipgloss.Color("#ff9f1c"),
		Accent:      lipgloss.Color("#2ec4b6"),
		Text:        lipgloss.Color("#ffffff"),
		Muted:       lipgloss.Color("#888899"),
		Good:        lipgloss.Color("#00ff88"),
		Warning:     lipgloss.Color("#ff4444"),
		Border:      lipgloss.Color("#444466"),
		Temperature: asciigraph.Red,
		Power:       asciigraph.Yellow,
		Terms:       [3]asciigraph.AnsiColor{asciigraph.Blue, asciigraph.Green, asciigraph.Red},
		Draw:        asciigraph.Cyan,
	}

	ThemeOcean = Theme{
		Name:        "ocean",
		Primary:     lipgloss.Color("#00a8cc"),
		Accent:      lipgloss.Color("#ffd700"),
		Text:        lipgloss.Color("#e0f0ff"),
		Muted:       lipgloss.Color("#4488aa"),
		Good:        lipgloss.Color("#00ff88"),
		Warning:     lipgloss.Color("#ffcc00"),
		Border:      lipgloss.Color("#0077be"),
		Temperature: asciigraph.Blue,
		Power:       asciigraph.Yellow,
		Terms:       [3]asciigraph.AnsiColor{asciigraph.Cyan, asciigraph.Green, asciigraph.Magenta},
		Draw:        asciigraph.Cyan,
	}

	ThemeMinimal = Theme{
		Name:        "minimal",
		Primary:     lipgloss.Color("#ffffff"),
		Accent:      lipgloss.Color("#cccccc"),
		Text:        lipgloss.Color("#ffffff"),
		Muted:       lipgloss.Color("#888888"),
		Good:        lipgloss.Color("#ffffff"),
		Warning:     lipgloss.Color("#ffffff"),
		Border:      lipgloss.Color("#888888"),
		Temperature: asciigraph.Default,
		Power:       asciigraph.Default,
		Terms:       [3]asciigraph.AnsiColor{asciigraph.Default, asciigraph.Default, asciigraph.Default},
		Draw:        asciigraph.Default,
	}

	CurrentTheme = ThemeEmber

	Themes = []Theme{ThemeEmber, ThemeOcean, ThemeMinimal}
)

// GetTheme returns a theme by name, or the default theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeEmber
}

// SetTheme changes the current theme and restyles everything rendered afterwards.
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
	applyTheme(CurrentTheme)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
