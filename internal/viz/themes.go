package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the cloth view. Primary draws the mesh.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Muted     lipgloss.Color
}

var (
	ThemeLinen = Theme{
		Name:      "linen",
		Primary:   lipgloss.Color("#f0e6d2"),
		Secondary: lipgloss.Color("#d4a373"),
		Success:   lipgloss.Color("#8ac926"),
		Muted:     lipgloss.Color("#6c6c6c"),
	}

	ThemeDenim = Theme{
		Name:      "denim",
		Primary:   lipgloss.Color("#5fa8d3"),
		Secondary: lipgloss.Color("#cae9ff"),
		Success:   lipgloss.Color("#00ff88"),
		Muted:     lipgloss.Color("#4488aa"),
	}

	ThemeNeon = Theme{
		Name:      "neon",
		Primary:   lipgloss.Color("#ff00ff"),
		Secondary: lipgloss.Color("#00ffff"),
		Success:   lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#666666"),
	}

	CurrentTheme = ThemeLinen

	Themes = []Theme{ThemeLinen, ThemeDenim, ThemeNeon}
)

// GetTheme returns a theme by name, falling back to linen.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeLinen
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
