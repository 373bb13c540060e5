package render

import (
	"os"
	"slices"
)

// Glamour styles accepted by Options.Style
const (
	StyleDark       = "dark"
	StyleLight      = "light"
	StyleDracula    = "dracula"
	StyleTokyoNight = "tokyonight"
	StylePink       = "pink"
	StyleASCII      = "ascii"
	StyleNoTTY      = "notty"
)

// StyleInfo describes a markdown style for display purposes.
type StyleInfo struct {
	Name        string
	Description string
}

// AvailableStyles lists the built-in markdown styles.
func AvailableStyles() []StyleInfo {
	return []StyleInfo{
		{Name: StyleDark, Description: "Dark terminals (default)"},
		{Name: StyleLight, Description: "Light terminals"},
		{Name: StyleDracula, Description: "Dracula color scheme"},
		{Name: StyleTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: StylePink, Description: "Pink accents"},
		{Name: StyleASCII, Description: "ASCII-only output"},
		{Name: StyleNoTTY, Description: "Plain text (no styling)"},
	}
}

// StyleNames returns the names of the built-in markdown styles.
func StyleNames() []string {
	styles := AvailableStyles()
	names := make([]string, len(styles))
	for i, s := range styles {
		names[i] = s.Name
	}
	return names
}

// IsValidStyle reports whether style is a built-in name or a readable file.
func IsValidStyle(style string) bool {
	if slices.Contains(StyleNames(), style) {
		return true
	}
	info, err := os.Stat(style)
	return err == nil && !info.IsDir()
}

// resolveStyle maps our style names onto the ones glamour registers.
func resolveStyle(style string) string {
	switch style {
	case "":
		return StyleDark
	case StyleTokyoNight:
		return "tokyo-night"
	default:
		return style
	}
}
