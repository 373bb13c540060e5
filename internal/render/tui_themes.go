package render

import (
	"slices"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// TUITheme is the color scheme of the chat interface
type TUITheme struct {
	Name        string
	Description string

	Border  lipgloss.Color
	Surface lipgloss.Color

	// User and Bot color the two sides of the conversation
	User lipgloss.Color
	Bot  lipgloss.Color

	Accent  lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Text    lipgloss.Color
	TextDim lipgloss.Color
	Muted   lipgloss.Color
}

// Built-in TUI themes
var (
	TokyoNightTheme = TUITheme{
		Name:        "tokyonight",
		Description: "Tokyo Night, blue on deep navy",
		Border:      lipgloss.Color("#414868"),
		Surface:     lipgloss.Color("#24283b"),
		User:        lipgloss.Color("#9ece6a"),
		Bot:         lipgloss.Color("#7aa2f7"),
		Accent:      lipgloss.Color("#bb9af7"),
		Warning:     lipgloss.Color("#e0af68"),
		Error:       lipgloss.Color("#f7768e"),
		Text:        lipgloss.Color("#c0caf5"),
		TextDim:     lipgloss.Color("#565f89"),
		Muted:       lipgloss.Color("#3b4261"),
	}

	CatppuccinTheme = TUITheme{
		Name:        "catppuccin",
		Description: "Catppuccin Mocha, warm pastels",
		Border:      lipgloss.Color("#45475a"),
		Surface:     lipgloss.Color("#313244"),
		User:        lipgloss.Color("#a6e3a1"),
		Bot:         lipgloss.Color("#89b4fa"),
		Accent:      lipgloss.Color("#cba6f7"),
		Warning:     lipgloss.Color("#f9e2af"),
		Error:       lipgloss.Color("#f38ba8"),
		Text:        lipgloss.Color("#cdd6f4"),
		TextDim:     lipgloss.Color("#6c7086"),
		Muted:       lipgloss.Color("#45475a"),
	}

	SepiaTheme = TUITheme{
		Name:        "sepia",
		Description: "Sepia, old paper and ink",
		Border:      lipgloss.Color("#8b7355"),
		Surface:     lipgloss.Color("#3e3226"),
		User:        lipgloss.Color("#c9a66b"),
		Bot:         lipgloss.Color("#e8d5b0"),
		Accent:      lipgloss.Color("#d4886a"),
		Warning:     lipgloss.Color("#e3b85c"),
		Error:       lipgloss.Color("#c0564b"),
		Text:        lipgloss.Color("#f1e7d0"),
		TextDim:     lipgloss.Color("#a8957a"),
		Muted:       lipgloss.Color("#6b5a45"),
	}

	NordTheme = TUITheme{
		Name:        "nord",
		Description: "Nord, cool arctic tones",
		Border:      lipgloss.Color("#4c566a"),
		Surface:     lipgloss.Color("#3b4252"),
		User:        lipgloss.Color("#a3be8c"),
		Bot:         lipgloss.Color("#88c0d0"),
		Accent:      lipgloss.Color("#b48ead"),
		Warning:     lipgloss.Color("#ebcb8b"),
		Error:       lipgloss.Color("#bf616a"),
		Text:        lipgloss.Color("#eceff4"),
		TextDim:     lipgloss.Color("#7b88a1"),
		Muted:       lipgloss.Color("#4c566a"),
	}
)

var (
	themeMu      sync.RWMutex
	currentTheme = TokyoNightTheme
)

// AvailableTUIThemes returns every built-in TUI theme
func AvailableTUIThemes() []TUITheme {
	return []TUITheme{TokyoNightTheme, CatppuccinTheme, SepiaTheme, NordTheme}
}

// TUIThemeNames returns the names of the built-in TUI themes
func TUIThemeNames() []string {
	themes := AvailableTUIThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// GetTUIThemeByName returns a built-in TUI theme by name
func GetTUIThemeByName(name string) (TUITheme, bool) {
	themes := AvailableTUIThemes()
	i := slices.IndexFunc(themes, func(t TUITheme) bool { return t.Name == name })
	if i < 0 {
		return TUITheme{}, false
	}
	return themes[i], true
}

// GetTUITheme returns the active TUI theme
func GetTUITheme() TUITheme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// SetTUITheme activates a theme by name; unknown names leave it unchanged
func SetTUITheme(name string) bool {
	theme, ok := GetTUIThemeByName(name)
	if !ok {
		return false
	}
	themeMu.Lock()
	currentTheme = theme
	themeMu.Unlock()
	return true
}
