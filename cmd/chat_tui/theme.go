package chat_tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the color palette for one chat color scheme.
type Theme struct {
	Name string

	UserBubble   lipgloss.Style
	SystemBubble lipgloss.Style
	IntroText    lipgloss.Style
	QueryBlock   lipgloss.Style
	ErrorText    lipgloss.Style
	MutedText    lipgloss.Style
	CardBorder   lipgloss.Style
	CardTitle    lipgloss.Style
	TabActive    lipgloss.Style
	TabInactive  lipgloss.Style
	StatusBar    lipgloss.Style
	ConfirmHint  lipgloss.Style
}

// DarkTheme is the default palette.
func DarkTheme() Theme {
	return Theme{
		Name: "dark",
		UserBubble: lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("25")).
			Padding(0, 1),
		SystemBubble: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1),
		IntroText:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		QueryBlock:  lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Padding(0, 1),
		ErrorText:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		MutedText:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		CardBorder:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
		CardTitle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		TabActive:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Underline(true),
		TabInactive: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		StatusBar:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		ConfirmHint: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
	}
}

// LightTheme mirrors DarkTheme for light terminal backgrounds.
func LightTheme() Theme {
	return Theme{
		Name: "light",
		UserBubble: lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("26")).
			Padding(0, 1),
		SystemBubble: lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")).
			Background(lipgloss.Color("254")).
			Padding(0, 1),
		IntroText:   lipgloss.NewStyle().Foreground(lipgloss.Color("235")),
		QueryBlock:  lipgloss.NewStyle().Foreground(lipgloss.Color("28")).Padding(0, 1),
		ErrorText:   lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		MutedText:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		CardBorder:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("250")).Padding(0, 1),
		CardTitle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("235")),
		TabActive:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("235")).Underline(true),
		TabInactive: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		StatusBar:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		ConfirmHint: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("130")),
	}
}

// ThemeByName returns the named theme, defaulting by terminal background
// when the name is unknown.
func ThemeByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	}
	if termenv.HasDarkBackground() {
		return DarkTheme()
	}
	return LightTheme()
}
