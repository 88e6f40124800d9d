package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ANSI palette indexes, so the terminal theme decides the actual colors.
// Styles never set a background.
var (
	dimColor       = lipgloss.Color("7")
	accentColor    = lipgloss.Color("12")
	successColor   = lipgloss.Color("10")
	warningColor   = lipgloss.Color("11")
	dangerColor    = lipgloss.Color("9")
	highlightColor = lipgloss.Color("13")
	researchColor  = lipgloss.Color("14")
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	UserStyle  = fg(successColor).Bold(true)
	BotStyle   = fg(accentColor)
	ErrorStyle = fg(dangerColor) // failed turn reply, offline backend
	DimStyle   = fg(dimColor)    // timestamps, placeholders

	TitleStyle  = lipgloss.NewStyle().Bold(true)
	StatusStyle = fg(dimColor)

	ListeningStyle     = fg(warningColor).Bold(true)
	ResearchTitleStyle = fg(researchColor).Bold(true)
	SelectedStyle      = fg(warningColor).Bold(true)
	HighlightStyle     = fg(highlightColor).Bold(true) // search jump flash
)

// FormatFooter pairs up keys and descriptions, rendering the descriptions
// in the accent color. A trailing unpaired part is dropped.
//
//	FormatFooter("Enter", "Select", "Esc", "Close")
func FormatFooter(parts ...string) string {
	desc := fg(accentColor).Bold(true)
	pairs := make([]string, 0, len(parts)/2)
	for i := 0; i+1 < len(parts); i += 2 {
		pairs = append(pairs, parts[i]+" "+desc.Render(parts[i+1]))
	}
	return strings.Join(pairs, "  ")
}
