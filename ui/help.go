package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpEntry struct {
	action string // keybinding action; "" for a tip line
	text   string
}

type helpSection struct {
	title   string
	entries []helpEntry
}

// Two columns, top to bottom
var helpColumns = [2][]helpSection{
	{
		{"Asking", []helpEntry{
			{"submit", "Send question"},
			{"newline", "New line"},
			{"voice", "Speak a question"},
			{"clear_input", "Clear input"},
			{"yank_last_answer", "Copy last answer"},
			{"yank_conversation", "Copy conversation"},
		}},
		{"Global Actions", []helpEntry{
			{"search", "Search conversation"},
			{"help", "Toggle this help"},
			{"quit", "Quit"},
		}},
	},
	{
		{"Chat Navigation", []helpEntry{
			{"scroll_down", "Scroll down 1 line"},
			{"scroll_up", "Scroll up 1 line"},
			{"half_page_down", "Half page down"},
			{"half_page_up", "Half page up"},
			{"page_down", "Full page down"},
			{"page_up", "Full page up"},
			{"scroll_to_top", "Jump to top"},
			{"scroll_to_bottom", "Jump to bottom"},
		}},
		{"Tips", []helpEntry{
			{"", "Speech fills the input; review it, then send"},
			{"", "Answers about wildlife cite research"},
			{"", "History is saved after every message"},
		}},
	},
}

func (a AppView) renderHelpSection(s helpSection) string {
	lines := []string{lipgloss.NewStyle().Foreground(accentColor).Render("## " + s.title)}
	for _, e := range s.entries {
		if e.action == "" {
			lines = append(lines, "• "+e.text)
			continue
		}
		lines = append(lines, fmt.Sprintf("• %-13s %s", a.keys.DisplayActionKey(e.action), e.text))
	}
	return strings.Join(lines, "\n")
}

func (a AppView) renderHelpModal(width, height int) string {
	columnStyle := lipgloss.NewStyle().Width(44).PaddingLeft(4)

	var columns []string
	for i, sections := range helpColumns {
		rendered := make([]string, len(sections))
		for j, s := range sections {
			rendered[j] = a.renderHelpSection(s)
		}
		if i > 0 {
			columns = append(columns, "  ")
		}
		columns = append(columns, columnStyle.Render(strings.Join(rendered, "\n\n")))
	}

	footer := fmt.Sprintf("Press %s or Esc to close this help", a.keys.DisplayActionKey("help"))
	if a.version != "" {
		footer = fmt.Sprintf("WildWise %s  |  %s", a.version, footer)
	}

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		UserStyle.Render("WildWise - Keyboard Shortcuts"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top, columns...),
		"",
		DimStyle.Render(footer),
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(1, 2).
		Width(100)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box.Render(content))
}
