package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wildwise/model"
	"wildwise/storage"
)

const (
	flashInterval = 300 * time.Millisecond
	flashCount    = 6
)

func (a AppView) renderMessageSearch(width, height int) string {
	modalWidth := width - 4
	if modalWidth > 100 {
		modalWidth = 100
	}

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(1, 2)

	title := TitleStyle.Render("Search Conversation")
	searchView := a.messageSearchInput.View()
	results := a.messageSearchResults

	resultsView := ""
	if len(results) == 0 {
		if a.messageSearchInput.Value() == "" {
			resultsView = DimStyle.Render("Type to search questions and answers...")
		} else {
			resultsView = DimStyle.Render("No matches found")
		}
	} else {
		maxVisible := a.maxVisibleSearchResults()
		startIdx := a.messageSearchScrollIdx
		endIdx := startIdx + maxVisible
		if endIdx > len(results) {
			endIdx = len(results)
		}

		resultsView = fmt.Sprintf("Found %d matches:\n\n", len(results))

		if startIdx > 0 {
			resultsView += DimStyle.Render(fmt.Sprintf("↑ %d more above\n\n", startIdx))
		}

		for i := startIdx; i < endIdx; i++ {
			match := results[i]

			roleStyle, roleName := UserStyle, "You"
			if match.Sender == model.SenderBot {
				roleStyle, roleName = BotStyle, "WildWise"
			}

			matchText := fmt.Sprintf("%s %s\n  %s",
				roleStyle.Render(roleName),
				formatTimestamp(match.Timestamp),
				match.Preview,
			)

			if i == a.selectedSearchIdx {
				matchText = SelectedStyle.Render("> " + matchText)
			} else {
				matchText = "  " + matchText
			}

			resultsView += matchText + "\n\n"
		}

		if endIdx < len(results) {
			resultsView += DimStyle.Render(fmt.Sprintf("↓ %d more below", len(results)-endIdx))
		}
	}

	footer := FormatFooter("Type", "to search", "Up/Down", "Navigate", "Enter", "Jump", "Esc", "Close")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		searchView,
		"",
		resultsView,
		"",
		footer,
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		modalStyle.Width(modalWidth).Render(content))
}

// maxVisibleSearchResults estimates how many results fit in the modal
func (a AppView) maxVisibleSearchResults() int {
	// Border(2) + Padding(2) + Title(1) + Blank(1) + SearchInput(1) + Blank(1) +
	// "Found X matches:"(1) + Blank(1) + Footer(1) + Blank(1) = 12 lines
	fixedOverhead := 12
	scrollIndicatorSpace := 4

	availableLines := a.height - fixedOverhead - scrollIndicatorSpace
	if availableLines < 3 {
		availableLines = 3
	}

	// Conservative: preview lines may wrap
	linesPerResult := 4
	visible := availableLines / linesPerResult
	if visible < 1 {
		visible = 1
	}
	return visible
}

func (a AppView) openMessageSearch() (AppView, tea.Cmd) {
	a.closeAllModals()
	a.showMessageSearch = true
	a.messageSearchInput.SetValue("")
	a.messageSearchResults = nil
	a.selectedSearchIdx = 0
	a.messageSearchScrollIdx = 0
	a.textarea.Blur()
	return a, a.messageSearchInput.Focus()
}

func (a AppView) handleMessageSearchUpdate(msg tea.KeyMsg) (AppView, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.closeAllModals()
		return a, nil

	case a.keys.GetActionKey("search_up"), a.keys.GetActionKey("scroll_up"):
		if a.selectedSearchIdx > 0 {
			a.selectedSearchIdx--
		}
		if a.selectedSearchIdx < a.messageSearchScrollIdx {
			a.messageSearchScrollIdx = a.selectedSearchIdx
		}
		return a, nil

	case a.keys.GetActionKey("search_down"), a.keys.GetActionKey("scroll_down"):
		if a.selectedSearchIdx < len(a.messageSearchResults)-1 {
			a.selectedSearchIdx++
		}
		if maxVisible := a.maxVisibleSearchResults(); a.selectedSearchIdx >= a.messageSearchScrollIdx+maxVisible {
			a.messageSearchScrollIdx = a.selectedSearchIdx - maxVisible + 1
		}
		return a, nil

	case "enter":
		if a.selectedSearchIdx < 0 || a.selectedSearchIdx >= len(a.messageSearchResults) {
			return a, nil
		}
		return a.jumpToMessage(a.messageSearchResults[a.selectedSearchIdx].MessageIndex)
	}

	var cmd tea.Cmd
	a.messageSearchInput, cmd = a.messageSearchInput.Update(msg)
	a.messageSearchResults = storage.SearchMessages(a.store.History(), a.messageSearchInput.Value())
	a.selectedSearchIdx = 0
	a.messageSearchScrollIdx = 0
	return a, cmd
}

// jumpToMessage closes the search modal, centers message idx in the viewport
// and starts the highlight flash
func (a AppView) jumpToMessage(idx int) (AppView, tea.Cmd) {
	a.closeAllModals()
	a.highlightedMessageIdx = idx
	a.highlightFlashCount = 1
	a.updateViewportContent(false)

	offset := a.messageOffset(a.store.History(), idx)
	centerOffset := offset - a.viewport.Height/2
	if maxOffset := a.viewport.TotalLineCount() - a.viewport.Height; centerOffset > maxOffset {
		centerOffset = maxOffset
	}
	if centerOffset < 0 {
		centerOffset = 0
	}
	a.viewport.SetYOffset(centerOffset)

	return a, flashTick()
}

func flashTick() tea.Cmd {
	return tea.Tick(flashInterval, func(time.Time) tea.Msg {
		return flashTickMsg{}
	})
}
