package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"wildwise/config"
	"wildwise/model"
	"wildwise/provider"
	"wildwise/speech"
)

// writeClipboard is replaced in tests
var writeClipboard = clipboard.WriteAll

var errNothingToCopy = errors.New("nothing to copy yet")

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return a.handleResize(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)

	case model.AnswerMsg:
		if !a.turns.HandleAnswer(msg) {
			return a, nil
		}
		a.statusMsg = ""
		a.updateViewportContent(a.highlightedMessageIdx < 0)
		return a, a.queueMarkdownRenders()

	case speech.EventMsg:
		cmd := a.capture.HandleEvent(msg)
		if msg.Event.Kind == speech.EventError {
			a.statusMsg = fmt.Sprintf("Speech recognition failed (%s)", msg.Event.Code)
		}
		a.syncDraftFromStore()
		return a, cmd

	case provider.BackendStatusMsg:
		if msg.Online {
			a.backend = backendOnline
		} else {
			a.backend = backendOffline
			config.DebugLog.Warn("[UI] backend unreachable", zap.String("backend", msg.Backend), zap.Error(msg.Err))
		}
		return a, nil

	case markdownRenderedMsg:
		// Renders for an older width are superseded by the resize re-render
		if msg.Width != a.renderedWidth || msg.MessageIndex < 0 || msg.MessageIndex >= a.store.Len() {
			return a, nil
		}
		a.rendered[msg.MessageIndex] = msg.Rendered
		a.updateViewportContent(a.highlightedMessageIdx < 0)
		return a, nil

	case flashTickMsg:
		if a.highlightFlashCount > 0 && a.highlightFlashCount < flashCount {
			a.highlightFlashCount++
			a.updateViewportContent(false)
			return a, flashTick()
		}
		a.highlightedMessageIdx = -1
		a.highlightFlashCount = 0
		a.updateViewportContent(false)
		return a, nil

	case yankedMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, errNothingToCopy) {
				a.statusMsg = "Nothing to copy yet"
				return a, nil
			}
			a.openNotice("Copy Failed", msg.Err.Error(), ModalTypeError)
			return a, nil
		}
		a.statusMsg = "Copied " + msg.What
		return a, nil

	case spinner.TickMsg:
		if !a.busy() {
			// Let the tick chain die; a new one starts with the next activity
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		a.updateViewportContent(a.highlightedMessageIdx < 0 && a.store.InFlight())
		return a, cmd
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

func (a AppView) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	a.width = msg.Width
	a.height = msg.Height

	// Reserve space for title (1 line), separator (1 line), textarea (3 lines), and status bar (1 line)
	viewportHeight := a.height - 6
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	a.viewport.Width = a.width
	a.viewport.Height = viewportHeight
	a.textarea.SetWidth(a.width)
	a.ready = true

	var cmd tea.Cmd
	if a.width != a.renderedWidth {
		a.renderedWidth = a.width
		a.rendered = map[int]string{}
		cmd = a.queueMarkdownRenders()
	}

	a.updateViewportContent(true)
	return a, cmd
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	// Always-global shortcuts
	if keyStr == "ctrl+c" || keyStr == a.keys.GetActionKey("quit") {
		config.DebugLog.Debug("[UI] quit requested", zap.String("key", keyStr))
		return a, tea.Quit
	}

	if a.showNotice {
		if keyStr == "enter" || keyStr == "esc" {
			a.closeAllModals()
		}
		return a, nil
	}

	if keyStr == a.keys.GetActionKey("help") {
		showHelp := !a.showHelp
		a.closeAllModals()
		a.showHelp = showHelp
		return a, nil
	}

	if a.showHelp {
		if keyStr == "esc" {
			a.closeAllModals()
		}
		return a, nil
	}

	if a.showMessageSearch {
		return a.handleMessageSearchUpdate(msg)
	}

	switch keyStr {
	case a.keys.GetActionKey("submit"):
		return a.submit()

	case a.keys.GetActionKey("voice"):
		return a.activateVoice()

	case a.keys.GetActionKey("clear_input"):
		a.textarea.Reset()
		a.store.SetDraft("")
		return a, nil

	case a.keys.GetActionKey("search"):
		return a.openMessageSearch()

	case a.keys.GetActionKey("yank_last_answer"):
		return a, yankLastAnswer(a.store.History())

	case a.keys.GetActionKey("yank_conversation"):
		return a, yankConversation(a.store.History())

	case a.keys.GetActionKey("scroll_down"), a.keys.GetActionKey("scroll_down_arrow"):
		a.viewport.LineDown(1)
		return a, nil

	case a.keys.GetActionKey("scroll_up"), a.keys.GetActionKey("scroll_up_arrow"):
		a.viewport.LineUp(1)
		return a, nil

	case a.keys.GetActionKey("half_page_down"):
		a.viewport.HalfPageDown()
		return a, nil

	case a.keys.GetActionKey("half_page_up"):
		a.viewport.HalfPageUp()
		return a, nil

	case a.keys.GetActionKey("page_down"), "pgdown":
		a.viewport.PageDown()
		return a, nil

	case a.keys.GetActionKey("page_up"), "pgup":
		a.viewport.PageUp()
		return a, nil

	case a.keys.GetActionKey("scroll_to_top"):
		a.viewport.GotoTop()
		return a, nil

	case a.keys.GetActionKey("scroll_to_bottom"):
		a.viewport.GotoBottom()
		return a, nil
	}

	// Everything else edits the draft
	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	a.store.SetDraft(a.textarea.Value())
	return a, cmd
}

// submit hands the draft to the turn controller. The textarea is only
// cleared when the turn was accepted.
func (a AppView) submit() (tea.Model, tea.Cmd) {
	a.store.SetDraft(a.textarea.Value())

	if a.store.InFlight() {
		a.statusMsg = "Still waiting for the last answer"
		return a, nil
	}

	cmd := a.turns.Submit()
	if cmd == nil {
		return a, nil
	}

	config.DebugLog.Debug("[UI] question submitted", zap.Int("history", a.store.Len()))

	a.textarea.Reset()
	a.statusMsg = ""
	a.highlightedMessageIdx = -1
	a.highlightFlashCount = 0
	a.updateViewportContent(true)

	return a, tea.Batch(cmd, a.spinner.Tick)
}

func (a AppView) activateVoice() (tea.Model, tea.Cmd) {
	if !a.capture.Available() {
		a.openNotice("Speech Unavailable",
			"No speech recognizer is configured.\n\n"+
				"Set [speech] command in config.toml or\n"+
				"WILDWISE_SPEECH_COMMAND to a program that\n"+
				"prints a transcript on stdout.",
			ModalTypeWarning)
		return a, nil
	}

	// Draft typed so far is kept until a transcript arrives
	a.store.SetDraft(a.textarea.Value())

	cmd := a.capture.Activate(a.ctx)
	if cmd == nil {
		if !a.capture.Active() {
			a.statusMsg = "Speech recognition failed to start"
		}
		return a, nil
	}

	a.statusMsg = ""
	return a, tea.Batch(cmd, a.spinner.Tick)
}

// syncDraftFromStore copies a transcript delivered to the store into the textarea
func (a *AppView) syncDraftFromStore() {
	if draft := a.store.Draft(); draft != a.textarea.Value() {
		a.textarea.SetValue(draft)
	}
}

func (a AppView) busy() bool {
	return a.store.InFlight() || a.store.CaptureState() == model.CaptureListening
}

func yankLastAnswer(history []model.Message) tea.Cmd {
	return func() tea.Msg {
		for i := len(history) - 1; i >= 0; i-- {
			msg := history[i]
			if msg.Sender == model.SenderBot && !msg.Failed {
				return yankedMsg{What: "last answer", Err: writeClipboard(msg.Text)}
			}
		}
		return yankedMsg{Err: errNothingToCopy}
	}
}

func yankConversation(history []model.Message) tea.Cmd {
	return func() tea.Msg {
		if len(history) == 0 {
			return yankedMsg{Err: errNothingToCopy}
		}
		return yankedMsg{What: "conversation", Err: writeClipboard(conversationText(history))}
	}
}

// conversationText renders the history as plain text for the clipboard
func conversationText(history []model.Message) string {
	var allText strings.Builder
	for _, msg := range history {
		role := "You"
		if msg.Sender == model.SenderBot {
			role = "WildWise"
		}
		allText.WriteString(fmt.Sprintf("%s %s:\n%s\n", formatTimestamp(msg.Timestamp), role, msg.Text))

		if msg.HasResearch() {
			if len(msg.Research) == 0 {
				allText.WriteString("Research: No research papers found.\n")
			}
			for _, item := range msg.Research {
				allText.WriteString(fmt.Sprintf("Research: %s (%s)\n", item.Title, item.URL))
			}
		}
		if msg.ImageURL != "" {
			allText.WriteString("Image: " + msg.ImageURL + "\n")
		}
		allText.WriteString("\n")
	}
	return allText.String()
}
