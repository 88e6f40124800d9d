package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wildwise/config"
	"wildwise/model"
	"wildwise/provider"
	"wildwise/speech"
	"wildwise/storage"
)

// Deps are the core components the terminal UI drives. Store, Turns and
// Speech must share the same Store.
type Deps struct {
	Store       *model.Store
	Turns       *model.TurnController
	Speech      *speech.Adapter
	Answerer    model.Answerer // pinged at startup for the title bar status
	Keybindings *config.KeyBindingsConfig
	Context     context.Context // cancelled on shutdown; bounds capture and pings
	Version     string
}

// backendStatus is the result of the startup reachability check
type backendStatus int

const (
	backendUnknown backendStatus = iota
	backendOnline
	backendOffline
)

type AppView struct {
	store    *model.Store
	turns    *model.TurnController
	capture  *speech.Adapter
	answerer model.Answerer
	keys     *config.KeyBindingsConfig
	ctx      context.Context
	version  string

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int
	ready    bool

	// rendered caches the markdown rendering of bot answers by message index.
	// It is shared by every copy of the AppView value.
	rendered      map[int]string
	renderedWidth int

	backend   backendStatus
	statusMsg string // transient status line text

	showHelp    bool
	showNotice  bool
	noticeType  ModalType
	noticeTitle string
	noticeMsg   string

	showMessageSearch      bool
	messageSearchInput     textinput.Model
	messageSearchResults   []storage.MessageMatch
	selectedSearchIdx      int
	messageSearchScrollIdx int

	highlightedMessageIdx int
	highlightFlashCount   int
}

func NewAppView(deps Deps) AppView {
	kb := deps.Keybindings
	if kb == nil {
		kb = config.DefaultKeybindings()
	}
	ctx := deps.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if deps.Turns == nil {
		deps.Turns = model.NewTurnController(deps.Store, deps.Answerer)
	}
	if deps.Speech == nil {
		deps.Speech = speech.NewAdapter(nil, deps.Store)
	}

	ta := textarea.New()
	ta.Placeholder = fmt.Sprintf("Ask about wildlife, or press %s to speak...", kb.DisplayActionKey("voice"))
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Submit is handled by the AppView; only the newline action reaches the textarea
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys(kb.GetActionKey("newline")))

	// Set dynamic prompt: "> " for first line, "| " for subsequent lines
	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})
	if draft := deps.Store.Draft(); draft != "" {
		ta.SetValue(draft)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	messageSearchInput := textinput.New()
	messageSearchInput.Prompt = "Search: "
	messageSearchInput.CharLimit = 100

	return AppView{
		store:                 deps.Store,
		turns:                 deps.Turns,
		capture:               deps.Speech,
		answerer:              deps.Answerer,
		keys:                  kb,
		ctx:                   ctx,
		version:               deps.Version,
		textarea:              ta,
		viewport:              viewport.New(0, 0),
		spinner:               sp,
		rendered:              map[int]string{},
		messageSearchInput:    messageSearchInput,
		highlightedMessageIdx: -1,
	}
}

func (a AppView) Init() tea.Cmd {
	// Markdown is rendered after the first WindowSizeMsg, once the width is known
	cmds := []tea.Cmd{textarea.Blink}
	if a.answerer != nil {
		cmds = append(cmds, provider.PingBackend(a.ctx, a.answerer))
	}
	return tea.Batch(cmds...)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading WildWise..."
	}

	// Modal rendering order (top to bottom layers):
	// 1. Notice (acknowledge only)
	// 2. Help
	// 3. Message search
	if a.showNotice {
		return RenderAcknowledgeModal(a.noticeTitle, a.noticeMsg, a.noticeType, a.width, a.height)
	}

	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}

	if a.showMessageSearch {
		return a.renderMessageSearch(a.width, a.height)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		a.renderTitle(),
		"",
		a.viewport.View(),
		a.textarea.View(),
		a.renderStatusBar(),
	)
}

// renderTitle renders "WildWise - <backend> <status>"
func (a AppView) renderTitle() string {
	title := BotStyle.Bold(true).Render("WildWise")

	backend := a.turns.Backend()
	if backend == "" {
		return title + ErrorStyle.Render(" - no backend")
	}
	title += TitleStyle.Render(" - " + backend)

	switch a.backend {
	case backendOnline:
		title += UserStyle.Render(" ●")
	case backendOffline:
		title += ErrorStyle.Render(" ● offline")
	}
	return title
}

// renderStatusBar shows the capture / request state, then the key hints
func (a AppView) renderStatusBar() string {
	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)

	var state string
	switch {
	case a.store.CaptureState() == model.CaptureListening:
		state = ListeningStyle.Render(a.spinner.View()+"Listening...") + "  "
	case a.store.InFlight():
		state = DimStyle.Render(a.spinner.View()+"Thinking...") + "  "
	case a.statusMsg != "":
		state = DimStyle.Render(a.statusMsg) + "  "
	}

	hints := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s  %s %s  %s %s",
		a.keys.DisplayActionKey("submit"), descStyle.Render("Send"),
		a.keys.DisplayActionKey("newline"), descStyle.Render("New Line"),
		a.keys.DisplayActionKey("voice"), descStyle.Render("Speak"),
		a.keys.DisplayActionKey("search"), descStyle.Render("Search"),
		a.keys.DisplayActionKey("help"), descStyle.Render("Help"),
		a.keys.DisplayActionKey("quit"), descStyle.Render("Quit"),
	)

	return state + StatusStyle.Render(hints)
}

func (a *AppView) openNotice(title, message string, modalType ModalType) {
	a.showNotice = true
	a.noticeTitle = title
	a.noticeMsg = message
	a.noticeType = modalType
}

func (a *AppView) closeAllModals() {
	a.showHelp = false
	a.showNotice = false
	a.showMessageSearch = false

	if a.messageSearchInput.Focused() {
		a.messageSearchInput.Blur()
	}
	a.textarea.Focus()
}
