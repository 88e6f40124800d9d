package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"wildwise/config"
	"wildwise/model"
)

// Pre-compiled regex patterns for better performance
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
	ansiRegex       = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

const (
	codeBar      = "┃"
	codeRule     = "━"
	defaultWidth = 80
)

func (a *AppView) updateViewportContent(gotoBottom bool) {
	history := a.store.History()
	if len(history) == 0 && !a.store.InFlight() {
		a.viewport.SetContent(DimStyle.Render("No messages yet. Ask WildWise about wildlife!"))
		return
	}

	var content strings.Builder
	for i, msg := range history {
		content.WriteString(a.renderMessage(i, msg))
	}

	if a.store.InFlight() {
		timestamp := DimStyle.Render(time.Now().Format("[15:04]"))
		content.WriteString(fmt.Sprintf("%s %s\n%s%s\n\n",
			timestamp,
			BotStyle.Render("WildWise"),
			a.spinner.View(),
			DimStyle.Render("Searching the wild for an answer...")))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

// messageOffset returns the viewport line at which message idx starts
func (a AppView) messageOffset(history []model.Message, idx int) int {
	lines := 0
	for i := 0; i < idx && i < len(history); i++ {
		lines += strings.Count(a.renderMessage(i, history[i]), "\n")
	}
	return lines
}

func (a AppView) renderMessage(i int, msg model.Message) string {
	highlightPrefix := ""
	if i == a.highlightedMessageIdx && a.highlightFlashCount%2 == 1 {
		highlightPrefix = HighlightStyle.Render(">>> ")
	}

	timestamp := DimStyle.Render(formatTimestamp(msg.Timestamp))

	if msg.Sender == model.SenderUser {
		return formatUserMessage(highlightPrefix, timestamp, UserStyle.Render("You"), msg.Text)
	}

	body := msg.Text
	if msg.Failed {
		body = ErrorStyle.Render(msg.Text)
	} else if rendered, ok := a.rendered[i]; ok {
		body = rendered
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s%s %s\n%s\n", highlightPrefix, timestamp, BotStyle.Render("WildWise"), strings.TrimRight(body, "\n")))

	if msg.HasResearch() {
		b.WriteString(renderResearch(msg.Research, a.width))
	}
	if msg.ImageURL != "" {
		b.WriteString(DimStyle.Render("Image: ") + msg.ImageURL + "\n")
	}
	b.WriteString("\n")

	return b.String()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "[--:--]"
	}
	return t.Local().Format("[15:04]")
}

func formatUserMessage(highlightPrefix, timestamp, role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + codeBar + reset

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s%s %s %s\n", highlightPrefix, bar, timestamp, role))

	for _, line := range strings.Split(content, "\n") {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}

	result.WriteString("\n")

	return result.String()
}

// renderResearch lists cited papers as title, url and wrapped abstract.
// An empty (non-nil) list means the service searched and found nothing.
func renderResearch(items []model.ResearchItem, width int) string {
	wrap := width - 2
	if wrap < 20 {
		wrap = defaultWidth
	}

	var b strings.Builder
	b.WriteString("\n" + ResearchTitleStyle.Render("Research") + "\n")

	if len(items) == 0 {
		b.WriteString(DimStyle.Render("No research papers found.") + "\n")
		return b.String()
	}

	for _, item := range items {
		b.WriteString(wordWrapWithIndent(item.Title, "• ", wrap))
		if item.URL != "" {
			b.WriteString("  " + DimStyle.Render(item.URL) + "\n")
		}
		if item.Abstract != "" {
			b.WriteString(DimStyle.Render(wordWrapWithIndent(item.Abstract, "  ", wrap)))
		}
	}

	return b.String()
}

func postProcessMarkdown(rendered string, width int) string {
	// 1. Fix inline code: Blue background → Red text
	rendered = fixInlineCode(rendered)

	// 2. Color plain URLs red (autolink disabled keeps URLs plain)
	rendered = fixMarkdownLinks(rendered)

	// 3. Frame code blocks with horizontal lines
	rendered = frameCodeBlocks(rendered, width)

	return rendered
}

func preprocessLinks(content string) string {
	// Strip markdown link syntax [text](url) → just url
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

func fixInlineCode(s string) string {
	// Replace: \x1b[44;3m...text...\x1b[0m (Blue BG + Italic)
	// With:    \x1b[31m...text...\x1b[0m (Red text)
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

func fixMarkdownLinks(s string) string {
	redColor := "\x1b[31m"
	reset := "\x1b[0m"

	lines := strings.Split(s, "\n")

	for i, line := range lines {
		// Skip code blocks
		if !strings.Contains(line, codeBar) {
			lines[i] = urlRegex.ReplaceAllString(line, redColor+"$1"+reset)
		}
	}

	return strings.Join(lines, "\n")
}

func frameCodeBlocks(s string, width int) string {
	lines := strings.Split(s, "\n")
	var result []string
	var codeBlockLines []string
	inCodeBlock := false

	darkGray := "\x1b[90m"
	reset := "\x1b[0m"

	ruleLen := width - 4
	if ruleLen < 10 {
		ruleLen = 10
	}
	bottom := darkGray + strings.Repeat(codeRule, ruleLen) + reset

	closeBlock := func() {
		result = append(result, codeBlockLines...)
		result = append(result, "", bottom, "")
		codeBlockLines = nil
		inCodeBlock = false
	}

	for _, line := range lines {
		if strings.Contains(line, codeBar) {
			if !inCodeBlock {
				inCodeBlock = true
				codeBlockLines = []string{}

				label := "[code]"
				leftLen := (ruleLen - len(label)) / 2
				rightLen := ruleLen - len(label) - leftLen
				top := darkGray + strings.Repeat(codeRule, leftLen) + reset + label + darkGray + strings.Repeat(codeRule, rightLen) + reset

				result = append(result, "", top, "")
			}

			codeBlockLines = append(codeBlockLines, stripCodeBlockPrefix(line))
			continue
		}

		if inCodeBlock {
			closeBlock()
		}
		result = append(result, line)
	}

	// Handle code block at end of content
	if inCodeBlock && len(codeBlockLines) > 0 {
		closeBlock()
	}

	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	idx := strings.Index(line, codeBar)
	if idx < 0 {
		return line
	}

	after := idx + len(codeBar)
	if after < len(line) && line[after] == ' ' {
		after++
	}
	if after < len(line) {
		return line[after:]
	}
	return ""
}

// renderMarkdownAsync renders one bot answer for a viewport of the given width
func renderMarkdownAsync(messageIndex int, content string, width int) tea.Cmd {
	return func() tea.Msg {
		startTime := time.Now()

		lineWidth := width
		if lineWidth < 24 {
			lineWidth = defaultWidth
		}

		content = preprocessLinks(content)

		// Autolink stays disabled so plain URLs are left for the terminal to detect
		customExt := markdown.Extensions() &^ parser.Autolink
		p := parser.NewWithExtensions(customExt)
		r := markdown.NewRenderer(lineWidth-4, 0)
		doc := p.Parse([]byte(content))
		rendered := gomarkdown.Render(doc, r)

		processed := postProcessMarkdown(string(rendered), lineWidth)

		config.DebugLog.Debug("[UI] markdown rendered",
			zap.Int("message", messageIndex),
			zap.Int("chars", len(content)),
			zap.Duration("elapsed", time.Since(startTime)))

		return markdownRenderedMsg{
			MessageIndex: messageIndex,
			Width:        width,
			Rendered:     processed,
		}
	}
}

// queueMarkdownRenders returns render commands for every answer not yet cached
func (a AppView) queueMarkdownRenders() tea.Cmd {
	var cmds []tea.Cmd
	for i, msg := range a.store.History() {
		if msg.Sender != model.SenderBot || msg.Failed {
			continue
		}
		if _, ok := a.rendered[i]; ok {
			continue
		}
		cmds = append(cmds, renderMarkdownAsync(i, msg.Text, a.renderedWidth))
	}
	return tea.Batch(cmds...)
}

// wordWrapWithIndent wraps text to maxWidth while preserving indentation for continuation lines
func wordWrapWithIndent(text string, prefix string, maxWidth int) string {
	prefixLen := runewidth.StringWidth(stripANSI(prefix))
	availableWidth := maxWidth - prefixLen

	if availableWidth <= 0 {
		return prefix + text + "\n"
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return prefix + "\n"
	}

	var result strings.Builder
	var currentLine strings.Builder
	currentWidth := 0
	indent := strings.Repeat(" ", prefixLen)
	isFirstLine := true

	flush := func() {
		if isFirstLine {
			result.WriteString(prefix)
			isFirstLine = false
		} else {
			result.WriteString(indent)
		}
		result.WriteString(currentLine.String())
		result.WriteString("\n")
		currentLine.Reset()
		currentWidth = 0
	}

	for _, word := range words {
		wordWidth := runewidth.StringWidth(word)
		testWidth := currentWidth + wordWidth
		if currentWidth > 0 {
			testWidth++ // Space before word
		}

		if testWidth > availableWidth && currentWidth > 0 {
			flush()
		}

		if currentWidth > 0 {
			currentLine.WriteString(" ")
			currentWidth++
		}
		currentLine.WriteString(word)
		currentWidth += wordWidth
	}

	if currentWidth > 0 {
		flush()
	}

	return result.String()
}

// stripANSI removes ANSI escape codes for accurate length calculation
func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}
