package ui

// markdownRenderedMsg delivers the terminal rendering of one bot answer
type markdownRenderedMsg struct {
	MessageIndex int
	Width        int // viewport width the answer was rendered for
	Rendered     string
}

// flashTickMsg advances the search-result highlight animation
type flashTickMsg struct{}

// yankedMsg reports the outcome of a clipboard copy
type yankedMsg struct {
	What string
	Err  error
}
