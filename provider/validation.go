package provider

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"wildwise/model"
)

// BackendStatusMsg is sent when a backend reachability check completes
type BackendStatusMsg struct {
	Backend string
	Online  bool
	Err     error
}

// PingBackend checks whether the answering backend is reachable. Backends
// that do not implement Pinger are reported online. Used by the UI at
// startup to show the backend status; a failed check never blocks a turn.
func PingBackend(ctx context.Context, a model.Answerer) tea.Cmd {
	return func() tea.Msg {
		if a == nil {
			return BackendStatusMsg{Err: model.ErrNoAnswerer}
		}

		p, ok := a.(Pinger)
		if !ok {
			return BackendStatusMsg{Backend: a.Name(), Online: true}
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			return BackendStatusMsg{Backend: a.Name(), Err: err}
		}
		return BackendStatusMsg{Backend: a.Name(), Online: true}
	}
}
