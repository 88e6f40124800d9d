package speech

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"wildwise/model"
)

// CaptureSink receives the outcome of a capture activation. model.Store
// implements it.
type CaptureSink interface {
	SetDraft(text string)
	SetCaptureState(state model.CaptureState)
}

// EventMsg carries one recognizer event back into the event loop
type EventMsg struct {
	ActivationID string
	Event        Event
}

// Adapter owns a Recognizer and drives the capture state of a CaptureSink.
//
// Like model.Store it is only used from the event loop goroutine; the
// commands it returns do nothing but wait on the recognizer channel.
type Adapter struct {
	recognizer Recognizer
	sink       CaptureSink
	opts       Options
	log        *zap.Logger

	activation string // id of the open activation, "" when none
	events     <-chan Event
}

// AdapterOption configures an Adapter
type AdapterOption func(*Adapter)

// WithLanguage sets the recognition language
func WithLanguage(lang string) AdapterOption {
	return func(a *Adapter) {
		a.opts.Language = lang
	}
}

// WithLogger sets the sink for capture diagnostics and errors
func WithLogger(log *zap.Logger) AdapterOption {
	return func(a *Adapter) {
		if log != nil {
			a.log = log
		}
	}
}

// NewAdapter creates an adapter. A nil recognizer yields an adapter that is
// never available.
func NewAdapter(recognizer Recognizer, sink CaptureSink, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		recognizer: recognizer,
		sink:       sink,
		opts:       Options{Language: DefaultLanguage},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Available reports whether the recognizer can be used
func (a *Adapter) Available() bool {
	return a.recognizer != nil && a.recognizer.Available()
}

// Active reports whether an activation is open
func (a *Adapter) Active() bool {
	return a.activation != ""
}

// Activate opens a capture activation and returns the command that waits for
// its first event. It returns nil when capture is unavailable, when an
// activation is already open, or when the recognizer failed to start.
func (a *Adapter) Activate(ctx context.Context) tea.Cmd {
	if !a.Available() {
		return nil
	}
	if a.Active() {
		a.log.Debug("[Speech] activation ignored: capture already open", zap.String("activation", a.activation))
		return nil
	}

	id := uuid.NewString()
	a.sink.SetCaptureState(model.CaptureListening)

	events, err := a.recognizer.Start(ctx, a.opts)
	if err != nil {
		a.reportError(id, Event{Kind: EventError, Code: ErrorAudioCapture, Err: err})
		a.sink.SetCaptureState(model.CaptureIdle)
		return nil
	}

	a.activation = id
	a.events = events
	a.log.Debug("[Speech] listening", zap.String("activation", id), zap.String("language", a.opts.language()))

	return waitForEvent(id, events)
}

// HandleEvent applies one recognizer event and returns the command that waits
// for the next one, or nil once the activation has ended. Events from any
// activation other than the open one are ignored.
func (a *Adapter) HandleEvent(msg EventMsg) tea.Cmd {
	if msg.ActivationID == "" || msg.ActivationID != a.activation {
		a.log.Debug("[Speech] stale event ignored",
			zap.String("activation", msg.ActivationID),
			zap.Stringer("kind", msg.Event.Kind))
		return nil
	}

	switch msg.Event.Kind {
	case EventResult:
		if transcript, ok := msg.Event.Transcript(); ok {
			a.sink.SetDraft(transcript)
			a.log.Debug("[Speech] transcript delivered", zap.String("activation", msg.ActivationID), zap.Int("length", len(transcript)))
		}
		a.sink.SetCaptureState(model.CaptureIdle)

	case EventError:
		a.reportError(msg.ActivationID, msg.Event)
		a.sink.SetCaptureState(model.CaptureIdle)

	case EventEnd:
		a.sink.SetCaptureState(model.CaptureIdle)
		a.activation = ""
		a.events = nil
		return nil
	}

	return waitForEvent(msg.ActivationID, a.events)
}

// Capture runs one activation to completion on the calling goroutine. It is
// the inline equivalent of feeding Activate's commands through the event loop.
func (a *Adapter) Capture(ctx context.Context) error {
	if !a.Available() {
		return ErrUnavailable
	}

	cmd := a.Activate(ctx)
	for cmd != nil {
		msg, ok := cmd().(EventMsg)
		if !ok {
			break
		}
		cmd = a.HandleEvent(msg)
	}
	return nil
}

func (a *Adapter) reportError(id string, ev Event) {
	a.log.Warn("[Speech] recognition failed",
		zap.String("activation", id),
		zap.String("code", string(ev.Code)),
		zap.Error(ev.Err))
}

// waitForEvent blocks until the recognizer delivers its next event. A channel
// closed without an end event is treated as one.
func waitForEvent(id string, events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			ev = Event{Kind: EventEnd}
		}
		return EventMsg{ActivationID: id, Event: ev}
	}
}
