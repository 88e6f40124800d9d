package model

import (
	"errors"

	"go.uber.org/zap"
)

// CaptureState tracks whether a speech activation currently owns the microphone
type CaptureState int

const (
	CaptureIdle CaptureState = iota
	CaptureListening
)

func (s CaptureState) String() string {
	if s == CaptureListening {
		return "listening"
	}
	return "idle"
}

// HistoryObserver is notified with a snapshot of the full history after every append
type HistoryObserver func(history []Message)

// Store owns the conversation state of one session: the ordered history, the
// query draft, the capture state and the in-flight flag.
//
// Store is not safe for concurrent use. All mutations are expected to happen on
// the event loop goroutine (bubbletea's Update, or the headless ask loop);
// tea.Cmd functions must only work on snapshots.
type Store struct {
	history   []Message
	draft     string
	capture   CaptureState
	inFlight  bool
	observers []HistoryObserver

	persister HistoryPersister
	log       *zap.Logger
}

// NewStore creates a store with an empty history. When persister is non-nil it
// is registered as the first history observer, so every append re-persists the
// full history exactly once.
func NewStore(persister HistoryPersister, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Store{
		history:   []Message{},
		persister: persister,
		log:       log,
	}

	if persister != nil {
		s.OnHistoryChange(s.persist)
	}

	return s
}

// LoadPersisted replaces the in-memory history with the last persisted one.
// A missing or unreadable history yields an empty history; nothing is returned
// to the caller.
func (s *Store) LoadPersisted() {
	s.history = []Message{}
	if s.persister == nil {
		return
	}

	history, err := s.persister.Load()
	if err != nil {
		if !errors.Is(err, ErrNoHistory) {
			s.log.Warn("[Store] failed to load persisted history, starting empty", zap.Error(err))
		}
		return
	}

	s.history = cloneHistory(history)
	s.log.Debug("[Store] loaded persisted history", zap.Int("messages", len(s.history)))
}

// OnHistoryChange registers an observer called after every append
func (s *Store) OnHistoryChange(fn HistoryObserver) {
	if fn == nil {
		return
	}
	s.observers = append(s.observers, fn)
}

// Append pushes a message to the end of the history and notifies observers
func (s *Store) Append(msg Message) {
	s.history = append(s.history, msg.clone())

	for _, fn := range s.observers {
		fn(s.History())
	}
}

// History returns a copy of the full history in submission order
func (s *Store) History() []Message {
	return cloneHistory(s.history)
}

// Len returns the number of messages in the history
func (s *Store) Len() int {
	return len(s.history)
}

// Last returns the most recent message, if any
func (s *Store) Last() (Message, bool) {
	if len(s.history) == 0 {
		return Message{}, false
	}
	return s.history[len(s.history)-1].clone(), true
}

// Draft returns the query the user is composing
func (s *Store) Draft() string {
	return s.draft
}

// SetDraft overwrites the draft wholesale
func (s *Store) SetDraft(text string) {
	s.draft = text
}

// CaptureState returns the current speech capture state
func (s *Store) CaptureState() CaptureState {
	return s.capture
}

// SetCaptureState records the speech capture state
func (s *Store) SetCaptureState(state CaptureState) {
	s.capture = state
}

// InFlight reports whether a submission is waiting for its response
func (s *Store) InFlight() bool {
	return s.inFlight
}

func (s *Store) setInFlight(v bool) {
	s.inFlight = v
}

// persist is the persistence observer; save failures are logged and swallowed
func (s *Store) persist(history []Message) {
	if err := s.persister.Save(history); err != nil {
		s.log.Warn("[Store] failed to persist history", zap.Error(err), zap.Int("messages", len(history)))
	}
}
