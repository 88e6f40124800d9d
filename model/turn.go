package model

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// DefaultRequestTimeout bounds a single answering-service request
const DefaultRequestTimeout = 120 * time.Second

// TurnController runs the request/response cycle of one conversational turn
// against a Store. Submissions are serialized by the store's in-flight flag.
type TurnController struct {
	store    *Store
	answerer Answerer
	timeout  time.Duration
	ctx      context.Context
	log      *zap.Logger

	turn int // sequence number of the last accepted submission
}

// TurnOption configures a TurnController
type TurnOption func(*TurnController)

// WithTimeout sets the per-request timeout; zero disables it
func WithTimeout(d time.Duration) TurnOption {
	return func(c *TurnController) {
		c.timeout = d
	}
}

// WithContext sets the parent context for requests (cancelled on shutdown)
func WithContext(ctx context.Context) TurnOption {
	return func(c *TurnController) {
		c.ctx = ctx
	}
}

// WithLogger sets the logger used for turn diagnostics
func WithLogger(log *zap.Logger) TurnOption {
	return func(c *TurnController) {
		if log != nil {
			c.log = log
		}
	}
}

// NewTurnController creates a controller bound to store and answerer.
// A nil answerer is allowed: every turn then fails with the error reply.
func NewTurnController(store *Store, answerer Answerer, opts ...TurnOption) *TurnController {
	c := &TurnController{
		store:    store,
		answerer: answerer,
		timeout:  DefaultRequestTimeout,
		ctx:      context.Background(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Backend returns the answering backend name, or "" when none is configured
func (c *TurnController) Backend() string {
	if c.answerer == nil {
		return ""
	}
	return c.answerer.Name()
}

// Submit accepts the current draft as a new turn.
//
// It appends the user message, raises the in-flight flag and clears the draft,
// then returns a command that performs the request with the history snapshot
// taken right after the append. Submit returns nil (and changes nothing) when
// the trimmed draft is empty or a submission is already in flight.
func (c *TurnController) Submit() tea.Cmd {
	if c.store.InFlight() {
		c.log.Debug("[Turn] submit ignored: request in flight")
		return nil
	}

	query := strings.TrimSpace(c.store.Draft())
	if query == "" {
		return nil
	}

	c.store.Append(NewUserMessage(query))
	c.store.setInFlight(true)
	c.store.SetDraft("")
	c.turn++

	req := AnswerRequest{
		Query:       query,
		ChatHistory: c.store.History(),
	}
	turn := c.turn
	answerer := c.answerer
	parent := c.ctx
	timeout := c.timeout
	log := c.log

	log.Debug("[Turn] submitted",
		zap.Int("turn", turn),
		zap.Int("history", len(req.ChatHistory)))

	return func() tea.Msg {
		if answerer == nil {
			return AnswerMsg{Turn: turn, Err: ErrNoAnswerer}
		}

		ctx := parent
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(parent, timeout)
			defer cancel()
		}

		start := time.Now()
		resp, err := answerer.Answer(ctx, req)
		log.Debug("[Turn] answer received",
			zap.Int("turn", turn),
			zap.String("backend", answerer.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))

		return AnswerMsg{Turn: turn, Response: resp, Err: err}
	}
}

// HandleAnswer appends the bot (or error) message for the in-flight turn and
// reopens the submission gate. Answers for any other turn are ignored.
// It reports whether the message was applied.
func (c *TurnController) HandleAnswer(msg AnswerMsg) bool {
	if !c.store.InFlight() || msg.Turn != c.turn {
		c.log.Debug("[Turn] stale answer ignored", zap.Int("turn", msg.Turn), zap.Int("current", c.turn))
		return false
	}

	if msg.Err != nil || msg.Response == nil {
		c.log.Warn("[Turn] request failed", zap.Int("turn", msg.Turn), zap.Error(msg.Err))
		c.store.Append(NewErrorMessage())
	} else {
		c.store.Append(NewBotMessage(*msg.Response))
	}

	c.store.setInFlight(false)
	return true
}

// SubmitAndWait runs one full turn inline. It is used outside the bubbletea
// program, where the caller itself is the event loop. It returns false when
// the draft was not accepted.
func (c *TurnController) SubmitAndWait() bool {
	cmd := c.Submit()
	if cmd == nil {
		return false
	}

	if msg, ok := cmd().(AnswerMsg); ok {
		c.HandleAnswer(msg)
	}
	return true
}
