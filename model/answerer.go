package model

import (
	"context"
	"errors"
)

// AnswerRequest is the payload sent to the answering service for one turn
type AnswerRequest struct {
	Query       string    `json:"query"`
	ChatHistory []Message `json:"chatHistory"`
}

// AnswerResponse is a well-formed reply from the answering service
type AnswerResponse struct {
	Answer   string
	Research []ResearchItem // nil when the service sent no research field
	ImageURL string
}

// Answerer abstracts the remote answering boundary.
//
// This interface is defined in the model package (not provider package) to avoid
// import cycles: provider implementations import model for the message types, and
// the turn controller uses Answerer without importing the provider package.
//
// Any transport failure, non-success status or malformed body must be returned
// as an error; the turn controller treats every error the same way.
type Answerer interface {
	Answer(ctx context.Context, req AnswerRequest) (*AnswerResponse, error)

	// Name identifies the backend in logs and the status bar
	Name() string
}

// ErrNoAnswerer is reported when a turn is submitted without a configured backend
var ErrNoAnswerer = errors.New("no answering backend configured")

// HistoryPersister is the persistence boundary for the session history.
// Load returns ErrNoHistory when nothing has been saved under the session key.
type HistoryPersister interface {
	Save(history []Message) error
	Load() ([]Message, error)
}

// ErrNoHistory is returned by HistoryPersister.Load when no history exists
var ErrNoHistory = errors.New("no persisted history")
