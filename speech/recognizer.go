// Package speech bridges a single-shot speech-to-text recognizer to the
// session draft. One activation produces at most one transcript.
package speech

import (
	"context"
	"errors"
)

// DefaultLanguage is used when Options.Language is empty
const DefaultLanguage = "en-US"

// ErrUnavailable is returned by recognizers that cannot run on this system
var ErrUnavailable = errors.New("speech capture unavailable")

// EventKind names the three transitions of a capture activation
type EventKind int

const (
	EventResult EventKind = iota
	EventError
	EventEnd
)

func (k EventKind) String() string {
	switch k {
	case EventResult:
		return "result"
	case EventError:
		return "error"
	case EventEnd:
		return "end"
	default:
		return "unknown"
	}
}

// ErrorCode classifies recognition failures
type ErrorCode string

const (
	ErrorNoSpeech     ErrorCode = "no-speech"
	ErrorAudioCapture ErrorCode = "audio-capture"
	ErrorAborted      ErrorCode = "aborted"
)

// Alternative is one candidate transcription
type Alternative struct {
	Transcript string
	Confidence float64 // 0 when the engine does not report one
}

// Result groups the candidate transcriptions of one recognized utterance
type Result struct {
	Alternatives []Alternative
}

// Event is delivered by a Recognizer during an activation
type Event struct {
	Kind    EventKind
	Results []Result  // EventResult only
	Code    ErrorCode // EventError only
	Err     error     // EventError only, may be nil
}

// Transcript returns the first candidate of the first result
func (e Event) Transcript() (string, bool) {
	if e.Kind != EventResult || len(e.Results) == 0 || len(e.Results[0].Alternatives) == 0 {
		return "", false
	}
	return e.Results[0].Alternatives[0].Transcript, true
}

// Options configures one recognition attempt. Recognition is always
// single-shot with final results only.
type Options struct {
	Language        string
	MaxAlternatives int // 0 keeps every candidate
}

func (o Options) language() string {
	if o.Language == "" {
		return DefaultLanguage
	}
	return o.Language
}

// Recognizer is a platform speech-to-text capability.
//
// Start begins one recognition attempt. The returned channel delivers at most
// one of EventResult or EventError, then exactly one EventEnd, then is
// closed. Start must not block on audio capture.
type Recognizer interface {
	Available() bool
	Start(ctx context.Context, opts Options) (<-chan Event, error)
}
