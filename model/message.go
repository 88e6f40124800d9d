package model

import "time"

// Sender identifies who produced a message in the conversation
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ErrorReply is the text of the synthetic bot message appended when a turn fails
const ErrorReply = "An error occurred. Please try again."

// ResearchItem is a source cited by the answering service
type ResearchItem struct {
	Title    string `json:"title" yaml:"title"`
	URL      string `json:"url" yaml:"url"`
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`
}

// Message represents one entry of the conversation history.
//
// Research is nil when the answer cited nothing and non-nil (possibly empty)
// when the service returned a research list; the distinction survives
// persistence.
type Message struct {
	Text      string         `json:"text" yaml:"text"`
	Sender    Sender         `json:"sender" yaml:"sender"`
	Research  []ResearchItem `json:"research" yaml:"research,omitempty"`
	ImageURL  string         `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Failed    bool           `json:"failed,omitempty" yaml:"failed,omitempty"`
	Timestamp time.Time      `json:"timestamp,omitzero" yaml:"timestamp,omitempty"`
}

// NewUserMessage creates a user message stamped with the current time
func NewUserMessage(text string) Message {
	return Message{
		Text:      text,
		Sender:    SenderUser,
		Timestamp: time.Now(),
	}
}

// NewBotMessage creates a bot message from a successful answer
func NewBotMessage(resp AnswerResponse) Message {
	return Message{
		Text:      resp.Answer,
		Sender:    SenderBot,
		Research:  cloneResearch(resp.Research),
		ImageURL:  resp.ImageURL,
		Timestamp: time.Now(),
	}
}

// NewErrorMessage creates the synthetic bot message used for failed turns
func NewErrorMessage() Message {
	return Message{
		Text:      ErrorReply,
		Sender:    SenderBot,
		Failed:    true,
		Timestamp: time.Now(),
	}
}

// HasResearch reports whether the service returned a research list
func (m Message) HasResearch() bool {
	return m.Research != nil
}

// clone returns a deep copy so stored messages cannot be mutated through snapshots
func (m Message) clone() Message {
	m.Research = cloneResearch(m.Research)
	return m
}

func cloneResearch(items []ResearchItem) []ResearchItem {
	if items == nil {
		return nil
	}
	out := make([]ResearchItem, len(items))
	copy(out, items)
	return out
}

func cloneHistory(history []Message) []Message {
	out := make([]Message, len(history))
	for i, msg := range history {
		out[i] = msg.clone()
	}
	return out
}
