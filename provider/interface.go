// Package provider implements the answering boundary of WildWise.
//
// Every backend implements model.Answerer: it receives the query together
// with the full conversation history and returns one structured answer. The
// rest of the application never sees backend-specific types.
//
// # Backends
//
//   - WildwiseAnswerer posts to a WildWise answering service (POST /api/chat)
//     which already returns research items and an image URL
//   - OllamaAnswerer, OpenAIAnswerer and AnthropicAnswerer ask an LLM directly
//     and may be wrapped by an Enricher that adds research papers and an image
//   - NewAnswerer() builds the configured backend from a Config
//
// # Type Conversions
//
// LLM backends replay the history as role messages. User messages become
// "user" turns, bot messages become "assistant" turns, and failed replies
// are skipped. See conversions.go.
//
// # Usage
//
//	cfg := provider.Config{
//	    Type:    provider.BackendWildwise,
//	    BaseURL: "http://localhost:5000",
//	}
//	a, err := provider.NewAnswerer(cfg)
//	if err != nil {
//	    // handle error
//	}
//	resp, err := a.Answer(ctx, model.AnswerRequest{Query: "Where do snow leopards live?"})
package provider

import (
	"context"
	"net/http"
)

// BackendType identifies the answering backend implementation.
type BackendType string

const (
	BackendWildwise  BackendType = "wildwise"
	BackendOllama    BackendType = "ollama"
	BackendOpenAI    BackendType = "openai"
	BackendAnthropic BackendType = "anthropic"
)

// IsLLM reports whether the backend is a raw LLM (no research of its own)
func (t BackendType) IsLLM() bool {
	switch t {
	case BackendOllama, BackendOpenAI, BackendAnthropic:
		return true
	default:
		return false
	}
}

// DefaultSystemPrompt frames LLM backends as the WildWise research assistant.
const DefaultSystemPrompt = "You are WildWise, an AI assistant trained in scientific research on wildlife, " +
	"biodiversity and conservation. Give well-structured, evidence-based answers: a concise summary, " +
	"detailed explanations supported by studies or conservation programmes, historical trends and " +
	"current challenges, and actionable recommendations. Avoid unsupported claims and state the " +
	"limits of the available data when uncertain. Write in a formal yet accessible tone."

// Config holds backend-specific configuration.
type Config struct {
	Type         BackendType
	BaseURL      string
	Model        string
	APIKey       string // OpenAI/Anthropic only
	SystemPrompt string // LLM backends only; DefaultSystemPrompt when empty
	HTTPClient   *http.Client
}

func (c Config) systemPrompt() string {
	if c.SystemPrompt == "" {
		return DefaultSystemPrompt
	}
	return c.SystemPrompt
}

// Pinger is implemented by backends that support a lightweight reachability check.
type Pinger interface {
	Ping(ctx context.Context) error
}
