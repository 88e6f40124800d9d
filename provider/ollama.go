package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"wildwise/model"
	"wildwise/ollama"
)

// OllamaAnswerer answers with a local Ollama model.
//
// It replays the conversation as role messages behind the system prompt and
// returns an answer-only response; research and images come from an Enricher
// when one wraps this answerer.
type OllamaAnswerer struct {
	client       *ollama.Client
	systemPrompt string
}

// NewOllamaAnswerer creates a new Ollama answerer.
//
// Parameters:
//   - baseURL: The Ollama server URL. If empty, defaults to "http://localhost:11434".
//   - model: The model name. If empty, defaults to "llama3.1:latest".
//   - systemPrompt: Prepended to every request; DefaultSystemPrompt when empty.
//
// Returns an error if the baseURL is invalid.
//
// Example:
//
//	a, err := NewOllamaAnswerer("http://localhost:11434", "llama3.1", "", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewOllamaAnswerer(baseURL, model, systemPrompt string, httpClient *http.Client) (*OllamaAnswerer, error) {
	client, err := ollama.NewClient(baseURL, model, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaAnswerer{
		client:       client,
		systemPrompt: Config{SystemPrompt: systemPrompt}.systemPrompt(),
	}, nil
}

// Answer implements model.Answerer.
func (a *OllamaAnswerer) Answer(ctx context.Context, req model.AnswerRequest) (*model.AnswerResponse, error) {
	messages := ConvertToOllamaMessages(a.systemPrompt, ToChatTurns(req.ChatHistory, req.Query))

	reply, err := a.client.Chat(ctx, messages)
	if err != nil {
		return nil, err
	}

	return &model.AnswerResponse{Answer: strings.TrimSpace(reply)}, nil
}

// Name implements model.Answerer.
func (a *OllamaAnswerer) Name() string {
	return string(BackendOllama)
}

// Model returns the model used for answers
func (a *OllamaAnswerer) Model() string {
	return a.client.GetModel()
}

// Ping implements Pinger (direct passthrough).
func (a *OllamaAnswerer) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
