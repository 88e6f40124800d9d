package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"wildwise/model"
)

// OpenAIAnswerer answers with the OpenAI chat completions API.
// It uses the official OpenAI Go SDK.
type OpenAIAnswerer struct {
	client       openai.Client
	model        string
	systemPrompt string
}

// NewOpenAIAnswerer creates a new OpenAI answerer.
//
// Parameters:
//   - baseURL: OpenAI API base URL (default: "https://api.openai.com/v1")
//   - apiKey: OpenAI API key (required)
//   - model: Model to use (default: "gpt-4o-mini")
//
// Returns an error if the API key is missing.
func NewOpenAIAnswerer(baseURL, apiKey, model, systemPrompt string, httpClient *http.Client) (*OpenAIAnswerer, error) {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "gpt-4o-mini" // Default to affordable model
	}

	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &OpenAIAnswerer{
		client:       openai.NewClient(opts...),
		model:        model,
		systemPrompt: Config{SystemPrompt: systemPrompt}.systemPrompt(),
	}, nil
}

// Answer implements model.Answerer with a single non-streamed completion.
func (a *OpenAIAnswerer) Answer(ctx context.Context, req model.AnswerRequest) (*model.AnswerResponse, error) {
	params := openai.ChatCompletionNewParams{
		Messages: ConvertToOpenAIMessages(a.systemPrompt, ToChatTurns(req.ChatHistory, req.Query)),
		Model:    openai.ChatModel(a.model),
	}

	completion, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("OpenAI completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: no completion choices", ErrMalformedResponse)
	}

	return &model.AnswerResponse{Answer: strings.TrimSpace(completion.Choices[0].Message.Content)}, nil
}

// Name implements model.Answerer.
func (a *OpenAIAnswerer) Name() string {
	return string(BackendOpenAI)
}

// Model returns the model used for answers
func (a *OpenAIAnswerer) Model() string {
	return a.model
}

// Ping implements Pinger by attempting to list models.
func (a *OpenAIAnswerer) Ping(ctx context.Context) error {
	if _, err := a.client.Models.List(ctx); err != nil {
		return fmt.Errorf("OpenAI ping failed: %w", err)
	}
	return nil
}
