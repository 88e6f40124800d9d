package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"wildwise/model"
)

// AnthropicAnswerer answers with Anthropic's Messages API.
// It uses the official Anthropic Go SDK.
type AnthropicAnswerer struct {
	client       *anthropic.Client
	model        anthropic.Model
	systemPrompt string
}

// NewAnthropicAnswerer creates a new Anthropic answerer.
//
// Parameters:
//   - baseURL: Anthropic API base URL (default: "https://api.anthropic.com")
//   - apiKey: Anthropic API key (required)
//   - model: Model to use (default: "claude-sonnet-4-5-20250929")
//
// Returns an error if the API key is missing.
func NewAnthropicAnswerer(baseURL, apiKey, model, systemPrompt string, httpClient *http.Client) (*AnthropicAnswerer, error) {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	anthropicModel := anthropic.ModelClaudeSonnet4_5_20250929
	if model != "" {
		anthropicModel = anthropic.Model(model)
	}

	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	client := anthropic.NewClient(opts...)

	return &AnthropicAnswerer{
		client:       &client,
		model:        anthropicModel,
		systemPrompt: Config{SystemPrompt: systemPrompt}.systemPrompt(),
	}, nil
}

// Answer implements model.Answerer with a single non-streamed message.
func (a *AnthropicAnswerer) Answer(ctx context.Context, req model.AnswerRequest) (*model.AnswerResponse, error) {
	messages, system := convertToAnthropicMessages(a.systemPrompt, ToChatTurns(req.ChatHistory, req.Query))

	params := anthropic.MessageNewParams{
		Model:     a.model,
		Messages:  messages,
		MaxTokens: 4096, // Required by Anthropic API
	}
	if len(system) > 0 {
		params.System = system
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("Anthropic request failed: %w", err)
	}

	var answer strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			answer.WriteString(text.Text)
		}
	}
	if answer.Len() == 0 {
		return nil, fmt.Errorf("%w: no text content", ErrMalformedResponse)
	}

	return &model.AnswerResponse{Answer: strings.TrimSpace(answer.String())}, nil
}

// Name implements model.Answerer.
func (a *AnthropicAnswerer) Name() string {
	return string(BackendAnthropic)
}

// Model returns the model used for answers
func (a *AnthropicAnswerer) Model() string {
	return string(a.model)
}

// Ping implements Pinger by attempting a minimal request.
func (a *AnthropicAnswerer) Ping(ctx context.Context) error {
	// Anthropic doesn't have a ping/health endpoint, so we make a minimal request
	_, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	if err != nil {
		return fmt.Errorf("Anthropic ping failed: %w", err)
	}
	return nil
}
