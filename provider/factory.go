package provider

import (
	"fmt"

	"wildwise/model"
)

// NewAnswerer creates an answering backend based on configuration.
//
// This is the centralized factory function for every backend type. It
// dispatches on the Config.Type field; an empty type selects the WildWise
// answering service.
//
// Returns an error if:
//   - The backend type is unknown
//   - The backend-specific constructor fails (invalid URL, missing API key)
//
// Example (Ollama):
//
//	cfg := provider.Config{
//	    Type:    provider.BackendOllama,
//	    BaseURL: "http://localhost:11434",
//	    Model:   "llama3.1",
//	}
//	a, err := provider.NewAnswerer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewAnswerer(cfg Config) (model.Answerer, error) {
	var (
		a   model.Answerer
		err error
	)

	// a stays a nil interface unless the constructor succeeded
	switch cfg.Type {
	case BackendWildwise, "":
		var w *WildwiseAnswerer
		if w, err = NewWildwiseAnswerer(cfg.BaseURL, cfg.HTTPClient); err == nil {
			a = w
		}
	case BackendOllama:
		var o *OllamaAnswerer
		if o, err = NewOllamaAnswerer(cfg.BaseURL, cfg.Model, cfg.SystemPrompt, cfg.HTTPClient); err == nil {
			a = o
		}
	case BackendOpenAI:
		var o *OpenAIAnswerer
		if o, err = NewOpenAIAnswerer(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.SystemPrompt, cfg.HTTPClient); err == nil {
			a = o
		}
	case BackendAnthropic:
		var c *AnthropicAnswerer
		if c, err = NewAnthropicAnswerer(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.SystemPrompt, cfg.HTTPClient); err == nil {
			a = c
		}
	default:
		err = fmt.Errorf("unknown backend type: %s", cfg.Type)
	}

	if err != nil {
		return nil, err
	}
	return a, nil
}

// ParseBackendType converts a configured backend name to a BackendType.
//
// Mappings:
//   - "" and "wildwise" → BackendWildwise
//   - "ollama" → BackendOllama
//   - "openai" → BackendOpenAI
//   - "anthropic" and "claude" → BackendAnthropic
//
// For unknown names, returns an error.
func ParseBackendType(name string) (BackendType, error) {
	switch name {
	case "", "wildwise":
		return BackendWildwise, nil
	case "ollama":
		return BackendOllama, nil
	case "openai":
		return BackendOpenAI, nil
	case "anthropic", "claude":
		return BackendAnthropic, nil
	default:
		return "", fmt.Errorf("unknown backend type: %s", name)
	}
}
