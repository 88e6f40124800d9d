package provider

import (
	"testing"
)

func TestNewAnswerer(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		expectNil   bool
	}{
		{
			name:        "wildwise with defaults",
			config:      Config{},
			expectError: false,
			expectNil:   false,
		},
		{
			name: "ollama with custom config",
			config: Config{
				Type:    BackendOllama,
				BaseURL: "http://localhost:11434",
				Model:   "llama3.1",
			},
			expectError: false,
			expectNil:   false,
		},
		{
			name: "openai",
			config: Config{
				Type:   BackendOpenAI,
				Model:  "gpt-4o-mini",
				APIKey: "test-key",
			},
			expectError: false,
			expectNil:   false,
		},
		{
			name: "openai without key",
			config: Config{
				Type: BackendOpenAI,
			},
			expectError: true,
			expectNil:   true,
		},
		{
			name: "anthropic",
			config: Config{
				Type:   BackendAnthropic,
				APIKey: "test-key",
			},
			expectError: false,
			expectNil:   false,
		},
		{
			name: "anthropic without key",
			config: Config{
				Type: BackendAnthropic,
			},
			expectError: true,
			expectNil:   true,
		},
		{
			name: "wildwise with bad url",
			config: Config{
				Type:    BackendWildwise,
				BaseURL: "ftp://example.org",
			},
			expectError: true,
			expectNil:   true,
		},
		{
			name: "ollama with bad url",
			config: Config{
				Type:    BackendOllama,
				BaseURL: "localhost:11434",
			},
			expectError: true,
			expectNil:   true,
		},
		{
			name: "unknown backend type",
			config: Config{
				Type: BackendType("unknown"),
			},
			expectError: true,
			expectNil:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answerer, err := NewAnswerer(tt.config)

			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if tt.expectNil && answerer != nil {
				t.Errorf("expected nil answerer, got non-nil %T", answerer)
			}
			if !tt.expectNil && answerer == nil {
				t.Error("expected non-nil answerer, got nil")
			}
		})
	}
}

// TestFactoryDefaultsToWildwise verifies that an empty type selects the answering service
func TestFactoryDefaultsToWildwise(t *testing.T) {
	answerer, err := NewAnswerer(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ww, ok := answerer.(*WildwiseAnswerer)
	if !ok {
		t.Fatalf("expected *WildwiseAnswerer, got %T", answerer)
	}
	if ww.baseURL != DefaultWildwiseURL {
		t.Errorf("baseURL = %q, want %q", ww.baseURL, DefaultWildwiseURL)
	}
}

func TestLLMAnswerersUseDefaultSystemPrompt(t *testing.T) {
	a, err := NewOllamaAnswerer("", "", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.systemPrompt != DefaultSystemPrompt {
		t.Error("empty system prompt should fall back to DefaultSystemPrompt")
	}
	if a.Model() != "llama3.1:latest" {
		t.Errorf("Model() = %q, want default", a.Model())
	}
}

func TestParseBackendType(t *testing.T) {
	tests := []struct {
		input   string
		want    BackendType
		wantErr bool
	}{
		{"", BackendWildwise, false},
		{"wildwise", BackendWildwise, false},
		{"ollama", BackendOllama, false},
		{"openai", BackendOpenAI, false},
		{"anthropic", BackendAnthropic, false},
		{"claude", BackendAnthropic, false},
		{"huggingface", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBackendType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBackendType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBackendType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	if !BackendOllama.IsLLM() || BackendWildwise.IsLLM() {
		t.Error("IsLLM() misclassifies backends")
	}
}
