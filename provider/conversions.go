package provider

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"

	"wildwise/model"
)

// Role names shared by every LLM chat API
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one provider-agnostic chat message.
type ChatTurn struct {
	Role    string
	Content string
}

// ToChatTurns converts a conversation history into role messages.
//
// User messages map to "user" and bot messages to "assistant". Failed replies
// carry no information for the model and are skipped. If the history does not
// already end with the query as a user message (callers normally include it),
// the query is appended.
//
// Example:
//
//	history := []model.Message{
//	    {Sender: model.SenderUser, Text: "Hello"},
//	    {Sender: model.SenderBot, Text: model.ErrorReply, Failed: true},
//	    {Sender: model.SenderUser, Text: "Hello?"},
//	}
//	turns := ToChatTurns(history, "Hello?")
//	// turns == [{user Hello} {user Hello?}]
func ToChatTurns(history []model.Message, query string) []ChatTurn {
	turns := make([]ChatTurn, 0, len(history)+1)
	for _, msg := range history {
		if msg.Failed {
			continue
		}
		role := RoleUser
		if msg.Sender == model.SenderBot {
			role = RoleAssistant
		}
		turns = append(turns, ChatTurn{Role: role, Content: msg.Text})
	}

	if n := len(turns); query != "" && (n == 0 || turns[n-1].Role != RoleUser || turns[n-1].Content != query) {
		turns = append(turns, ChatTurn{Role: RoleUser, Content: query})
	}
	return turns
}

// ConvertToOllamaMessages converts chat turns to Ollama api.Message, with the
// system prompt first.
func ConvertToOllamaMessages(systemPrompt string, turns []ChatTurn) []api.Message {
	result := make([]api.Message, 0, len(turns)+1)
	if systemPrompt != "" {
		result = append(result, api.Message{Role: RoleSystem, Content: systemPrompt})
	}
	for _, turn := range turns {
		result = append(result, api.Message{Role: turn.Role, Content: turn.Content})
	}
	return result
}

// ConvertToOpenAIMessages converts chat turns to OpenAI message params, with
// the system prompt first.
func ConvertToOpenAIMessages(systemPrompt string, turns []ChatTurn) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	if systemPrompt != "" {
		result = append(result, openai.SystemMessage(systemPrompt))
	}
	for _, turn := range turns {
		switch turn.Role {
		case RoleAssistant:
			result = append(result, openai.AssistantMessage(turn.Content))
		case RoleSystem:
			result = append(result, openai.SystemMessage(turn.Content))
		default:
			result = append(result, openai.UserMessage(turn.Content))
		}
	}
	return result
}

// convertToAnthropicMessages converts chat turns to Anthropic format.
// Anthropic takes the system prompt as a separate parameter, so system turns
// are returned as text blocks.
func convertToAnthropicMessages(systemPrompt string, turns []ChatTurn) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var systemBlocks []anthropic.TextBlockParam
	if systemPrompt != "" {
		systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: systemPrompt})
	}

	msgs := make([]anthropic.MessageParam, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case RoleSystem:
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: turn.Content})
		case RoleAssistant:
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Content)))
		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
		}
	}
	return msgs, systemBlocks
}
