package engine

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicEngine generates text with the Anthropic Messages API.
type AnthropicEngine struct {
	client    anthropic.Client
	maxTokens int64
}

// NewAnthropicEngine builds a client for apiKey. baseURL overrides the API
// endpoint when non-empty.
func NewAnthropicEngine(apiKey, baseURL string, maxTokens int) *AnthropicEngine {
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(2)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicEngine{client: anthropic.NewClient(opts...), maxTokens: int64(maxTokens)}
}

func (e *AnthropicEngine) Name() string { return "anthropic" }

func (e *AnthropicEngine) Chat(ctx context.Context, model string, messages []Message, jsonSchema *Schema) (string, error) {
	var system []anthropic.TextBlockParam
	msgs := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case "assistant":
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	if jsonSchema != nil {
		system = append(system, anthropic.TextBlockParam{Text: schemaInstruction(jsonSchema)})
	}

	resp, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: e.maxTokens,
		System:    system,
		Messages:  msgs,
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return b.String(), nil
}

// schemaInstruction renders s as a system instruction for backends without a
// native structured-output switch.
func schemaInstruction(s *Schema) string {
	raw, err := json.Marshal(s)
	if err != nil {
		return "Respond with a single JSON object and nothing else."
	}
	return "Respond with a single JSON object matching this JSON schema and nothing else: " + string(raw)
}
