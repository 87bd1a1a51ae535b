package engine

import (
	"context"
	"errors"

	"github.com/kalambet/hackmix/internal/proxy"
)

// OpenAIEngine talks to any OpenAI-compatible chat completion API.
type OpenAIEngine struct {
	client    *proxy.Client
	name      string
	maxTokens int
}

func NewOpenAIEngine(name, apiKey, baseURL string, maxTokens int) *OpenAIEngine {
	return &OpenAIEngine{client: proxy.NewClient(apiKey, baseURL), name: name, maxTokens: maxTokens}
}

func (e *OpenAIEngine) Name() string { return e.name }

func (e *OpenAIEngine) Chat(ctx context.Context, model string, messages []Message, jsonSchema *Schema) (string, error) {
	req := proxy.ChatRequest{
		Model:     model,
		Messages:  make([]proxy.Message, len(messages)),
		MaxTokens: e.maxTokens,
	}
	for i, m := range messages {
		req.Messages[i] = proxy.Message{Role: m.Role, Content: m.Content}
	}
	if jsonSchema != nil {
		req.ResponseFormat = &proxy.ResponseFormat{Type: "json_object"}
	}

	resp, err := e.client.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Content(), nil
}
