package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiEngine generates text with Google's Gemini API.
type GeminiEngine struct {
	client    *genai.Client
	maxTokens int32
}

func NewGeminiEngine(ctx context.Context, apiKey string, maxTokens int) (*GeminiEngine, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GeminiEngine{client: client, maxTokens: int32(maxTokens)}, nil
}

func (e *GeminiEngine) Name() string { return "gemini" }

func (e *GeminiEngine) Close() error { return e.client.Close() }

func (e *GeminiEngine) Chat(ctx context.Context, model string, messages []Message, jsonSchema *Schema) (string, error) {
	gm := e.client.GenerativeModel(model)
	if e.maxTokens > 0 {
		gm.SetMaxOutputTokens(e.maxTokens)
	}

	var system []genai.Part
	var parts []genai.Part
	for _, m := range messages {
		if m.Role == "system" {
			system = append(system, genai.Text(m.Content))
			continue
		}
		parts = append(parts, genai.Text(m.Content))
	}
	if jsonSchema != nil {
		gm.ResponseMIMEType = "application/json"
		system = append(system, genai.Text(schemaInstruction(jsonSchema)))
	}
	if len(system) > 0 {
		gm.SystemInstruction = &genai.Content{Parts: system}
	}

	resp, err := gm.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}
