package engine

import (
	"context"
	"errors"
	"io"
)

// ErrNotConfigured is returned by the Disabled engine and by a Generator
// without a backend.
var ErrNotConfigured = errors.New("text generation not configured")

// Engine abstracts a text-generation backend (OpenAI-compatible APIs,
// Anthropic, Gemini or a local Ollama). Consumers such as ranking and team
// composition use this interface instead of depending on a concrete client.
type Engine interface {
	// Chat sends messages to the given model and returns the assistant's response.
	// When jsonSchema is non-nil, structured JSON output is requested.
	Chat(ctx context.Context, model string, messages []Message, jsonSchema *Schema) (string, error)

	// Name identifies the backend in logs.
	Name() string
}

// Disabled is the engine used when no provider is configured.
type Disabled struct{}

func (Disabled) Chat(context.Context, string, []Message, *Schema) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Name() string { return "none" }

// Close releases e's resources if it holds any.
func Close(e Engine) error {
	if c, ok := e.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
