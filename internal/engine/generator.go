package engine

import (
	"context"
	"time"
)

// Generator binds an Engine to a model and a per-call timeout. A nil
// *Generator, or one without an engine, returns ErrNotConfigured.
type Generator struct {
	eng     Engine
	model   string
	timeout time.Duration
}

// NewGenerator returns a Generator for eng/model. A zero timeout means the
// caller's context alone bounds each call.
func NewGenerator(eng Engine, model string, timeout time.Duration) *Generator {
	return &Generator{eng: eng, model: model, timeout: timeout}
}

// Configured reports whether calls can reach a real backend.
func (g *Generator) Configured() bool {
	if g == nil || g.eng == nil {
		return false
	}
	_, off := g.eng.(Disabled)
	return !off
}

// Model returns the bound model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// Generate sends an optional system prompt and a user prompt.
func (g *Generator) Generate(ctx context.Context, system, prompt string, schema *Schema) (string, error) {
	if !g.Configured() {
		return "", ErrNotConfigured
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	msgs := make([]Message, 0, 2)
	if system != "" {
		msgs = append(msgs, Message{Role: "system", Content: system})
	}
	msgs = append(msgs, Message{Role: "user", Content: prompt})
	return g.eng.Chat(ctx, g.model, msgs, schema)
}
