package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/kalambet/hackmix/internal/proxy"
)

// Provider names accepted by Detect.
const (
	ProviderNone       = "none"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderOllama     = "ollama"
)

// DetectConfig holds parameters for backend selection.
type DetectConfig struct {
	Provider  string
	BaseURL   string
	APIKey    string
	MaxTokens int
}

// Detect builds the Engine for cfg. An empty provider selects OpenAI when an
// API key is present and Disabled otherwise. Hosted providers without a key
// also yield Disabled so the pipeline degrades instead of failing.
func Detect(ctx context.Context, cfg DetectConfig) (Engine, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderOpenAI
	}
	if provider != ProviderOllama && provider != ProviderNone && cfg.APIKey == "" {
		return Disabled{}, nil
	}

	switch provider {
	case ProviderNone:
		return Disabled{}, nil
	case ProviderOpenAI:
		return NewOpenAIEngine(provider, cfg.APIKey, cfg.BaseURL, cfg.MaxTokens), nil
	case ProviderOpenRouter:
		base := cfg.BaseURL
		if base == "" {
			base = proxy.OpenRouterBaseURL
		}
		return NewOpenAIEngine(provider, cfg.APIKey, base, cfg.MaxTokens), nil
	case ProviderAnthropic:
		return NewAnthropicEngine(cfg.APIKey, cfg.BaseURL, cfg.MaxTokens), nil
	case ProviderGemini:
		return NewGeminiEngine(ctx, cfg.APIKey, cfg.MaxTokens)
	case ProviderOllama:
		return NewOllamaEngine(cfg.BaseURL, cfg.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	switch strings.ToLower(provider) {
	case ProviderOpenRouter:
		return "openai/gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-haiku-4-5"
	case ProviderGemini:
		return "gemini-2.5-flash-lite"
	case ProviderOllama:
		return "llama3.2"
	case ProviderNone:
		return ""
	default:
		return "gpt-4o-mini"
	}
}
