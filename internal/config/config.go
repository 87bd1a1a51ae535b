package config

import (
	"fmt"
	"os"
	"slices"
	"time"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Search   SearchConfig
	LinkedIn LinkedInConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
}

type ServerConfig struct {
	Port int
}

type LogConfig struct {
	Level string
}

type SearchConfig struct {
	BaseURL     string
	APIKey      string
	MaxRequests int
	Window      time.Duration
}

type LinkedInConfig struct {
	BaseURL     string
	AccessToken string
}

type LLMConfig struct {
	Provider  string
	BaseURL   string
	Model     string
	APIKey    string
	MaxTokens int
	Timeout   time.Duration
}

type PipelineConfig struct {
	TopN        int
	TeamSize    int
	SocialPause time.Duration
}

// Providers lists the accepted llm.provider values.
var Providers = []string{"openai", "openrouter", "anthropic", "gemini", "ollama", "none"}

func defaults() Config {
	return Config{
		Server: ServerConfig{Port: 4000},
		Log:    LogConfig{Level: "info"},
		Search: SearchConfig{
			BaseURL:     "https://serpapi.com",
			MaxRequests: 10,
			Window:      time.Minute,
		},
		LinkedIn: LinkedInConfig{BaseURL: "https://api.linkedin.com"},
		LLM: LLMConfig{
			Provider:  "openai",
			MaxTokens: 800,
			Timeout:   30 * time.Second,
		},
		Pipeline: PipelineConfig{
			TopN:        5,
			TeamSize:    4,
			SocialPause: 500 * time.Millisecond,
		},
	}
}

// Load reads configuration in increasing precedence: built-in defaults, the
// JSON file at $XDG_CONFIG_HOME/hackmix/config.json, a .env file
// ($HACKMIX_ENV_FILE or ./.env), then process environment variables.
//
// Credentials are read only from the environment or the .env file. A missing
// credential is not an error; the capability it unlocks is simply disabled.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()), envFilePath(), os.Getenv)
}

func envFilePath() string {
	if p := os.Getenv("HACKMIX_ENV_FILE"); p != "" {
		return p
	}
	return ".env"
}

func loadWith(b ConfigBackend, envFile string, getenv func(string) string) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg, envLookup(envFile, getenv))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail far from their source.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port %d out of range", c.Server.Port)
	}
	if !slices.Contains(Providers, c.LLM.Provider) {
		return fmt.Errorf("invalid config: llm.provider %q (want one of %v)", c.LLM.Provider, Providers)
	}
	if c.Pipeline.TopN < 1 {
		return fmt.Errorf("invalid config: pipeline.top_n must be at least 1")
	}
	if c.Pipeline.TeamSize < 2 {
		return fmt.Errorf("invalid config: pipeline.team_size must be at least 2")
	}
	return nil
}
