package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kDuration
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	aliases []string // conventional names honoured after env
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "HACKMIX_SERVER_PORT", aliases: []string{"PORT"},
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "log.level", typ: kString, env: "HACKMIX_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
	{
		key: "search.base_url", typ: kString, env: "HACKMIX_SEARCH_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Search.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Search.BaseURL },
	},
	{
		key: "search.api_key", typ: kString, env: "HACKMIX_SEARCH_API_KEY", aliases: []string{"SERPAPI_API_KEY"},
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Search.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Search.APIKey },
	},
	{
		key: "search.max_requests", typ: kInt, env: "HACKMIX_SEARCH_MAX_REQUESTS",
		apply:   func(cfg *Config, v any) { cfg.Search.MaxRequests = v.(int) },
		extract: func(cfg Config) any { return cfg.Search.MaxRequests },
	},
	{
		key: "search.window", typ: kDuration, env: "HACKMIX_SEARCH_WINDOW",
		apply:   func(cfg *Config, v any) { cfg.Search.Window = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.Search.Window },
	},
	{
		key: "linkedin.base_url", typ: kString, env: "HACKMIX_LINKEDIN_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.LinkedIn.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.LinkedIn.BaseURL },
	},
	{
		key: "linkedin.access_token", typ: kString, env: "HACKMIX_LINKEDIN_ACCESS_TOKEN", aliases: []string{"LINKEDIN_ACCESS_TOKEN"},
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.LinkedIn.AccessToken = v.(string) },
		extract: func(cfg Config) any { return cfg.LinkedIn.AccessToken },
	},
	{
		key: "llm.provider", typ: kString, env: "HACKMIX_LLM_PROVIDER",
		apply:   func(cfg *Config, v any) { cfg.LLM.Provider = v.(string) },
		extract: func(cfg Config) any { return cfg.LLM.Provider },
	},
	{
		key: "llm.base_url", typ: kString, env: "HACKMIX_LLM_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.LLM.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.LLM.BaseURL },
	},
	{
		key: "llm.model", typ: kString, env: "HACKMIX_LLM_MODEL",
		apply:   func(cfg *Config, v any) { cfg.LLM.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.LLM.Model },
	},
	{
		key: "llm.api_key", typ: kString, env: "HACKMIX_LLM_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.LLM.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.LLM.APIKey },
	},
	{
		key: "llm.max_tokens", typ: kInt, env: "HACKMIX_LLM_MAX_TOKENS",
		apply:   func(cfg *Config, v any) { cfg.LLM.MaxTokens = v.(int) },
		extract: func(cfg Config) any { return cfg.LLM.MaxTokens },
	},
	{
		key: "llm.timeout", typ: kDuration, env: "HACKMIX_LLM_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.LLM.Timeout = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.LLM.Timeout },
	},
	{
		key: "pipeline.top_n", typ: kInt, env: "HACKMIX_PIPELINE_TOP_N", aliases: []string{"TOP_N"},
		apply:   func(cfg *Config, v any) { cfg.Pipeline.TopN = v.(int) },
		extract: func(cfg Config) any { return cfg.Pipeline.TopN },
	},
	{
		key: "pipeline.team_size", typ: kInt, env: "HACKMIX_PIPELINE_TEAM_SIZE",
		apply:   func(cfg *Config, v any) { cfg.Pipeline.TeamSize = v.(int) },
		extract: func(cfg Config) any { return cfg.Pipeline.TeamSize },
	},
	{
		key: "pipeline.social_pause", typ: kDuration, env: "HACKMIX_PIPELINE_SOCIAL_PAUSE",
		apply:   func(cfg *Config, v any) { cfg.Pipeline.SocialPause = v.(time.Duration) },
		extract: func(cfg Config) any { return cfg.Pipeline.SocialPause },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kDuration:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				d, err := time.ParseDuration(v)
				if err != nil {
					return fmt.Errorf("reading %s: %w", s.key, err)
				}
				s.apply(cfg, d)
			}
		}
	}
	return nil
}

// envLookup resolves a variable from the process environment first and the
// .env file second. A missing .env file is not an error.
func envLookup(envFile string, getenv func(string) string) func(string) string {
	var file map[string]string
	if envFile != "" {
		vals, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			file = vals
		case !os.IsNotExist(err):
			fmt.Fprintf(os.Stderr, "[WARN] could not read env file %s: %v. Ignoring it.\n", envFile, err)
		}
	}
	return func(name string) string {
		if v := getenv(name); v != "" {
			return v
		}
		return file[name]
	}
}

// providerKeyEnv names the conventional key variable for each hosted
// provider, consulted when llm.api_key is unset.
var providerKeyEnv = map[string]string{
	"openai":     "OPENAI_API_KEY",
	"openrouter": "OPENROUTER_API_KEY",
	"anthropic":  "ANTHROPIC_API_KEY",
	"gemini":     "GEMINI_API_KEY",
}

func applyEnvOverrides(cfg *Config, lookup func(string) string) {
	for _, s := range specs {
		name, raw := s.env, ""
		for _, n := range append([]string{s.env}, s.aliases...) {
			if raw = lookup(n); raw != "" {
				name = n
				break
			}
		}
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", name, raw, err)
			}
		case kDuration:
			if d, err := time.ParseDuration(raw); err == nil {
				s.apply(cfg, d)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse duration from env var %s=%q: %v. Using default value.\n", name, raw, err)
			}
		}
	}

	if cfg.LLM.APIKey == "" {
		if name, ok := providerKeyEnv[cfg.LLM.Provider]; ok {
			cfg.LLM.APIKey = lookup(name)
		}
	}
}
