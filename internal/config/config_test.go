package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func env(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func emptyBackend(t *testing.T) *fileBackend {
	return newFileBackend(filepath.Join(t.TempDir(), "config.json"))
}

// TestDefaults verifies defaults load without any credentials.
func TestDefaults(t *testing.T) {
	cfg, err := loadWith(emptyBackend(t), "", env(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d, want 4000", cfg.Server.Port)
	}
	if cfg.Search.MaxRequests != 10 || cfg.Search.Window != time.Minute {
		t.Errorf("Search limit = %d/%v, want 10/1m", cfg.Search.MaxRequests, cfg.Search.Window)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
	if cfg.Pipeline.TopN != 5 || cfg.Pipeline.TeamSize != 4 || cfg.Pipeline.SocialPause != 500*time.Millisecond {
		t.Errorf("Pipeline = %+v", cfg.Pipeline)
	}
	if cfg.Search.APIKey != "" || cfg.LLM.APIKey != "" || cfg.LinkedIn.AccessToken != "" {
		t.Error("credentials should default to empty")
	}
}

// TestPrecedence verifies file < .env < environment.
func TestPrecedence(t *testing.T) {
	b := newFileBackend(writeTempFile(t, "config.json", `{
		"server.port": 5000,
		"pipeline.top_n": 3,
		"pipeline.social_pause": "2s",
		"llm.model": "file-model",
		"search.api_key": "ignored-secret"
	}`))
	dotenv := writeTempFile(t, ".env", "HACKMIX_PIPELINE_TOP_N=7\nHACKMIX_LLM_MODEL=dotenv-model\nSERPAPI_API_KEY=dotenv-key\n")

	cfg, err := loadWith(b, dotenv, env(map[string]string{"HACKMIX_LLM_MODEL": "env-model"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000 from file", cfg.Server.Port)
	}
	if cfg.Pipeline.SocialPause != 2*time.Second {
		t.Errorf("SocialPause = %v, want 2s from file", cfg.Pipeline.SocialPause)
	}
	if cfg.Pipeline.TopN != 7 {
		t.Errorf("TopN = %d, want 7 from .env", cfg.Pipeline.TopN)
	}
	if cfg.LLM.Model != "env-model" {
		t.Errorf("LLM.Model = %q, want env-model", cfg.LLM.Model)
	}
	if cfg.Search.APIKey != "dotenv-key" {
		t.Errorf("Search.APIKey = %q, want alias from .env, never the file", cfg.Search.APIKey)
	}
}

func TestProviderKeyAlias(t *testing.T) {
	cfg, err := loadWith(emptyBackend(t), "", env(map[string]string{
		"HACKMIX_LLM_PROVIDER": "anthropic",
		"OPENAI_API_KEY":       "openai-key",
		"ANTHROPIC_API_KEY":    "anthropic-key",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.APIKey != "anthropic-key" {
		t.Errorf("APIKey = %q, want the provider's own key", cfg.LLM.APIKey)
	}

	cfg, _ = loadWith(emptyBackend(t), "", env(map[string]string{
		"HACKMIX_LLM_API_KEY": "explicit",
		"OPENAI_API_KEY":      "openai-key",
	}))
	if cfg.LLM.APIKey != "explicit" {
		t.Errorf("APIKey = %q, want explicit", cfg.LLM.APIKey)
	}
}

func TestInvalidEnvFallsBack(t *testing.T) {
	cfg, err := loadWith(emptyBackend(t), "", env(map[string]string{
		"HACKMIX_SERVER_PORT": "not-a-number",
		"HACKMIX_LLM_TIMEOUT": "soon",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 4000 || cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("invalid values not ignored: %+v %+v", cfg.Server, cfg.LLM)
	}
}

func TestValidate(t *testing.T) {
	if _, err := loadWith(emptyBackend(t), "", env(map[string]string{"HACKMIX_LLM_PROVIDER": "skynet"})); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := loadWith(emptyBackend(t), "", env(map[string]string{"HACKMIX_PIPELINE_TEAM_SIZE": "1"})); err == nil {
		t.Error("expected error for team size 1")
	}
	b := newFileBackend(writeTempFile(t, "config.json", `{"search.window": "a while"}`))
	if _, err := loadWith(b, "", env(nil)); err == nil {
		t.Error("expected error for unparseable duration in file")
	}
}

func TestSetKey(t *testing.T) {
	b := emptyBackend(t)

	if err := setKey(b, "pipeline.top_n", "8"); err != nil {
		t.Fatalf("set int: %v", err)
	}
	if err := setKey(b, "search.window", "90s"); err != nil {
		t.Fatalf("set duration: %v", err)
	}
	if err := setKey(b, "pipeline.top_n", "eight"); err == nil {
		t.Error("expected error for non-integer")
	}
	if err := setKey(b, "llm.timeout", "later"); err == nil {
		t.Error("expected error for bad duration")
	}
	if err := setKey(b, "llm.api_key", "x"); err == nil || !strings.Contains(err.Error(), "HACKMIX_LLM_API_KEY") {
		t.Errorf("secret err = %v", err)
	}
	if err := setKey(b, "nope", "x"); err == nil {
		t.Error("expected error for unknown key")
	}

	cfg, err := loadWith(newFileBackend(b.path), "", env(nil))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Pipeline.TopN != 8 || cfg.Search.Window != 90*time.Second {
		t.Errorf("persisted values not loaded: %+v %+v", cfg.Pipeline, cfg.Search)
	}
}

func TestShowAll(t *testing.T) {
	cfg := defaults()
	cfg.Search.APIKey = "secret"
	for _, k := range ShowAll(cfg) {
		switch k.Key {
		case "search.api_key":
			if k.Value != "(set)" || !k.Secret {
				t.Errorf("search.api_key shown as %q", k.Value)
			}
		case "llm.api_key":
			if k.Value != "(unset)" {
				t.Errorf("llm.api_key shown as %q", k.Value)
			}
		case "server.port":
			if k.Value != "4000" || k.EnvVar != "HACKMIX_SERVER_PORT" {
				t.Errorf("server.port = %+v", k)
			}
		}
	}
	for _, k := range ValidKeys() {
		if strings.HasSuffix(k, "api_key") || strings.HasSuffix(k, "token") {
			t.Errorf("secret %q listed as settable", k)
		}
	}
}
