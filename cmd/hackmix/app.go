package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/kalambet/hackmix/internal/api"
	"github.com/kalambet/hackmix/internal/config"
	"github.com/kalambet/hackmix/internal/engine"
	"github.com/kalambet/hackmix/internal/metrics"
	"github.com/kalambet/hackmix/internal/narrative"
	"github.com/kalambet/hackmix/internal/pipeline"
	"github.com/kalambet/hackmix/internal/profile"
	"github.com/kalambet/hackmix/internal/ratelimit"
	"github.com/kalambet/hackmix/internal/search"
)

// app is the wired set of long-lived collaborators shared by serve, mcp,
// analyze and post.
type app struct {
	cfg          config.Config
	eng          engine.Engine
	gen          *engine.Generator
	metrics      *metrics.Manager
	orchestrator *pipeline.Orchestrator
	writer       *narrative.Writer
}

// loadConfig loads configuration and installs the logger it describes.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	setupLogging(cfg.Log.Level)
	return cfg, nil
}

// newApp wires collaborators from cfg. A local model backend that is not
// reachable is replaced by engine.Disabled so runs degrade to fallbacks.
// Pull progress for local models goes to w.
func newApp(ctx context.Context, cfg config.Config, w io.Writer) (*app, error) {
	eng, err := engine.Detect(ctx, engine.DetectConfig{
		Provider:  cfg.LLM.Provider,
		BaseURL:   cfg.LLM.BaseURL,
		APIKey:    cfg.LLM.APIKey,
		MaxTokens: cfg.LLM.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("selecting llm backend: %w", err)
	}
	model := cfg.LLM.Model
	if model == "" {
		model = engine.DefaultModel(cfg.LLM.Provider)
	}
	if err := engine.EnsureReady(ctx, eng, model, w); err != nil {
		slog.Warn("llm backend not ready, continuing without text generation", "backend", eng.Name(), "error", err)
		engine.Close(eng)
		eng = engine.Disabled{}
	}

	gen := engine.NewGenerator(eng, model, cfg.LLM.Timeout)
	m := metrics.NewManager()

	searchClient := search.NewClient(cfg.Search.APIKey, cfg.Search.BaseURL)
	linkedIn := profile.NewLinkedInClient(cfg.LinkedIn.AccessToken, cfg.LinkedIn.BaseURL)
	if !searchClient.Configured() && linkedIn == nil {
		slog.Warn("no profile source configured; results will be based on names and manual data only")
	}
	if !gen.Configured() {
		slog.Warn("text generation not configured; ranking, talking points and teams use fallbacks")
	}

	o := pipeline.New(pipeline.Deps{
		Search:    searchClient,
		LinkedIn:  linkedIn,
		Generator: gen,
		Metrics:   m,
		SearchLimit: ratelimit.Options{
			MaxRequests: cfg.Search.MaxRequests,
			Window:      cfg.Search.Window,
		},
		TopN:        cfg.Pipeline.TopN,
		TeamSize:    cfg.Pipeline.TeamSize,
		SocialPause: cfg.Pipeline.SocialPause,
	})

	return &app{
		cfg:          cfg,
		eng:          eng,
		gen:          gen,
		metrics:      m,
		orchestrator: o,
		writer:       narrative.New(gen, m),
	}, nil
}

func (a *app) apiDeps() api.Deps {
	return api.Deps{
		Analyzer: a.orchestrator,
		Posts:    a.writer,
		Metrics:  a.metrics.Handler(),
	}
}

func (a *app) Close() error {
	return engine.Close(a.eng)
}
