// Package profile resolves a participant name into a normalized professional
// profile by trying, in order: caller-supplied data, web search, and the
// authenticated network API.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kalambet/hackmix/internal/metrics"
	"github.com/kalambet/hackmix/internal/participant"
	"github.com/kalambet/hackmix/internal/ratelimit"
	"github.com/kalambet/hackmix/internal/search"
)

// Strategy names, also used as metric labels.
const (
	StrategyManual   = "manual"
	StrategySearch   = "search"
	StrategyOfficial = "official"
	StrategyNone     = "none"
)

// Searcher is the subset of search.Client the resolver needs.
type Searcher interface {
	Configured() bool
	Search(ctx context.Context, q search.Query) (*search.Response, error)
}

// Query identifies the person to resolve.
type Query struct {
	Name        string
	Company     string
	LinkedInURL string
	Manual      map[string]any
}

// Config wires a Resolver. Limiter is shared by every outbound strategy and
// must outlive the run; nil Search or LinkedIn disables that strategy.
type Config struct {
	Search   Searcher
	LinkedIn *LinkedInClient
	Limiter  *ratelimit.Limiter
	Metrics  *metrics.Manager
}

type Resolver struct {
	search   Searcher
	linkedin *LinkedInClient
	limiter  *ratelimit.Limiter
	metrics  *metrics.Manager

	warnOnce sync.Once
}

func New(cfg Config) *Resolver {
	l := cfg.Limiter
	if l == nil {
		l = ratelimit.New(ratelimit.Options{MaxRequests: 10, Window: time.Minute})
	}
	return &Resolver{
		search:   cfg.Search,
		linkedin: cfg.LinkedIn,
		limiter:  l,
		metrics:  cfg.Metrics,
	}
}

// Resolve returns the first profile any strategy produces, or nil. Provider
// failures are logged and never returned.
func (r *Resolver) Resolve(ctx context.Context, q Query) *participant.Profile {
	p, strategy := r.resolve(ctx, q)
	r.metrics.RecordProfile(strategy)
	if p != nil && p.Name == "" {
		p.Name = q.Name
	}
	return p
}

func (r *Resolver) resolve(ctx context.Context, q Query) (*participant.Profile, string) {
	if p := NormalizeManual(q.Manual); p != nil {
		return p, StrategyManual
	}

	searchOn := r.search != nil && r.search.Configured()
	if !searchOn && r.linkedin == nil {
		r.warnOnce.Do(func() {
			slog.Warn("profile: no search key or network token configured, profiles will not be resolved")
		})
		return nil, StrategyNone
	}

	if searchOn {
		p, err := r.fromSearch(ctx, q)
		if err != nil {
			slog.Warn("profile: search lookup failed", "name", q.Name, "error", err)
		} else if p != nil {
			return p, StrategySearch
		}
	}

	if r.linkedin != nil {
		if id := ProfileID(q.LinkedInURL); id != "" {
			p, err := ratelimit.Call(ctx, r.limiter, func(ctx context.Context) (*participant.Profile, error) {
				return r.linkedin.Person(ctx, id, q.LinkedInURL)
			})
			if err != nil {
				slog.Warn("profile: network api lookup failed", "name", q.Name, "error", err)
			} else {
				return p, StrategyOfficial
			}
		}
	}
	return nil, StrategyNone
}

// SearchQuery builds the profile search query for name and optional company.
func SearchQuery(name, company string) string {
	if company != "" {
		return fmt.Sprintf(`site:linkedin.com/in/ "%s" "%s"`, name, company)
	}
	return fmt.Sprintf(`site:linkedin.com/in/ "%s"`, name)
}

func (r *Resolver) fromSearch(ctx context.Context, q Query) (*participant.Profile, error) {
	resp, err := ratelimit.Call(ctx, r.limiter, func(ctx context.Context) (*search.Response, error) {
		return r.search.Search(ctx, search.Query{Q: SearchQuery(q.Name, q.Company), Num: 5})
	})
	if err != nil {
		return nil, err
	}
	for _, res := range resp.OrganicResults {
		if IsProfileLink(res.Link) {
			return ParseSearchResult(res, q.Name), nil
		}
	}
	slog.Debug("profile: no profile link in search results", "name", q.Name, "results", len(resp.OrganicResults))
	return nil, nil
}
