// Package ranking selects the highest networking-value participants.
package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/kalambet/hackmix/internal/engine"
	"github.com/kalambet/hackmix/internal/metrics"
	"github.com/kalambet/hackmix/internal/participant"
)

const (
	DefaultTopN = 5

	minScore     = 0.7
	maxScore     = 1.0
	missingScore = 0.8
	fallbackStep = 0.05
)

// Generator is the text-generation capability the ranker delegates to.
// *engine.Generator satisfies it.
type Generator interface {
	Configured() bool
	Generate(ctx context.Context, system, prompt string, schema *engine.Schema) (string, error)
}

// Ranker scores participants through a Generator and falls back to input
// order when the generator is unavailable or its output is unusable.
type Ranker struct {
	gen     Generator
	metrics *metrics.Manager
}

func New(gen Generator, m *metrics.Manager) *Ranker {
	return &Ranker{gen: gen, metrics: m}
}

var rankSchema = &engine.Schema{
	Type: "object",
	Properties: map[string]engine.SchemaProperty{
		"top": engine.ArrayOf(&engine.Schema{
			Type: "object",
			Properties: map[string]engine.SchemaProperty{
				"name":   {Type: "string"},
				"score":  {Type: "number", Description: "0.7 to 1.0"},
				"reason": {Type: "string"},
			},
			Required: []string{"name", "score"},
		}),
	},
	Required: []string{"top"},
}

type rankEntry struct {
	Name   string   `json:"name"`
	Score  *float64 `json:"score"`
	Reason string   `json:"reason"`
}

type rankResponse struct {
	Top      []rankEntry `json:"top"`
	Rankings []rankEntry `json:"rankings"`
}

// Rank returns at most topN participants sorted by descending score. The
// result is never empty when candidates is non-empty.
func (r *Ranker) Rank(ctx context.Context, candidates []participant.Participant, topN int) []participant.Participant {
	if len(candidates) == 0 {
		return []participant.Participant{}
	}
	if topN < 1 {
		topN = DefaultTopN
	}

	if r.gen == nil || !r.gen.Configured() {
		slog.Warn("ranking: text generation not configured, using input order")
		r.metrics.RecordFallback("ranking")
		return Fallback(candidates, topN)
	}

	resp, err := r.gen.Generate(ctx, "", prompt(candidates, topN), rankSchema)
	r.metrics.RecordLLM("ranking", err)
	if err != nil {
		slog.Warn("ranking: generation failed, using input order", "error", err)
		r.metrics.RecordFallback("ranking")
		return Fallback(candidates, topN)
	}

	ranked, err := parse(resp, candidates, topN)
	if err != nil || len(ranked) == 0 {
		slog.Warn("ranking: unusable response, using input order", "error", err, "response", truncate(resp, 300))
		r.metrics.RecordFallback("ranking")
		return Fallback(candidates, topN)
	}
	return ranked
}

func prompt(candidates []participant.Participant, topN int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From these hackathon participants, identify the TOP %d most influential people to network with.\n\nParticipants:\n", topN)
	for i, p := range candidates {
		pos, co := "Unknown role", "Unknown company"
		if p.LinkedInData != nil {
			if p.LinkedInData.CurrentPosition != "" {
				pos = p.LinkedInData.CurrentPosition
			}
			if p.LinkedInData.Company != "" {
				co = p.LinkedInData.Company
			}
		}
		fmt.Fprintf(&b, "%d. %s - %s at %s\n", i+1, p.Name, pos, co)
	}
	fmt.Fprintf(&b, "\nReturn JSON with ONLY the top %d ranked by career prestige:\n", topN)
	b.WriteString(`{"top": [{"name": "Full Name", "score": 0.95, "reason": "why they're influential"}]}`)
	b.WriteString("\n\nScore from 0.7 to 1.0. Consider: company prestige, role seniority, career achievements.")
	return b.String()
}

// parse maps the generator's ranking back onto candidates. Unmatched and
// repeated names are dropped; the remainder is padded in input order up to
// min(topN, len(candidates)).
func parse(resp string, candidates []participant.Participant, topN int) ([]participant.Participant, error) {
	var out rankResponse
	if err := engine.DecodeJSON(resp, &out); err != nil {
		return nil, fmt.Errorf("decoding ranking: %w", err)
	}
	entries := out.Top
	if len(entries) == 0 {
		entries = out.Rankings
	}
	if len(entries) > topN {
		entries = entries[:topN]
	}

	want := min(topN, len(candidates))
	used := make(map[int]bool, want)
	ranked := make([]participant.Participant, 0, want)
	for _, e := range entries {
		idx := MatchName(e.Name, candidates)
		if idx < 0 || used[idx] {
			continue
		}
		used[idx] = true
		score := missingScore
		if e.Score != nil && *e.Score != 0 {
			score = clamp(*e.Score)
		}
		ranked = append(ranked, withScore(candidates[idx], score))
	}
	if len(ranked) == 0 {
		return nil, nil
	}

	for i := 0; i < len(candidates) && len(ranked) < want; i++ {
		if !used[i] {
			ranked = append(ranked, withScore(candidates[i], minScore))
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Score > *ranked[j].Score
	})
	return ranked, nil
}

// Fallback takes the first topN candidates in input order with scores
// decreasing from 1.0 by 0.05, floored at 0.7.
func Fallback(candidates []participant.Participant, topN int) []participant.Participant {
	n := min(topN, len(candidates))
	out := make([]participant.Participant, n)
	for i := range n {
		out[i] = withScore(candidates[i], max(minScore, maxScore-fallbackStep*float64(i)))
	}
	return out
}

// matchRules is applied rule-major: every candidate is tried against a rule
// before the next rule is considered. Reordering changes which candidate wins.
var matchRules = []func(want, have string) bool{
	func(want, have string) bool { return want == have },
	func(want, have string) bool { return strings.Contains(have, want) || strings.Contains(want, have) },
	func(want, have string) bool { return firstToken(want) == firstToken(have) },
}

// MatchName returns the index of the candidate best matching a generated
// name, or -1.
func MatchName(name string, candidates []participant.Participant) int {
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return -1
	}
	for _, rule := range matchRules {
		for i, c := range candidates {
			have := strings.ToLower(strings.TrimSpace(c.Name))
			if have != "" && rule(want, have) {
				return i
			}
		}
	}
	return -1
}

func firstToken(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

func withScore(p participant.Participant, score float64) participant.Participant {
	p.Score = &score
	return p
}

func clamp(s float64) float64 {
	return min(maxScore, max(minScore, s))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
