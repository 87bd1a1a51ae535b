// Package narrative writes conversation starters and a promotional post.
// Both fall back to fixed text when generation is unavailable.
package narrative

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kalambet/hackmix/internal/engine"
	"github.com/kalambet/hackmix/internal/metrics"
	"github.com/kalambet/hackmix/internal/participant"
)

const (
	// PostError is returned by Post when generation fails.
	PostError = "Error generating post. Please try again."
	// PostEmpty is returned by Post when generation succeeds with no text.
	PostEmpty = "Could not generate post."

	// SourceProfile labels talking points built from profile data.
	SourceProfile = "linkedin"
)

type Generator interface {
	Configured() bool
	Generate(ctx context.Context, system, prompt string, schema *engine.Schema) (string, error)
}

type Writer struct {
	gen     Generator
	metrics *metrics.Manager
}

func New(gen Generator, m *metrics.Manager) *Writer {
	return &Writer{gen: gen, metrics: m}
}

var pointsSchema = &engine.Schema{
	Type: "object",
	Properties: map[string]engine.SchemaProperty{
		"points": {Type: "array", Items: &engine.Schema{Type: "string"}},
	},
	Required: []string{"points"},
}

// TalkingPoints returns conversation starters for p. The result is never
// empty.
func (w *Writer) TalkingPoints(ctx context.Context, p participant.Participant) []string {
	first := participant.FirstName(p.Name)
	lines := facts(p)
	if len(lines) == 0 {
		return []string{
			fmt.Sprintf("Hey %s! What brings you to this hackathon?", first),
			"What kind of projects are you hoping to work on?",
			"What's your tech background?",
		}
	}
	if w.gen == nil || !w.gen.Configured() {
		w.metrics.RecordFallback("talking_points")
		return DefaultTalkingPoints(p)
	}

	prompt := fmt.Sprintf("Generate 3 casual conversation starters for meeting %s at a hackathon.\n\nTheir info:\n%s\n\n", p.Name, strings.Join(lines, "\n")) +
		"Rules:\n" +
		"- Be friendly and ask questions\n" +
		"- Reference their background, recent posts, or projects if available\n" +
		"- Keep it natural and not creepy\n" +
		`Return JSON: {"points": ["starter 1", "starter 2", "starter 3"]}`

	resp, err := w.gen.Generate(ctx, "", prompt, pointsSchema)
	w.metrics.RecordLLM("talking_points", err)
	if err != nil {
		slog.Warn("narrative: talking points failed", "name", p.Name, "error", err)
		w.metrics.RecordFallback("talking_points")
		return DefaultTalkingPoints(p)
	}

	var out struct {
		Points        []string `json:"points"`
		TalkingPoints []string `json:"talkingPoints"`
	}
	if err := engine.DecodeJSON(resp, &out); err != nil {
		slog.Warn("narrative: unusable talking points", "name", p.Name, "error", err)
		w.metrics.RecordFallback("talking_points")
		return DefaultTalkingPoints(p)
	}
	points := nonEmpty(out.Points)
	if len(points) == 0 {
		points = nonEmpty(out.TalkingPoints)
	}
	if len(points) == 0 {
		w.metrics.RecordFallback("talking_points")
		return DefaultTalkingPoints(p)
	}
	return points
}

// facts lists what is known about p, one fact per line.
func facts(p participant.Participant) []string {
	var lines []string
	var pos, co, headline string
	if p.LinkedInData != nil {
		pos, co, headline = p.LinkedInData.CurrentPosition, p.LinkedInData.Company, p.LinkedInData.Headline
	}
	if pos != "" || co != "" {
		role := pos
		if role == "" {
			role = "Unknown"
		}
		if co != "" {
			role += " at " + co
		}
		lines = append(lines, "Role: "+role)
	}
	if headline != "" {
		lines = append(lines, "Headline: "+headline)
	}
	if s := p.SocialMedia; s != nil {
		if tw := s.Twitter; tw != nil {
			lines = append(lines, "Twitter: "+tw.Handle)
			if tw.Bio != "" {
				lines = append(lines, "Twitter bio: "+tw.Bio)
			}
			if len(tw.RecentTweets) > 0 {
				lines = append(lines, "Recent tweets: "+strings.Join(tw.RecentTweets[:min(3, len(tw.RecentTweets))], " | "))
			}
		}
		if s.GitHub != "" {
			lines = append(lines, "GitHub: "+s.GitHub)
		}
	}
	return lines
}

// DefaultTalkingPoints returns one of three fixed triads depending on which
// of company and position are known.
func DefaultTalkingPoints(p participant.Participant) []string {
	first := participant.FirstName(p.Name)
	var pos, co string
	if p.LinkedInData != nil {
		pos, co = p.LinkedInData.CurrentPosition, p.LinkedInData.Company
	}
	switch {
	case co != "" && pos != "":
		return []string{
			fmt.Sprintf("Hey %s! I saw you're at %s - what's it like there?", first, co),
			fmt.Sprintf("As a %s, what are you hoping to build?", pos),
			"What's your go-to tech stack?",
		}
	case co != "":
		return []string{
			fmt.Sprintf("Hey %s! I saw you're at %s - what's it like there?", first, co),
			"What projects interest you?",
			"What's your go-to tech stack?",
		}
	default:
		return []string{
			fmt.Sprintf("Hey %s! What brings you here?", first),
			"What projects interest you?",
			"What's your go-to tech stack?",
		}
	}
}

// Post writes a short promotional post about attending eventName. It never
// fails; errors are reported as PostError.
func (w *Writer) Post(ctx context.Context, eventName string, top []participant.Participant, experience string) string {
	if eventName = strings.TrimSpace(eventName); eventName == "" {
		eventName = "a hackathon"
	}
	var roles []string
	for _, p := range top[:min(3, len(top))] {
		if p.LinkedInData != nil && p.LinkedInData.CurrentPosition != "" && p.LinkedInData.Company != "" {
			roles = append(roles, p.LinkedInData.CurrentPosition+" at "+p.LinkedInData.Company)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a LinkedIn post about attending %s.\n", eventName)
	if len(roles) > 0 {
		fmt.Fprintf(&b, "Notable attendees included: %s\n", strings.Join(roles, ", "))
	}
	if experience = strings.TrimSpace(experience); experience != "" {
		fmt.Fprintf(&b, "My experience: %s\n", experience)
	}
	b.WriteString("\nMake it professional, 2-3 paragraphs, include hashtags.")

	if w.gen == nil || !w.gen.Configured() {
		slog.Warn("narrative: text generation not configured, cannot write post")
		w.metrics.RecordFallback("post")
		return PostError
	}
	resp, err := w.gen.Generate(ctx, "", b.String(), nil)
	w.metrics.RecordLLM("post", err)
	if err != nil {
		slog.Warn("narrative: post generation failed", "error", err)
		w.metrics.RecordFallback("post")
		return PostError
	}
	if resp = strings.TrimSpace(resp); resp == "" {
		return PostEmpty
	}
	return resp
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
