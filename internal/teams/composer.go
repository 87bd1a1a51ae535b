// Package teams proposes hackathon teams with complementary skills.
package teams

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
	DefaultTeamSize = 4
	maxSuggestions  = 3
	defaultReason   = "Complementary skills"
)

// Generator is the text-generation capability the composer delegates to.
type Generator interface {
	Configured() bool
	Generate(ctx context.Context, system, prompt string, schema *engine.Schema) (string, error)
}

type Composer struct {
	gen     Generator
	metrics *metrics.Manager
}

func New(gen Generator, m *metrics.Manager) *Composer {
	return &Composer{gen: gen, metrics: m}
}

var teamSchema = &engine.Schema{
	Type: "object",
	Properties: map[string]engine.SchemaProperty{
		"teams": engine.ArrayOf(&engine.Schema{
			Type: "object",
			Properties: map[string]engine.SchemaProperty{
				"members": {Type: "array", Items: &engine.Schema{Type: "string"}},
				"reason":  {Type: "string"},
				"skills":  {Type: "array", Items: &engine.Schema{Type: "string"}},
			},
			Required: []string{"members", "reason", "skills"},
		}),
	},
	Required: []string{"teams"},
}

type teamEntry struct {
	Members             []string `json:"members"`
	Participants        []string `json:"participants"`
	Reason              string   `json:"reason"`
	Reasoning           string   `json:"reasoning"`
	Skills              []string `json:"skills"`
	ComplementarySkills []string `json:"complementarySkills"`
}

// Suggest returns at most three teams of at least two participants each.
// There is no local fallback: any failure yields an empty list.
func (c *Composer) Suggest(ctx context.Context, participants []participant.Participant, teamSize int) []participant.TeamSuggestion {
	out := []participant.TeamSuggestion{}
	if len(participants) < 2 {
		return out
	}
	if c.gen == nil || !c.gen.Configured() {
		slog.Warn("teams: text generation not configured, skipping suggestions")
		return out
	}
	if teamSize < 2 {
		teamSize = DefaultTeamSize
	}

	resp, err := c.gen.Generate(ctx, "", prompt(participants, teamSize), teamSchema)
	c.metrics.RecordLLM("teams", err)
	if err != nil {
		slog.Warn("teams: generation failed", "error", err)
		return out
	}

	var parsed struct {
		Teams []teamEntry `json:"teams"`
	}
	if err := engine.DecodeJSON(resp, &parsed); err != nil {
		slog.Warn("teams: unusable response", "error", err)
		return out
	}

	for _, t := range parsed.Teams {
		if len(out) == maxSuggestions {
			break
		}
		names := t.Members
		if len(names) == 0 {
			names = t.Participants
		}
		members := resolve(names, participants)
		if len(members) < 2 {
			continue
		}
		skills := t.Skills
		if len(skills) == 0 {
			skills = t.ComplementarySkills
		}
		if skills == nil {
			skills = []string{}
		}
		out = append(out, participant.TeamSuggestion{
			Participants:        members,
			Reasoning:           firstNonEmpty(t.Reason, t.Reasoning, defaultReason),
			ComplementarySkills: skills,
		})
	}
	slog.Debug("teams: suggestions ready", "proposed", len(parsed.Teams), "kept", len(out))
	return out
}

func prompt(participants []participant.Participant, teamSize int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest 3 hackathon teams of %d people with complementary skills.\n\nParticipants:\n", teamSize)
	for i, p := range participants {
		skills := "Unknown"
		if p.LinkedInData != nil && len(p.LinkedInData.Skills) > 0 {
			skills = strings.Join(p.LinkedInData.Skills[:min(5, len(p.LinkedInData.Skills))], ", ")
		}
		fmt.Fprintf(&b, "%d. %s - Skills: %s\n", i+1, p.Name, skills)
	}
	b.WriteString("\nReturn JSON: ")
	b.WriteString(`{"teams": [{"members": ["Name1", "Name2"], "reason": "why they work well", "skills": ["skill1"]}]}`)
	return b.String()
}

// resolve maps generated member names onto participants by case-insensitive
// containment in either direction. Each participant appears at most once.
func resolve(names []string, participants []participant.Participant) []participant.Participant {
	var members []participant.Participant
	used := make(map[int]bool)
	for _, name := range names {
		want := strings.ToLower(strings.TrimSpace(name))
		if want == "" {
			continue
		}
		for i, p := range participants {
			have := strings.ToLower(p.Name)
			if strings.Contains(have, want) || strings.Contains(want, have) {
				if !used[i] {
					used[i] = true
					members = append(members, p)
				}
				break
			}
		}
	}
	return members
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
