package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kalambet/hackmix/internal/engine"
	"github.com/kalambet/hackmix/internal/participant"
)

type mockGenerator struct {
	configured bool
	resp       string
	err        error
	calls      int
	prompt     string
	schema     *engine.Schema
}

func (m *mockGenerator) Configured() bool { return m.configured }

func (m *mockGenerator) Generate(_ context.Context, _, prompt string, schema *engine.Schema) (string, error) {
	m.calls++
	m.prompt = prompt
	m.schema = schema
	return m.resp, m.err
}

func withRole(name, pos, co string) participant.Participant {
	return participant.Participant{Name: name, LinkedInData: &participant.Profile{CurrentPosition: pos, Company: co}}
}

func TestTalkingPoints_NoDataSkipsGeneration(t *testing.T) {
	gen := &mockGenerator{configured: true, resp: `{"points":["x"]}`}
	got := New(gen, nil).TalkingPoints(context.Background(), participant.Participant{Name: "Jane Doe"})
	if gen.calls != 0 {
		t.Errorf("generator called %d times", gen.calls)
	}
	if len(got) != 3 || got[0] != "Hey Jane! What brings you to this hackathon?" {
		t.Errorf("got %q", got)
	}
}

func TestTalkingPoints_Generated(t *testing.T) {
	gen := &mockGenerator{configured: true, resp: "```json\n{\"talkingPoints\":[\"How is Acme?\",\" \"]}\n```"}
	p := withRole("Jane Doe", "CTO", "Acme")
	p.SocialMedia = &participant.SocialProfiles{
		Twitter: &participant.TwitterProfile{Handle: "@jd", Bio: "Builder", RecentTweets: []string{"a", "b", "c", "d"}},
		GitHub:  "https://github.com/jd",
	}
	got := New(gen, nil).TalkingPoints(context.Background(), p)

	if len(got) != 1 || got[0] != "How is Acme?" {
		t.Errorf("got %q", got)
	}
	for _, want := range []string{"Role: CTO at Acme", "Twitter: @jd", "Twitter bio: Builder", "Recent tweets: a | b | c\n", "GitHub: https://github.com/jd"} {
		if !strings.Contains(gen.prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, gen.prompt)
		}
	}
	if gen.schema == nil {
		t.Error("schema not passed")
	}
}

func TestTalkingPoints_Fallback(t *testing.T) {
	tests := []struct {
		name string
		gen  *mockGenerator
	}{
		{"unconfigured", &mockGenerator{}},
		{"error", &mockGenerator{configured: true, err: errors.New("down")}},
		{"empty", &mockGenerator{configured: true, resp: `{"points":[]}`}},
		{"garbage", &mockGenerator{configured: true, resp: "no"}},
	}
	p := withRole("Jane Doe", "CTO", "Acme")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.gen, nil).TalkingPoints(context.Background(), p)
			want := DefaultTalkingPoints(p)
			if strings.Join(got, "|") != strings.Join(want, "|") {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestDefaultTalkingPoints(t *testing.T) {
	tests := []struct {
		p    participant.Participant
		want []string
	}{
		{withRole("Jane Doe", "CTO", "Acme"), []string{
			"Hey Jane! I saw you're at Acme - what's it like there?",
			"As a CTO, what are you hoping to build?",
			"What's your go-to tech stack?",
		}},
		{withRole("Jane Doe", "", "Acme"), []string{
			"Hey Jane! I saw you're at Acme - what's it like there?",
			"What projects interest you?",
			"What's your go-to tech stack?",
		}},
		{participant.Participant{Name: "John Smith"}, []string{
			"Hey John! What brings you here?",
			"What projects interest you?",
			"What's your go-to tech stack?",
		}},
	}
	for _, tt := range tests {
		got := DefaultTalkingPoints(tt.p)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("DefaultTalkingPoints(%s) = %q, want %q", tt.p.Name, got, tt.want)
		}
	}
}

func TestPost(t *testing.T) {
	top := []participant.Participant{
		withRole("A a", "CTO", "Acme"),
		withRole("B b", "", "Initech"),
		withRole("C c", "Founder", "Hooli"),
		withRole("D d", "CEO", "Globex"),
	}

	gen := &mockGenerator{configured: true, resp: "  Great weekend! #hackathon  "}
	got := New(gen, nil).Post(context.Background(), "HackMIT", top, "Built a robot")
	if got != "Great weekend! #hackathon" {
		t.Errorf("post = %q", got)
	}
	if !strings.Contains(gen.prompt, "Notable attendees included: CTO at Acme, Founder at Hooli\n") {
		t.Errorf("prompt roles wrong:\n%s", gen.prompt)
	}
	if !strings.Contains(gen.prompt, "attending HackMIT") || !strings.Contains(gen.prompt, "My experience: Built a robot") {
		t.Errorf("prompt = %s", gen.prompt)
	}
	if gen.schema != nil {
		t.Error("post requested structured output")
	}

	if got := New(&mockGenerator{configured: true, err: errors.New("x")}, nil).Post(context.Background(), "E", nil, ""); got != PostError {
		t.Errorf("error post = %q", got)
	}
	if got := New(&mockGenerator{configured: true}, nil).Post(context.Background(), "E", nil, ""); got != PostEmpty {
		t.Errorf("empty post = %q", got)
	}
	if got := New(nil, nil).Post(context.Background(), "E", nil, ""); got != PostError {
		t.Errorf("unconfigured post = %q", got)
	}
}
