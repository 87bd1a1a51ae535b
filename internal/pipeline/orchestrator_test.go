package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/hackmix/internal/engine"
	"github.com/kalambet/hackmix/internal/participant"
	"github.com/kalambet/hackmix/internal/search"
)

// --- mock searcher ---

type mockSearcher struct {
	searchFn func(q search.Query) (*search.Response, error)
}

func (m *mockSearcher) Configured() bool { return true }

func (m *mockSearcher) Search(_ context.Context, q search.Query) (*search.Response, error) {
	return m.searchFn(q)
}

// --- mock generator ---

type mockGenerator struct {
	generateFn func(prompt string) (string, error)
}

func (m *mockGenerator) Configured() bool { return true }

func (m *mockGenerator) Generate(_ context.Context, _, prompt string, _ *engine.Schema) (string, error) {
	return m.generateFn(prompt)
}

func noSleep(context.Context, time.Duration) error { return nil }

func inputs(names ...string) []participant.Input {
	out := make([]participant.Input, len(names))
	for i, n := range names {
		out[i] = participant.Input{Name: n}
	}
	return out
}

func collect(events *[]participant.Progress) func(participant.Progress) {
	return func(p participant.Progress) { *events = append(*events, p) }
}

func TestRun_NothingConfigured(t *testing.T) {
	o := New(Deps{Sleep: noSleep})
	var events []participant.Progress

	res, err := o.Run(context.Background(), inputs("Jane Doe", "John Smith"), nil, collect(&events))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(res.Participants) != 2 {
		t.Errorf("participants = %d, want 2", len(res.Participants))
	}
	for _, p := range res.Participants {
		if p.LinkedInData != nil {
			t.Errorf("%s has profile data", p.Name)
		}
	}
	if n := len(res.HeavyHitters); n < 1 || n > 2 {
		t.Errorf("heavy hitters = %d, want 1..2", n)
	}
	if res.TeamSuggestions == nil || len(res.TeamSuggestions) != 0 {
		t.Errorf("team suggestions = %+v, want []", res.TeamSuggestions)
	}
	if res.SimilarBackgrounds == nil || len(res.SimilarBackgrounds) != 0 {
		t.Errorf("similar = %+v, want []", res.SimilarBackgrounds)
	}
	if len(res.TalkingPoints) != len(res.HeavyHitters) {
		t.Errorf("talking points = %d, want one per heavy hitter", len(res.TalkingPoints))
	}
	for _, tp := range res.TalkingPoints {
		if len(tp.Points) == 0 || tp.Source != "linkedin" {
			t.Errorf("talking point = %+v", tp)
		}
	}
	for _, h := range res.HeavyHitters {
		if h.SocialMedia == nil || h.SocialMedia.Twitter != nil || h.SocialMedia.GitHub != "" {
			t.Errorf("heavy hitter social = %+v, want empty bundle", h.SocialMedia)
		}
	}

	last := events[len(events)-1]
	if last.Stage != StageComplete || last.Progress != 1.0 {
		t.Errorf("last event = %+v", last)
	}
	if !strings.Contains(last.Message, "No LinkedIn data found") {
		t.Errorf("complete message = %q", last.Message)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Progress < events[i-1].Progress {
			t.Errorf("progress went backwards at %d: %v -> %v", i, events[i-1].Progress, events[i].Progress)
		}
	}
	want := map[float64]string{0.2: StageOrganize, 0.3: StageFetch, 0.6: StageFetch, 0.7: StageRank, 0.75: StageSocial, 0.85: StageTalking, 0.9: StageMatch}
	for prog, stage := range want {
		found := false
		for _, e := range events {
			if e.Progress == prog && e.Stage == stage {
				found = true
			}
		}
		if !found {
			t.Errorf("missing milestone %v %s", prog, stage)
		}
	}
}

func TestRun_RejectsInvalidInput(t *testing.T) {
	o := New(Deps{})
	if _, err := o.Run(context.Background(), nil, nil, nil); !errors.Is(err, participant.ErrNoParticipants) {
		t.Errorf("empty: err = %v", err)
	}
	if _, err := o.Run(context.Background(), inputs("Cher", "Madonna"), nil, nil); !errors.Is(err, participant.ErrNoValidNames) {
		t.Errorf("single names: err = %v", err)
	}
	if err := Validate(inputs("Cher", "Jane Doe")); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestRun_FullyConfigured(t *testing.T) {
	s := &mockSearcher{searchFn: func(q search.Query) (*search.Response, error) {
		switch {
		case strings.Contains(q.Q, "linkedin.com") && strings.Contains(q.Q, "Jane Doe"):
			return &search.Response{OrganicResults: []search.OrganicResult{{
				Title:   "Jane Doe - Software Engineer - Acme Corp | LinkedIn",
				Link:    "https://www.linkedin.com/in/janedoe",
				Snippet: "Software Engineer at Acme Corp",
			}}}, nil
		case strings.Contains(q.Q, "linkedin.com"):
			return nil, errors.New("upstream 500")
		case strings.Contains(q.Q, "github.com"):
			return &search.Response{OrganicResults: []search.OrganicResult{{Link: "https://github.com/janedoe"}}}, nil
		default:
			return &search.Response{}, nil
		}
	}}
	gen := &mockGenerator{generateFn: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "most influential"):
			return `{"top":[{"name":"Jane Doe","score":0.92,"reason":"engineer"}]}`, nil
		case strings.Contains(prompt, "conversation starters"):
			return `{"points":["Ask about Acme"]}`, nil
		case strings.Contains(prompt, "teams"):
			return `{"teams":[{"members":["Jane Doe","Ada Lovelace"],"reason":"pair","skills":["Go"]}]}`, nil
		}
		return "", errors.New("unexpected prompt")
	}}
	o := New(Deps{Search: s, Generator: gen, Sleep: noSleep, SocialPause: time.Second})

	manual := participant.Input{Name: "Ada Lovelace", LinkedInData: map[string]any{
		"headline":  "Mathematician at Analytical Engines",
		"education": []any{map[string]any{"school": "Cambridge"}},
		"skills":    []any{"Math"},
	}}
	reference := &participant.Input{Name: "Me Myself", LinkedInData: map[string]any{
		"education": []any{map[string]any{"school": "Cambridge"}},
	}}
	in := append(inputs("Jane Doe", "John Smith"), manual)

	var events []participant.Progress
	res, err := o.Run(context.Background(), in, reference, collect(&events))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	jane := res.Participants[0]
	if jane.LinkedInData == nil || jane.LinkedInData.CurrentPosition != "Software Engineer" || jane.LinkedInData.Company != "Acme Corp" {
		t.Fatalf("jane profile = %+v", jane.LinkedInData)
	}
	if res.Participants[1].LinkedInData != nil {
		t.Error("failed lookup produced a profile")
	}
	if res.Participants[2].LinkedInData == nil || res.Participants[2].Background == nil {
		t.Error("manual data not used")
	}

	// Only the two profiled participants are ranked.
	if len(res.HeavyHitters) != 2 || res.HeavyHitters[0].Name != "Jane Doe" || *res.HeavyHitters[0].Score != 0.92 {
		t.Errorf("heavy hitters = %+v", res.HeavyHitters)
	}
	if res.HeavyHitters[0].SocialMedia == nil || res.HeavyHitters[0].SocialMedia.GitHub != "https://github.com/janedoe" {
		t.Errorf("social = %+v", res.HeavyHitters[0].SocialMedia)
	}
	if res.Participants[0].SocialMedia == nil {
		t.Error("social bundle not copied to participant list")
	}
	if res.Participants[1].SocialMedia != nil {
		t.Error("non heavy hitter got social data")
	}
	if res.TalkingPoints[0].Points[0] != "Ask about Acme" {
		t.Errorf("talking points = %+v", res.TalkingPoints)
	}

	if len(res.SimilarBackgrounds) != 1 || res.SimilarBackgrounds[0].Participant2Name != "Ada Lovelace" || res.SimilarBackgrounds[0].SimilarityScore != 0.4 {
		t.Errorf("similar = %+v", res.SimilarBackgrounds)
	}
	if len(res.TeamSuggestions) != 1 || len(res.TeamSuggestions[0].Participants) != 2 {
		t.Errorf("teams = %+v", res.TeamSuggestions)
	}

	if last := events[len(events)-1]; last.Message != "Analysis complete! Found LinkedIn data for 2 of 3 participants" {
		t.Errorf("complete message = %q", last.Message)
	}
}

func TestRun_ReferenceNeverMatchesItself(t *testing.T) {
	data := map[string]any{"education": []any{map[string]any{"school": "MIT"}}}
	in := []participant.Input{{Name: "Jane Doe", LinkedInData: data}, {Name: "John Smith", LinkedInData: data}}

	res, err := New(Deps{Sleep: noSleep}).Run(context.Background(), in, &participant.Input{Name: "jane  doe"}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.SimilarBackgrounds) != 1 || res.SimilarBackgrounds[0].Participant2Name != "John Smith" {
		t.Errorf("similar = %+v", res.SimilarBackgrounds)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Deps{}).Run(ctx, inputs("Jane Doe"), nil, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestStream_EndsWithResult(t *testing.T) {
	var events []Event
	for e := range New(Deps{Sleep: noSleep}).Stream(context.Background(), inputs("Jane Doe", "John Smith"), nil) {
		events = append(events, e)
	}
	if len(events) < 2 {
		t.Fatalf("events = %d", len(events))
	}
	last := events[len(events)-1]
	if last.Result == nil || len(last.Result.Participants) != 2 {
		t.Errorf("last event = %+v", last)
	}
	for _, e := range events[:len(events)-1] {
		if e.Terminal() {
			t.Errorf("terminal event before end: %+v", e)
		}
	}
}

func TestStream_ErrorEvents(t *testing.T) {
	tests := []struct {
		name   string
		deps   Deps
		inputs []participant.Input
		want   string
	}{
		{"invalid input", Deps{}, inputs("Cher"), "no valid participant names"},
		{"panic", Deps{Sleep: noSleep, Generator: &mockGenerator{generateFn: func(string) (string, error) {
			panic("generator exploded")
		}}}, inputs("Jane Doe"), "generator exploded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var last Event
			for e := range New(tt.deps).Stream(context.Background(), tt.inputs, nil) {
				last = e
			}
			if !strings.Contains(last.Error, tt.want) {
				t.Errorf("last event = %+v, want error containing %q", last, tt.want)
			}
		})
	}
}
