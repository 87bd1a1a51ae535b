package social

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kalambet/hackmix/internal/ratelimit"
	"github.com/kalambet/hackmix/internal/search"
)

type mockSearcher struct {
	configured bool
	searchFn   func(q search.Query) (*search.Response, error)
	queries    []search.Query
}

func (m *mockSearcher) Configured() bool { return m.configured }

func (m *mockSearcher) Search(_ context.Context, q search.Query) (*search.Response, error) {
	m.queries = append(m.queries, q)
	return m.searchFn(q)
}

func noSleep(context.Context, time.Duration) error { return nil }

func testLimiter() *ratelimit.Limiter {
	off := false
	return ratelimit.New(ratelimit.Options{MaxRequests: 100, Window: time.Minute, Jitter: &off},
		ratelimit.WithSleep(noSleep))
}

func results(links ...string) *search.Response {
	r := &search.Response{}
	for _, l := range links {
		r.OrganicResults = append(r.OrganicResults, search.OrganicResult{Link: l, Snippet: "snippet for " + l})
	}
	return r
}

func TestFind_DiscoversBoth(t *testing.T) {
	followers := 1200
	m := &mockSearcher{configured: true, searchFn: func(q search.Query) (*search.Response, error) {
		switch {
		case q.Engine == "twitter":
			return &search.Response{
				Tweets:  []search.Tweet{{Text: "shipping today"}, {Snippet: ""}, {Content: "hello world"}},
				Profile: &search.SocialProfile{Description: "Builder", FollowersCount: &followers},
			}, nil
		case strings.Contains(q.Q, "site:twitter.com"):
			return results("https://twitter.com/search?q=jane", "https://x.com/janedoe/status/1"), nil
		default:
			return results("https://github.com/janedoe/repo", "https://github.com/janedoe/"), nil
		}
	}}
	r := New(Config{Search: m, Limiter: testLimiter()})

	got := r.Find(context.Background(), "Jane Doe", "Acme")
	if got.Twitter == nil || got.Twitter.Handle != "@janedoe" {
		t.Fatalf("twitter = %+v", got.Twitter)
	}
	if got.Twitter.Bio != "Builder" || len(got.Twitter.RecentTweets) != 2 {
		t.Errorf("twitter detail = %+v", got.Twitter)
	}
	if got.Twitter.Followers == nil || *got.Twitter.Followers != 1200 {
		t.Errorf("followers = %v", got.Twitter.Followers)
	}
	if got.GitHub != "https://github.com/janedoe/" {
		t.Errorf("github = %q", got.GitHub)
	}

	if m.queries[0].Q != "Jane Doe Acme site:twitter.com OR site:x.com" || m.queries[0].Num != 3 {
		t.Errorf("twitter query = %+v", m.queries[0])
	}
	if m.queries[1].Q != "from:janedoe" || m.queries[1].Num != 5 {
		t.Errorf("detail query = %+v", m.queries[1])
	}
	if m.queries[2].Q != "Jane Doe Acme site:github.com" {
		t.Errorf("github query = %q", m.queries[2].Q)
	}
}

func TestFind_DetailFailureKeepsHandle(t *testing.T) {
	m := &mockSearcher{configured: true, searchFn: func(q search.Query) (*search.Response, error) {
		if q.Engine == "twitter" {
			return nil, errors.New("engine unavailable")
		}
		if strings.Contains(q.Q, "github") {
			return &search.Response{}, nil
		}
		return results("https://x.com/jsmith"), nil
	}}
	r := New(Config{Search: m, Limiter: testLimiter()})

	got := r.Find(context.Background(), "John Smith", "")
	if got.Twitter == nil || got.Twitter.Handle != "@jsmith" {
		t.Fatalf("twitter = %+v", got.Twitter)
	}
	if got.Twitter.Bio != "snippet for https://x.com/jsmith" {
		t.Errorf("bio = %q, want result snippet", got.Twitter.Bio)
	}
	if got.GitHub != "" {
		t.Errorf("github = %q, want empty", got.GitHub)
	}
	if m.queries[len(m.queries)-1].Q != "John Smith developer site:github.com" {
		t.Errorf("github query = %q", m.queries[len(m.queries)-1].Q)
	}
}

func TestFind_Unconfigured(t *testing.T) {
	r := New(Config{Search: search.NewClient("your_serpapi_api_key_here", "")})
	got := r.Find(context.Background(), "Jane Doe", "")
	if got.Twitter != nil || got.GitHub != "" {
		t.Errorf("got %+v, want empty bundle", got)
	}
}

func TestFindBatch_PausesBetweenPeople(t *testing.T) {
	m := &mockSearcher{configured: true, searchFn: func(search.Query) (*search.Response, error) {
		return &search.Response{}, nil
	}}
	var pauses []time.Duration
	r := New(Config{Search: m, Limiter: testLimiter(), Pause: DefaultPause, Sleep: func(_ context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}})

	var progress [][2]int
	out := r.FindBatch(context.Background(), []Person{{Name: "A B"}, {Name: "C D"}, {Name: "E F"}}, func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	if len(out) != 3 {
		t.Fatalf("len = %d", len(out))
	}
	if len(pauses) != 2 || pauses[0] != DefaultPause {
		t.Errorf("pauses = %v, want two of %v", pauses, DefaultPause)
	}
	if len(progress) != 3 || progress[2] != [2]int{3, 3} {
		t.Errorf("progress = %v", progress)
	}
}

func TestTwitterHandle(t *testing.T) {
	tests := []struct {
		link, want string
	}{
		{"https://twitter.com/janedoe", "janedoe"},
		{"https://mobile.twitter.com/janedoe/status/123", "janedoe"},
		{"https://x.com/jd?lang=en", "jd"},
		{"https://twitter.com/search?q=x", ""},
		{"https://twitter.com/hashtag/go", ""},
		{"https://x.com/i/lists/1", ""},
		{"https://x.com/", ""},
		{"https://notx.com/jd", ""},
	}
	for _, tt := range tests {
		if got := TwitterHandle(tt.link); got != tt.want {
			t.Errorf("TwitterHandle(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}

func TestIsGitHubProfile(t *testing.T) {
	tests := []struct {
		link string
		want bool
	}{
		{"https://github.com/janedoe", true},
		{"https://github.com/janedoe/", true},
		{"https://www.github.com/janedoe", true},
		{"https://github.com/janedoe/repo", false},
		{"https://gist.github.com/janedoe", false},
		{"https://github.com/", false},
	}
	for _, tt := range tests {
		if got := IsGitHubProfile(tt.link); got != tt.want {
			t.Errorf("IsGitHubProfile(%q) = %v, want %v", tt.link, got, tt.want)
		}
	}
}
