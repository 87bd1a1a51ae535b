// Package social discovers micro-blog and code-hosting profiles for a person
// through web search.
package social

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/kalambet/hackmix/internal/participant"
	"github.com/kalambet/hackmix/internal/ratelimit"
	"github.com/kalambet/hackmix/internal/search"
)

// DefaultPause is the courtesy delay between people in FindBatch.
const DefaultPause = 500 * time.Millisecond

var (
	// reserved are first path segments that are site features, not handles.
	reserved = map[string]bool{
		"search": true, "hashtag": true, "i": true,
		"home": true, "intent": true, "share": true,
	}
	githubProfileRe = regexp.MustCompile(`^https?://(?:www\.)?github\.com/[^/?#]+/?$`)
)

// Searcher is the subset of search.Client the resolver needs.
type Searcher interface {
	Configured() bool
	Search(ctx context.Context, q search.Query) (*search.Response, error)
}

// Config wires a Resolver. A nil Limiter gets a private 10/min limiter.
type Config struct {
	Search  Searcher
	Limiter *ratelimit.Limiter
	Pause   time.Duration
	Sleep   func(context.Context, time.Duration) error
}

type Resolver struct {
	search  Searcher
	limiter *ratelimit.Limiter
	pause   time.Duration
	sleep   func(context.Context, time.Duration) error

	warnOnce sync.Once
}

func New(cfg Config) *Resolver {
	r := &Resolver{
		search:  cfg.Search,
		limiter: cfg.Limiter,
		pause:   cfg.Pause,
		sleep:   cfg.Sleep,
	}
	if r.limiter == nil {
		r.limiter = ratelimit.New(ratelimit.Options{MaxRequests: 10, Window: time.Minute})
	}
	if r.sleep == nil {
		r.sleep = sleepCtx
	}
	return r
}

// Configured reports whether lookups can reach the search backend.
func (r *Resolver) Configured() bool {
	return r.search != nil && r.search.Configured()
}

// Find looks up one micro-blog handle and one code-hosting profile for name.
// Absence of either is a valid empty result.
func (r *Resolver) Find(ctx context.Context, name, company string) participant.SocialProfiles {
	var out participant.SocialProfiles
	if !r.Configured() {
		r.warnOnce.Do(func() {
			slog.Warn("social: search not configured, skipping social lookup")
		})
		return out
	}
	out.Twitter = r.findTwitter(ctx, name, company)
	out.GitHub = r.findGitHub(ctx, name, company)
	return out
}

// Person is one FindBatch input.
type Person struct {
	Name    string
	Company string
}

// FindBatch runs Find for each person in order with a pause between people.
// onProgress, if non-nil, is called after each person with (done, total).
func (r *Resolver) FindBatch(ctx context.Context, people []Person, onProgress func(done, total int)) []participant.SocialProfiles {
	out := make([]participant.SocialProfiles, len(people))
	for i, p := range people {
		if i > 0 && r.pause > 0 && r.Configured() {
			if err := r.sleep(ctx, r.pause); err != nil {
				return out
			}
		}
		out[i] = r.Find(ctx, p.Name, p.Company)
		if onProgress != nil {
			onProgress(i+1, len(people))
		}
	}
	return out
}

func (r *Resolver) run(ctx context.Context, q search.Query) (*search.Response, error) {
	return ratelimit.Call(ctx, r.limiter, func(ctx context.Context) (*search.Response, error) {
		return r.search.Search(ctx, q)
	})
}

func (r *Resolver) findTwitter(ctx context.Context, name, company string) *participant.TwitterProfile {
	q := name
	if company != "" {
		q += " " + company
	}
	resp, err := r.run(ctx, search.Query{Q: q + " site:twitter.com OR site:x.com", Num: 3})
	if err != nil {
		slog.Warn("social: micro-blog search failed", "name", name, "error", err)
		return nil
	}

	for _, res := range resp.OrganicResults {
		handle := TwitterHandle(res.Link)
		if handle == "" {
			continue
		}
		tp := &participant.TwitterProfile{Handle: "@" + handle, Bio: strings.TrimSpace(res.Snippet)}
		r.enrichTwitter(ctx, handle, tp)
		return tp
	}
	return nil
}

// enrichTwitter fills bio, recent posts and follower count. Failure leaves tp
// as discovered.
func (r *Resolver) enrichTwitter(ctx context.Context, handle string, tp *participant.TwitterProfile) {
	resp, err := r.run(ctx, search.Query{Engine: "twitter", Q: "from:" + handle, Num: 5})
	if err != nil {
		slog.Debug("social: micro-blog detail lookup failed", "handle", handle, "error", err)
		return
	}

	for _, t := range resp.Tweets {
		if len(tp.RecentTweets) == 5 {
			break
		}
		if body := t.Body(); body != "" {
			tp.RecentTweets = append(tp.RecentTweets, body)
		}
	}
	if len(tp.RecentTweets) == 0 {
		for _, res := range resp.OrganicResults {
			if len(tp.RecentTweets) == 5 {
				break
			}
			if s := strings.TrimSpace(res.Snippet); s != "" {
				tp.RecentTweets = append(tp.RecentTweets, s)
			}
		}
	}
	if resp.Profile != nil {
		if bio := first(resp.Profile.Bio, resp.Profile.Description); bio != "" {
			tp.Bio = bio
		}
		tp.Followers = resp.Profile.FollowersCount
	}
}

func (r *Resolver) findGitHub(ctx context.Context, name, company string) string {
	q := name + " developer site:github.com"
	if company != "" {
		q = name + " " + company + " site:github.com"
	}
	resp, err := r.run(ctx, search.Query{Q: q, Num: 3})
	if err != nil {
		slog.Warn("social: code-hosting search failed", "name", name, "error", err)
		return ""
	}
	for _, res := range resp.OrganicResults {
		if IsGitHubProfile(res.Link) {
			return res.Link
		}
	}
	return ""
}

// TwitterHandle extracts the account handle from a micro-blog URL, or ""
// when link is not a profile on twitter.com or x.com.
func TwitterHandle(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(u.Hostname()))
	if err != nil || (domain != "twitter.com" && domain != "x.com") {
		return ""
	}
	seg, _, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if seg == "" || reserved[strings.ToLower(seg)] {
		return ""
	}
	return seg
}

// IsGitHubProfile reports whether link is exactly github.com/<user> with an
// optional trailing slash.
func IsGitHubProfile(link string) bool {
	return githubProfileRe.MatchString(link)
}

func first(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
