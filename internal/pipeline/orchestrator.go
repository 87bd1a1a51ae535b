// Package pipeline drives an analysis run: profile resolution, ranking,
// social discovery, talking points, similarity and team suggestions.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kalambet/hackmix/internal/engine"
	"github.com/kalambet/hackmix/internal/metrics"
	"github.com/kalambet/hackmix/internal/narrative"
	"github.com/kalambet/hackmix/internal/participant"
	"github.com/kalambet/hackmix/internal/profile"
	"github.com/kalambet/hackmix/internal/ranking"
	"github.com/kalambet/hackmix/internal/ratelimit"
	"github.com/kalambet/hackmix/internal/search"
	"github.com/kalambet/hackmix/internal/similarity"
	"github.com/kalambet/hackmix/internal/social"
	"github.com/kalambet/hackmix/internal/teams"
)

// Stage names reported in progress events.
const (
	StageOrganize = "organizing"
	StageFetch    = "fetching"
	StageRank     = "ranking"
	StageSocial   = "social"
	StageTalking  = "talking_points"
	StageMatch    = "matching"
	StageComplete = "complete"
)

// Searcher is the web-search capability shared by the profile and social
// resolvers. *search.Client satisfies it.
type Searcher interface {
	Configured() bool
	Search(ctx context.Context, q search.Query) (*search.Response, error)
}

// Generator is the text-generation capability shared by ranking, teams and
// narrative. *engine.Generator satisfies it.
type Generator interface {
	Configured() bool
	Generate(ctx context.Context, system, prompt string, schema *engine.Schema) (string, error)
}

// Deps holds the long-lived collaborators and settings. Every run builds its
// own resolvers and limiters from it; nothing mutable is shared across runs.
type Deps struct {
	Search    Searcher
	LinkedIn  *profile.LinkedInClient
	Generator Generator
	Metrics   *metrics.Manager

	// SearchLimit sizes each per-run resolver limiter.
	SearchLimit ratelimit.Options

	TopN        int
	TeamSize    int
	SocialPause time.Duration

	// Sleep replaces real sleeping in limiters and pauses. Tests only.
	Sleep func(context.Context, time.Duration) error
}

type Orchestrator struct {
	deps Deps
}

func New(deps Deps) *Orchestrator {
	if deps.TopN < 1 {
		deps.TopN = ranking.DefaultTopN
	}
	if deps.TeamSize < 2 {
		deps.TeamSize = teams.DefaultTeamSize
	}
	if deps.SocialPause < 0 {
		deps.SocialPause = 0
	}
	return &Orchestrator{deps: deps}
}

// Validate applies the ingestion rules without running anything.
func Validate(inputs []participant.Input) error {
	_, _, err := participant.Ingest(inputs)
	return err
}

// run is the per-invocation state.
type run struct {
	profiles *profile.Resolver
	social   *social.Resolver
	ranker   *ranking.Ranker
	writer   *narrative.Writer
	composer *teams.Composer
}

func (o *Orchestrator) newRun() *run {
	d := o.deps
	var opts []ratelimit.Option
	if d.Sleep != nil {
		opts = append(opts, ratelimit.WithSleep(d.Sleep))
	}
	limiter := func(name string) *ratelimit.Limiter {
		return ratelimit.New(d.SearchLimit, append(opts, ratelimit.WithObserver(d.Metrics.Limiter(name)))...)
	}

	return &run{
		profiles: profile.New(profile.Config{
			Search:   d.Search,
			LinkedIn: d.LinkedIn,
			Limiter:  limiter("profile"),
			Metrics:  d.Metrics,
		}),
		social: social.New(social.Config{
			Search:  d.Search,
			Limiter: limiter("social"),
			Pause:   d.SocialPause,
			Sleep:   d.Sleep,
		}),
		ranker:   ranking.New(d.Generator, d.Metrics),
		writer:   narrative.New(d.Generator, d.Metrics),
		composer: teams.New(d.Generator, d.Metrics),
	}
}

// Run executes one analysis. emit, if non-nil, receives progress events in
// order. The only errors returned are ingestion failures and context
// cancellation; every collaborator failure degrades to a partial result.
func (o *Orchestrator) Run(ctx context.Context, inputs []participant.Input, reference *participant.Input, emit func(participant.Progress)) (participant.Result, error) {
	if emit == nil {
		emit = func(participant.Progress) {}
	}
	m := o.deps.Metrics
	result := participant.EmptyResult()

	people, manual, err := participant.Ingest(inputs)
	if err != nil {
		m.RecordRun("invalid")
		return result, err
	}
	emit(participant.Progress{Stage: StageOrganize, Progress: 0.2, Message: fmt.Sprintf("Organized %d participants", len(people))})

	r := o.newRun()

	// Profiles, sequentially in input order.
	start := time.Now()
	emit(participant.Progress{Stage: StageFetch, Progress: 0.3, Message: "Fetching LinkedIn profiles..."})
	found := 0
	for i := range people {
		if err := ctx.Err(); err != nil {
			m.RecordRun("error")
			return result, err
		}
		p := &people[i]
		emit(participant.Progress{
			Stage:    StageFetch,
			Progress: 0.3 + float64(i)/float64(len(people))*0.3,
			Message:  fmt.Sprintf("Looking up %s (%d/%d)", p.Name, i+1, len(people)),
		})
		prof := r.profiles.Resolve(ctx, profile.Query{
			Name:        p.Name,
			Company:     p.Company,
			LinkedInURL: p.LinkedInURL,
			Manual:      manual[p.ID],
		})
		if prof == nil {
			continue
		}
		found++
		p.LinkedInData = prof
		p.Background = participant.BackgroundOf(prof)
		if p.Company == "" {
			p.Company = prof.Company
		}
	}
	emit(participant.Progress{
		Stage:    StageFetch,
		Progress: 0.6,
		Message:  fmt.Sprintf("Found LinkedIn data for %d of %d participants", found, len(people)),
	})
	m.ObserveStage(StageFetch, time.Since(start))

	// Ranking over the profiled subset, or everyone when nobody resolved.
	start = time.Now()
	emit(participant.Progress{Stage: StageRank, Progress: 0.7, Message: "Identifying heavy hitters..."})
	pool := make([]participant.Participant, 0, len(people))
	for _, p := range people {
		if p.LinkedInData != nil {
			pool = append(pool, p)
		}
	}
	if len(pool) == 0 {
		pool = people
	}
	heavy := r.ranker.Rank(ctx, pool, o.deps.TopN)
	m.ObserveStage(StageRank, time.Since(start))

	// Social discovery for heavy hitters only.
	start = time.Now()
	emit(participant.Progress{Stage: StageSocial, Progress: 0.75, Message: "Finding social media profiles..."})
	batch := make([]social.Person, len(heavy))
	for i, h := range heavy {
		batch[i] = social.Person{Name: h.Name, Company: companyOf(h)}
	}
	bundles := r.social.FindBatch(ctx, batch, func(done, total int) {
		emit(participant.Progress{
			Stage:    StageSocial,
			Progress: 0.75 + float64(done)/float64(total)*0.1,
			Message:  fmt.Sprintf("Checked social profiles for %d of %d heavy hitters", done, total),
		})
	})
	byID := make(map[string]*participant.SocialProfiles, len(heavy))
	for i := range heavy {
		sp := bundles[i]
		heavy[i].SocialMedia = &sp
		byID[heavy[i].ID] = &sp
	}
	for i := range people {
		if sp, ok := byID[people[i].ID]; ok {
			people[i].SocialMedia = sp
		}
	}
	m.ObserveStage(StageSocial, time.Since(start))

	// Talking points, sequentially.
	start = time.Now()
	emit(participant.Progress{Stage: StageTalking, Progress: 0.85, Message: "Generating talking points..."})
	points := make([]participant.TalkingPoint, 0, len(heavy))
	for _, h := range heavy {
		points = append(points, participant.TalkingPoint{
			ParticipantID:   h.ID,
			ParticipantName: h.Name,
			Points:          r.writer.TalkingPoints(ctx, h),
			Source:          narrative.SourceProfile,
		})
	}
	m.ObserveStage(StageTalking, time.Since(start))

	// Similarity and teams are independent.
	start = time.Now()
	emit(participant.Progress{Stage: StageMatch, Progress: 0.9, Message: "Finding similar backgrounds and suggesting teams..."})
	matches := []participant.SimilarityMatch{}
	suggestions := []participant.TeamSuggestion{}
	var g errgroup.Group
	if ref := referenceParticipant(reference, people); ref != nil {
		g.Go(func() error {
			matches = similarity.Match(people, *ref)
			return nil
		})
	}
	g.Go(func() error {
		suggestions = r.composer.Suggest(ctx, people, o.deps.TeamSize)
		return nil
	})
	_ = g.Wait()
	m.ObserveStage(StageMatch, time.Since(start))

	msg := fmt.Sprintf("Analysis complete! Found LinkedIn data for %d of %d participants", found, len(people))
	if found == 0 {
		msg = "Analysis complete! No LinkedIn data found, results are based on names only"
	}
	emit(participant.Progress{Stage: StageComplete, Progress: 1.0, Message: msg})
	m.RecordRun("ok")
	slog.Info("pipeline: run complete",
		"participants", len(people),
		"profiles", found,
		"heavy_hitters", len(heavy),
		"teams", len(suggestions),
	)

	result.Participants = people
	result.HeavyHitters = heavy
	result.TalkingPoints = points
	result.SimilarBackgrounds = matches
	result.TeamSuggestions = suggestions
	return result, nil
}

// referenceParticipant turns the caller's own record into a participant. A
// participant with the same name lends its ID, which keeps the caller from
// being matched against themselves, and its resolved profile when the
// reference carries none.
func referenceParticipant(in *participant.Input, people []participant.Participant) *participant.Participant {
	if in == nil {
		return nil
	}
	name := strings.Join(strings.Fields(in.Name), " ")
	ref := &participant.Participant{Name: name, Company: strings.TrimSpace(in.Company)}
	ref.LinkedInData = profile.NormalizeManual(in.LinkedInData)
	for _, p := range people {
		if name != "" && strings.EqualFold(p.Name, name) {
			ref.ID = p.ID
			if ref.LinkedInData == nil {
				ref.LinkedInData = p.LinkedInData
			}
			break
		}
	}
	if ref.ID == "" {
		ref.ID = participant.NewID(name)
	}
	ref.Background = participant.BackgroundOf(ref.LinkedInData)
	if ref.Background == nil {
		return nil
	}
	return ref
}

func companyOf(p participant.Participant) string {
	if p.LinkedInData != nil && p.LinkedInData.Company != "" {
		return p.LinkedInData.Company
	}
	return p.Company
}
