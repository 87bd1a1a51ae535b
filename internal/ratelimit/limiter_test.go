package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Sleep advances the clock instead of blocking and remembers each duration.
type fakeSleeper struct {
	clock  *fakeClock
	mu     sync.Mutex
	sleeps []time.Duration
}

func (s *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.sleeps = append(s.sleeps, d)
	s.mu.Unlock()
	s.clock.Advance(d)
	return nil
}

func noJitter() *bool { b := false; return &b }

func newTestLimiter(max int, window time.Duration, jitter *bool) (*Limiter, *fakeClock, *fakeSleeper) {
	clock := newFakeClock()
	sl := &fakeSleeper{clock: clock}
	l := New(Options{MaxRequests: max, Window: window, Jitter: jitter},
		WithClock(clock.Now), WithSleep(sl.Sleep),
		WithJitterSource(func(time.Duration) time.Duration { return 250 * time.Millisecond }))
	return l, clock, sl
}

func TestLimiter_FullWindowThenRecovers(t *testing.T) {
	l, clock, _ := newTestLimiter(3, time.Minute, noJitter())

	for i := 0; i < 3; i++ {
		if !l.CanAdmit() {
			t.Fatalf("CanAdmit() = false after %d records, want true", i)
		}
		l.Record()
	}
	if l.CanAdmit() {
		t.Fatal("CanAdmit() = true at capacity, want false")
	}

	clock.Advance(time.Minute - time.Millisecond)
	if l.CanAdmit() {
		t.Fatal("CanAdmit() = true just before window end, want false")
	}
	clock.Advance(time.Millisecond)
	if !l.CanAdmit() {
		t.Fatal("CanAdmit() = false after window elapsed, want true")
	}
	if got := l.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0 after prune", got)
	}
}

func TestLimiter_AwaitSleepsUntilOldestExpires(t *testing.T) {
	l, clock, sl := newTestLimiter(2, 10*time.Second, noJitter())
	l.Record()
	clock.Advance(4 * time.Second)
	l.Record()

	if got := l.EstimatedWait(); got != 6*time.Second {
		t.Fatalf("EstimatedWait() = %v, want 6s", got)
	}
	if err := l.Await(context.Background()); err != nil {
		t.Fatalf("Await: %v", err)
	}
	if len(sl.sleeps) != 1 || sl.sleeps[0] != 6*time.Second {
		t.Errorf("sleeps = %v, want [6s]", sl.sleeps)
	}
	if !l.CanAdmit() {
		t.Error("CanAdmit() = false after Await returned")
	}
}

func TestLimiter_AwaitAddsJitter(t *testing.T) {
	l, _, sl := newTestLimiter(1, time.Second, nil)
	l.Record()
	if err := l.Await(context.Background()); err != nil {
		t.Fatalf("Await: %v", err)
	}
	if len(sl.sleeps) != 1 || sl.sleeps[0] != 1250*time.Millisecond {
		t.Errorf("sleeps = %v, want [1.25s]", sl.sleeps)
	}
}

func TestLimiter_AwaitRechecksAfterConcurrentRecord(t *testing.T) {
	clock := newFakeClock()
	var l *Limiter
	sleeps := 0
	sleep := func(ctx context.Context, d time.Duration) error {
		sleeps++
		clock.Advance(d)
		if sleeps == 1 {
			// Another caller grabs the freed slot while we slept.
			l.Record()
		}
		return nil
	}
	l = New(Options{MaxRequests: 1, Window: time.Second, Jitter: noJitter()},
		WithClock(clock.Now), WithSleep(sleep))
	l.Record()

	if err := l.Await(context.Background()); err != nil {
		t.Fatalf("Await: %v", err)
	}
	if sleeps != 2 {
		t.Errorf("sleeps = %d, want 2", sleeps)
	}
}

func TestLimiter_AwaitHonoursContext(t *testing.T) {
	l := New(Options{MaxRequests: 1, Window: time.Hour, Jitter: noJitter()})
	l.Record()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Await(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Await err = %v, want deadline exceeded", err)
	}
}

func TestLimiter_BackoffClearsWindow(t *testing.T) {
	l, _, sl := newTestLimiter(2, time.Minute, nil)
	l.Record()
	l.Record()
	if err := l.Backoff(context.Background(), 3*time.Second); err != nil {
		t.Fatalf("Backoff: %v", err)
	}
	if len(sl.sleeps) != 1 || sl.sleeps[0] != 3250*time.Millisecond {
		t.Errorf("sleeps = %v, want [3.25s]", sl.sleeps)
	}
	if got := l.Count(); got != 0 {
		t.Errorf("Count() = %d after backoff, want 0", got)
	}
}

func TestLimiter_ConcurrentRecord(t *testing.T) {
	l := New(Options{MaxRequests: 1000, Window: time.Minute})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				l.Record()
				l.CanAdmit()
			}
		}()
	}
	wg.Wait()
	if got := l.Count(); got != 500 {
		t.Errorf("Count() = %d, want 500", got)
	}
}

type countingObserver struct {
	admitted, waited, backedOff int
}

func (o *countingObserver) Admitted()               { o.admitted++ }
func (o *countingObserver) Waited(time.Duration)    { o.waited++ }
func (o *countingObserver) BackedOff(time.Duration) { o.backedOff++ }

func TestCall_RetriesOnceOnRetryError(t *testing.T) {
	obs := &countingObserver{}
	clock := newFakeClock()
	sl := &fakeSleeper{clock: clock}
	l := New(Options{MaxRequests: 5, Window: time.Minute, Jitter: noJitter()},
		WithClock(clock.Now), WithSleep(sl.Sleep), WithObserver(obs))

	calls := 0
	got, err := Call(context.Background(), l, func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", &RetryError{Status: 429, RetryAfter: 2 * time.Second}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != "ok" || calls != 2 {
		t.Errorf("got %q after %d calls, want ok after 2", got, calls)
	}
	if l.Count() != 1 {
		t.Errorf("Count() = %d, want 1 (only success recorded)", l.Count())
	}
	if obs.backedOff != 1 || obs.admitted != 2 {
		t.Errorf("observer = %+v", obs)
	}
}

func TestCall_SecondRateLimitGivesUp(t *testing.T) {
	l, _, _ := newTestLimiter(5, time.Minute, noJitter())
	calls := 0
	_, err := Call(context.Background(), l, func(context.Context) (int, error) {
		calls++
		return 0, &RetryError{Status: 429, RetryAfter: time.Second}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if l.Count() != 0 {
		t.Errorf("Count() = %d, want 0", l.Count())
	}
}

func TestCall_PlainErrorNotRetried(t *testing.T) {
	l, _, _ := newTestLimiter(5, time.Minute, noJitter())
	calls := 0
	_, err := Call(context.Background(), l, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("boom")
	})
	if err == nil || calls != 1 {
		t.Fatalf("err = %v calls = %d, want error after 1 call", err, calls)
	}
}

func TestParseRetryAfter(t *testing.T) {
	h := http.Header{}
	if got := ParseRetryAfter(h, DefaultRetryAfter); got != DefaultRetryAfter {
		t.Errorf("missing header = %v, want default", got)
	}
	h.Set("Retry-After", "12")
	if got := ParseRetryAfter(h, DefaultRetryAfter); got != 12*time.Second {
		t.Errorf("seconds = %v, want 12s", got)
	}
	h.Set("Retry-After", "soon")
	if got := ParseRetryAfter(h, 5*time.Second); got != 5*time.Second {
		t.Errorf("garbage = %v, want 5s", got)
	}
}
