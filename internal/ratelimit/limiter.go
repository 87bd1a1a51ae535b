// Package ratelimit implements a sliding-window admission controller shared by
// every outbound enrichment call within one analysis run.
package ratelimit

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

const maxJitter = time.Second

// Observer receives limiter events. Implementations must be safe for
// concurrent use.
type Observer interface {
	Admitted()
	Waited(d time.Duration)
	BackedOff(d time.Duration)
}

// Options configures a Limiter. Jitter defaults to true when nil.
type Options struct {
	MaxRequests int
	Window      time.Duration
	Jitter      *bool
}

// Option customises a Limiter beyond Options; mostly useful in tests.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithSleep replaces the context-aware sleep used by Await and Backoff.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(l *Limiter) { l.sleep = sleep }
}

// WithJitterSource replaces the random jitter source. It must return a
// value in [0, max).
func WithJitterSource(fn func(max time.Duration) time.Duration) Option {
	return func(l *Limiter) { l.jitterFn = fn }
}

// WithObserver attaches an event observer such as a metrics collector.
func WithObserver(o Observer) Option {
	return func(l *Limiter) { l.obs = o }
}

// Limiter admits at most MaxRequests recorded calls per Window.
type Limiter struct {
	max    int
	window time.Duration
	jitter bool

	mu         sync.Mutex
	timestamps []time.Time

	now      func() time.Time
	sleep    func(context.Context, time.Duration) error
	jitterFn func(time.Duration) time.Duration
	obs      Observer
}

// New creates a Limiter. Non-positive MaxRequests or Window fall back to
// 10 requests per minute.
func New(o Options, opts ...Option) *Limiter {
	l := &Limiter{
		max:      o.MaxRequests,
		window:   o.Window,
		jitter:   o.Jitter == nil || *o.Jitter,
		now:      time.Now,
		sleep:    sleepCtx,
		jitterFn: randomJitter,
	}
	if l.max <= 0 {
		l.max = 10
	}
	if l.window <= 0 {
		l.window = time.Minute
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CanAdmit reports whether another call may start now. Expired timestamps
// are pruned as a side effect.
func (l *Limiter) CanAdmit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(l.now())
	return len(l.timestamps) < l.max
}

// Await blocks until CanAdmit would return true or ctx is done. The window is
// re-evaluated after every sleep since other callers may record in between.
func (l *Limiter) Await(ctx context.Context) error {
	for {
		wait, ok := l.nextWait()
		if ok {
			if l.obs != nil {
				l.obs.Admitted()
			}
			return nil
		}
		if l.jitter {
			wait += l.jitterFn(maxJitter)
		}
		if l.obs != nil {
			l.obs.Waited(wait)
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// nextWait returns (0, true) when a call may start now, otherwise the time
// until the oldest counted timestamp leaves the window.
func (l *Limiter) nextWait() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.pruneLocked(now)
	if len(l.timestamps) < l.max {
		return 0, true
	}
	wait := l.timestamps[0].Add(l.window).Sub(now)
	if wait < 0 {
		wait = 0
	}
	return wait, false
}

// Record charges one admission at the current time. Call it only after the
// guarded action succeeded.
func (l *Limiter) Record() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.timestamps = append(l.timestamps, l.now())
}

// Backoff honours an explicit rate-limit signal: it sleeps retryAfter (plus
// jitter) and then forgets every recorded admission.
func (l *Limiter) Backoff(ctx context.Context, retryAfter time.Duration) error {
	if retryAfter < 0 {
		retryAfter = 0
	}
	d := retryAfter
	if l.jitter {
		d += l.jitterFn(maxJitter)
	}
	if l.obs != nil {
		l.obs.BackedOff(d)
	}
	if err := l.sleep(ctx, d); err != nil {
		return err
	}
	l.mu.Lock()
	l.timestamps = nil
	l.mu.Unlock()
	return nil
}

// Count returns the number of admissions inside the current window.
func (l *Limiter) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(l.now())
	return len(l.timestamps)
}

// EstimatedWait returns how long a caller would wait right now, excluding
// jitter.
func (l *Limiter) EstimatedWait() time.Duration {
	wait, _ := l.nextWait()
	return wait
}

func (l *Limiter) pruneLocked(now time.Time) {
	i := 0
	for i < len(l.timestamps) && now.Sub(l.timestamps[i]) >= l.window {
		i++
	}
	if i > 0 {
		l.timestamps = append(l.timestamps[:0], l.timestamps[i:]...)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func randomJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return rand.N(max)
}
