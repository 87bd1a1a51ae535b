package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultRetryAfter is used when a 429 response carries no usable
// Retry-After header.
const DefaultRetryAfter = 60 * time.Second

// RetryError reports an explicit rate-limit signal from an upstream service.
type RetryError struct {
	Status     int
	RetryAfter time.Duration
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("rate limited (status %d), retry after %s", e.Status, e.RetryAfter)
}

// ParseRetryAfter reads a Retry-After header given either in seconds or as an
// HTTP date. It returns def when the header is missing or malformed.
func ParseRetryAfter(h http.Header, def time.Duration) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
		return 0
	}
	return def
}

// Call runs fn under l: it awaits admission, and on a *RetryError backs off and
// retries exactly once. Only a successful attempt is recorded.
func Call[T any](ctx context.Context, l *Limiter, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := l.Await(ctx); err != nil {
		return zero, err
	}
	v, err := fn(ctx)
	if err == nil {
		l.Record()
		return v, nil
	}

	var rl *RetryError
	if !errors.As(err, &rl) {
		return zero, err
	}
	if err := l.Backoff(ctx, rl.RetryAfter); err != nil {
		return zero, err
	}
	if err := l.Await(ctx); err != nil {
		return zero, err
	}
	v, err = fn(ctx)
	if err != nil {
		return zero, fmt.Errorf("after backoff: %w", err)
	}
	l.Record()
	return v, nil
}
