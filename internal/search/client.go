// Package search is a thin client for a SerpAPI-compatible web search
// endpoint. It performs no rate limiting of its own; callers wrap each call in
// a ratelimit.Limiter and rely on *ratelimit.RetryError for 429 responses.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kalambet/hackmix/internal/ratelimit"
)

const (
	DefaultBaseURL = "https://serpapi.com"
	defaultTimeout = 30 * time.Second

	// placeholderKey is the value shipped in sample env files; it counts as unset.
	placeholderKey = "your_serpapi_api_key_here"
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("search: api key not configured")

// StatusError is a non-2xx, non-429 response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search: unexpected status %d: %s", e.Code, e.Body)
}

// Client queries the search API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL (DefaultBaseURL when empty).
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Configured reports whether the client holds a usable API key. A nil
// client is unconfigured.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != "" && c.apiKey != placeholderKey
}

// Query is one search request. Engine defaults to "google".
type Query struct {
	Engine string
	Q      string
	Num    int
}

// Search runs q and decodes the response. A 429 is reported as
// *ratelimit.RetryError; any other non-2xx as *StatusError.
func (c *Client) Search(ctx context.Context, q Query) (*Response, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	engine := q.Engine
	if engine == "" {
		engine = "google"
	}
	params.Set("engine", engine)
	params.Set("q", q.Q)
	params.Set("api_key", c.apiKey)
	if q.Num > 0 {
		params.Set("num", strconv.Itoa(q.Num))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("search: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &ratelimit.RetryError{
			Status:     resp.StatusCode,
			RetryAfter: ratelimit.ParseRetryAfter(resp.Header, ratelimit.DefaultRetryAfter),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("search: decoding response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("search: api error: %s", out.Error)
	}
	return &out, nil
}
