package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kalambet/hackmix/internal/participant"
	"github.com/kalambet/hackmix/internal/ratelimit"
)

const DefaultLinkedInBaseURL = "https://api.linkedin.com"

// LinkedInClient calls the authenticated professional-network API.
type LinkedInClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewLinkedInClient returns a client, or nil when token is empty.
func NewLinkedInClient(token, baseURL string) *LinkedInClient {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = DefaultLinkedInBaseURL
	}
	return &LinkedInClient{
		token:      token,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

type localized struct {
	Localized map[string]string `json:"localized"`
}

func (l *localized) en() string {
	if l == nil {
		return ""
	}
	return l.Localized["en_US"]
}

type apiPerson struct {
	LocalizedFirstName string     `json:"localizedFirstName"`
	LocalizedLastName  string     `json:"localizedLastName"`
	Headline           *localized `json:"headline"`
	Summary            *localized `json:"summary"`
	Location           *struct {
		Name string `json:"name"`
	} `json:"location"`
}

// Person fetches /v2/people/{id}. A 429 is returned as *ratelimit.RetryError.
func (c *LinkedInClient) Person(ctx context.Context, id, profileURL string) (*participant.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/people/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("linkedin request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &ratelimit.RetryError{
			Status:     resp.StatusCode,
			RetryAfter: ratelimit.ParseRetryAfter(resp.Header, ratelimit.DefaultRetryAfter),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("linkedin: unexpected status %d", resp.StatusCode)
	}

	var ap apiPerson
	if err := json.NewDecoder(resp.Body).Decode(&ap); err != nil {
		return nil, fmt.Errorf("decoding linkedin response: %w", err)
	}

	headline := ap.Headline.en()
	pos, co := splitAt(headline)
	p := &participant.Profile{
		Name:            strings.TrimSpace(ap.LocalizedFirstName + " " + ap.LocalizedLastName),
		Headline:        headline,
		CurrentPosition: pos,
		Company:         co,
		About:           ap.Summary.en(),
		ProfileURL:      profileURL,
	}
	if ap.Location != nil {
		p.Location = ap.Location.Name
	}
	p.Normalize()
	return p, nil
}
