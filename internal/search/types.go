package search

import (
	"encoding/json"
	"strings"
)

// Response is the subset of the search payload the resolvers read. Every
// field is optional.
type Response struct {
	Error          string          `json:"error,omitempty"`
	OrganicResults []OrganicResult `json:"organic_results"`
	Tweets         []Tweet         `json:"tweets,omitempty"`
	Profile        *SocialProfile  `json:"profile,omitempty"`
}

type OrganicResult struct {
	Position     int           `json:"position,omitempty"`
	Title        string        `json:"title"`
	Link         string        `json:"link"`
	Snippet      string        `json:"snippet"`
	Thumbnail    string        `json:"thumbnail,omitempty"`
	RichSnippet  *RichSnippet  `json:"rich_snippet,omitempty"`
	InlineImages []InlineImage `json:"inline_images,omitempty"`
	Sitelinks    *Sitelinks    `json:"sitelinks,omitempty"`
}

type RichSnippet struct {
	Top *RichSnippetSection `json:"top,omitempty"`
}

// RichSnippetSection keeps extensions untyped; providers mix strings and
// objects in the same array.
type RichSnippetSection struct {
	Extensions []json.RawMessage `json:"extensions,omitempty"`
}

// StringExtensions returns the extensions that are plain JSON strings.
func (s *RichSnippetSection) StringExtensions() []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, raw := range s.Extensions {
		var v string
		if json.Unmarshal(raw, &v) == nil {
			out = append(out, v)
		}
	}
	return out
}

type InlineImage struct {
	Thumbnail string `json:"thumbnail,omitempty"`
}

type Sitelinks struct {
	Inline []Sitelink `json:"inline,omitempty"`
}

type Sitelink struct {
	Title     string `json:"title,omitempty"`
	Link      string `json:"link,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Tweet is one post from the micro-blog engine. Providers differ on which
// text field they fill.
type Tweet struct {
	Snippet string `json:"snippet,omitempty"`
	Text    string `json:"text,omitempty"`
	Content string `json:"content,omitempty"`
}

// Body returns the first non-empty text field.
func (t Tweet) Body() string {
	for _, s := range []string{t.Snippet, t.Text, t.Content} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

type SocialProfile struct {
	Bio            string `json:"bio,omitempty"`
	Description    string `json:"description,omitempty"`
	FollowersCount *int   `json:"followers_count,omitempty"`
}
