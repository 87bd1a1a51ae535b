package profile

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/kalambet/hackmix/internal/participant"
	"github.com/kalambet/hackmix/internal/search"
)

var (
	atPattern       = regexp.MustCompile(`(?i)(.+?)\s+(?:at|@)\s+(.+?)(?:\n|·|$|\.)`)
	locationPattern = regexp.MustCompile(`(?:📍|Location:|,)\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`)
	profileIDRe     = regexp.MustCompile(`linkedin\.com/in/([^/?#]+)`)
)

const networkDomain = "linkedin.com"

// IsProfileLink reports whether link points at a member profile on the
// professional network, on any regional subdomain.
func IsProfileLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return false
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(u.Hostname()))
	if err != nil || domain != networkDomain {
		return false
	}
	return strings.HasPrefix(u.Path, "/in/") && len(u.Path) > len("/in/")
}

// ProfileID extracts the member id from a profile URL.
func ProfileID(link string) string {
	m := profileIDRe.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	return m[1]
}

// ParseSearchResult turns one search hit into a Profile using layered
// heuristics: "X at Y" in the snippet, then a pipe-delimited title, then the
// snippet's first line as a bare headline.
func ParseSearchResult(r search.OrganicResult, name string) *participant.Profile {
	snippet := r.Snippet
	var headline, position, company string

	if m := atPattern.FindStringSubmatch(snippet); m != nil {
		position = strings.TrimSpace(m[1])
		company = strings.TrimSpace(m[2])
		headline = position + " at " + company
	} else if parts := titleParts(r.Title); len(parts) > 1 {
		headline = parts[1]
		position, company = splitAt(headline)
	} else {
		headline, _, _ = strings.Cut(snippet, "\n")
		headline = strings.TrimSpace(headline)
		if headline == "" {
			headline = strings.TrimSpace(r.Title)
		}
	}
	if headline == "" {
		headline = position
	}

	loc := ""
	if m := locationPattern.FindStringSubmatch(snippet); m != nil {
		loc = m[1]
	}

	p := &participant.Profile{
		Name:            name,
		Headline:        headline,
		CurrentPosition: position,
		Company:         company,
		Location:        loc,
		About:           snippet,
		ProfileURL:      r.Link,
		ProfileImage:    profileImage(r),
	}
	p.Normalize()
	return p
}

// titleParts splits a result title on '|' and drops empty segments and the
// trailing site name.
func titleParts(title string) []string {
	var out []string
	for _, p := range strings.Split(title, "|") {
		p = strings.TrimSpace(p)
		if p == "" || strings.EqualFold(p, "linkedin") {
			continue
		}
		out = append(out, p)
	}
	return out
}

// profileImage picks the first image present in priority order: thumbnail,
// rich-snippet extension URL, inline image, sitelink thumbnail.
func profileImage(r search.OrganicResult) string {
	if r.Thumbnail != "" {
		return r.Thumbnail
	}
	if r.RichSnippet != nil {
		for _, ext := range r.RichSnippet.Top.StringExtensions() {
			if strings.Contains(ext, "http") {
				return ext
			}
		}
	}
	if len(r.InlineImages) > 0 && r.InlineImages[0].Thumbnail != "" {
		return r.InlineImages[0].Thumbnail
	}
	if r.Sitelinks != nil && len(r.Sitelinks.Inline) > 0 {
		return r.Sitelinks.Inline[0].Thumbnail
	}
	return ""
}
