package participant

import (
	"errors"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

var (
	ErrNoParticipants = errors.New("no participants provided")
	ErrNoValidNames   = errors.New("no valid participant names (first and last name required)")
)

// Input is a raw participant record as submitted by a caller.
type Input struct {
	Name         string         `json:"name" yaml:"name"`
	Email        string         `json:"email,omitempty" yaml:"email,omitempty"`
	Company      string         `json:"company,omitempty" yaml:"company,omitempty"`
	LinkedInURL  string         `json:"linkedinUrl,omitempty" yaml:"linkedinUrl,omitempty"`
	LinkedInData map[string]any `json:"linkedinData,omitempty" yaml:"linkedinData,omitempty"`
}

// ValidName reports whether name has at least a first and a last token.
func ValidName(name string) bool {
	return len(strings.Fields(name)) >= 2
}

// Ingest trims and validates raw inputs and assigns request-scoped IDs.
// Records whose name fails ValidName are dropped. The manual profile data, if
// any, is returned alongside each participant keyed by ID so resolvers can
// normalize it later.
func Ingest(inputs []Input) ([]Participant, map[string]map[string]any, error) {
	if len(inputs) == 0 {
		return nil, nil, ErrNoParticipants
	}

	out := make([]Participant, 0, len(inputs))
	manual := make(map[string]map[string]any)
	for _, in := range inputs {
		name := strings.Join(strings.Fields(in.Name), " ")
		if !ValidName(name) {
			continue
		}
		p := Participant{
			ID:          NewID(name),
			Name:        name,
			Email:       strings.TrimSpace(in.Email),
			LinkedInURL: strings.TrimSpace(in.LinkedInURL),
			Company:     strings.TrimSpace(in.Company),
		}
		if len(in.LinkedInData) > 0 {
			manual[p.ID] = in.LinkedInData
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, nil, ErrNoValidNames
	}
	return out, manual, nil
}

// NewID returns "<slug>-<uuid>" for name.
func NewID(name string) string {
	slug := Slug(name)
	if slug == "" {
		return uuid.NewString()
	}
	return slug + "-" + uuid.NewString()
}

// Slug lowercases name and joins its alphanumeric runs with '-'.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// FirstName returns the first whitespace token of name.
func FirstName(name string) string {
	f := strings.Fields(name)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}
