package engine

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNoJSON = errors.New("no JSON object in response")

// ExtractJSON returns the outermost {...} span of s after stripping markdown
// code fences. Models often wrap structured output in prose or fences.
func ExtractJSON(s string) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", errNoJSON
	}
	return s[start : end+1], nil
}

// DecodeJSON extracts the JSON object from s and unmarshals it into v.
func DecodeJSON(s string, v any) error {
	raw, err := ExtractJSON(s)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), v)
}
