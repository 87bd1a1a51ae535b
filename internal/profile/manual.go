package profile

import (
	"fmt"
	"strings"

	"github.com/kalambet/hackmix/internal/participant"
)

// NormalizeManual maps caller-supplied profile data onto a Profile. It
// accepts the app's own field names, Proxycurl-style keys (full_name,
// occupations, experiences, educations, skill_list, starts_at/ends_at) and a
// LinkedIn data export (top-level "Profile"). Every field access defaults
// rather than failing. It returns nil when data is empty.
func NormalizeManual(data map[string]any) *participant.Profile {
	if len(data) == 0 {
		return nil
	}
	if _, ok := data["Profile"].(map[string]any); ok {
		return ParseExport(data)
	}

	headline := str(data, "headline", "tagline", "occupation")
	hPos, hCo := splitAt(headline)

	var occ map[string]any
	if occs := list(data, "occupations"); len(occs) > 0 {
		occ, _ = occs[0].(map[string]any)
	}

	p := &participant.Profile{
		Name:            str(data, "name", "full_name"),
		Headline:        headline,
		CurrentPosition: first(str(data, "currentPosition"), str(occ, "title"), hPos),
		Company:         first(str(data, "company"), str(occ, "company"), hCo),
		Location:        str(data, "location", "city"),
		About:           str(data, "about", "summary"),
		ProfileURL:      str(data, "profileUrl", "url", "linkedin_profile_url"),
		ProfileImage:    str(data, "profileImage", "profile_pic_url"),
	}
	if p.Headline == "" {
		p.Headline = p.CurrentPosition
	}

	for _, v := range list(data, "experience", "experiences") {
		e, ok := v.(map[string]any)
		if !ok {
			continue
		}
		p.Experience = append(p.Experience, participant.Experience{
			Title:       str(e, "title", "occupation"),
			Company:     str(e, "company", "company_name"),
			Duration:    first(rangeDuration(e, true), str(e, "duration")),
			Description: str(e, "description"),
			Location:    str(e, "location"),
		})
	}
	for _, v := range list(data, "education", "educations") {
		e, ok := v.(map[string]any)
		if !ok {
			continue
		}
		p.Education = append(p.Education, participant.Education{
			School:   str(e, "school", "school_name"),
			Degree:   str(e, "degree", "degree_name"),
			Field:    str(e, "field", "field_of_study"),
			Duration: first(rangeDuration(e, false), str(e, "duration")),
		})
	}
	for _, v := range list(data, "skills", "skill_list") {
		switch s := v.(type) {
		case string:
			if s = strings.TrimSpace(s); s != "" {
				p.Skills = append(p.Skills, s)
			}
		case map[string]any:
			if name := str(s, "name"); name != "" {
				p.Skills = append(p.Skills, name)
			}
		}
	}
	for _, v := range list(data, "posts", "recentPosts") {
		switch post := v.(type) {
		case string:
			p.Posts = append(p.Posts, participant.Post{Content: post})
		case map[string]any:
			p.Posts = append(p.Posts, participant.Post{
				Content: str(post, "content", "text"),
				Date:    str(post, "date"),
			})
		}
	}

	p.Normalize()
	return p
}

// ParseExport maps a LinkedIn data-export document onto a Profile.
func ParseExport(data map[string]any) *participant.Profile {
	prof, _ := data["Profile"].(map[string]any)
	if prof == nil {
		return nil
	}
	loc, _ := prof["Location"].(map[string]any)

	p := &participant.Profile{
		Name:       strings.TrimSpace(str(prof, "FirstName") + " " + str(prof, "LastName")),
		Headline:   str(prof, "Headline"),
		Location:   str(loc, "name"),
		About:      str(prof, "Summary"),
		ProfileURL: str(prof, "PublicProfileUrl"),
	}

	for i, v := range values(data, "Positions") {
		pos, ok := v.(map[string]any)
		if !ok {
			continue
		}
		dur := ""
		if start, ok := pos["startDate"].(map[string]any); ok {
			end := "Present"
			if e, ok := pos["endDate"].(map[string]any); ok {
				end = monthYear(e)
			}
			dur = monthYear(start) + " - " + end
		}
		exp := participant.Experience{
			Title:       str(pos, "title"),
			Company:     str(pos, "companyName"),
			Duration:    dur,
			Description: str(pos, "description"),
		}
		if i == 0 {
			p.CurrentPosition, p.Company = exp.Title, exp.Company
		}
		p.Experience = append(p.Experience, exp)
	}
	for _, v := range values(data, "Educations") {
		edu, ok := v.(map[string]any)
		if !ok {
			continue
		}
		dur := ""
		if start, ok := edu["startDate"].(map[string]any); ok {
			end := "Present"
			if e, ok := edu["endDate"].(map[string]any); ok {
				end = num(e, "year")
			}
			dur = num(start, "year") + " - " + end
		}
		p.Education = append(p.Education, participant.Education{
			School:   str(edu, "schoolName"),
			Degree:   str(edu, "degree"),
			Field:    str(edu, "fieldOfStudy"),
			Duration: dur,
		})
	}
	for _, v := range values(data, "Skills") {
		if s, ok := v.(map[string]any); ok {
			if name := str(s, "name"); name != "" {
				p.Skills = append(p.Skills, name)
			}
		}
	}

	p.Normalize()
	return p
}

// rangeDuration formats Proxycurl starts_at/ends_at objects. Experience
// ranges use month/year; education ranges use years only.
func rangeDuration(e map[string]any, withMonth bool) string {
	start, ok1 := e["starts_at"].(map[string]any)
	end, ok2 := e["ends_at"].(map[string]any)
	if !ok1 || !ok2 {
		return ""
	}
	if !withMonth {
		return num(start, "year") + " - " + num(end, "year")
	}
	s := num(start, "month") + "/" + num(start, "year")
	if num(end, "month") == "" {
		return s + " - Present"
	}
	return s + " - " + monthYear(end)
}

func monthYear(m map[string]any) string {
	return num(m, "month") + "/" + num(m, "year")
}

// str returns the first non-empty string value among keys.
func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// num renders a JSON number (or numeric string) without a fractional part.
func num(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case float64:
		return fmt.Sprintf("%d", int(v))
	case int:
		return fmt.Sprintf("%d", v)
	case string:
		return v
	}
	return ""
}

func list(m map[string]any, keys ...string) []any {
	for _, k := range keys {
		if l, ok := m[k].([]any); ok && len(l) > 0 {
			return l
		}
	}
	return nil
}

// values reads the {"values": [...]} wrapper used by export sections.
func values(m map[string]any, key string) []any {
	sec, _ := m[key].(map[string]any)
	return list(sec, "values")
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// splitAt splits "Position at Company" on the first " at ".
func splitAt(s string) (string, string) {
	pos, co, _ := strings.Cut(s, " at ")
	return strings.TrimSpace(pos), strings.TrimSpace(co)
}
