package participant

import "strings"

// Normalize replaces nil list fields with empty slices.
func (p *Profile) Normalize() {
	if p == nil {
		return
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Posts == nil {
		p.Posts = []Post{}
	}
}

// BackgroundOf projects a profile onto the fields compared by similarity
// matching. It returns nil for a nil profile.
func BackgroundOf(p *Profile) *Background {
	if p == nil {
		return nil
	}
	bg := &Background{
		Schools:     []string{},
		Companies:   []string{},
		Internships: []string{},
		Research:    []string{},
		Skills:      append([]string{}, p.Skills...),
	}
	for _, e := range p.Education {
		if e.School != "" {
			bg.Schools = append(bg.Schools, e.School)
		}
	}
	for _, e := range p.Experience {
		if e.Company == "" {
			continue
		}
		bg.Companies = append(bg.Companies, e.Company)
		title := strings.ToLower(e.Title)
		if strings.Contains(title, "intern") {
			bg.Internships = append(bg.Internships, e.Company)
		}
		if strings.Contains(title, "research") {
			bg.Research = append(bg.Research, e.Company)
		}
	}
	return bg
}

// Role returns "Position at Company" for the participant's resolved profile,
// degrading to whichever half is known.
func (p Participant) Role() string {
	if p.LinkedInData == nil {
		return ""
	}
	pos, co := p.LinkedInData.CurrentPosition, p.LinkedInData.Company
	switch {
	case pos != "" && co != "":
		return pos + " at " + co
	case pos != "":
		return pos
	default:
		return co
	}
}

// EmptyResult returns a Result whose slices encode as [].
func EmptyResult() Result {
	return Result{
		Participants:       []Participant{},
		HeavyHitters:       []Participant{},
		TalkingPoints:      []TalkingPoint{},
		SimilarBackgrounds: []SimilarityMatch{},
		TeamSuggestions:    []TeamSuggestion{},
	}
}
