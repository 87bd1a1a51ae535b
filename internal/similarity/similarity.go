// Package similarity scores background overlap between a reference
// participant and everyone else.
package similarity

import (
	"math"
	"sort"

	"github.com/kalambet/hackmix/internal/participant"
)

// Scoring is a fixed budget that sums to exactly 1.0. Adding another signal
// means revisiting the cap.
const (
	schoolBonus    = 0.4
	companyBonus   = 0.3
	skillsBonus    = 0.2
	manySkillBonus = 0.1

	skillsThreshold     = 2
	manySkillsThreshold = 5

	// Threshold is the exclusive lower bound for an emitted match.
	Threshold = 0.3
)

// Match returns every candidate whose overlap with reference scores above
// Threshold, highest first. The reference itself is never matched.
func Match(candidates []participant.Participant, reference participant.Participant) []participant.SimilarityMatch {
	out := []participant.SimilarityMatch{}
	ref := background(reference)
	for _, c := range candidates {
		if c.ID == reference.ID {
			continue
		}
		common := Commonalities(ref, background(c))
		score := Score(common)
		if score <= Threshold {
			continue
		}
		out = append(out, participant.SimilarityMatch{
			Participant1:     reference.ID,
			Participant2:     c.ID,
			Participant1Name: reference.Name,
			Participant2Name: c.Name,
			SimilarityScore:  score,
			Commonalities:    common,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SimilarityScore > out[j].SimilarityScore
	})
	return out
}

// Commonalities intersects two backgrounds, keeping a's order.
func Commonalities(a, b participant.Background) participant.Commonalities {
	return participant.Commonalities{
		Schools:   intersect(a.Schools, b.Schools),
		Companies: intersect(a.Companies, b.Companies),
		Skills:    intersect(a.Skills, b.Skills),
	}
}

// Score applies the additive bonuses, capped at 1.0 and rounded to hundredths
// so that sums compare equal to their decimal literals.
func Score(c participant.Commonalities) float64 {
	var s float64
	if len(c.Schools) > 0 {
		s += schoolBonus
	}
	if len(c.Companies) > 0 {
		s += companyBonus
	}
	if len(c.Skills) > skillsThreshold {
		s += skillsBonus
	}
	if len(c.Skills) > manySkillsThreshold {
		s += manySkillBonus
	}
	return min(math.Round(s*100)/100, 1.0)
}

func background(p participant.Participant) participant.Background {
	if p.Background != nil {
		return *p.Background
	}
	if bg := participant.BackgroundOf(p.LinkedInData); bg != nil {
		return *bg
	}
	return participant.Background{}
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	in := make(map[string]bool, len(b))
	for _, v := range b {
		in[v] = true
	}
	var out []string
	seen := make(map[string]bool)
	for _, v := range a {
		if in[v] && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
