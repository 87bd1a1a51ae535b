package similarity

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/kalambet/hackmix/internal/participant"
)

func withBackground(id string, schools, companies, skills []string) participant.Participant {
	return participant.Participant{
		ID:   id,
		Name: "Person " + id,
		Background: &participant.Background{
			Schools:   schools,
			Companies: companies,
			Skills:    skills,
		},
	}
}

func TestScore(t *testing.T) {
	Convey("Given commonality sets", t, func() {
		skills := func(n int) []string {
			out := make([]string, n)
			for i := range out {
				out[i] = string(rune('a' + i))
			}
			return out
		}

		Convey("A shared school alone scores 0.4", func() {
			So(Score(participant.Commonalities{Schools: []string{"MIT"}}), ShouldEqual, 0.4)
		})
		Convey("School and employer score 0.7", func() {
			So(Score(participant.Commonalities{Schools: []string{"MIT"}, Companies: []string{"Acme"}}), ShouldEqual, 0.7)
		})
		Convey("Adding three skills scores 0.9", func() {
			So(Score(participant.Commonalities{Schools: []string{"MIT"}, Companies: []string{"Acme"}, Skills: skills(3)}), ShouldEqual, 0.9)
		})
		Convey("Six skills on top reach the 1.0 cap", func() {
			So(Score(participant.Commonalities{Schools: []string{"MIT"}, Companies: []string{"Acme"}, Skills: skills(6)}), ShouldEqual, 1.0)
		})
		Convey("Two skills earn nothing", func() {
			So(Score(participant.Commonalities{Skills: skills(2)}), ShouldEqual, 0)
		})
		Convey("Three skills alone score 0.2", func() {
			So(Score(participant.Commonalities{Skills: skills(3)}), ShouldEqual, 0.2)
		})
	})
}

func TestMatch(t *testing.T) {
	Convey("Given a reference participant", t, func() {
		ref := withBackground("me", []string{"MIT", "Stanford"}, []string{"Acme"}, []string{"Python", "Go", "Rust"})

		Convey("A candidate sharing only three skills is excluded at 0.2", func() {
			c := withBackground("c", nil, []string{"Other"}, []string{"Rust", "Go", "Python"})
			So(Match([]participant.Participant{c}, ref), ShouldBeEmpty)
		})

		Convey("A candidate sharing only an employer is excluded at exactly 0.3", func() {
			c := withBackground("c", nil, []string{"Acme"}, nil)
			So(Match([]participant.Participant{c}, ref), ShouldBeEmpty)
		})

		Convey("The reference is never paired with itself", func() {
			So(Match([]participant.Participant{ref}, ref), ShouldBeEmpty)
		})

		Convey("Matches are sorted by score and carry commonalities", func() {
			school := withBackground("s", []string{"Stanford"}, nil, nil)
			strong := withBackground("x", []string{"MIT"}, []string{"Acme"}, []string{"Go", "Python", "Rust", "Go"})
			got := Match([]participant.Participant{school, ref, strong}, ref)

			So(len(got), ShouldEqual, 2)
			So(got[0].Participant2, ShouldEqual, "x")
			So(got[0].SimilarityScore, ShouldEqual, 0.9)
			So(got[0].Commonalities.Skills, ShouldResemble, []string{"Python", "Go", "Rust"})
			So(got[0].Participant1, ShouldEqual, "me")
			So(got[0].Participant1Name, ShouldEqual, "Person me")
			So(got[1].SimilarityScore, ShouldEqual, 0.4)
			for _, m := range got {
				So(m.SimilarityScore, ShouldBeGreaterThan, Threshold)
				So(m.SimilarityScore, ShouldBeLessThanOrEqualTo, 1.0)
				So(m.Participant2, ShouldNotEqual, m.Participant1)
			}
		})

		Convey("A candidate without background derives one from its profile", func() {
			c := participant.Participant{ID: "p", Name: "Pat Doe", LinkedInData: &participant.Profile{
				Education: []participant.Education{{School: "MIT"}},
			}}
			got := Match([]participant.Participant{c}, ref)
			So(len(got), ShouldEqual, 1)
			So(got[0].Commonalities.Schools, ShouldResemble, []string{"MIT"})
		})
	})
}
