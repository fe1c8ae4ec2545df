package view_test

import (
	"strings"
	"testing"
	"time"

	"github.com/okian/langvote/internal/client"
	"github.com/okian/langvote/internal/domain/model"
	"github.com/okian/langvote/internal/domain/results"
	"github.com/okian/langvote/internal/domain/types"
	"github.com/okian/langvote/internal/view"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRenderer(t *testing.T) {
	Convey("Given a renderer pinned to UTC", t, func() {
		now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		r := view.New(view.WithLocation(time.UTC), view.WithNow(func() time.Time { return now }))

		Convey("Empty results show the empty-state texts", func() {
			out := r.Results(client.ResultsView{Snapshot: results.Aggregate(nil)})
			So(out, ShouldContainSubstring, view.NoVotes)
			So(out, ShouldContainSubstring, view.NoSubmissions)
		})

		Convey("Statistics list languages by count with totals and percentages", func() {
			subs := []model.Submission{
				{ID: "1", Name: "Ann", Email: "ann@example.com", Language: "python", Reason: "readable", TimeSubmitted: "2024-03-01T09:00:00.000Z"},
				{ID: "2", Name: "Bob", Language: "go", Reason: "simple", TimeSubmitted: "2024-03-01T10:00:00.000Z"},
				{ID: "3", Name: "Cid", Language: "go", Reason: "fast", TimeSubmitted: "bogus"},
			}
			out := r.Statistics(results.Aggregate(subs))

			So(out, ShouldContainSubstring, "Total votes: 3")
			So(out, ShouldContainSubstring, "(66.7%)")
			So(out, ShouldContainSubstring, "(33.3%)")
			So(strings.Index(out, "Go"), ShouldBeLessThan, strings.Index(out, "Python"))

			Convey("and submissions show absolute and relative times", func() {
				out := r.Submissions(results.Group(subs))
				So(out, ShouldContainSubstring, "Go (2)")
				So(out, ShouldContainSubstring, "Mar 1, 2024, 10:00 AM, 2 hours ago")
				So(out, ShouldContainSubstring, results.InvalidDate)
				So(out, ShouldContainSubstring, `"readable"`)
				So(out, ShouldContainSubstring, "Ann <ann@example.com>")
				So(strings.Index(out, "Bob"), ShouldBeLessThan, strings.Index(out, "Cid"))
			})
		})

		Convey("Large totals are grouped with commas", func() {
			snap := results.Snapshot{
				TotalVotes:          12345,
				LanguageCounts:      map[string]int{"go": 12345},
				LanguagePercentages: map[string]float64{"go": 100},
			}
			So(r.Statistics(snap), ShouldContainSubstring, "12,345")
		})

		Convey("A fetch error replaces the results", func() {
			out := r.Results(client.ResultsView{Error: "Network down"})
			So(out, ShouldContainSubstring, "Error: Network down")
			So(out, ShouldNotContainSubstring, "Voting Statistics")
		})

		Convey("Confirmation and language list", func() {
			So(r.Confirmation(types.SubmitResponse{Message: types.MessageUpdated}), ShouldContainSubstring, types.MessageUpdated)
			langs := r.Languages()
			So(langs, ShouldContainSubstring, "csharp")
			So(langs, ShouldContainSubstring, "C#")
		})
	})
}
