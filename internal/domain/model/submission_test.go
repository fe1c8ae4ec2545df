package model_test

import (
	"testing"
	"time"

	model "github.com/okian/langvote/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestSubmissionInput(t *testing.T) {
	convey.Convey("Given a submission input with padded fields", t, func() {
		in := model.SubmissionInput{
			Name:     "  Ada  ",
			Email:    " ada@example.com\t",
			Language: "go",
			Reason:   "  concurrency done right  ",
		}

		convey.Convey("When trimming it", func() {
			out := in.Trimmed()

			convey.Convey("Then free text fields are trimmed", func() {
				convey.So(out.Name, convey.ShouldEqual, "Ada")
				convey.So(out.Email, convey.ShouldEqual, "ada@example.com")
				convey.So(out.Reason, convey.ShouldEqual, "concurrency done right")
				convey.So(out.Language, convey.ShouldEqual, "go")
			})
		})
	})
}

func TestEmailKey(t *testing.T) {
	convey.Convey("Given emails that differ only by case and padding", t, func() {
		convey.So(model.EmailKey(" Ada@Example.COM "), convey.ShouldEqual, "ada@example.com")
		convey.So(model.EmailKey("ada@example.com"), convey.ShouldEqual, model.EmailKey("ADA@EXAMPLE.COM"))
	})
}

func TestTimeHelpers(t *testing.T) {
	convey.Convey("Given a timestamp", t, func() {
		ts := time.Date(2025, 3, 4, 9, 0, 0, 123_000_000, time.FixedZone("X", 3600))

		convey.Convey("When formatting it", func() {
			s := model.FormatTime(ts)

			convey.Convey("Then it is rendered in UTC with milliseconds", func() {
				convey.So(s, convey.ShouldEqual, "2025-03-04T08:00:00.123Z")
			})

			convey.Convey("And it parses back to the same instant", func() {
				parsed, ok := model.ParseTime(s)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(parsed.Equal(ts), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When parsing a padded timestamp", func() {
			_, ok := model.Submission{TimeSubmitted: " 2024-03-01T12:00:00Z\n"}.Submitted()

			convey.Convey("Then the padding is ignored", func() {
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When parsing garbage", func() {
			_, ok := model.Submission{TimeSubmitted: "yesterday"}.Submitted()

			convey.Convey("Then it reports an invalid time", func() {
				convey.So(ok, convey.ShouldBeFalse)
			})
		})
	})
}

func TestLanguageLabel(t *testing.T) {
	convey.Convey("Given the form language list", t, func() {
		convey.Convey("Then listed values map to their labels", func() {
			label, ok := model.LanguageLabel("csharp")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(label, convey.ShouldEqual, "C#")
		})

		convey.Convey("Then unknown values are reported as such", func() {
			_, ok := model.LanguageLabel("cobol")
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("Then values are unique", func() {
			seen := map[string]bool{}
			for _, l := range model.Languages {
				convey.So(seen[l.Value], convey.ShouldBeFalse)
				seen[l.Value] = true
			}
		})
	})
}
