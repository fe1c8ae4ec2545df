package client_test

import (
	"testing"

	"github.com/okian/langvote/internal/client"
	"github.com/okian/langvote/internal/domain/model"
	"github.com/okian/langvote/internal/domain/validation"
	"github.com/smartystreets/goconvey/convey"
)

func TestFormState(t *testing.T) {
	convey.Convey("Given an empty form", t, func() {
		f := &client.FormState{}

		convey.Convey("Validate reports every missing field", func() {
			convey.So(f.Validate(), convey.ShouldBeFalse)
			convey.So(f.FieldErrors, convey.ShouldHaveLength, 4)
		})

		convey.Convey("SetField clears the form error and that field's error only", func() {
			f.Validate()
			f.SetError("Failed to submit vote")
			f.SetField(validation.FieldName, "Ann")

			convey.So(f.Name, convey.ShouldEqual, "Ann")
			convey.So(f.Error, convey.ShouldBeEmpty)
			convey.So(f.FieldErrors, convey.ShouldHaveLength, 3)
			for _, e := range f.FieldErrors {
				convey.So(e.Field, convey.ShouldNotEqual, validation.FieldName)
			}
		})

		convey.Convey("SetField ignores unknown fields", func() {
			f.SetError("kept")
			f.SetField("nickname", "x")
			convey.So(f.Error, convey.ShouldEqual, "kept")
			convey.So(f.Input(), convey.ShouldResemble, model.SubmissionInput{})
		})

		convey.Convey("A filled form validates and walks the submit lifecycle", func() {
			f.Fill(model.SubmissionInput{Name: "Ann", Email: "ann@example.com", Language: "go", Reason: "fast compile times"})
			convey.So(f.Validate(), convey.ShouldBeTrue)

			f.BeginSubmit()
			convey.So(f.IsLoading, convey.ShouldBeTrue)

			f.SubmitFailed("Email taken")
			convey.So(f.IsLoading, convey.ShouldBeFalse)
			convey.So(f.Error, convey.ShouldEqual, "Email taken")

			f.BeginSubmit()
			convey.So(f.Error, convey.ShouldBeEmpty)
			f.SubmitSucceeded("done")
			convey.So(f.SuccessMessage, convey.ShouldEqual, "done")
			convey.So(f.IsLoading, convey.ShouldBeFalse)

			f.ClearMessages()
			convey.So(f.SuccessMessage, convey.ShouldBeEmpty)

			f.Clear()
			convey.So(f.Input(), convey.ShouldResemble, model.SubmissionInput{})
			convey.So(f.FieldErrors, convey.ShouldBeNil)
		})
	})
}
