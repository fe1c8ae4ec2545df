package client

import (
	"github.com/okian/langvote/internal/domain/model"
	"github.com/okian/langvote/internal/domain/validation"
)

// FormState holds the voting form fields and the submit status.
type FormState struct {
	Name     string
	Email    string
	Language string
	Reason   string

	IsLoading      bool
	Error          string
	SuccessMessage string

	// FieldErrors holds the last client-side validation result.
	FieldErrors []validation.FieldError
}

// Input returns the fields as a submission input.
func (f *FormState) Input() model.SubmissionInput {
	return model.SubmissionInput{
		Name:     f.Name,
		Email:    f.Email,
		Language: f.Language,
		Reason:   f.Reason,
	}
}

// SetField updates one field by name and clears the form error and that
// field's validation error. Unknown field names are ignored.
func (f *FormState) SetField(field, value string) {
	switch field {
	case validation.FieldName:
		f.Name = value
	case validation.FieldEmail:
		f.Email = value
	case validation.FieldLanguage:
		f.Language = value
	case validation.FieldReason:
		f.Reason = value
	default:
		return
	}
	f.Error = ""

	kept := f.FieldErrors[:0]
	for _, e := range f.FieldErrors {
		if e.Field != field {
			kept = append(kept, e)
		}
	}
	f.FieldErrors = kept
}

// Fill replaces all fields, e.g. from the locally saved last submission.
func (f *FormState) Fill(in model.SubmissionInput) {
	f.Name = in.Name
	f.Email = in.Email
	f.Language = in.Language
	f.Reason = in.Reason
}

// Validate runs the field rules and records the result. It reports whether
// the form may be submitted.
func (f *FormState) Validate() bool {
	f.FieldErrors = validation.Validate(f.Input())
	return len(f.FieldErrors) == 0
}

// BeginSubmit marks a submission in flight.
func (f *FormState) BeginSubmit() {
	f.IsLoading = true
	f.Error = ""
	f.SuccessMessage = ""
}

// SubmitSucceeded records the server's confirmation message.
func (f *FormState) SubmitSucceeded(msg string) {
	f.IsLoading = false
	f.SuccessMessage = msg
	f.Error = ""
}

// SubmitFailed records a submission error.
func (f *FormState) SubmitFailed(msg string) {
	f.IsLoading = false
	f.Error = msg
	f.SuccessMessage = ""
}

// Clear empties the fields and messages. A submission in flight stays in flight.
func (f *FormState) Clear() {
	f.Name, f.Email, f.Language, f.Reason = "", "", "", ""
	f.Error = ""
	f.SuccessMessage = ""
	f.FieldErrors = nil
}

// SetError shows msg and hides any success message.
func (f *FormState) SetError(msg string) {
	f.Error = msg
	f.SuccessMessage = ""
}

// ClearMessages hides both the error and the success message.
func (f *FormState) ClearMessages() {
	f.Error = ""
	f.SuccessMessage = ""
}
