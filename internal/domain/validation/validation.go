// Package validation checks user-submitted vote fields.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/langvote/internal/domain/model"
)

// Field names as reported in FieldError.Field.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldLanguage = "language"
	FieldReason   = "reason"
)

// Messages reported for each rule.
const (
	MsgNameRequired     = "Name is required"
	MsgNameTooShort     = "Name must be at least 2 characters"
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Please enter a valid email address"
	MsgLanguageRequired = "Please select a programming language"
	MsgReasonRequired   = "Please provide a reason for your choice"
	MsgReasonTooShort   = "Reason must be at least 10 characters"
)

// Server acceptance errors and the messages API callers receive for them.
var (
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidEmail  = errors.New("invalid email format")
)

const (
	MsgAllFieldsRequired  = "All fields are required"
	MsgInvalidEmailFormat = "Invalid email format"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// tagVoteEmail names the email rule registered on the validator.
const tagVoteEmail = "vote_email"

// form holds the trimmed fields checked by Validate. Language is an
// identifier token and is not trimmed.
type form struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,vote_email"`
	Language string `json:"language" validate:"required"`
	Reason   string `json:"reason" validate:"required,min=10"`
}

// acceptance holds the trimmed fields checked by CheckSubmission.
type acceptance struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,vote_email"`
	Language string `json:"language" validate:"required"`
	Reason   string `json:"reason" validate:"required"`
}

// messages maps a field and the failed tag to the text shown for it.
var messages = map[string]map[string]string{
	FieldName:     {"required": MsgNameRequired, "min": MsgNameTooShort},
	FieldEmail:    {"required": MsgEmailRequired, tagVoteEmail: MsgEmailInvalid},
	FieldLanguage: {"required": MsgLanguageRequired},
	FieldReason:   {"required": MsgReasonRequired, "min": MsgReasonTooShort},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation(tagVoteEmail, func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// FieldError describes one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// IsValidEmail reports whether email looks like local@domain.tld.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Validate applies every field rule and returns all failures in field
// order; an empty result means the input is valid.
func Validate(in model.SubmissionInput) []FieldError {
	err := validate.Struct(form{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Language: in.Language,
		Reason:   strings.TrimSpace(in.Reason),
	})

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	errs := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, FieldError{Field: fe.Field(), Message: messages[fe.Field()][fe.Tag()]})
	}
	return errs
}

// FieldMessage returns the message for field, or "" when it has none.
func FieldMessage(errs []FieldError, field string) string {
	for _, e := range errs {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// CheckSubmission applies the server acceptance rules: every field must be
// present (whitespace only counts as missing) and the email must be well
// formed. Length rules are left to the form.
func CheckSubmission(in model.SubmissionInput) error {
	err := validate.Struct(acceptance{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Language: strings.TrimSpace(in.Language),
		Reason:   strings.TrimSpace(in.Reason),
	})

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return ErrMissingFields
		}
	}
	return ErrInvalidEmail
}
