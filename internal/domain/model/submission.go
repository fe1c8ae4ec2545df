// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// TimeLayout is the ISO-8601 layout used for TimeSubmitted (millisecond
// precision, always UTC).
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Submission is one voter's record. Email is the upsert key and is compared
// case-insensitively; ID is stable across updates.
type Submission struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Language      string `json:"language"`
	Reason        string `json:"reason"`
	TimeSubmitted string `json:"timeSubmitted"`
}

// SubmissionInput carries the user-editable fields of a vote.
type SubmissionInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Language string `json:"language"`
	Reason   string `json:"reason"`
}

// Trimmed returns a copy with surrounding whitespace removed from the free
// text fields. Language is an identifier token and is kept as is.
func (in SubmissionInput) Trimmed() SubmissionInput {
	return SubmissionInput{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Language: in.Language,
		Reason:   strings.TrimSpace(in.Reason),
	}
}

// EmailKey normalizes an email for identity comparison.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a TimeSubmitted value. It accepts any RFC 3339 timestamp
// with optional surrounding whitespace.
func ParseTime(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Submitted returns the parsed submission time and whether it was valid.
func (s Submission) Submitted() (time.Time, bool) {
	return ParseTime(s.TimeSubmitted)
}
