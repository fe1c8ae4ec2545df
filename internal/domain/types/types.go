// Package types contains the wire shapes shared by the server and the client.
package types

import "github.com/okian/langvote/internal/domain/model"

// SubmitResponse is returned by POST /submissions on success.
type SubmitResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SubmissionID string `json:"submissionId"`
}

// ResultsResponse is returned by GET /results. Percentages and grouping are
// derived by the consumer.
type ResultsResponse struct {
	LanguageCounts map[string]int     `json:"languageCounts"`
	TotalVotes     int                `json:"totalVotes"`
	AllSubmissions []model.Submission `json:"allSubmissions"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Response messages for the two upsert outcomes.
const (
	MessageSubmitted = "Your vote has been submitted successfully!"
	MessageUpdated   = "Your vote has been updated successfully!"
)
