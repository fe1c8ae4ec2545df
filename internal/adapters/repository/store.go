// Package repository persists vote submissions keyed by email.
//
// Backends share one contract: records are kept in first-insertion order,
// an email (compared case-insensitively) owns at most one record, and an
// update replaces the record in place without changing its id.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okian/langvote/internal/domain/model"
	"github.com/okian/langvote/pkg/metrics"
)

// Store provides read/write access to submissions.
type Store interface {
	// AddOrUpdate inserts a new submission or replaces the one owned by the
	// same email. The returned flag is true when an existing record was
	// updated. TimeSubmitted is set to the store clock.
	AddOrUpdate(ctx context.Context, in model.SubmissionInput) (model.Submission, bool, error)

	// Put stores a complete record as given, replacing any record with the
	// same email in place. Used for seeding and imports.
	Put(ctx context.Context, sub model.Submission) error

	// All returns every submission in insertion order.
	All(ctx context.Context) ([]model.Submission, error)

	// Count returns the number of submissions.
	Count(ctx context.Context) (int, error)

	// CountsByLanguage returns the number of submissions per language key.
	CountsByLanguage(ctx context.Context) (map[string]int, error)

	// FindByEmail returns the submission owned by email.
	// Returns ErrNotFound if there is none.
	FindByEmail(ctx context.Context, email string) (model.Submission, error)

	// Close releases backend resources.
	Close() error
}

// Operation names used for store metrics.
const (
	OpAddOrUpdate      = "add_or_update"
	OpPut              = "put"
	OpAll              = "all"
	OpCount            = "count"
	OpCountsByLanguage = "counts_by_language"
	OpFindByEmail      = "find_by_email"
)

// observe records latency and failures of a store operation. Call it
// deferred with a pointer to the named error result.
func observe(op string, start time.Time, err *error) {
	metrics.RecordStoreOperation(op, float64(time.Since(start).Microseconds())/1000)
	if *err != nil && !errors.Is(*err, ErrNotFound) {
		metrics.RecordStoreError(op)
	}
}

// newRecord builds the submission written by AddOrUpdate. The id is left
// empty so the backend can keep the existing one or assign a new one.
func newRecord(in model.SubmissionInput, now time.Time) model.Submission {
	return model.Submission{
		Name:          in.Name,
		Email:         in.Email,
		Language:      in.Language,
		Reason:        in.Reason,
		TimeSubmitted: model.FormatTime(now),
	}
}
