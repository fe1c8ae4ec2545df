package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/langvote/internal/domain/model"
)

type demoVote struct {
	name, email, language, reason string
	age                           time.Duration
}

var demoVotes = []demoVote{
	{
		name:     "John Doe",
		email:    "john@example.com",
		language: "javascript",
		reason:   "JavaScript is versatile and has a huge ecosystem with excellent community support.",
		age:      24 * time.Hour,
	},
	{
		name:     "Jane Smith",
		email:    "jane@example.com",
		language: "python",
		reason:   "Python has clean syntax and is great for data science and machine learning.",
		age:      12 * time.Hour,
	},
	{
		name:     "Bob Johnson",
		email:    "bob@example.com",
		language: "typescript",
		reason:   "TypeScript adds type safety to JavaScript and helps catch errors early.",
		age:      6 * time.Hour,
	},
}

// Seed inserts the demo submissions into an empty store, timestamped
// relative to now. A store that already holds data is left untouched and
// Seed reports false.
func Seed(ctx context.Context, store Store, now time.Time) (bool, error) {
	n, err := store.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("seed: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	for _, v := range demoVotes {
		sub := model.Submission{
			ID:            uuid.NewString(),
			Name:          v.name,
			Email:         v.email,
			Language:      v.language,
			Reason:        v.reason,
			TimeSubmitted: model.FormatTime(now.Add(-v.age)),
		}
		if err := store.Put(ctx, sub); err != nil {
			return false, fmt.Errorf("seed %s: %w", v.email, err)
		}
	}
	return true, nil
}
