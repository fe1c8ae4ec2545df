package repository

import (
	"time"

	"github.com/google/uuid"
)

// Clock returns the current time.
type Clock func() time.Time

// IDGenerator returns a fresh submission id.
type IDGenerator func() string

type settings struct {
	clock Clock
	newID IDGenerator
}

// Option configures a store backend.
type Option func(*settings)

// WithClock sets the clock used for TimeSubmitted.
func WithClock(c Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithIDGenerator sets the generator used for new submission ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *settings) {
		if g != nil {
			s.newID = g
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		clock: time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
