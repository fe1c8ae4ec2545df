package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/langvote/internal/domain/model"
	"github.com/okian/langvote/internal/domain/types"
	"github.com/okian/langvote/pkg/logger"
)

// DefaultRefreshDelay is the pause before results are re-fetched after a
// successful submission.
const DefaultRefreshDelay = 500 * time.Millisecond

// ErrInvalidForm is returned by Submit when client-side validation fails.
// The per-field messages are in Form.FieldErrors.
var ErrInvalidForm = errors.New("form has invalid fields")

// VoteAPI is the server surface a Session needs.
type VoteAPI interface {
	ResultsFetcher
	SubmitVote(ctx context.Context, in model.SubmissionInput) (types.SubmitResponse, error)
}

// Session ties the form and results state to the API.
type Session struct {
	api          VoteAPI
	local        *LocalStore
	refreshDelay time.Duration
	logger       logger.Logger

	Form    *FormState
	Results *ResultsState

	wg sync.WaitGroup
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRefreshDelay sets the pause before the post-submit refresh.
func WithRefreshDelay(d time.Duration) SessionOption {
	return func(s *Session) {
		if d >= 0 {
			s.refreshDelay = d
		}
	}
}

// WithLocalStore enables saving and prefilling the last submission.
func WithLocalStore(l *LocalStore) SessionOption {
	return func(s *Session) {
		s.local = l
	}
}

// WithSessionLogger sets the logger for swallowed background failures.
func WithSessionLogger(l logger.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession creates a session. When a local store is set, the form is
// prefilled from the last saved submission.
func NewSession(api VoteAPI, opts ...SessionOption) *Session {
	s := &Session{
		api:          api,
		refreshDelay: DefaultRefreshDelay,
		Form:         &FormState{},
		Results:      NewResultsState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("client")
	}

	if s.local != nil {
		saved, ok, err := s.local.Load()
		switch {
		case err != nil:
			s.logger.Warn(context.Background(), "ignoring unreadable local state", logger.String("path", s.local.Path()), logger.Error(err))
		case ok:
			s.Form.Fill(saved)
		}
	}
	return s
}

// Refresh fetches results in the foreground.
func (s *Session) Refresh(ctx context.Context) error {
	return s.Results.Fetch(ctx, s.api)
}

// Submit validates and sends the form. On success the submission is saved
// locally and a background refresh is scheduled after the refresh delay.
func (s *Session) Submit(ctx context.Context) (types.SubmitResponse, error) {
	if !s.Form.Validate() {
		return types.SubmitResponse{}, ErrInvalidForm
	}

	in := s.Form.Input()
	s.Form.BeginSubmit()

	resp, err := s.api.SubmitVote(ctx, in)
	if err != nil {
		s.Form.SubmitFailed(errorMessage(err, "Failed to submit vote"))
		return types.SubmitResponse{}, err
	}
	s.Form.SubmitSucceeded(resp.Message)

	if s.local != nil {
		if err := s.local.Save(in); err != nil {
			s.logger.Warn(ctx, "failed to save submission locally", logger.Error(err))
		}
	}

	s.scheduleRefresh(ctx)
	return resp, nil
}

// Wait blocks until scheduled background refreshes have finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) scheduleRefresh(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(s.refreshDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := s.Results.FetchBackground(ctx, s.api); err != nil {
			s.logger.Warn(ctx, "background results refresh failed", logger.Error(err))
		}
	}()
}
