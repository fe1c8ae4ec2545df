package client

import (
	"context"
	"sync"

	"github.com/okian/langvote/internal/domain/model"
	"github.com/okian/langvote/internal/domain/results"
	"github.com/okian/langvote/internal/domain/types"
)

// ResultsFetcher reads the raw results payload.
type ResultsFetcher interface {
	GetResults(ctx context.Context) (types.ResultsResponse, error)
}

// ResultsView is a point-in-time copy of ResultsState.
type ResultsView struct {
	results.Snapshot
	AllSubmissions []model.Submission
	IsLoading      bool
	Error          string
}

// ResultsState holds the last fetched results and the fetch status. It is
// safe for concurrent use.
type ResultsState struct {
	mu        sync.RWMutex
	snapshot  results.Snapshot
	all       []model.Submission
	isLoading bool
	err       string
}

// NewResultsState returns an empty state.
func NewResultsState() *ResultsState {
	s := &ResultsState{}
	s.apply(types.ResultsResponse{})
	return s
}

// View returns a copy of the current state.
func (s *ResultsState) View() ResultsView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ResultsView{
		Snapshot:       s.snapshot,
		AllSubmissions: s.all,
		IsLoading:      s.isLoading,
		Error:          s.err,
	}
}

// Fetch loads results in the foreground: loading is shown while the request
// runs and a failure is kept in Error.
func (s *ResultsState) Fetch(ctx context.Context, f ResultsFetcher) error {
	s.mu.Lock()
	s.isLoading = true
	s.err = ""
	s.mu.Unlock()

	resp, err := f.GetResults(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = false
	if err != nil {
		s.err = errorMessage(err, "Failed to fetch results")
		return err
	}
	s.apply(resp)
	return nil
}

// FetchBackground refreshes results without touching the loading flag. A
// failure is returned for logging but never shown.
func (s *ResultsState) FetchBackground(ctx context.Context, f ResultsFetcher) error {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()

	resp, err := f.GetResults(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(resp)
	return nil
}

// ClearError hides the last foreground error.
func (s *ResultsState) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// apply stores resp. The tally comes from the server; percentages and
// groups are derived here. Callers hold the lock.
func (s *ResultsState) apply(resp types.ResultsResponse) {
	counts := resp.LanguageCounts
	if counts == nil {
		counts = map[string]int{}
	}
	all := resp.AllSubmissions
	if all == nil {
		all = []model.Submission{}
	}

	s.all = all
	s.snapshot = results.Snapshot{
		TotalVotes:          resp.TotalVotes,
		LanguageCounts:      counts,
		LanguagePercentages: results.Percentages(counts, resp.TotalVotes),
		GroupedSubmissions:  results.Group(all),
	}
}

func errorMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
