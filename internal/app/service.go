// Package service provides the core voting service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/langvote/internal/adapters/repository"
	"github.com/okian/langvote/internal/domain/model"
	"github.com/okian/langvote/internal/domain/results"
	"github.com/okian/langvote/internal/domain/types"
	"github.com/okian/langvote/internal/domain/validation"
	"github.com/okian/langvote/pkg/logger"
	"github.com/okian/langvote/pkg/metrics"
)

// Service implements the API dependencies for the voting system.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	backend string

	seedDemoData bool
	clock        func() time.Time

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the submission store and the backend name reported in stats.
func WithStore(store repository.Store, backend string) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.backend = backend
		}
	}
}

// WithSeedDemoData inserts demo submissions into an empty store on Start.
func WithSeedDemoData(seed bool) Option {
	return func(s *Service) {
		s.seedDemoData = seed
	}
}

// WithClock sets the clock used for seeding.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service. Without WithStore it keeps votes in memory.
func New(opts ...Option) *Service {
	s := &Service{
		clock: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.backend = "memory"
	}
	return s
}

// Start prepares the service for traffic.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting voting service...", logger.String("backend", s.backend))

	if s.seedDemoData {
		seeded, err := repository.Seed(ctx, s.store, s.clock())
		if err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		s.logger.Info(ctx, "demo data", logger.Bool("seeded", seeded))
	}

	if err := s.refreshTotals(ctx); err != nil {
		return err
	}

	s.started = true
	s.logger.Info(ctx, "voting service started")
	return nil
}

// Stop releases the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping voting service...")
	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "store close failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(context.Background(), "voting service stopped")
}

// Submit accepts a vote. It returns validation.ErrMissingFields or
// validation.ErrInvalidEmail for rejected input; any other error is a
// store failure.
func (s *Service) Submit(ctx context.Context, in model.SubmissionInput) (model.Submission, bool, error) {
	if err := validation.CheckSubmission(in); err != nil {
		metrics.RecordValidationFailure(rejectionField(err))
		return model.Submission{}, false, err
	}

	sub, updated, err := s.store.AddOrUpdate(ctx, in.Trimmed())
	if err != nil {
		return model.Submission{}, false, fmt.Errorf("store submission: %w", err)
	}

	outcome := metrics.OutcomeCreated
	if updated {
		outcome = metrics.OutcomeUpdated
	}
	metrics.RecordVoteSubmitted(outcome)

	s.log().Info(ctx, "vote recorded",
		logger.String("submissionId", sub.ID),
		logger.String("language", sub.Language),
		logger.Bool("updated", updated),
	)

	if err := s.refreshTotals(ctx); err != nil {
		s.log().Warn(ctx, "refresh vote totals failed", logger.Error(err))
	}
	return sub, updated, nil
}

// Results returns every submission in insertion order and the tally of
// exactly those submissions.
// The map and slice are never nil.
func (s *Service) Results(ctx context.Context) (types.ResultsResponse, error) {
	subs, err := s.store.All(ctx)
	if err != nil {
		return types.ResultsResponse{}, fmt.Errorf("list submissions: %w", err)
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	// Tally the listed records so the counts always add up to the total.
	counts := results.Tally(subs)

	metrics.RecordResultsFetched()
	return types.ResultsResponse{
		LanguageCounts: counts,
		TotalVotes:     len(subs),
		AllSubmissions: subs,
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
		"backend": s.backend,
	}

	if s.started {
		ctx := context.Background()
		if total, err := s.store.Count(ctx); err == nil {
			stats["totalVotes"] = total
		}
		if counts, err := s.store.CountsByLanguage(ctx); err == nil {
			stats["languages"] = len(counts)
		}
	}

	return stats
}

// FindByEmail returns the vote owned by email.
func (s *Service) FindByEmail(ctx context.Context, email string) (model.Submission, error) {
	return s.store.FindByEmail(ctx, email)
}

// RefreshMetrics re-reads the vote totals from the store into the gauges.
// Stores shared between instances change behind this service's back.
func (s *Service) RefreshMetrics(ctx context.Context) error {
	return s.refreshTotals(ctx)
}

func (s *Service) refreshTotals(ctx context.Context) error {
	total, err := s.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count submissions: %w", err)
	}
	counts, err := s.store.CountsByLanguage(ctx)
	if err != nil {
		return fmt.Errorf("count languages: %w", err)
	}
	metrics.UpdateVoteTotals(total, counts)
	return nil
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	l := s.logger
	s.mu.RUnlock()
	if l == nil {
		return logger.Get()
	}
	return l
}

func rejectionField(err error) string {
	if errors.Is(err, validation.ErrInvalidEmail) {
		return validation.FieldEmail
	}
	return "required"
}
