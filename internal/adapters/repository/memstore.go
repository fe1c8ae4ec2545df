package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/langvote/internal/domain/model"
)

// MemoryStore keeps submissions in process memory.
type MemoryStore struct {
	settings

	mu      sync.RWMutex
	subs    []model.Submission
	byEmail map[string]int // email key -> index in subs
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		settings: newSettings(opts),
		byEmail:  make(map[string]int),
	}
}

// AddOrUpdate implements Store.
func (s *MemoryStore) AddOrUpdate(ctx context.Context, in model.SubmissionInput) (sub model.Submission, updated bool, err error) {
	defer observe(OpAddOrUpdate, time.Now(), &err)
	if err = ctx.Err(); err != nil {
		return model.Submission{}, false, err
	}
	sub, updated = s.save(newRecord(in, s.clock()))
	return sub, updated, nil
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, sub model.Submission) (err error) {
	defer observe(OpPut, time.Now(), &err)
	if err = ctx.Err(); err != nil {
		return err
	}
	if sub.ID == "" {
		return ErrMissingID
	}
	s.save(sub)
	return nil
}

func (s *MemoryStore) save(sub model.Submission) (model.Submission, bool) {
	key := model.EmailKey(sub.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.byEmail[key]; ok {
		if sub.ID == "" {
			sub.ID = s.subs[i].ID
		}
		s.subs[i] = sub
		return sub, true
	}

	if sub.ID == "" {
		sub.ID = s.newID()
	}
	s.byEmail[key] = len(s.subs)
	s.subs = append(s.subs, sub)
	return sub, false
}

// All implements Store.
func (s *MemoryStore) All(ctx context.Context) (subs []model.Submission, err error) {
	defer observe(OpAll, time.Now(), &err)
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Submission, len(s.subs))
	copy(out, s.subs)
	return out, nil
}

// Count implements Store.
func (s *MemoryStore) Count(ctx context.Context) (n int, err error) {
	defer observe(OpCount, time.Now(), &err)
	if err = ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs), nil
}

// CountsByLanguage implements Store.
func (s *MemoryStore) CountsByLanguage(ctx context.Context) (counts map[string]int, err error) {
	defer observe(OpCountsByLanguage, time.Now(), &err)
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	counts = make(map[string]int)
	for _, sub := range s.subs {
		counts[sub.Language]++
	}
	return counts, nil
}

// FindByEmail implements Store.
func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (sub model.Submission, err error) {
	defer observe(OpFindByEmail, time.Now(), &err)
	if err = ctx.Err(); err != nil {
		return model.Submission{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byEmail[model.EmailKey(email)]
	if !ok {
		return model.Submission{}, ErrNotFound
	}
	return s.subs[i], nil
}

// Close implements Store. The memory store holds no resources.
func (s *MemoryStore) Close() error { return nil }
