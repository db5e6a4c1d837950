package memstore

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"essaysim/internal/domain"
	"essaysim/internal/port"
)

// ErrAttemptNotFound is returned when no attempt has the requested ID.
var ErrAttemptNotFound = domain.ErrAttemptNotFound

// MemoryStore keeps attempts in process memory. It backs history where no
// file system is available.
type MemoryStore struct {
	mu       sync.RWMutex
	attempts map[string]domain.Attempt
	seq      uint64
	now      func() time.Time
}

var _ port.AttemptStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		attempts: make(map[string]domain.Attempt),
		now:      time.Now,
	}
}

func (s *MemoryStore) PutAttempt(a *domain.Attempt) error {
	return s.PutAttempts([]*domain.Attempt{a})
}

func (s *MemoryStore) PutAttempts(attempts []*domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range attempts {
		if a.CreatedAt.IsZero() {
			a.CreatedAt = s.now().UTC()
		}
		if a.ID == "" {
			a.ID = domain.AttemptID(a)
		}
		if prev, ok := s.attempts[a.ID]; ok {
			a.Seq = prev.Seq
		}
		if a.Seq == 0 {
			s.seq++
			a.Seq = s.seq
		}
		s.attempts[a.ID] = *a
	}
	return nil
}

func (s *MemoryStore) GetAttempt(id string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attempts[id]
	if !ok {
		return domain.Attempt{}, fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
	}
	return a, nil
}

// ListAttempts returns up to limit attempts, newest first.
func (s *MemoryStore) ListAttempts(limit int) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Attempt, 0, len(s.attempts))
	for _, a := range s.attempts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq > out[j].Seq })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) DeleteAttempt(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attempts[id]; !ok {
		return fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
	}
	delete(s.attempts, id)
	return nil
}

func (s *MemoryStore) Summary() (domain.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := domain.NewSummary()
	for _, a := range s.attempts {
		sum.Add(a.Band, a.Score)
	}
	return sum, nil
}

// Clear removes all attempts.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = make(map[string]domain.Attempt)
}

func (s *MemoryStore) Close() error {
	return nil
}
