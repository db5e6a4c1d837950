package port

import "essaysim/internal/domain"

// AttemptStore persists graded attempts.
type AttemptStore interface {
	PutAttempt(a *domain.Attempt) error

	// PutAttempts stores every attempt or none of them.
	PutAttempts(attempts []*domain.Attempt) error

	GetAttempt(id string) (domain.Attempt, error)

	// ListAttempts returns up to limit attempts, newest first. limit <= 0
	// returns all of them.
	ListAttempts(limit int) ([]domain.Attempt, error)

	DeleteAttempt(id string) error

	Summary() (domain.Summary, error)

	Close() error
}

// ScoreCache memoizes similarity scores by key.
type ScoreCache interface {
	Get(key uint64) (float64, bool)

	Put(key uint64, score float64)
}
