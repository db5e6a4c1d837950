package memstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"essaysim/internal/domain"
)

func attempt(response string, score float64, band domain.Band) *domain.Attempt {
	return &domain.Attempt{Language: "en", Response: response, Score: score, Band: band}
}

func TestPutGetDelete(t *testing.T) {
	s := NewMemoryStore()
	a := attempt("x", 0.9, domain.BandCorrect)
	require.NoError(t, s.PutAttempt(a))
	assert.Len(t, a.ID, 16)
	assert.Equal(t, uint64(1), a.Seq)
	assert.False(t, a.CreatedAt.IsZero())

	got, err := s.GetAttempt(a.ID)
	require.NoError(t, err)
	assert.Equal(t, *a, got)

	require.NoError(t, s.DeleteAttempt(a.ID))
	_, err = s.GetAttempt(a.ID)
	assert.ErrorIs(t, err, ErrAttemptNotFound)
	assert.ErrorIs(t, s.DeleteAttempt(a.ID), ErrAttemptNotFound)
}

func TestListNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	base := time.Unix(1000, 0)
	for i, r := range []string{"a", "b", "c"} {
		a := attempt(r, 0.1, domain.BandIncorrect)
		a.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, s.PutAttempt(a))
	}

	all, err := s.ListAttempts(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Response)
	assert.Equal(t, "a", all[2].Response)

	two, err := s.ListAttempts(2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestReputKeepsSeq(t *testing.T) {
	s := NewMemoryStore()
	a := attempt("a", 0.1, domain.BandIncorrect)
	require.NoError(t, s.PutAttempt(a))
	require.NoError(t, s.PutAttempt(attempt("b", 0.1, domain.BandIncorrect)))

	again := *a
	again.Seq = 0
	again.Score = 0.2
	require.NoError(t, s.PutAttempt(&again))
	assert.Equal(t, a.Seq, again.Seq)
}

func TestPutAttemptsAssignsSequence(t *testing.T) {
	s := NewMemoryStore()
	batch := []*domain.Attempt{
		attempt("a", 0.9, domain.BandCorrect),
		attempt("b", 0.2, domain.BandIncorrect),
	}
	require.NoError(t, s.PutAttempts(batch))
	assert.Equal(t, uint64(1), batch[0].Seq)
	assert.Equal(t, uint64(2), batch[1].Seq)

	all, err := s.ListAttempts(0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].Response)
}

func TestSummaryAndClear(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.PutAttempt(attempt("a", 0.9, domain.BandCorrect)))
	require.NoError(t, s.PutAttempt(attempt("b", 0.6, domain.BandPartial)))
	require.NoError(t, s.PutAttempt(attempt("c", 0.0, domain.BandIncorrect)))

	sum, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Count)
	assert.InDelta(t, 0.5, sum.MeanScore, 1e-12)
	assert.Equal(t, 1, sum.Bands[domain.BandPartial])

	s.Clear()
	sum, err = s.Summary()
	require.NoError(t, err)
	assert.Zero(t, sum.Count)
	assert.Equal(t, 0, sum.Bands[domain.BandCorrect])
}
