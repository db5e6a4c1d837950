package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"essaysim/internal/domain"
	"essaysim/internal/port"
)

// ErrAttemptNotFound is returned when no attempt has the requested ID.
var ErrAttemptNotFound = domain.ErrAttemptNotFound

var (
	bucketAttempts = []byte("attempts")
	bucketTimeline = []byte("timeline")
	bucketMeta     = []byte("meta")
)

// BoltStore keeps attempt history in a bbolt file. Attempts are JSON values
// keyed by ID; the timeline bucket maps a big-endian sequence to the ID so
// history can be listed newest first.
type BoltStore struct {
	db  *bbolt.DB
	now func() time.Time
}

var _ port.AttemptStore = (*BoltStore)(nil)

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketAttempts, bucketTimeline, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db, now: time.Now}, nil
}

func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

// PutAttempt stores a. CreatedAt, ID and Seq are filled in when unset, and
// a is updated in place once the write commits.
func (s *BoltStore) PutAttempt(a *domain.Attempt) error {
	return s.PutAttempts([]*domain.Attempt{a})
}

// PutAttempts stores all attempts in one transaction. The attempts are only
// updated in place when it commits.
func (s *BoltStore) PutAttempts(attempts []*domain.Attempt) error {
	staged := make([]domain.Attempt, len(attempts))
	for i, a := range attempts {
		staged[i] = *a
		if staged[i].CreatedAt.IsZero() {
			staged[i].CreatedAt = s.now().UTC()
		}
		if staged[i].ID == "" {
			staged[i].ID = domain.AttemptID(&staged[i])
		}
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		attemptsBucket := tx.Bucket(bucketAttempts)
		timeline := tx.Bucket(bucketTimeline)

		for i := range staged {
			a := &staged[i]
			if existing := attemptsBucket.Get([]byte(a.ID)); existing != nil {
				var prev domain.Attempt
				if err := json.Unmarshal(existing, &prev); err == nil {
					a.Seq = prev.Seq
				}
			}
			if a.Seq == 0 {
				seq, err := timeline.NextSequence()
				if err != nil {
					return err
				}
				a.Seq = seq
			}

			data, err := json.Marshal(a)
			if err != nil {
				return fmt.Errorf("encode attempt %s: %w", a.ID, err)
			}
			if err := attemptsBucket.Put([]byte(a.ID), data); err != nil {
				return err
			}
			if err := timeline.Put(seqKey(a.Seq), []byte(a.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for i, a := range attempts {
		*a = staged[i]
	}
	return nil
}

func (s *BoltStore) GetAttempt(id string) (domain.Attempt, error) {
	var a domain.Attempt
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketAttempts).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
		}
		return json.Unmarshal(data, &a)
	})
	return a, err
}

func (s *BoltStore) ListAttempts(limit int) ([]domain.Attempt, error) {
	var out []domain.Attempt
	err := s.db.View(func(tx *bbolt.Tx) error {
		attempts := tx.Bucket(bucketAttempts)
		c := tx.Bucket(bucketTimeline).Cursor()
		for k, id := c.Last(); k != nil; k, id = c.Prev() {
			if limit > 0 && len(out) >= limit {
				break
			}
			data := attempts.Get(id)
			if data == nil {
				continue
			}
			var a domain.Attempt
			if err := json.Unmarshal(data, &a); err != nil {
				return fmt.Errorf("decode attempt %s: %w", id, err)
			}
			out = append(out, a)
		}
		return nil
	})
	return out, err
}

func (s *BoltStore) DeleteAttempt(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		attempts := tx.Bucket(bucketAttempts)
		data := attempts.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
		}
		var a domain.Attempt
		if err := json.Unmarshal(data, &a); err == nil && a.Seq != 0 {
			if err := tx.Bucket(bucketTimeline).Delete(seqKey(a.Seq)); err != nil {
				return err
			}
		}
		return attempts.Delete([]byte(id))
	})
}

// Summary counts attempts per band and averages their scores.
func (s *BoltStore) Summary() (domain.Summary, error) {
	sum := domain.NewSummary()
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAttempts).ForEach(func(k, v []byte) error {
			var a domain.Attempt
			if err := json.Unmarshal(v, &a); err != nil {
				return fmt.Errorf("decode attempt %s: %w", k, err)
			}
			sum.Add(a.Band, a.Score)
			return nil
		})
	})
	if err != nil {
		return domain.Summary{}, err
	}
	return sum, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
