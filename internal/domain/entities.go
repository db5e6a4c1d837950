package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ErrAttemptNotFound is returned by attempt stores when no attempt has the
// requested ID.
var ErrAttemptNotFound = errors.New("attempt not found")

// Band is the correctness band a score falls into.
type Band string

const (
	BandCorrect   Band = "correct"
	BandPartial   Band = "partial"
	BandIncorrect Band = "incorrect"
)

// Bands lists every band from best to worst.
var Bands = []Band{BandCorrect, BandPartial, BandIncorrect}

// Stat is one named text statistic of a response.
type Stat struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Attempt is one graded response.
type Attempt struct {
	ID            string    `json:"id"`
	Seq           uint64    `json:"seq"`
	Language      string    `json:"language"`
	ReferenceHash string    `json:"reference_hash"`
	Source        string    `json:"source,omitempty"`
	Response      string    `json:"response"`
	Score         float64   `json:"score"`
	Band          Band      `json:"band"`
	Fraction      float64   `json:"fraction"`
	Stats         []Stat    `json:"stats,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// AttemptID derives a stable 16 hex digit ID from the attempt content and
// creation time.
func AttemptID(a *Attempt) string {
	d := xxhash.New()
	d.WriteString(a.Language)
	d.WriteString("\x00")
	d.WriteString(a.ReferenceHash)
	d.WriteString("\x00")
	d.WriteString(a.Source)
	d.WriteString("\x00")
	d.WriteString(a.Response)
	d.WriteString("\x00")
	d.WriteString(strconv.FormatInt(a.CreatedAt.UnixNano(), 10))
	return fmt.Sprintf("%016x", d.Sum64())
}

// Summary aggregates recorded attempts.
type Summary struct {
	Count     int          `json:"count"`
	MeanScore float64      `json:"mean_score"`
	Bands     map[Band]int `json:"bands"`
}

// NewSummary returns an empty summary with every band present.
func NewSummary() Summary {
	s := Summary{Bands: make(map[Band]int, len(Bands))}
	for _, b := range Bands {
		s.Bands[b] = 0
	}
	return s
}

// Add counts one graded score into the summary, keeping a running mean.
func (s *Summary) Add(band Band, score float64) {
	s.Count++
	s.Bands[band]++
	s.MeanScore += (score - s.MeanScore) / float64(s.Count)
}
