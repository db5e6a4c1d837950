package cache

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"essaysim/internal/port"
)

// ScoreCache is a size bounded LRU of similarity scores with a TTL.
type ScoreCache struct {
	mu      sync.RWMutex
	entries map[uint64]*cacheEntry
	order   []uint64
	maxSize int
	ttl     time.Duration
	gen     uint64
	now     func() time.Time
}

type cacheEntry struct {
	score     float64
	timestamp time.Time
	gen       uint64
}

var _ port.ScoreCache = (*ScoreCache)(nil)

func NewScoreCache(maxSize int, ttl time.Duration) *ScoreCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ScoreCache{
		entries: make(map[uint64]*cacheEntry),
		order:   make([]uint64, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Key hashes parts into a cache key. Parts are length prefixed so that
// ("ab", "c") and ("a", "bc") differ.
func Key(parts ...string) uint64 {
	d := xxhash.New()
	var n [8]byte
	for _, p := range parts {
		l := uint64(len(p))
		for i := range n {
			n[i] = byte(l >> (8 * i))
		}
		d.Write(n[:])
		d.WriteString(p)
	}
	return d.Sum64()
}

func (c *ScoreCache) Get(key uint64) (float64, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	currentGen := c.gen
	c.mu.RUnlock()

	if !exists {
		return 0, false
	}

	if c.now().Sub(entry.timestamp) > c.ttl || entry.gen != currentGen {
		c.mu.Lock()
		if c.entries[key] == entry {
			delete(c.entries, key)
			c.removeFromOrder(key)
		}
		c.mu.Unlock()
		return 0, false
	}

	c.mu.Lock()
	c.moveToEnd(key)
	c.mu.Unlock()

	return entry.score, true
}

func (c *ScoreCache) Put(key uint64, score float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := &cacheEntry{
		score:     score,
		timestamp: c.now(),
		gen:       c.gen,
	}

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		c.moveToEnd(key)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
}

// Invalidate drops every entry.
func (c *ScoreCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[uint64]*cacheEntry)
	c.order = c.order[:0]
	c.gen++
}

func (c *ScoreCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *ScoreCache) evictOldest() {
	if len(c.order) == 0 {
		return
	}
	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.entries, oldest)
}

func (c *ScoreCache) moveToEnd(key uint64) {
	if c.removeFromOrder(key) {
		c.order = append(c.order, key)
	}
}

func (c *ScoreCache) removeFromOrder(key uint64) bool {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return true
		}
	}
	return false
}
