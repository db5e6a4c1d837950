package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScoreCache_GetPut(t *testing.T) {
	c := NewScoreCache(10, time.Minute)

	_, ok := c.Get(1)
	assert.False(t, ok)

	c.Put(1, 0.5)
	got, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 0.5, got)

	c.Put(1, 0.75)
	got, _ = c.Get(1)
	assert.Equal(t, 0.75, got)
	assert.Equal(t, 1, c.Size())
}

func TestScoreCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewScoreCache(2, time.Minute)
	c.Put(1, 0.1)
	c.Put(2, 0.2)

	_, ok := c.Get(1)
	assert.True(t, ok)

	c.Put(3, 0.3)
	_, ok = c.Get(2)
	assert.False(t, ok, "2 was least recently used")
	_, ok = c.Get(1)
	assert.True(t, ok)
	_, ok = c.Get(3)
	assert.True(t, ok)
}

func TestScoreCache_TTL(t *testing.T) {
	c := NewScoreCache(10, time.Minute)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	c.Put(7, 1)
	now = now.Add(30 * time.Second)
	_, ok := c.Get(7)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(7)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestScoreCache_Invalidate(t *testing.T) {
	c := NewScoreCache(10, time.Minute)
	c.Put(1, 0.1)
	c.Invalidate()

	_, ok := c.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestScoreCache_Defaults(t *testing.T) {
	c := NewScoreCache(0, 0)
	assert.Equal(t, 100, c.maxSize)
	assert.Equal(t, 5*time.Minute, c.ttl)
}

func TestScoreCache_Concurrent(t *testing.T) {
	c := NewScoreCache(50, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := uint64(i % 64)
				c.Put(k, float64(g))
				c.Get(k)
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Size(), 50)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("en", "a", "b"), Key("en", "a", "b"))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.NotEqual(t, Key("en", "a", "b"), Key("en", "b", "a"))
}
