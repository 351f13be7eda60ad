package entry

import (
	"fmt"
	"sync"
	"time"
)

// quantizeKey rounds a coordinate pair to six decimal places (sub-meter) so
// that resubmissions of the same point hit the cache.
func quantizeKey(lat, lng float64) string {
	return fmt.Sprintf("%.6f:%.6f", lat, lng)
}

// LocationCache maps quantized coordinate keys to location ids. Entries live
// for the process lifetime; a stale id is detected by the Resolver when the
// row no longer exists.
type LocationCache struct {
	mu      sync.Mutex
	entries map[string]uint64
}

func NewLocationCache() *LocationCache {
	return &LocationCache{entries: make(map[string]uint64)}
}

func (c *LocationCache) Get(key string) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.entries[key]
	return id, ok
}

func (c *LocationCache) Put(key string, id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = id
}

func (c *LocationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats is the per-user aggregate tuple.
type Stats struct {
	VisitedCount       int64 `json:"diary_total"`
	WishlistCount      int64 `json:"guide_total"`
	DistinctPlaceCount int64 `json:"place_total"`
	TotalCount         int64 `json:"total"`
}

const (
	// StatsTTL is the validity window of a cached stats tuple.
	StatsTTL = 5 * time.Minute

	// statsSweepThreshold triggers an amortized sweep of expired entries.
	statsSweepThreshold = 1000
)

type statsEntry struct {
	stats      Stats
	computedAt time.Time
}

// StatsCache holds per-user stats tuples with a fixed TTL. Writes that change
// a user's entry counts must Invalidate that user immediately; expired entries
// are otherwise only reaped when the map grows past the sweep threshold.
type StatsCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[uint64]statsEntry
}

func NewStatsCache() *StatsCache {
	return &StatsCache{
		ttl:     StatsTTL,
		now:     time.Now,
		entries: make(map[uint64]statsEntry),
	}
}

// NewStatsCacheWithClock is for tests that need to control expiry.
func NewStatsCacheWithClock(ttl time.Duration, now func() time.Time) *StatsCache {
	return &StatsCache{ttl: ttl, now: now, entries: make(map[uint64]statsEntry)}
}

func (c *StatsCache) Get(userID uint64) (Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[userID]
	if !ok {
		return Stats{}, false
	}
	if c.now().Sub(e.computedAt) >= c.ttl {
		delete(c.entries, userID)
		return Stats{}, false
	}
	return e.stats, true
}

func (c *StatsCache) Put(userID uint64, s Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) > statsSweepThreshold {
		c.sweepLocked()
	}
	c.entries[userID] = statsEntry{stats: s, computedAt: c.now()}
}

func (c *StatsCache) Invalidate(userID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

func (c *StatsCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *StatsCache) sweepLocked() {
	now := c.now()
	for uid, e := range c.entries {
		if now.Sub(e.computedAt) >= c.ttl {
			delete(c.entries, uid)
		}
	}
}
