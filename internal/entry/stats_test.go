package entry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedEntry(t *testing.T, db *gorm.DB, userID uint64, title, locationName, entryType string, content *string) {
	t.Helper()
	e := Entry{
		UserID:       userID,
		Title:        title,
		Content:      content,
		LocationName: locationName,
		Coordinates:  Coordinates{Lat: 1, Lng: 2},
		EntryType:    entryType,
	}
	require.NoError(t, db.Create(&e).Error)
}

func TestStatsCompute(t *testing.T) {
	db := setupDB(t)
	svc := &StatsService{DB: db, Cache: NewStatsCache()}

	seedEntry(t, db, 1, "Paris day one", "Paris", TypeVisited, nil)
	seedEntry(t, db, 1, "Paris day two", "Paris", TypeVisited, nil)
	seedEntry(t, db, 1, "Rome someday", "Rome", TypeWishlist, nil)
	seedEntry(t, db, 2, "Other user", "Oslo", TypeVisited, nil)

	st, err := svc.Get(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.VisitedCount)
	assert.Equal(t, int64(1), st.WishlistCount)
	assert.Equal(t, int64(1), st.DistinctPlaceCount, "same place twice counts once")
	assert.Equal(t, int64(3), st.TotalCount)
}

func TestStatsCachedUntilInvalidated(t *testing.T) {
	db := setupDB(t)
	svc := &StatsService{DB: db, Cache: NewStatsCache()}

	seedEntry(t, db, 1, "Paris", "Paris", TypeVisited, nil)

	st, err := svc.Get(context.Background(), 1, false)
	require.NoError(t, err)
	require.Equal(t, int64(1), st.TotalCount)

	// a write the cache does not know about
	seedEntry(t, db, 1, "Rome", "Rome", TypeVisited, nil)

	st, err = svc.Get(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.TotalCount, "stale tuple served within ttl")

	st, err = svc.Get(context.Background(), 1, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.TotalCount, "force refresh bypasses cache")

	seedEntry(t, db, 1, "Kyoto", "Kyoto", TypeVisited, nil)
	svc.Invalidate(1)

	st, err = svc.Get(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.TotalCount)
}

func TestStatsFilteredKeepsGlobalPlaceCounts(t *testing.T) {
	db := setupDB(t)
	svc := &StatsService{DB: db, Cache: NewStatsCache()}

	seedEntry(t, db, 1, "Tokyo trip", "Tokyo", TypeVisited, nil)
	seedEntry(t, db, 1, "Paris trip", "Paris", TypeVisited, nil)
	seedEntry(t, db, 1, "Tokyo again", "Tokyo", TypeWishlist, nil)

	st, err := svc.GetFiltered(context.Background(), 1, "tokyo")
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.VisitedCount)
	assert.Equal(t, int64(1), st.WishlistCount)
	assert.Equal(t, int64(2), st.DistinctPlaceCount, "distinct places stay unfiltered")
	assert.Equal(t, int64(3), st.TotalCount, "total stays unfiltered")
}

func TestStatsKeywordMatchesContent(t *testing.T) {
	db := setupDB(t)
	svc := &StatsService{DB: db, Cache: NewStatsCache()}

	seedEntry(t, db, 1, "Day one", "Lisbon", TypeVisited, ptr("amazing SUNSET at the pier"))
	seedEntry(t, db, 1, "Day two", "Lisbon", TypeVisited, nil)

	st, err := svc.GetFiltered(context.Background(), 1, "sunset")
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.VisitedCount, "case-insensitive content match")
}

func TestStatsCacheTTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	clock := func() time.Time { return now }
	cache := NewStatsCacheWithClock(time.Minute, clock)

	cache.Put(1, Stats{TotalCount: 5})

	st, ok := cache.Get(1)
	require.True(t, ok)
	assert.Equal(t, int64(5), st.TotalCount)

	now = now.Add(59 * time.Second)
	_, ok = cache.Get(1)
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = cache.Get(1)
	assert.False(t, ok, "expired tuple is a miss")
	assert.Equal(t, 0, cache.Len(), "expired tuple dropped on read")
}

func TestStatsCacheSweep(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cache := NewStatsCacheWithClock(time.Minute, func() time.Time { return now })

	for i := uint64(0); i <= statsSweepThreshold; i++ {
		cache.Put(i, Stats{})
	}
	require.Equal(t, statsSweepThreshold+1, cache.Len())

	now = now.Add(2 * time.Minute)
	cache.Put(5000, Stats{})
	assert.Equal(t, 1, cache.Len(), "sweep drops every expired tuple")
}

func TestStatsCacheInvalidate(t *testing.T) {
	cache := NewStatsCache()
	cache.Put(1, Stats{TotalCount: 3})
	cache.Put(2, Stats{TotalCount: 7})

	cache.Invalidate(1)

	_, ok := cache.Get(1)
	assert.False(t, ok)
	st, ok := cache.Get(2)
	require.True(t, ok)
	assert.Equal(t, int64(7), st.TotalCount)
}

func TestQuantizeKey(t *testing.T) {
	assert.Equal(t, quantizeKey(48.8584, 2.2945), quantizeKey(48.8584000004, 2.2945))
	assert.NotEqual(t, quantizeKey(48.8584, 2.2945), quantizeKey(48.8585, 2.2945))
	assert.Equal(t, fmt.Sprintf("%.6f:%.6f", -1.5, 30.25), quantizeKey(-1.5, 30.25))
}
