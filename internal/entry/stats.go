package entry

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// StatsService computes per-user aggregate counts with a time-boxed cache.
type StatsService struct {
	DB    *gorm.DB
	Cache *StatsCache
}

// Get returns the user's stats tuple from the cache when fresh, recomputing
// otherwise. forceRefresh bypasses the cache entirely.
func (s *StatsService) Get(ctx context.Context, userID uint64, forceRefresh bool) (Stats, error) {
	if !forceRefresh {
		if st, ok := s.Cache.Get(userID); ok {
			return st, nil
		}
	}

	st, err := s.compute(ctx, userID, "")
	if err != nil {
		return Stats{}, err
	}
	s.Cache.Put(userID, st)
	return st, nil
}

// GetFiltered recomputes the visited and wishlist counts restricted to
// entries matching the keyword. DistinctPlaceCount and TotalCount keep their
// unfiltered values: "how many distinct places have I ever visited" does not
// change while searching.
func (s *StatsService) GetFiltered(ctx context.Context, userID uint64, keyword string) (Stats, error) {
	base, err := s.Get(ctx, userID, false)
	if err != nil {
		return Stats{}, err
	}
	filtered, err := s.compute(ctx, userID, keyword)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		VisitedCount:       filtered.VisitedCount,
		WishlistCount:      filtered.WishlistCount,
		DistinctPlaceCount: base.DistinctPlaceCount,
		TotalCount:         base.TotalCount,
	}, nil
}

// Invalidate drops the user's cached tuple. Every write changing the user's
// entry counts must call this before returning.
func (s *StatsService) Invalidate(userID uint64) {
	s.Cache.Invalidate(userID)
}

func (s *StatsService) compute(ctx context.Context, userID uint64, keyword string) (Stats, error) {
	var st Stats

	scoped := func(entryType string) *gorm.DB {
		q := s.DB.WithContext(ctx).Model(&Entry{}).
			Where("user_id = ? AND entry_type = ?", userID, entryType)
		if keyword != "" {
			q = q.Where(keywordCondition, keywordPattern(keyword), keywordPattern(keyword))
		}
		return q
	}

	if err := scoped(TypeVisited).Count(&st.VisitedCount).Error; err != nil {
		return Stats{}, err
	}
	if err := scoped(TypeWishlist).Count(&st.WishlistCount).Error; err != nil {
		return Stats{}, err
	}

	// Distinct places group visited entries by the denormalized name, not the
	// linked location id: two entries typed as the same name count once even
	// when their coordinates resolved differently.
	if err := s.DB.WithContext(ctx).Model(&Entry{}).
		Where("user_id = ? AND entry_type = ?", userID, TypeVisited).
		Distinct("location_name").
		Count(&st.DistinctPlaceCount).Error; err != nil {
		return Stats{}, err
	}
	if err := s.DB.WithContext(ctx).Model(&Entry{}).
		Where("user_id = ?", userID).
		Count(&st.TotalCount).Error; err != nil {
		return Stats{}, err
	}
	return st, nil
}

// keywordCondition matches the keyword case-insensitively against title or
// content. COALESCE keeps null content rows comparable on both Postgres and
// the sqlite test databases.
const keywordCondition = "(LOWER(title) LIKE ? OR LOWER(COALESCE(content, '')) LIKE ?)"

func keywordPattern(keyword string) string {
	return "%" + strings.ToLower(keyword) + "%"
}
