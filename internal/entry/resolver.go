package entry

import (
	"errors"
	"math"
	"sync/atomic"

	"gorm.io/gorm"
)

// DefaultEpsilon is the coordinate match tolerance in degrees, roughly 11
// meters at the equator. Exact float comparison across independently
// submitted client coordinates is unreliable, so matching is tolerance-based
// on both axes.
const DefaultEpsilon = 1e-4

var ErrInvalidCoordinates = errors.New("coordinates require both lat and lng")

// CoordinatesInput is the wire form of a coordinate pair. Both fields are
// required; pointers distinguish a missing field from a zero value.
type CoordinatesInput struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

func (c CoordinatesInput) valid() bool {
	return c.Lat != nil && c.Lng != nil
}

// matchLocation scans candidates for one whose latitude and longitude both
// lie within eps of the target. No spatial index: the location table stays
// small enough that a linear scan is the designed behavior.
func matchLocation(candidates []Location, lat, lng, eps float64) *Location {
	for i := range candidates {
		c := &candidates[i]
		if math.Abs(c.Coordinates.Lat-lat) < eps && math.Abs(c.Coordinates.Lng-lng) < eps {
			return c
		}
	}
	return nil
}

// Resolver implements get-or-create of Location rows. The check-then-insert
// sequence is not guarded against concurrent identical inserts; a lost race
// produces at most a duplicate row that the name fallback self-heals around
// on the next resolution.
type Resolver struct {
	Cache   *LocationCache
	Epsilon float64

	// Scans counts full-table scans, so tests can observe cache hits.
	Scans atomic.Int64
}

func NewResolver(cache *LocationCache, epsilon float64) *Resolver {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	return &Resolver{Cache: cache, Epsilon: epsilon}
}

// Resolve returns the Location for the given coordinates and display name,
// creating one if no existing row matches. It runs against the caller's db
// handle so a surrounding transaction covers any insert.
func (r *Resolver) Resolve(db *gorm.DB, coords CoordinatesInput, name string) (*Location, error) {
	if !coords.valid() {
		return nil, ErrInvalidCoordinates
	}
	lat, lng := *coords.Lat, *coords.Lng
	key := quantizeKey(lat, lng)

	// 1. cache, verified against storage (the cached row may have been
	// written by a transaction that rolled back)
	if id, ok := r.Cache.Get(key); ok {
		var loc Location
		if err := db.First(&loc, "id = ?", id).Error; err == nil {
			return &loc, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	// 2. tolerance scan over all stored locations
	var candidates []Location
	if err := db.Find(&candidates).Error; err != nil {
		return nil, err
	}
	r.Scans.Add(1)
	if loc := matchLocation(candidates, lat, lng, r.Epsilon); loc != nil {
		r.Cache.Put(key, loc.ID)
		return loc, nil
	}

	// 3. exact-name fallback: the same declared place name is trusted over
	// slightly different coordinates
	var byName Location
	err := db.First(&byName, "name = ?", name).Error
	if err == nil {
		r.Cache.Put(key, byName.ID)
		return &byName, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 4. create
	loc := Location{
		Name:        name,
		Coordinates: Coordinates{Lat: lat, Lng: lng},
	}
	if err := db.Create(&loc).Error; err != nil {
		return nil, err
	}
	r.Cache.Put(key, loc.ID)
	return &loc, nil
}
