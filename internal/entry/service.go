package entry

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidEntryType   = errors.New("invalid entry type")
	ErrMissingCoordinates = ErrInvalidCoordinates
)

// Service owns the entry lifecycle: every write runs in one transaction and
// invalidates the owner's cached stats on success. Reads are always scoped by
// the requesting user id; an entry owned by someone else is indistinguishable
// from one that does not exist.
type Service struct {
	DB       *gorm.DB
	Resolver *Resolver
	Stats    *StatsService
	Log      *zap.Logger
}

// PhotoInput mirrors the client upload payload. Some clients send size
// instead of bytes; either is accepted.
type PhotoInput struct {
	PublicID         string     `json:"public_id"`
	URL              string     `json:"url"`
	Width            int        `json:"width"`
	Height           int        `json:"height"`
	Format           string     `json:"format"`
	Bytes            int64      `json:"bytes"`
	Size             int64      `json:"size"`
	OriginalFilename *string    `json:"original_filename"`
	CapturedAt       *time.Time `json:"created_at"`
}

// row converts the input to a Photo. Inputs missing the content identifier or
// the url are dropped, not rejected: client-side upload races routinely
// produce half-filled photo objects.
func (p PhotoInput) row(entryID uint64) (Photo, bool) {
	if strings.TrimSpace(p.PublicID) == "" || strings.TrimSpace(p.URL) == "" {
		return Photo{}, false
	}
	size := p.Bytes
	if size == 0 {
		size = p.Size
	}
	return Photo{
		EntryID:          entryID,
		PublicID:         p.PublicID,
		URL:              p.URL,
		Width:            p.Width,
		Height:           p.Height,
		Format:           p.Format,
		Bytes:            size,
		OriginalFilename: p.OriginalFilename,
		CapturedAt:       p.CapturedAt,
	}, true
}

type CreateInput struct {
	Title          string
	Content        *string
	LocationName   string
	Coordinates    CoordinatesInput
	DateStart      *time.Time
	DateEnd        *time.Time
	EntryType      string
	Transportation *string
	Photos         []PhotoInput
}

func (s *Service) Create(ctx context.Context, userID uint64, in CreateInput) (*Entry, error) {
	title := strings.TrimSpace(in.Title)
	locationName := strings.TrimSpace(in.LocationName)
	if title == "" || locationName == "" {
		return nil, ErrInvalidInput
	}
	if !in.Coordinates.valid() {
		return nil, ErrMissingCoordinates
	}
	entryType := in.EntryType
	if entryType == "" {
		entryType = TypeVisited
	}
	if entryType != TypeVisited && entryType != TypeWishlist {
		return nil, ErrInvalidEntryType
	}

	var e Entry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		e = Entry{
			UserID:         userID,
			Title:          title,
			Content:        in.Content,
			LocationName:   locationName,
			Coordinates:    Coordinates{Lat: *in.Coordinates.Lat, Lng: *in.Coordinates.Lng},
			DateStart:      in.DateStart,
			DateEnd:        in.DateEnd,
			EntryType:      entryType,
			Transportation: in.Transportation,
			LocationID:     s.resolveLocation(tx, in.Coordinates, locationName),
		}
		if err := tx.Create(&e).Error; err != nil {
			return err
		}

		for _, p := range in.Photos {
			row, ok := p.row(e.ID)
			if !ok {
				continue
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			e.Photos = append(e.Photos, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Stats.Invalidate(userID)
	return &e, nil
}

// resolveLocation links the entry to a Location when resolution succeeds.
// Failure never aborts the write: the entry just stays unlinked.
func (s *Service) resolveLocation(tx *gorm.DB, coords CoordinatesInput, name string) *uint64 {
	loc, err := s.Resolver.Resolve(tx, coords, name)
	if err != nil {
		s.Log.Warn("location resolution failed", zap.String("name", name), zap.Error(err))
		return nil
	}
	return &loc.ID
}

type ListInput struct {
	Page              int
	PageSize          int
	GetAll            bool
	ForceRefreshStats bool
	SortBy            string // created_time | date_start
	SortOrder         string // asc | desc
	Keyword           string
	EntryType         string
}

type ListResult struct {
	Items      []Entry
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
	Stats      Stats
}

func (s *Service) List(ctx context.Context, userID uint64, in ListInput) (*ListResult, error) {
	if in.EntryType != "" && in.EntryType != TypeVisited && in.EntryType != TypeWishlist {
		return nil, ErrInvalidEntryType
	}
	keyword := strings.TrimSpace(in.Keyword)

	filtered := func() *gorm.DB {
		q := s.DB.WithContext(ctx).Model(&Entry{}).Where("user_id = ?", userID)
		if in.EntryType != "" {
			q = q.Where("entry_type = ?", in.EntryType)
		}
		if keyword != "" {
			q = q.Where(keywordCondition, keywordPattern(keyword), keywordPattern(keyword))
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, err
	}

	q := filtered().Preload("Photos")
	if keyword != "" {
		// relevance heuristic, not a scored rank: title matches first, then
		// newest first
		q = q.Order(clause.Expr{
			SQL:  "CASE WHEN LOWER(title) LIKE ? THEN 0 ELSE 1 END",
			Vars: []any{keywordPattern(keyword)},
		}).Order("created_time DESC")
	} else {
		col := "created_time"
		if in.SortBy == "date_start" {
			col = "date_start"
		}
		dir := "DESC"
		if strings.EqualFold(in.SortOrder, "asc") {
			dir = "ASC"
		}
		q = q.Order(col + " " + dir)
	}

	res := &ListResult{Total: total}
	if in.GetAll {
		if err := q.Find(&res.Items).Error; err != nil {
			return nil, err
		}
		res.Page = 1
		res.PageSize = int(total)
		res.TotalPages = 1
	} else {
		page := in.Page
		if page < 1 {
			page = 1
		}
		size := in.PageSize
		if size < 1 {
			size = 10
		}
		if size > 100 {
			size = 100
		}
		if err := q.Limit(size).Offset((page - 1) * size).Find(&res.Items).Error; err != nil {
			return nil, err
		}
		res.Page = page
		res.PageSize = size
		res.TotalPages = int((total + int64(size) - 1) / int64(size))
	}

	var err error
	if keyword != "" {
		res.Stats, err = s.Stats.GetFiltered(ctx, userID, keyword)
	} else {
		res.Stats, err = s.Stats.Get(ctx, userID, in.ForceRefreshStats)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) GetDetail(ctx context.Context, userID, entryID uint64) (*Entry, error) {
	var e Entry
	err := s.DB.WithContext(ctx).Preload("Photos").
		First(&e, "id = ? AND user_id = ?", entryID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// UpdateInput carries partial updates. A field wrapped in Optional overwrites
// the stored value whenever it was sent, explicit nulls included; required
// columns reject nulls as invalid input.
type UpdateInput struct {
	Title          Optional[*string]
	Content        Optional[*string]
	LocationName   Optional[*string]
	Coordinates    Optional[*CoordinatesInput]
	DateStart      Optional[*time.Time]
	DateEnd        Optional[*time.Time]
	EntryType      Optional[*string]
	Transportation Optional[*string]
	Photos         Optional[[]PhotoInput]
}

func (s *Service) Update(ctx context.Context, userID, entryID uint64, in UpdateInput) (*Entry, error) {
	var e Entry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&e, "id = ? AND user_id = ?", entryID, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if in.Title.Set {
			if in.Title.Value == nil || strings.TrimSpace(*in.Title.Value) == "" {
				return ErrInvalidInput
			}
			e.Title = strings.TrimSpace(*in.Title.Value)
		}
		if in.Content.Set {
			e.Content = in.Content.Value
		}
		if in.EntryType.Set {
			if in.EntryType.Value == nil {
				return ErrInvalidEntryType
			}
			et := *in.EntryType.Value
			if et != TypeVisited && et != TypeWishlist {
				return ErrInvalidEntryType
			}
			e.EntryType = et
		}
		if in.Transportation.Set {
			e.Transportation = in.Transportation.Value
		}
		if in.DateStart.Set {
			e.DateStart = in.DateStart.Value
		}
		if in.DateEnd.Set {
			e.DateEnd = in.DateEnd.Value
		}

		nameSent := in.LocationName.Set
		if nameSent {
			if in.LocationName.Value == nil || strings.TrimSpace(*in.LocationName.Value) == "" {
				return ErrInvalidInput
			}
			e.LocationName = strings.TrimSpace(*in.LocationName.Value)
		}
		coordsSent := in.Coordinates.Set
		if coordsSent {
			if in.Coordinates.Value == nil || !in.Coordinates.Value.valid() {
				return ErrMissingCoordinates
			}
			e.Coordinates = Coordinates{Lat: *in.Coordinates.Value.Lat, Lng: *in.Coordinates.Value.Lng}
		}
		// Re-resolve only when name and coordinates change together. The
		// denormalized copy keeps exactly what was submitted even when the
		// resolver matched a different row.
		if coordsSent && nameSent {
			e.LocationID = s.resolveLocation(tx, *in.Coordinates.Value, e.LocationName)
		}

		if err := tx.Save(&e).Error; err != nil {
			return err
		}

		if in.Photos.Set {
			// full replacement of the photo set, empty list included
			if err := tx.Where("entry_id = ?", e.ID).Delete(&Photo{}).Error; err != nil {
				return err
			}
			e.Photos = nil
			for _, p := range in.Photos.Value {
				row, ok := p.row(e.ID)
				if !ok {
					continue
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
				e.Photos = append(e.Photos, row)
			}
			return nil
		}
		return tx.Where("entry_id = ?", e.ID).Find(&e.Photos).Error
	})
	if err != nil {
		return nil, err
	}

	s.Stats.Invalidate(userID)
	return &e, nil
}

func (s *Service) Delete(ctx context.Context, userID, entryID uint64) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e Entry
		if err := tx.First(&e, "id = ? AND user_id = ?", entryID, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		// photos go with the entry; the linked Location row stays, other
		// entries may reference it
		if err := tx.Where("entry_id = ?", e.ID).Delete(&Photo{}).Error; err != nil {
			return err
		}
		return tx.Delete(&e).Error
	})
	if err != nil {
		return err
	}

	s.Stats.Invalidate(userID)
	return nil
}
