package handler

import (
	"net/http"
	"time"

	"travelglobe/internal/entry"

	json "github.com/goccy/go-json"
)

const dateLayout = "2006-01-02"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// parseDate accepts YYYY-MM-DD; the empty string means absent.
func parseDate(s *string) (*time.Time, bool) {
	if s == nil || *s == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

type photoDTO struct {
	ID               uint64     `json:"id"`
	PublicID         string     `json:"public_id"`
	URL              string     `json:"url"`
	Width            int        `json:"width"`
	Height           int        `json:"height"`
	Format           string     `json:"format"`
	Bytes            int64      `json:"bytes"`
	OriginalFilename *string    `json:"original_filename"`
	CapturedAt       *time.Time `json:"created_at"`
}

type entryDTO struct {
	ID             uint64            `json:"id"`
	UserID         uint64            `json:"user_id"`
	Title          string            `json:"title"`
	Content        *string           `json:"content"`
	LocationName   string            `json:"location_name"`
	Coordinates    entry.Coordinates `json:"coordinates"`
	DateStart      *string           `json:"date_start"`
	DateEnd        *string           `json:"date_end"`
	EntryType      string            `json:"entry_type"`
	Transportation *string           `json:"transportation"`
	CreatedTime    time.Time         `json:"created_time"`
	LocationID     *uint64           `json:"location_id"`
	Photos         []photoDTO        `json:"photos"`
}

// entrySummaryDTO is the list item shape: no photo bodies, just the count.
type entrySummaryDTO struct {
	ID             uint64            `json:"id"`
	UserID         uint64            `json:"user_id"`
	Title          string            `json:"title"`
	LocationName   string            `json:"location_name"`
	Coordinates    entry.Coordinates `json:"coordinates"`
	DateStart      *string           `json:"date_start"`
	DateEnd        *string           `json:"date_end"`
	EntryType      string            `json:"entry_type"`
	Transportation *string           `json:"transportation"`
	CreatedTime    time.Time         `json:"created_time"`
	LocationID     *uint64           `json:"location_id"`
	PhotoCount     int               `json:"photo_count"`
}

func toPhotoDTO(p entry.Photo) photoDTO {
	return photoDTO{
		ID:               p.ID,
		PublicID:         p.PublicID,
		URL:              p.URL,
		Width:            p.Width,
		Height:           p.Height,
		Format:           p.Format,
		Bytes:            p.Bytes,
		OriginalFilename: p.OriginalFilename,
		CapturedAt:       p.CapturedAt,
	}
}

func toEntryDTO(e *entry.Entry) entryDTO {
	photos := make([]photoDTO, 0, len(e.Photos))
	for _, p := range e.Photos {
		photos = append(photos, toPhotoDTO(p))
	}
	return entryDTO{
		ID:             e.ID,
		UserID:         e.UserID,
		Title:          e.Title,
		Content:        e.Content,
		LocationName:   e.LocationName,
		Coordinates:    e.Coordinates,
		DateStart:      formatDate(e.DateStart),
		DateEnd:        formatDate(e.DateEnd),
		EntryType:      e.EntryType,
		Transportation: e.Transportation,
		CreatedTime:    e.CreatedTime,
		LocationID:     e.LocationID,
		Photos:         photos,
	}
}

func toEntrySummaryDTO(e *entry.Entry) entrySummaryDTO {
	return entrySummaryDTO{
		ID:             e.ID,
		UserID:         e.UserID,
		Title:          e.Title,
		LocationName:   e.LocationName,
		Coordinates:    e.Coordinates,
		DateStart:      formatDate(e.DateStart),
		DateEnd:        formatDate(e.DateEnd),
		EntryType:      e.EntryType,
		Transportation: e.Transportation,
		CreatedTime:    e.CreatedTime,
		LocationID:     e.LocationID,
		PhotoCount:     len(e.Photos),
	}
}
