package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"travelglobe/internal/auth"
	"travelglobe/internal/entry"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

type EntryHandler struct {
	Svc *entry.Service
	Log *zap.Logger
}

type createEntryReq struct {
	Title          string                  `json:"title"`
	Content        *string                 `json:"content"`
	LocationName   string                  `json:"location_name"`
	Coordinates    *entry.CoordinatesInput `json:"coordinates"`
	DateStart      *string                 `json:"date_start"`
	DateEnd        *string                 `json:"date_end"`
	EntryType      string                  `json:"entry_type"`
	Transportation *string                 `json:"transportation"`
	Photos         []entry.PhotoInput      `json:"photos"`
}

func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req createEntryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Coordinates == nil {
		http.Error(w, "coordinates required", http.StatusBadRequest)
		return
	}
	dateStart, ok := parseDate(req.DateStart)
	if !ok {
		http.Error(w, "invalid date_start (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}
	dateEnd, ok := parseDate(req.DateEnd)
	if !ok {
		http.Error(w, "invalid date_end (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	e, err := h.Svc.Create(r.Context(), uid, entry.CreateInput{
		Title:          req.Title,
		Content:        req.Content,
		LocationName:   req.LocationName,
		Coordinates:    *req.Coordinates,
		DateStart:      dateStart,
		DateEnd:        dateEnd,
		EntryType:      req.EntryType,
		Transportation: req.Transportation,
		Photos:         req.Photos,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryDTO(e))
}

type updateEntryReq struct {
	Title          entry.Optional[*string]                 `json:"title"`
	Content        entry.Optional[*string]                 `json:"content"`
	LocationName   entry.Optional[*string]                 `json:"location_name"`
	Coordinates    entry.Optional[*entry.CoordinatesInput] `json:"coordinates"`
	DateStart      entry.Optional[*string]                 `json:"date_start"`
	DateEnd        entry.Optional[*string]                 `json:"date_end"`
	EntryType      entry.Optional[*string]                 `json:"entry_type"`
	Transportation entry.Optional[*string]                 `json:"transportation"`
	Photos         entry.Optional[[]entry.PhotoInput]      `json:"photos"`
}

func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateEntryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	in := entry.UpdateInput{
		Title:          req.Title,
		Content:        req.Content,
		LocationName:   req.LocationName,
		Coordinates:    req.Coordinates,
		EntryType:      req.EntryType,
		Transportation: req.Transportation,
		Photos:         req.Photos,
	}
	var ok bool
	if in.DateStart, ok = optionalDate(req.DateStart); !ok {
		http.Error(w, "invalid date_start (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}
	if in.DateEnd, ok = optionalDate(req.DateEnd); !ok {
		http.Error(w, "invalid date_end (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	e, err := h.Svc.Update(r.Context(), uid, id, in)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toEntryDTO(e))
}

func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.Svc.Delete(r.Context(), uid, id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// optionalDate keeps the absent / sent-as-null / sent-as-value distinction
// while converting the wire string to a time.
func optionalDate(o entry.Optional[*string]) (entry.Optional[*time.Time], bool) {
	if !o.Set {
		return entry.Optional[*time.Time]{}, true
	}
	t, ok := parseDate(o.Value)
	if !ok {
		return entry.Optional[*time.Time]{}, false
	}
	return entry.Optional[*time.Time]{Set: true, Value: t}, true
}

func (h *EntryHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entry.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, entry.ErrMissingCoordinates):
		http.Error(w, "coordinates required", http.StatusBadRequest)
	case errors.Is(err, entry.ErrInvalidEntryType):
		http.Error(w, "invalid entry type", http.StatusBadRequest)
	case errors.Is(err, entry.ErrInvalidInput):
		http.Error(w, "invalid input", http.StatusBadRequest)
	default:
		h.Log.Error("entry operation failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
