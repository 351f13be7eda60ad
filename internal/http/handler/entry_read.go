package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"travelglobe/internal/auth"
	"travelglobe/internal/entry"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type EntryReadHandler struct {
	Svc   *entry.Service
	Stats *entry.StatsService
	Log   *zap.Logger
}

type listResponse struct {
	Items      []entrySummaryDTO `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
	DiaryTotal int64             `json:"diary_total"`
	GuideTotal int64             `json:"guide_total"`
	PlaceTotal int64             `json:"place_total"`
	Keyword    string            `json:"keyword,omitempty"`
	EntryType  string            `json:"entry_type,omitempty"`
}

func (h *EntryReadHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	q := r.URL.Query()

	in := entry.ListInput{
		Page:              queryInt(q.Get("page"), 1),
		PageSize:          queryInt(q.Get("page_size"), 10),
		GetAll:            q.Get("get_all") == "true",
		ForceRefreshStats: q.Get("force_refresh_stats") == "true",
		SortBy:            strings.TrimSpace(q.Get("sort_by")),
		SortOrder:         strings.TrimSpace(q.Get("sort_order")),
		Keyword:           strings.TrimSpace(q.Get("keyword")),
		EntryType:         strings.TrimSpace(q.Get("entry_type")),
	}

	res, err := h.Svc.List(r.Context(), uid, in)
	if err != nil {
		if errors.Is(err, entry.ErrInvalidEntryType) {
			http.Error(w, "invalid entry type", http.StatusBadRequest)
			return
		}
		h.Log.Error("entry list failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	items := make([]entrySummaryDTO, 0, len(res.Items))
	for i := range res.Items {
		items = append(items, toEntrySummaryDTO(&res.Items[i]))
	}

	writeJSON(w, http.StatusOK, listResponse{
		Items:      items,
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
		DiaryTotal: res.Stats.VisitedCount,
		GuideTotal: res.Stats.WishlistCount,
		PlaceTotal: res.Stats.DistinctPlaceCount,
		Keyword:    in.Keyword,
		EntryType:  in.EntryType,
	})
}

func (h *EntryReadHandler) Detail(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	e, err := h.Svc.GetDetail(r.Context(), uid, id)
	if err != nil {
		if errors.Is(err, entry.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		h.Log.Error("entry detail failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(e))
}

func (h *EntryReadHandler) Summary(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	force := r.URL.Query().Get("force_refresh") == "true"
	stats, err := h.Stats.Get(r.Context(), uid, force)
	if err != nil {
		h.Log.Error("stats summary failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func queryInt(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
