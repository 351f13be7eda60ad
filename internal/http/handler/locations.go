package handler

import (
	"net/http"

	"travelglobe/internal/entry"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LocationHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

type locationDTO struct {
	ID          uint64            `json:"id"`
	Name        string            `json:"name"`
	Coordinates entry.Coordinates `json:"coordinates"`
	Country     *string           `json:"country"`
	City        *string           `json:"city"`
	Region      *string           `json:"region"`
}

// List returns every stored location; the frontend renders them as light
// points on the globe.
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	var locs []entry.Location
	if err := h.DB.WithContext(r.Context()).Find(&locs).Error; err != nil {
		h.Log.Error("location list failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]locationDTO, 0, len(locs))
	for _, l := range locs {
		out = append(out, locationDTO{
			ID:          l.ID,
			Name:        l.Name,
			Coordinates: l.Coordinates,
			Country:     l.Country,
			City:        l.City,
			Region:      l.Region,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
