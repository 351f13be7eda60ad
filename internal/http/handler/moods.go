package handler

import (
	"errors"
	"net/http"
	"time"

	"travelglobe/internal/auth"
	"travelglobe/internal/mood"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

type MoodHandler struct {
	Svc *mood.Service
	Log *zap.Logger
}

type createMoodReq struct {
	Content       string  `json:"content"`
	PhotoURL      *string `json:"photo_url"`
	PhotoPublicID *string `json:"photo_public_id"`
}

type moodDTO struct {
	ID            uint64    `json:"id"`
	Content       string    `json:"content"`
	PhotoURL      *string   `json:"photo_url"`
	PhotoPublicID *string   `json:"photo_public_id"`
	MoodVector    float64   `json:"mood_vector"`
	MoodReason    string    `json:"mood_reason"`
	CreatedAt     time.Time `json:"created_at"`
}

func toMoodDTO(m *mood.Mood) moodDTO {
	return moodDTO{
		ID:            m.ID,
		Content:       m.Content,
		PhotoURL:      m.PhotoURL,
		PhotoPublicID: m.PhotoPublicID,
		MoodVector:    m.MoodVector,
		MoodReason:    m.MoodReason,
		CreatedAt:     m.CreatedAt,
	}
}

func (h *MoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req createMoodReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	m, err := h.Svc.Create(r.Context(), uid, mood.CreateInput{
		Content:       req.Content,
		PhotoURL:      req.PhotoURL,
		PhotoPublicID: req.PhotoPublicID,
	})
	if err != nil {
		if errors.Is(err, mood.ErrContentRequired) {
			http.Error(w, "content required", http.StatusBadRequest)
			return
		}
		h.Log.Error("mood create failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toMoodDTO(m))
}

func (h *MoodHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	moods, err := h.Svc.List(r.Context(), uid)
	if err != nil {
		h.Log.Error("mood list failed", zap.Error(err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]moodDTO, 0, len(moods))
	for i := range moods {
		out = append(out, toMoodDTO(&moods[i]))
	}
	writeJSON(w, http.StatusOK, out)
}
