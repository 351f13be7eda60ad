package handler

import (
	"net/http"
	"strings"

	"travelglobe/internal/ai"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// maxChatHistory bounds the context sent upstream.
const maxChatHistory = 20

type AIHandler struct {
	AI  *ai.Service
	Log *zap.Logger
}

type chatReq struct {
	Messages []ai.Message `json:"messages"`
}

func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		http.Error(w, "messages required", http.StatusBadRequest)
		return
	}
	if len(req.Messages) > maxChatHistory {
		req.Messages = req.Messages[len(req.Messages)-maxChatHistory:]
	}

	reply, err := h.AI.TravelAdvice(r.Context(), req.Messages)
	if err != nil {
		h.Log.Error("ai chat failed", zap.Error(err))
		http.Error(w, "ai service error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"role":    "assistant",
		"content": reply,
	})
}

type generateDiaryReq struct {
	Prompt string `json:"prompt"`
}

func (h *AIHandler) GenerateDiary(w http.ResponseWriter, r *http.Request) {
	var req generateDiaryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		http.Error(w, "prompt required", http.StatusBadRequest)
		return
	}

	draft, err := h.AI.GenerateDiaryDraft(r.Context(), req.Prompt)
	if err != nil {
		h.Log.Warn("diary draft generation failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, draft)
}
