package http

import (
	"net/http"

	"travelglobe/internal/ai"
	"travelglobe/internal/auth"
	"travelglobe/internal/config"
	"travelglobe/internal/entry"
	"travelglobe/internal/http/handler"
	mw "travelglobe/internal/http/middleware"
	"travelglobe/internal/mood"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	Config   config.Config
	DB       *gorm.DB
	JWT      *auth.JWT
	Entries  *entry.Service
	Stats    *entry.StatsService
	Moods    *mood.Service
	AI       *ai.Service // nil when no API key is configured
	Log      *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(d.Config.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(d.Config.CORSAllowedOrigins, d.Config.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := d.DB.DB()
		if err != nil || sqlDB.PingContext(r.Context()) != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: d.DB, JWT: d.JWT}
	entryH := &handler.EntryHandler{Svc: d.Entries, Log: d.Log}
	entryRead := &handler.EntryReadHandler{Svc: d.Entries, Stats: d.Stats, Log: d.Log}
	locH := &handler.LocationHandler{DB: d.DB, Log: d.Log}
	moodH := &handler.MoodHandler{Svc: d.Moods, Log: d.Log}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", ah.Register)
		r.Post("/auth/login", ah.Login)
		r.With(auth.RequireAuth(d.JWT)).Get("/auth/me", ah.Me)

		r.Route("/entries", func(r chi.Router) {
			r.Use(auth.RequireAuth(d.JWT))

			r.Post("/", entryH.Create)
			r.Get("/", entryRead.List)
			r.Get("/stats", entryRead.Summary)

			r.Get("/{id}", entryRead.Detail)
			r.Patch("/{id}", entryH.Update)
			r.Delete("/{id}", entryH.Delete)
		})

		r.With(auth.RequireAuth(d.JWT)).Get("/locations", locH.List)

		r.Route("/moods", func(r chi.Router) {
			r.Use(auth.RequireAuth(d.JWT))

			r.Post("/", moodH.Create)
			r.Get("/", moodH.List)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Use(auth.RequireAuth(d.JWT))
			r.Use(mw.RateLimit(d.Config.AIRequestsPerMinute))

			if d.AI == nil {
				r.Post("/chat", aiUnavailable)
				r.Post("/generate-diary", aiUnavailable)
				return
			}
			aiH := &handler.AIHandler{AI: d.AI, Log: d.Log}
			r.Post("/chat", aiH.Chat)
			r.Post("/generate-diary", aiH.GenerateDiary)
		})
	})

	return r
}

func aiUnavailable(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "ai service not configured", http.StatusServiceUnavailable)
}
