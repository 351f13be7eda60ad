package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travelglobe/internal/ai"
	"travelglobe/internal/auth"
	"travelglobe/internal/config"
	"travelglobe/internal/db"
	"travelglobe/internal/entry"
	httpx "travelglobe/internal/http"
	"travelglobe/internal/jobs"
	"travelglobe/internal/mood"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.Fatal("db migrate", zap.Error(err))
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret)

	resolver := entry.NewResolver(entry.NewLocationCache(), cfg.LocationEpsilon)
	stats := &entry.StatsService{DB: gdb, Cache: entry.NewStatsCache()}
	entries := &entry.Service{DB: gdb, Resolver: resolver, Stats: stats, Log: log}
	moods := &mood.Service{DB: gdb}

	var aiSvc *ai.Service
	if cfg.GoogleAPIKey != "" {
		client, err := ai.NewGeminiClient(context.Background(), cfg.GoogleAPIKey)
		if err != nil {
			log.Fatal("gemini client", zap.Error(err))
		}
		aiSvc = ai.NewService(client, ai.DefaultModels, log)
	} else {
		log.Warn("GOOGLE_API_KEY not set, ai routes disabled and moods stay unscored")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if aiSvc != nil {
		worker := &jobs.Worker{
			ID:       "worker-" + uuid.NewString()[:8],
			Repo:     &jobs.Repo{DB: gdb},
			DB:       gdb,
			Analyzer: aiSvc,
			Log:      log,
		}
		go worker.Run(ctx)
	}

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpx.NewRouter(httpx.Deps{
			Config:  cfg,
			DB:      gdb,
			JWT:     jwtSvc,
			Entries: entries,
			Stats:   stats,
			Moods:   moods,
			AI:      aiSvc,
			Log:     log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
