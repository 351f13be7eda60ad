package jobs

import (
	"context"
	"errors"
	"math"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MoodAnalyzer scores a mood note. Implemented by the AI service; faked in
// tests.
type MoodAnalyzer interface {
	AnalyzeMood(ctx context.Context, content string) (vector float64, reason string, err error)
}

type Worker struct {
	ID       string
	Repo     *Repo
	DB       *gorm.DB
	Analyzer MoodAnalyzer
	Log      *zap.Logger
}

// moodRow avoids an import cycle with the mood package; the worker only
// touches the columns it needs.
type moodRow struct {
	ID      uint64 `gorm:"column:id"`
	UserID  uint64 `gorm:"column:user_id"`
	Content string `gorm:"column:content"`
}

func (moodRow) TableName() string { return "moods" }

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(800 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.Repo.Claim(w.ID)
			if err != nil {
				w.Log.Error("worker claim failed", zap.Error(err))
				continue
			}
			if job == nil {
				continue
			}
			w.handle(ctx, job)
		}
	}
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	switch job.Type {
	case TypeMoodAnalyze:
		w.handleMoodAnalysis(ctx, job)
	default:
		_ = w.Repo.MarkFailed(job.ID, "unknown job type")
	}
}

func (w *Worker) handleMoodAnalysis(ctx context.Context, job *Job) {
	type payload struct {
		MoodID uint64 `json:"mood_id"`
	}
	var p payload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		_ = w.Repo.MarkFailed(job.ID, "bad payload")
		return
	}

	var m moodRow
	if err := w.DB.Where("id = ? AND user_id = ?", p.MoodID, job.UserID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// mood gone, nothing to score
			_ = w.Repo.MarkDone(job.ID)
			return
		}
		w.retry(job, "db read error")
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	vector, reason, err := w.Analyzer.AnalyzeMood(callCtx, m.Content)
	if err != nil {
		w.Log.Warn("mood analysis failed",
			zap.Uint64("mood_id", m.ID), zap.Int("attempt", job.Attempts+1), zap.Error(err))
		w.retry(job, err.Error())
		return
	}

	if err := w.DB.Model(&moodRow{}).Where("id = ?", m.ID).
		Updates(map[string]any{"mood_vector": vector, "mood_reason": reason}).Error; err != nil {
		w.retry(job, "db write error")
		return
	}

	w.Log.Info("mood scored",
		zap.Uint64("mood_id", m.ID), zap.Float64("vector", vector))
	_ = w.Repo.MarkDone(job.ID)
}

func (w *Worker) retry(job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Repo.MarkFailed(job.ID, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = w.Repo.RetryLater(job.ID, attempts, next, errMsg)
}
