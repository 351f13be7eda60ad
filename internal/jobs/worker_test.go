package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testMood mirrors the columns the worker reads and writes.
type testMood struct {
	ID         uint64 `gorm:"primaryKey"`
	UserID     uint64
	Content    string
	MoodVector float64
	MoodReason *string
}

func (testMood) TableName() string { return "moods" }

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Job{}, &testMood{}))
	return db
}

type fakeAnalyzer struct {
	vector float64
	reason string
	err    error
	calls  int
}

func (f *fakeAnalyzer) AnalyzeMood(ctx context.Context, content string) (float64, string, error) {
	f.calls++
	return f.vector, f.reason, f.err
}

func newWorker(db *gorm.DB, a MoodAnalyzer) *Worker {
	return &Worker{ID: "test-worker", Repo: &Repo{DB: db}, DB: db, Analyzer: a, Log: zap.NewNop()}
}

func seedMoodJob(t *testing.T, db *gorm.DB, userID uint64, content string) (*testMood, *Job) {
	t.Helper()

	m := testMood{UserID: userID, Content: content, MoodVector: 0.5}
	require.NoError(t, db.Create(&m).Error)
	require.NoError(t, EnqueueMoodAnalysis(db, userID, m.ID))

	var j Job
	require.NoError(t, db.Order("id DESC").First(&j).Error)
	return &m, &j
}

func TestHandleMoodAnalysisScoresMood(t *testing.T) {
	db := setupDB(t)
	analyzer := &fakeAnalyzer{vector: 0.9, reason: "joyful"}
	w := newWorker(db, analyzer)

	m, j := seedMoodJob(t, db, 1, "best day of the trip")
	w.handle(context.Background(), j)

	var got testMood
	require.NoError(t, db.First(&got, "id = ?", m.ID).Error)
	assert.Equal(t, 0.9, got.MoodVector)
	require.NotNil(t, got.MoodReason)
	assert.Equal(t, "joyful", *got.MoodReason)

	var done Job
	require.NoError(t, db.First(&done, "id = ?", j.ID).Error)
	assert.Equal(t, "DONE", done.Status)
	assert.Equal(t, 1, analyzer.calls)
}

func TestHandleMoodAnalysisMissingMood(t *testing.T) {
	db := setupDB(t)
	analyzer := &fakeAnalyzer{}
	w := newWorker(db, analyzer)

	payload, _ := json.Marshal(map[string]any{"mood_id": 424242})
	j := Job{UserID: 1, Type: TypeMoodAnalyze, Payload: payload, RunAt: time.Now(), Status: "RUNNING", MaxAttempts: 8}
	require.NoError(t, db.Create(&j).Error)

	w.handle(context.Background(), &j)

	var got Job
	require.NoError(t, db.First(&got, "id = ?", j.ID).Error)
	assert.Equal(t, "DONE", got.Status, "vanished mood is not retried")
	assert.Zero(t, analyzer.calls)
}

func TestHandleMoodAnalysisWrongOwnerSkipped(t *testing.T) {
	db := setupDB(t)
	w := newWorker(db, &fakeAnalyzer{vector: 0.9})

	m := testMood{UserID: 7, Content: "hello", MoodVector: 0.5}
	require.NoError(t, db.Create(&m).Error)

	payload, _ := json.Marshal(map[string]any{"mood_id": m.ID})
	j := Job{UserID: 1, Type: TypeMoodAnalyze, Payload: payload, RunAt: time.Now(), Status: "RUNNING", MaxAttempts: 8}
	require.NoError(t, db.Create(&j).Error)

	w.handle(context.Background(), &j)

	var got testMood
	require.NoError(t, db.First(&got, "id = ?", m.ID).Error)
	assert.Equal(t, 0.5, got.MoodVector, "job scoped to its own user")
}

func TestHandleMoodAnalysisRetriesOnError(t *testing.T) {
	db := setupDB(t)
	analyzer := &fakeAnalyzer{err: errors.New("model unavailable")}
	w := newWorker(db, analyzer)

	_, j := seedMoodJob(t, db, 1, "meh")
	before := time.Now()
	w.handle(context.Background(), j)

	var got Job
	require.NoError(t, db.First(&got, "id = ?", j.ID).Error)
	assert.Equal(t, "PENDING", got.Status)
	assert.Equal(t, 1, got.Attempts)
	assert.True(t, got.RunAt.After(before), "retry scheduled in the future")
	require.NotNil(t, got.LastError)
	assert.Equal(t, "model unavailable", *got.LastError)
}

func TestHandleMoodAnalysisFailsAfterMaxAttempts(t *testing.T) {
	db := setupDB(t)
	analyzer := &fakeAnalyzer{err: errors.New("model unavailable")}
	w := newWorker(db, analyzer)

	_, j := seedMoodJob(t, db, 1, "meh")
	j.Attempts = j.MaxAttempts - 1
	w.handle(context.Background(), j)

	var got Job
	require.NoError(t, db.First(&got, "id = ?", j.ID).Error)
	assert.Equal(t, "FAILED", got.Status)
}

func TestHandleBadPayload(t *testing.T) {
	db := setupDB(t)
	w := newWorker(db, &fakeAnalyzer{})

	j := Job{UserID: 1, Type: TypeMoodAnalyze, Payload: []byte("not json"), RunAt: time.Now(), Status: "RUNNING", MaxAttempts: 8}
	require.NoError(t, db.Create(&j).Error)

	w.handle(context.Background(), &j)

	var got Job
	require.NoError(t, db.First(&got, "id = ?", j.ID).Error)
	assert.Equal(t, "FAILED", got.Status)
}

func TestHandleUnknownJobType(t *testing.T) {
	db := setupDB(t)
	w := newWorker(db, &fakeAnalyzer{})

	j := Job{UserID: 1, Type: "SOMETHING_ELSE", Payload: []byte("{}"), RunAt: time.Now(), Status: "RUNNING", MaxAttempts: 8}
	require.NoError(t, db.Create(&j).Error)

	w.handle(context.Background(), &j)

	var got Job
	require.NoError(t, db.First(&got, "id = ?", j.ID).Error)
	assert.Equal(t, "FAILED", got.Status)
}

func TestEnqueueMoodAnalysisPayload(t *testing.T) {
	db := setupDB(t)

	require.NoError(t, EnqueueMoodAnalysis(db, 3, 17))

	var j Job
	require.NoError(t, db.First(&j).Error)
	assert.Equal(t, TypeMoodAnalyze, j.Type)
	assert.Equal(t, uint64(3), j.UserID)
	assert.Equal(t, "PENDING", j.Status)

	var p struct {
		MoodID uint64 `json:"mood_id"`
	}
	require.NoError(t, json.Unmarshal(j.Payload, &p))
	assert.Equal(t, uint64(17), p.MoodID)
}
