package mood

import (
	"context"
	"errors"
	"strings"
	"time"

	"travelglobe/internal/jobs"

	"gorm.io/gorm"
)

var ErrContentRequired = errors.New("content required")

type Service struct {
	DB *gorm.DB
}

type CreateInput struct {
	Content       string
	PhotoURL      *string
	PhotoPublicID *string
}

// Create stores the note and enqueues its sentiment analysis in the same
// transaction, so a committed mood always has a pending score job. The mood
// carries the neutral vector until the worker scores it.
func (s *Service) Create(ctx context.Context, userID uint64, in CreateInput) (*Mood, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrContentRequired
	}

	m := Mood{
		UserID:        userID,
		Content:       content,
		PhotoURL:      in.PhotoURL,
		PhotoPublicID: in.PhotoPublicID,
		MoodVector:    NeutralVector,
		CreatedAt:     time.Now(),
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		return jobs.EnqueueMoodAnalysis(tx, userID, m.ID)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns the user's moods newest first.
func (s *Service) List(ctx context.Context, userID uint64) ([]Mood, error) {
	var moods []Mood
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&moods).Error
	return moods, err
}
