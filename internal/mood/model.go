package mood

import "time"

// Mood is a short free-text note with an AI sentiment score. NeutralVector is
// the score a mood carries until (or in case) analysis runs.
const NeutralVector = 0.5

type Mood struct {
	ID            uint64    `gorm:"primaryKey"`
	UserID        uint64    `gorm:"index;not null"`
	Content       string    `gorm:"type:text;not null"`
	PhotoURL      *string   `gorm:"type:text"`
	PhotoPublicID *string   `gorm:"type:text"`
	MoodVector    float64   `gorm:"not null;default:0.5"`
	MoodReason    string    `gorm:"type:text;not null;default:''"`
	CreatedAt     time.Time `gorm:"index;not null"`
}
