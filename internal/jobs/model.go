package jobs

import "time"

const TypeMoodAnalyze = "MOOD_ANALYZE"

type Job struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"index;not null"`

	Type    string `gorm:"type:text;not null"` // MOOD_ANALYZE
	Payload []byte `gorm:"type:jsonb;not null;default:'{}'"`

	RunAt  time.Time `gorm:"index;not null"`
	Status string    `gorm:"index;not null;default:'PENDING'"` // PENDING/RUNNING/DONE/FAILED

	Attempts    int `gorm:"not null;default:0"`
	MaxAttempts int `gorm:"not null;default:8"`

	LockedBy *string    `gorm:"type:text"`
	LockedAt *time.Time `gorm:"type:timestamptz"`

	LastError *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
