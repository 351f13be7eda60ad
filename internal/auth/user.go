package auth

import "time"

type User struct {
	ID           uint64    `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	AvatarURL    *string   `gorm:"type:text"`
	Bio          *string   `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null"`
}
