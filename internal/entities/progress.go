package entities

import (
	"time"
)

// BirdProgress is a user's familiar flag for one bird, as stored by the database backend.
type BirdProgress struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex:idx_progress_user_bird;size:64;not null" json:"username"`
	English   string    `gorm:"uniqueIndex:idx_progress_user_bird;size:255;not null" json:"english"`
	Afrikaans string    `gorm:"size:255" json:"afrikaans"`
	Position  int       `gorm:"index" json:"position"`
	Familiar  bool      `gorm:"default:false" json:"familiar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BirdProgress) TableName() string {
	return "bird_progress"
}
