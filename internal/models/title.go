package models

import "time"

// Title is a catalog entry (movie, series, anime, game...)
type Title struct {
	ID   uint64 `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null;index" json:"name"`
	Kind Kind   `gorm:"not null" json:"kind"`

	// Metadata
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Title) TableName() string { return "titles" }
