package models

import (
	"time"
)

type City struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;unique" json:"name"`
	Country     string    `gorm:"size:80;not null" json:"country"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Filled at query time, not stored
	PlaceCount int `gorm:"-" json:"place_count"`
}
