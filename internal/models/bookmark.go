package models

import (
	"time"
)

// Bookmark marks a place a user wants to keep.
type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_place_bookmark" json:"user_id"`
	PlaceID   uint      `gorm:"not null;index;uniqueIndex:idx_user_place_bookmark" json:"place_id"`
	Place     Place     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"place"`
	CreatedAt time.Time `json:"created_at"`
}
