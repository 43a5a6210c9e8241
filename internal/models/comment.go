package models

import (
	"time"
)

// Comment is a rated review of a place. Comments are immutable: there is no
// edit or delete path, which is what lets the place rating be maintained
// with an incremental running mean.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Cid       string    `gorm:"uniqueIndex;size:8;not null" json:"cid"`
	PlaceID   uint      `gorm:"not null;index" json:"place_id"`
	Place     Place     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"place"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Rating    int       `gorm:"not null" json:"rating"` // 1..5
	CreatedAt time.Time `json:"created_at"`
}
