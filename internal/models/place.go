package models

import (
	"time"
)

// Place is a community-submitted point of interest. Upvotes, Downvotes,
// Rating and RatingCount are cached projections of the vote and comment
// tables; only the rating service may write them.
type Place struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Pid         string    `gorm:"uniqueIndex;size:8;not null" json:"pid"`
	CityID      uint      `gorm:"not null;index" json:"city_id"`
	City        City      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"city"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Name        string    `gorm:"not null" json:"name"`
	Category    string    `gorm:"size:40" json:"category"` // e.g. "food", "hostel", "coworking"
	Description string    `gorm:"type:text" json:"description"`
	Address     string    `json:"address"`
	Upvotes     int       `gorm:"default:0" json:"upvotes"`
	Downvotes   int       `gorm:"default:0" json:"downvotes"`
	Rating      float64   `gorm:"default:0" json:"rating"`
	RatingCount int       `gorm:"default:0" json:"rating_count"`
	Views       int       `gorm:"default:0" json:"views"`
	Score       float64   `gorm:"default:0" json:"score"` // trending score, refreshed by the repair worker
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Filled at query time, not stored
	CommentCount int `gorm:"-" json:"comment_count"`
}
