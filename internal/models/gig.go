package models

import (
	"time"
)

// Gig is a short-term work listing posted by crew members.
type Gig struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Gid         string    `gorm:"uniqueIndex;size:8;not null" json:"gid"`
	CityID      uint      `gorm:"not null;index" json:"city_id"`
	City        City      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"city"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Pay         string    `gorm:"size:100" json:"pay"` // free text, e.g. "$120/day"
	Contact     string    `gorm:"size:200;not null" json:"contact"`
	Open        bool      `gorm:"default:true" json:"open"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
