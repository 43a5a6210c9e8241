package models

import (
	"time"
)

// Playbook is a curated guide for a city. Vote counters are cached
// projections of the vote table, same as on Place.
type Playbook struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Pid       string    `gorm:"uniqueIndex;size:8;not null" json:"pid"`
	CityID    uint      `gorm:"not null;index" json:"city_id"`
	City      City      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"city"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"` // markdown
	Upvotes   int       `gorm:"default:0" json:"upvotes"`
	Downvotes int       `gorm:"default:0" json:"downvotes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Entries []PlaybookEntry `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"entries"`
}

// PlaybookEntry is one stop in a playbook, optionally linked to a Place.
type PlaybookEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PlaybookID uint      `gorm:"not null;index" json:"playbook_id"`
	PlaceID    *uint     `gorm:"index" json:"place_id"`
	Place      *Place    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"place,omitempty"`
	Position   int       `gorm:"not null" json:"position"`
	Note       string    `gorm:"type:text" json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}

// PlaybookRevision is an append-only snapshot taken before each edit.
type PlaybookRevision struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PlaybookID uint      `gorm:"not null;index" json:"playbook_id"`
	EditorID   uint      `gorm:"not null;index" json:"editor_id"`
	Editor     User      `gorm:"foreignKey:EditorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"editor"`
	Title      string    `gorm:"not null" json:"title"`
	Body       string    `gorm:"type:text" json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}
