package models

import (
	"time"
)

// Vote holds one user's current opinion of a place or a playbook.
// Exactly one of PlaceID/PlaybookID is set. "No vote" is the absence of a
// row, never a stored zero.
type Vote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index;uniqueIndex:idx_user_place_vote;uniqueIndex:idx_user_playbook_vote" json:"user_id"`
	PlaceID    *uint     `gorm:"index;uniqueIndex:idx_user_place_vote" json:"place_id"`
	PlaybookID *uint     `gorm:"index;uniqueIndex:idx_user_playbook_vote" json:"playbook_id"`
	Value      int       `gorm:"not null" json:"value"` // 1 or -1
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Postgres treats NULLs as distinct in unique indexes, so the two compound
// indexes enforce one vote per user per place and per playbook respectively.
