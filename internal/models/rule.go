package models

import "time"

// Rule is a user-defined, priority-ordered pattern-to-category association.
// Lower priority evaluates first; the matcher relies on the caller sorting
// by priority ascending.
type Rule struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     uint   `gorm:"index;not null"`
	Priority   int    `gorm:"index;not null"`
	Field      string `gorm:"size:16;not null"`  // merchant / description / amount
	Pattern    string `gorm:"size:255;not null"` // literal substring or regex:/body/flags
	CategoryID *uint  `gorm:"index"`
	Active     bool   `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	User     User     `gorm:"constraint:OnDelete:CASCADE"`
	Category Category `gorm:"constraint:OnDelete:SET NULL"`
}
