package models

import "time"

// MappingPreset remembers a user's column mapping for a bank key so the next
// upload of a similarly-named file starts from the saved mapping instead of a
// fresh guess. Mapping holds the five-field mapping as JSON.
type MappingPreset struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index:idx_preset_user_key,unique;not null"`
	BankKey   string `gorm:"size:128;index:idx_preset_user_key,unique;not null"`
	Mapping   string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
