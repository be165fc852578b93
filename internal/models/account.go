package models

import "time"

// Account represents a bank account transactions are imported into.
type Account struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index:idx_account_user_name,unique;not null"`
	Name      string `gorm:"size:128;index:idx_account_user_name,unique;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
