package models

import "time"

// Transaction is a single imported or hand-entered bank transaction.
// Amounts are stored in cents to avoid float drift; direction lives in Type.
type Transaction struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index;not null"`
	AccountID   uint   `gorm:"index;not null"`
	MerchantID  *uint  `gorm:"index"`
	CategoryID  uint   `gorm:"index"`
	Type        string `gorm:"size:16;not null"` // income / expense
	AmountCent  int64  `gorm:"not null"`
	Description string `gorm:"size:512"`
	Date        string `gorm:"size:10;index;not null"` // YYYY-MM-DD
	ImportBatch string `gorm:"size:36;index"`          // UUID of the upload, empty for manual entries
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User     User     `gorm:"constraint:OnDelete:CASCADE"`
	Account  Account  `gorm:"constraint:OnDelete:CASCADE"`
	Merchant Merchant `gorm:"constraint:OnDelete:SET NULL"`
	Category Category `gorm:"constraint:OnDelete:SET NULL"`
}
