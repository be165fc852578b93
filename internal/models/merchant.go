package models

import (
	"strings"
	"time"
)

// Merchant is a payee resolved from imported transactions. NormalizedName is
// the upper-cased, whitespace-collapsed form used for lookups and rule
// matching.
type Merchant struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         uint   `gorm:"index:idx_merchant_user_norm,unique;not null"`
	Name           string `gorm:"size:255;not null"`
	NormalizedName string `gorm:"size:255;index:idx_merchant_user_norm,unique;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}

// NormalizeMerchantName upper-cases a merchant name and collapses interior
// whitespace so "petro  canada" and "PETRO CANADA" resolve to one merchant.
func NormalizeMerchantName(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}
