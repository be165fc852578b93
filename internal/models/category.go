package models

import "time"

// UncategorizedName is the default category imported transactions fall into
// when no rule matches.
const UncategorizedName = "Uncategorized"

// Category represents income/expense category.
type Category struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index;not null"`
	Name      string    `gorm:"size:64;not null"`
	Type      string    `gorm:"size:16;index;not null"` // income / expense
	CreatedAt time.Time
	UpdatedAt time.Time
}
