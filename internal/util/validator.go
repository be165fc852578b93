package util

import (
	"fmt"
	"time"
)

// ValidateAmountCent checks a transaction amount in cents (positive, capped).
func ValidateAmountCent(amountCent int64) error {
	if amountCent <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amountCent)
	}
	if amountCent >= 1_000_000_000 { // 10 million in cents
		return fmt.Errorf("amount too large, got %d", amountCent)
	}
	return nil
}

// ValidateDate checks a date string is YYYY-MM-DD.
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	_, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// ValidateRuleField checks the field a rule tests against.
func ValidateRuleField(field string) error {
	switch field {
	case "merchant", "description", "amount":
		return nil
	}
	return fmt.Errorf("invalid rule field %q", field)
}
