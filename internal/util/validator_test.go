package util

import (
	"testing"
)

func TestValidateAmountCent_Positive(t *testing.T) {
	testCases := []int64{1, 100, 10050, 999999999}

	for _, amount := range testCases {
		err := ValidateAmountCent(amount)
		if err != nil {
			t.Errorf("ValidateAmountCent(%d) error = %v, want nil", amount, err)
		}
	}
}

func TestValidateAmountCent_Zero(t *testing.T) {
	if err := ValidateAmountCent(0); err == nil {
		t.Error("ValidateAmountCent(0) error = nil, want error")
	}
}

func TestValidateAmountCent_Negative(t *testing.T) {
	testCases := []int64{-1, -10000, -999999}

	for _, amount := range testCases {
		if err := ValidateAmountCent(amount); err == nil {
			t.Errorf("ValidateAmountCent(%d) error = nil, want error", amount)
		}
	}
}

func TestValidateAmountCent_TooLarge(t *testing.T) {
	if err := ValidateAmountCent(1_000_000_000); err == nil {
		t.Error("ValidateAmountCent(1_000_000_000) error = nil, want error")
	}
}

func TestValidateDate_Valid(t *testing.T) {
	testCases := []string{
		"2024-01-01",
		"2024-12-31",
		"2025-06-15",
	}

	for _, date := range testCases {
		if err := ValidateDate(date); err != nil {
			t.Errorf("ValidateDate(%q) error = %v, want nil", date, err)
		}
	}
}

func TestValidateDate_Invalid(t *testing.T) {
	testCases := []string{
		"",
		"2024/01/01",
		"01-01-2024",
		"2024-13-01",
		"not a date",
	}

	for _, date := range testCases {
		if err := ValidateDate(date); err == nil {
			t.Errorf("ValidateDate(%q) error = nil, want error", date)
		}
	}
}

func TestValidateRuleField(t *testing.T) {
	for _, field := range []string{"merchant", "description", "amount"} {
		if err := ValidateRuleField(field); err != nil {
			t.Errorf("ValidateRuleField(%q) error = %v, want nil", field, err)
		}
	}
	for _, field := range []string{"", "Merchant", "payee", "notes"} {
		if err := ValidateRuleField(field); err == nil {
			t.Errorf("ValidateRuleField(%q) error = nil, want error", field)
		}
	}
}
