package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuess(t *testing.T) {
	headers := []string{"Date Posted", "Transaction Amount", "Transaction Type", "Description", "Payee"}

	m, unresolved := Guess(headers)

	assert.Empty(t, unresolved)
	assert.Equal(t, "Date Posted", m.Date)
	assert.Equal(t, "Transaction Amount", m.Amount)
	assert.Equal(t, "Transaction Type", m.Type)
	assert.Equal(t, "Description", m.Description)
	assert.Equal(t, "Payee", m.Merchant)
}

func TestGuess_AlwaysTotal(t *testing.T) {
	// headers that match no synonym still produce a complete mapping
	headers := []string{"Col1", "Col2", "Col3"}

	m, unresolved := Guess(headers)

	assert.ElementsMatch(t, []string{"date", "amount", "type", "description", "merchant"}, unresolved)
	for _, got := range []string{m.Date, m.Amount, m.Type, m.Description, m.Merchant} {
		assert.Equal(t, "Col1", got)
	}
}

func TestGuess_OrderIndependent(t *testing.T) {
	// every permutation of headers resolves every canonical field
	perms := [][]string{
		{"Amount", "Date", "Type", "Memo", "Payee"},
		{"Payee", "Memo", "Type", "Date", "Amount"},
		{"Type", "Amount", "Payee", "Date", "Memo"},
	}
	for _, p := range perms {
		m, unresolved := Guess(p)
		assert.Empty(t, unresolved, "headers %v", p)
		assert.Equal(t, "Date", m.Date)
		assert.Equal(t, "Amount", m.Amount)
		assert.Equal(t, "Type", m.Type)
		assert.Equal(t, "Memo", m.Description)
		assert.Equal(t, "Payee", m.Merchant)
	}
}

func TestBankKey(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"TD Chequing (Jan).csv", "td-chequing-jan"},
		{"export_2025-01.csv", "export-2025-01"},
		{"statement.csv", "statement"},
		{"My  Bank!!.CSV", "my-bank"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BankKey(tt.filename), "filename %q", tt.filename)
	}
}

func TestNormalizeRow(t *testing.T) {
	headers := []string{"Date", "Amount", "Type", "Description", "Merchant"}
	mapping := Mapping{
		Date:        "Date",
		Amount:      "Amount",
		Type:        "Type",
		Description: "Description",
		Merchant:    "Merchant",
	}
	var n Normalizer

	tests := []struct {
		name     string
		row      []string
		wantAmt  string
		wantType string
	}{
		{
			name:     "dollar sign and thousands separator",
			row:      []string{"2025-01-02", "$1,234.56", "INCOME", "PAYROLL", ""},
			wantAmt:  "1234.56",
			wantType: TypeIncome,
		},
		{
			name:     "accounting negative forces expense",
			row:      []string{"2025-01-02", "(50.00)", "INCOME", "REFUND REVERSAL", ""},
			wantAmt:  "50",
			wantType: TypeExpense,
		},
		{
			name:     "unknown type inferred from sign",
			row:      []string{"2025-01-02", "-10", "foo", "COFFEE", ""},
			wantAmt:  "10",
			wantType: TypeExpense,
		},
		{
			name:     "positive with unknown type is income",
			row:      []string{"2025-01-02", "10", "weird", "REBATE", ""},
			wantAmt:  "10",
			wantType: TypeIncome,
		},
		{
			name:     "garbage amount defaults to zero",
			row:      []string{"2025-01-02", "not-a-number", "", "JUNK", ""},
			wantAmt:  "0",
			wantType: TypeIncome,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.NormalizeRow(headers, tt.row, mapping)
			assert.Equal(t, tt.wantAmt, got.Amount.String())
			assert.Equal(t, tt.wantType, got.Type)
			assert.False(t, got.Amount.IsNegative())
		})
	}
}

func TestNormalizeRow_Total(t *testing.T) {
	mapping := Mapping{
		Date:        "Date",
		Amount:      "Amount",
		Type:        "Type",
		Description: "Description",
		Merchant:    "Merchant",
	}
	var n Normalizer

	// mapping points at headers the row does not have; must not panic
	got := n.NormalizeRow([]string{"Other"}, []string{"x"}, mapping)
	assert.Equal(t, "", got.Date)
	assert.Equal(t, "0", got.Amount.String())
	assert.Equal(t, TypeIncome, got.Type)
	assert.Equal(t, "", got.Description)
	assert.Equal(t, "", got.Merchant)
}

func TestNormalizeRow_Idempotent(t *testing.T) {
	headers := []string{"Date", "Amount", "Type", "Description", "Merchant"}
	row := []string{"2025-01-02", "($1,250.999)", "INCOME", "  SOMETHING  ", "PETRO-CANADA"}
	mapping, _ := Guess(headers)
	var n Normalizer

	first := n.NormalizeRow(headers, row, mapping)
	second := n.NormalizeRow(headers, row, mapping)
	require.Equal(t, first, second)
	assert.Equal(t, "1251", first.Amount.String()) // rounded to 2 places
	assert.Equal(t, TypeExpense, first.Type)
	assert.Equal(t, "SOMETHING", first.Description)
}

func TestNormalizeRow_StripCodePrefix(t *testing.T) {
	headers := []string{"Description"}
	mapping := Mapping{Description: "Description"}

	plain := Normalizer{}.NormalizeRow(headers, []string{"[DN] PAYMENT"}, mapping)
	assert.Equal(t, "[DN] PAYMENT", plain.Description)

	stripped := Normalizer{StripCodePrefix: true}.NormalizeRow(headers, []string{"[DN] PAYMENT"}, mapping)
	assert.Equal(t, "PAYMENT", stripped.Description)
}
