package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catID(id uint) *uint { return &id }

func TestApply_FirstMatchWins(t *testing.T) {
	// caller supplies rules pre-sorted by ascending priority
	rs := []Rule{
		{ID: 1, Priority: 10, Field: FieldMerchant, Pattern: "PETRO", CategoryID: catID(7)},
		{ID: 2, Priority: 20, Field: FieldDescription, Pattern: "regex:/WALMART|COSTCO/i", CategoryID: catID(8)},
	}
	c := Candidate{
		Description:        "PETRO-CANADA #123 COSTCO PLAZA",
		MerchantName:       "PETRO-CANADA",
		MerchantNormalized: "PETRO-CANADA",
		Amount:             decimal.NewFromFloat(41.50),
	}

	m := Apply(c, rs)
	require.NotNil(t, m)
	assert.Equal(t, uint(1), m.RuleID)
	assert.Equal(t, uint(7), *m.CategoryID)
	assert.Contains(t, m.Reason, "PETRO")
}

func TestApply_LiteralIsCaseInsensitive(t *testing.T) {
	rs := []Rule{{ID: 1, Field: FieldDescription, Pattern: "netflix", CategoryID: catID(3)}}
	c := Candidate{Description: "NETFLIX.COM SUBSCRIPTION"}

	m := Apply(c, rs)
	require.NotNil(t, m)
	assert.Equal(t, uint(1), m.RuleID)
}

func TestApply_RegexFlags(t *testing.T) {
	rs := []Rule{{ID: 5, Field: FieldDescription, Pattern: "regex:/^wal-?mart/i", CategoryID: catID(2)}}

	m := Apply(Candidate{Description: "WalMart Supercenter"}, rs)
	require.NotNil(t, m)
	assert.Equal(t, uint(5), m.RuleID)

	assert.Nil(t, Apply(Candidate{Description: "not walmart at start? no: x WalMart"}, rs))
}

func TestApply_MerchantTestsNormalizedName(t *testing.T) {
	rs := []Rule{{ID: 1, Field: FieldMerchant, Pattern: "TIM HORTONS", CategoryID: catID(4)}}
	c := Candidate{
		MerchantName:       "Tim Horton's #4412",
		MerchantNormalized: "TIM HORTONS #4412",
	}

	m := Apply(c, rs)
	require.NotNil(t, m)
}

func TestApply_AmountAsText(t *testing.T) {
	rs := []Rule{{ID: 9, Field: FieldAmount, Pattern: "1250.00", CategoryID: catID(1)}}

	m := Apply(Candidate{Amount: decimal.NewFromInt(1250)}, rs)
	require.NotNil(t, m)
	assert.Equal(t, uint(9), m.RuleID)

	assert.Nil(t, Apply(Candidate{Amount: decimal.NewFromInt(12)}, rs))
}

func TestApply_NoMatch(t *testing.T) {
	rs := []Rule{{ID: 1, Field: FieldMerchant, Pattern: "PETRO"}}
	assert.Nil(t, Apply(Candidate{MerchantName: "SAFEWAY"}, rs))
	assert.Nil(t, Apply(Candidate{}, nil))
}

func TestApply_NullCategoryStillMatches(t *testing.T) {
	rs := []Rule{{ID: 1, Field: FieldDescription, Pattern: "FEE"}}

	m := Apply(Candidate{Description: "MONTHLY FEE"}, rs)
	require.NotNil(t, m)
	assert.Nil(t, m.CategoryID)
}

func TestApply_BadRegexNeverMatches(t *testing.T) {
	rs := []Rule{
		{ID: 1, Field: FieldDescription, Pattern: "regex:/([/"},
		{ID: 2, Field: FieldDescription, Pattern: "coffee", CategoryID: catID(2)},
	}

	m := Apply(Candidate{Description: "COFFEE SHOP ([ weird"}, rs)
	require.NotNil(t, m)
	assert.Equal(t, uint(2), m.RuleID)
}

func TestApplyBatch(t *testing.T) {
	rs := []Rule{{ID: 1, Field: FieldMerchant, Pattern: "PETRO", CategoryID: catID(7)}}
	cs := []Candidate{
		{MerchantName: "PETRO-CANADA"},
		{MerchantName: "SAFEWAY"},
		{MerchantName: "petro points"},
	}

	out := ApplyBatch(cs, rs)
	require.Len(t, out, 3)
	assert.NotNil(t, out[0])
	assert.Nil(t, out[1])
	assert.NotNil(t, out[2])

	// inputs are untouched
	assert.Equal(t, "SAFEWAY", cs[1].MerchantName)
}
