package importer

import (
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction direction carried by NormalizedRow.Type.
const (
	TypeIncome  = "INCOME"
	TypeExpense = "EXPENSE"
)

// Mapping associates each canonical transaction field with the literal header
// string of the source CSV.
type Mapping struct {
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Merchant    string `json:"merchant"`
}

// NormalizedRow is one CSV row converted to a typed record. Amount is always
// a non-negative magnitude; direction lives in Type.
type NormalizedRow struct {
	Date        string
	Amount      decimal.Decimal
	Type        string
	Description string
	Merchant    string
}

// fieldSynonyms lists, per canonical field, the header tokens we recognise in
// priority order. Matching is case-insensitive substring.
var fieldSynonyms = []struct {
	field    string
	synonyms []string
}{
	{"date", []string{"date", "posted", "time"}},
	{"amount", []string{"amount", "amt", "debit", "credit", "value"}},
	{"type", []string{"transaction type", "type", "dr/cr"}},
	{"description", []string{"description", "memo", "narrative", "details", "reference"}},
	{"merchant", []string{"merchant", "payee", "vendor", "name"}},
}

// Guess picks the most likely header for each canonical field. A field whose
// synonyms match no header falls back to the first header, so the returned
// mapping is always total; such fields are additionally reported in
// unresolved so the caller can surface the likely-wrong guess to the user.
func Guess(headers []string) (Mapping, []string) {
	var m Mapping
	var unresolved []string

	for _, fs := range fieldSynonyms {
		header, ok := guessField(headers, fs.synonyms)
		if !ok {
			unresolved = append(unresolved, fs.field)
		}
		switch fs.field {
		case "date":
			m.Date = header
		case "amount":
			m.Amount = header
		case "type":
			m.Type = header
		case "description":
			m.Description = header
		case "merchant":
			m.Merchant = header
		}
	}
	return m, unresolved
}

func guessField(headers, synonyms []string) (string, bool) {
	for _, syn := range synonyms {
		for _, h := range headers {
			if strings.Contains(strings.ToLower(h), syn) {
				return h, true
			}
		}
	}
	if len(headers) > 0 {
		return headers[0], false
	}
	return "", false
}

// BankKey derives a lookup key for saved mapping presets from an uploaded
// filename: extension stripped, runs of non-alphanumeric characters collapsed
// to a single dash, lower-cased. "TD Chequing (Jan).csv" -> "td-chequing-jan".
func BankKey(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Normalizer converts raw CSV rows into NormalizedRows.
type Normalizer struct {
	// StripCodePrefix removes a leading bracketed two-letter code, e.g.
	// "[DN] PAYMENT" -> "PAYMENT". Only some bank exports carry the prefix,
	// so it is off unless the import profile asks for it.
	StripCodePrefix bool
}

// NormalizeRow resolves each mapped field against the headers and produces a
// NormalizedRow. It is total: missing columns become empty strings, an
// unparseable amount becomes 0, and an unrecognised type is inferred from the
// amount's sign. It never fails a row.
func (n Normalizer) NormalizeRow(headers, row []string, m Mapping) NormalizedRow {
	get := func(header string) string {
		idx := columnIndex(headers, header)
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	amount := parseAmount(get(m.Amount))

	txType := strings.ToUpper(get(m.Type))
	if txType != TypeIncome && txType != TypeExpense {
		if amount.IsNegative() {
			txType = TypeExpense
		} else {
			txType = TypeIncome
		}
	}
	// A negative amount can never be income under this model.
	if amount.IsNegative() && txType == TypeIncome {
		txType = TypeExpense
	}

	desc := get(m.Description)
	if n.StripCodePrefix {
		desc = stripCodePrefix(desc)
	}

	return NormalizedRow{
		Date:        get(m.Date),
		Amount:      amount.Abs().Round(2),
		Type:        txType,
		Description: desc,
		Merchant:    get(m.Merchant),
	}
}

func columnIndex(headers []string, header string) int {
	for i, h := range headers {
		if h == header {
			return i
		}
	}
	return -1
}

// parseAmount handles "$1,234.56" and accounting-style negatives "(50.00)".
// Garbage defaults to zero rather than failing the row.
func parseAmount(s string) decimal.Decimal {
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// stripCodePrefix drops a leading "[XY] " marker from a description.
func stripCodePrefix(desc string) string {
	if len(desc) >= 4 && desc[0] == '[' && desc[3] == ']' {
		return strings.TrimSpace(desc[4:])
	}
	return desc
}
