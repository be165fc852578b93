// Package rules evaluates user-defined categorization rules against
// transactions. Rules are supplied pre-sorted by ascending priority and the
// first match wins; the matcher never re-sorts.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Fields a rule can test.
const (
	FieldMerchant    = "merchant"
	FieldDescription = "description"
	FieldAmount      = "amount"
)

// Rule is a priority-ordered pattern-to-category association. Pattern is
// either a case-insensitive literal substring or a "regex:/body/flags"
// expression.
type Rule struct {
	ID         uint
	Priority   int
	Field      string
	Pattern    string
	CategoryID *uint
}

// Candidate is the read-only projection of a transaction used for matching.
type Candidate struct {
	Description        string
	MerchantName       string
	MerchantNormalized string
	Amount             decimal.Decimal
}

// Match is the outcome of a successful rule evaluation. CategoryID may be
// nil when the matched rule has no category; the caller substitutes its
// default in that case.
type Match struct {
	RuleID     uint
	CategoryID *uint
	Reason     string
}

var regexPattern = regexp.MustCompile(`^regex:/(.*)/([a-z]*)$`)

// Apply evaluates rules in the supplied order and returns the first match,
// or nil when no rule matches.
func Apply(c Candidate, rs []Rule) *Match {
	for _, r := range rs {
		test := matcherFor(r.Pattern)
		if test == nil {
			continue // uncompilable regex, rule can never match
		}
		for _, haystack := range haystacks(c, r.Field) {
			if test(haystack) {
				return &Match{
					RuleID:     r.ID,
					CategoryID: r.CategoryID,
					Reason:     fmt.Sprintf("%s matches %q", r.Field, r.Pattern),
				}
			}
		}
	}
	return nil
}

// ApplyBatch runs Apply once per candidate and returns one outcome per input
// in input order. Inputs are never mutated.
func ApplyBatch(cs []Candidate, rs []Rule) []*Match {
	out := make([]*Match, len(cs))
	for i, c := range cs {
		out[i] = Apply(c, rs)
	}
	return out
}

// haystacks selects the candidate text a rule field is tested against.
// Merchant rules test both the display name and the normalized name.
func haystacks(c Candidate, field string) []string {
	switch field {
	case FieldMerchant:
		return []string{c.MerchantName, c.MerchantNormalized}
	case FieldDescription:
		return []string{c.Description}
	case FieldAmount:
		return []string{c.Amount.StringFixed(2)}
	}
	return nil
}

// matcherFor derives a predicate from a rule pattern. "regex:/body/flags"
// compiles to a regular expression ("i", "m" and "s" flags are honoured);
// anything else is a case-insensitive substring test.
func matcherFor(pattern string) func(string) bool {
	if m := regexPattern.FindStringSubmatch(pattern); m != nil {
		body, flags := m[1], m[2]
		var prefix string
		for _, f := range "ims" {
			if strings.ContainsRune(flags, f) {
				prefix += string(f)
			}
		}
		if prefix != "" {
			body = "(?" + prefix + ")" + body
		}
		re, err := regexp.Compile(body)
		if err != nil {
			return nil
		}
		return re.MatchString
	}

	needle := strings.ToLower(pattern)
	return func(s string) bool {
		return needle != "" && strings.Contains(strings.ToLower(s), needle)
	}
}
