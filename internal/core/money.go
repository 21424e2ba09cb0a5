// Package core implements the ledger balance engine: domain types,
// amount parsing, the replay-based summary engine, period resolution
// and transaction filtering.
//
// This file contains the parsers for monetary input. Two shapes of
// input exist: plain decimal magnitudes on transaction entry, and
// locale-formatted currency strings on account balance edits.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a raw transaction magnitude. It accepts plain
// decimals with either a dot or a comma as the decimal separator and
// returns the absolute value.
//
// Unparsable or empty input yields zero, not an error. The original
// deployment silently coerced bad input to 0 and stored balances
// depend on that; callers that want strict behavior must check
// emptiness themselves.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Abs()
}

// ParseCurrency parses a currency-formatted balance string as entered
// on account edits, e.g. "$1.234.567,89": the currency symbol, spaces
// and non-breaking spaces are stripped, every dot is a thousands
// separator and the comma is the decimal separator. Unparsable input
// yields zero.
func ParseCurrency(s string) decimal.Decimal {
	cleaned := strings.NewReplacer("$", "", " ", "", " ", "", ".", "").Replace(strings.TrimSpace(s))
	cleaned = strings.Replace(cleaned, ",", ".", 1)
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
