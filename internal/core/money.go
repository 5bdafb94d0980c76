// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from user input
// and formatting them for display.
package core

import (
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of fractional digits kept for every amount.
const AmountPlaces = 2

var maxAmount = decimal.New(1, 12)

// ParseAmount converts user input to a positive decimal amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half-up to two decimal places. Thousands separators are not supported.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,345") -> 12.35
//	ParseAmount("0")      -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, Invalid("amount", ErrInvalidAmount, "amount is required")
	}
	if strings.Count(s, ",") > 1 || (strings.Contains(s, ",") && strings.Contains(s, ".")) {
		return decimal.Zero, Invalid("amount", ErrInvalidAmount, "amount must be a number")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, Invalid("amount", ErrInvalidAmount, "amount must be a number")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, Invalid("amount", ErrInvalidAmount, "amount must be a number")
	}
	d = d.Round(AmountPlaces)
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount rejects zero, negative and absurdly large amounts.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return Invalid("amount", ErrInvalidAmount, "amount must be greater than zero")
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return Invalid("amount", ErrInvalidAmount, "amount too large")
	}
	return nil
}

// FormatAmount renders d with two decimals, a thousands separator and the
// given currency symbol, e.g. "$1,234.50" or "-$3.00".
func FormatAmount(symbol string, d decimal.Decimal) string {
	d = d.Round(AmountPlaces)
	intPart, frac, _ := strings.Cut(d.Abs().StringFixed(AmountPlaces), ".")
	whole, _ := new(big.Int).SetString(intPart, 10)
	out := symbol + humanize.BigComma(whole) + "." + frac
	if d.IsNegative() {
		return "-" + out
	}
	return out
}
