// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from user input
// and for the fixed two-decimal presentation used in status messages.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a positive amount rounded to
// two decimal places.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Signs are rejected because the
// direction of a transaction is carried by its type.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("12.345") -> 12.35, nil
//	ParseAmount("-1")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	rounded := d.Round(2)
	if rounded.IsNegative() || (rounded.IsZero() && !d.IsZero()) {
		return 0, ErrInvalidAmount
	}
	f, _ := rounded.Float64()
	return f, nil
}

// FormatAmount renders an amount with exactly two decimal places.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// subtract computes a-b in decimal arithmetic so that values such as
// 500-450.1 do not pick up binary floating point noise.
func subtract(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Float64()
	return f
}
