// Package money provides monetary amounts stored as integer minor units.
//
// Amounts are parsed from major-unit decimal strings (e.g. "12.50") and kept
// as cents to avoid floating-point drift in arithmetic.
package money

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// MinorUnitsPerMajor is the conversion factor between the major currency
// unit and its smallest subdivision (100 for USD-like currencies).
const MinorUnitsPerMajor = 100

// DefaultSymbol is used by FormatWithSymbol until SetSymbol overrides it.
const DefaultSymbol = "$"

var ErrInvalidAmount = errors.New("invalid amount")

var symbol = DefaultSymbol

// SetSymbol sets the currency symbol used by FormatWithSymbol.
// An empty string resets it to DefaultSymbol.
func SetSymbol(s string) {
	if s == "" {
		s = DefaultSymbol
	}
	symbol = s
}

// Money is a non-negative count of minor currency units.
type Money int64

// Parse converts a decimal major-unit string to Money with half-up rounding
// on the third decimal place.
//
// It rejects empty strings, signs, non-numeric text and more than one decimal
// separator. Both dot and comma separators are accepted. Zero parses
// successfully; rejecting zero amounts is a validation concern, not a
// parsing one.
//
// Examples:
//
//	Parse("12.34") -> 1234, nil
//	Parse("12.345") -> 1234, nil (rounds down)
//	Parse("12.346") -> 1235, nil (rounds up)
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only unsigned values allowed
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if intPart == "0" && fracPart == "" && len(parts) == 2 {
		// a bare "." is not a number
		return 0, ErrInvalidAmount
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	var iv int64
	// Prevent overflow when multiplying by MinorUnitsPerMajor
	const maxSafeInt64 = (1<<63 - 1) / MinorUnitsPerMajor
	for _, r := range intPart {
		iv = iv*10 + int64(r-'0')
		if iv > maxSafeInt64 {
			return 0, ErrInvalidAmount
		}
	}
	// Take the first two fractional digits, then half-up rounding on the third
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return Money(iv*MinorUnitsPerMajor + fracCents), nil
}

// IsZero reports whether the amount is exactly zero minor units.
func (m Money) IsZero() bool {
	return m == 0
}

// Format renders the amount in <major>.<2-digit-minor> form, e.g. "12.34".
func (m Money) Format() string {
	return fmt.Sprintf("%d.%02d", int64(m)/MinorUnitsPerMajor, int64(m)%MinorUnitsPerMajor)
}

// FormatWithSymbol renders the amount prefixed with the active currency
// symbol, e.g. "$12.34".
func (m Money) FormatWithSymbol() string {
	return symbol + m.Format()
}
