package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a string cannot be read as money.
var ErrInvalidAmount = errors.New("invalid amount")

// AmountPlaces is the number of fractional digits every amount carries.
const AmountPlaces = 2

// MaxAmount is the largest value a single transaction or budget may hold.
var MaxAmount = decimal.New(999_999_999_999, -AmountPlaces)

// ParseAmount reads a decimal string such as "12.34" or "12,34" and rounds
// it half away from zero to two places. The sign is preserved; callers
// decide which signs they accept.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d.Round(AmountPlaces), nil
}

// MustAmount is ParseAmount for literals known to be valid.
func MustAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ToCents converts an amount to integer minor units for storage.
func ToCents(d decimal.Decimal) int64 {
	return d.Round(AmountPlaces).Shift(AmountPlaces).IntPart()
}

// FromCents converts stored minor units back to an amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -AmountPlaces)
}

// FormatAmount renders an amount with exactly two fractional digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(AmountPlaces)
}
