// Package testutil provides common utility functions for testing.
package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
)

// Decimal parses s or fails the test.
func Decimal(t testing.TB, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}

// DecimalPtr parses s and returns a pointer to the value.
func DecimalPtr(t testing.TB, s string) *decimal.Decimal {
	t.Helper()
	d := Decimal(t, s)
	return &d
}

// Decimals parses each string in values.
func Decimals(t testing.TB, values ...string) []decimal.Decimal {
	t.Helper()
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		out = append(out, Decimal(t, v))
	}
	return out
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// AssertDecimal reports an error when got does not equal the decimal in want.
// Equality ignores trailing zeros, so "25" matches "25.00".
func AssertDecimal(t testing.TB, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(Decimal(t, want)) {
		t.Errorf("%s: expected %s, got %s", field, want, got)
	}
}
