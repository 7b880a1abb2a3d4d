// Package mathutil provides common mathematical utility functions for
// currency values held as exact decimals.
package mathutil

import (
	"github.com/iwvelando/adbudget/pkg/constants"
	"github.com/shopspring/decimal"
)

var (
	// Cent is the smallest currency unit and the goal seek tolerance.
	Cent = decimal.New(1, -constants.CurrencyPlaces)

	two        = decimal.NewFromInt(2)
	maxPercent = decimal.NewFromInt(constants.MaxPercentage)
)

// Round rounds a value to cents using banker's rounding.
func Round(val decimal.Decimal) decimal.Decimal {
	return val.RoundBank(constants.CurrencyPlaces)
}

// FloorCent drops any fraction of a cent, rounding toward zero.
func FloorCent(val decimal.Decimal) decimal.Decimal {
	return val.Truncate(constants.CurrencyPlaces)
}

// NonNegative returns val, or zero when val is negative.
func NonNegative(val decimal.Decimal) decimal.Decimal {
	if val.IsNegative() {
		return decimal.Zero
	}
	return val
}

// Clamp limits val to the closed interval [lo, hi]. When lo > hi, lo wins.
func Clamp(val, lo, hi decimal.Decimal) decimal.Decimal {
	if val.GreaterThan(hi) {
		val = hi
	}
	if val.LessThan(lo) {
		val = lo
	}
	return val
}

// ClampPercent limits a percentage to [0, 100].
func ClampPercent(val decimal.Decimal) decimal.Decimal {
	return Clamp(val, decimal.Zero, maxPercent)
}

// SumNonNegative adds up vals, counting negative entries as zero.
func SumNonNegative(vals []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, v := range vals {
		sum = sum.Add(NonNegative(v))
	}
	return sum
}

// ApplyPercentage applies a percentage to a value. Shifting by two digits
// divides by 100 without rounding.
func ApplyPercentage(value, percentage decimal.Decimal) decimal.Decimal {
	return value.Mul(percentage.Shift(-2))
}

// Midpoint returns the value halfway between a and b.
func Midpoint(a, b decimal.Decimal) decimal.Decimal {
	return a.Add(b).Div(two)
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance decimal.Decimal) bool {
	return val1.Sub(val2).Abs().LessThanOrEqual(tolerance)
}

