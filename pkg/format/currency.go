// Package format renders decimal currency values for display.
package format

import (
	"strings"

	"github.com/iwvelando/adbudget/pkg/constants"
	"github.com/shopspring/decimal"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount decimal.Decimal) string {
	formatted := formatPositiveCurrency(amount.Abs())
	if amount.Round(constants.CurrencyPlaces).IsNegative() {
		return "-$" + formatted
	}
	return "$" + formatted
}

// Percent renders a fee percentage without trailing zeros (e.g., "5%", "12.5%").
func Percent(value decimal.Decimal) string {
	return value.String() + "%"
}

func formatPositiveCurrency(value decimal.Decimal) string {
	formatted := value.StringFixed(constants.CurrencyPlaces)
	intPart, decPart, found := strings.Cut(formatted, ".")
	if !found {
		decPart = "00"
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
