package format

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0", "$0.00"},
		{"14.95", "$14.95"},
		{"24.9975", "$25.00"},
		{"1234.5", "$1,234.50"},
		{"95238042528.57", "$95,238,042,528.57"},
		{"-1234.567", "-$1,234.57"},
		{"-0.001", "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := Currency(decimal.RequireFromString(tt.input))
			if result != tt.expected {
				t.Errorf("Currency(%s) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(decimal.NewFromInt(5)); got != "5%" {
		t.Errorf("Percent(5) = %q, expected 5%%", got)
	}
	if got := Percent(decimal.RequireFromString("12.50")); got != "12.5%" {
		t.Errorf("Percent(12.50) = %q, expected 12.5%%", got)
	}
}
