package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

// decimalValue is a pflag.Value holding an exact decimal.
type decimalValue struct {
	value *decimal.Decimal
}

var _ pflag.Value = (*decimalValue)(nil)

func newDecimalValue(p *decimal.Decimal) *decimalValue {
	return &decimalValue{value: p}
}

func (d *decimalValue) String() string {
	if d.value == nil {
		return "0"
	}
	return d.value.String()
}

func (d *decimalValue) Set(s string) error {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid decimal %q", s)
	}
	*d.value = v
	return nil
}

func (d *decimalValue) Type() string {
	return "decimal"
}

// decimalSliceValue is a pflag.Value holding a comma separated list of
// decimals. Repeating the flag appends to the list.
type decimalSliceValue struct {
	value   *[]decimal.Decimal
	changed bool
}

var _ pflag.Value = (*decimalSliceValue)(nil)

func newDecimalSliceValue(p *[]decimal.Decimal) *decimalSliceValue {
	return &decimalSliceValue{value: p}
}

func (d *decimalSliceValue) String() string {
	if d.value == nil {
		return "[]"
	}
	parts := make([]string, 0, len(*d.value))
	for _, v := range *d.value {
		parts = append(parts, v.String())
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (d *decimalSliceValue) Set(s string) error {
	var parsed []decimal.Decimal
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := decimal.NewFromString(part)
		if err != nil {
			return fmt.Errorf("invalid decimal %q", part)
		}
		parsed = append(parsed, v)
	}
	if !d.changed {
		*d.value = parsed
		d.changed = true
		return nil
	}
	*d.value = append(*d.value, parsed...)
	return nil
}

func (d *decimalSliceValue) Type() string {
	return "decimals"
}
