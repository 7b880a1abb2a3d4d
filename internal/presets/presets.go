// Package presets holds named solver inputs that callers can solve directly
// or use as the base of a request.
package presets

import (
	"errors"
	"sort"
	"strings"

	"github.com/iwvelando/adbudget/internal/solver"
	"github.com/shopspring/decimal"
)

// Built-in preset names.
const (
	Default            = "Default"
	Empty              = "Empty"
	HighBudgetLowGuess = "HighBudgetLowGuess"
	ThirdParty         = "ThirdParty"
	NoInHouse          = "NoInHouse"
)

// ErrEmptyName is returned when a preset is added without a name.
var ErrEmptyName = errors.New("preset name must not be empty")

// Catalog maps preset names to solver inputs. Lookups return copies, so a
// caller can modify what it gets back without affecting the catalog. A
// Catalog is safe for concurrent reads once it is no longer being modified.
type Catalog struct {
	inputs map[string]solver.Input
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{inputs: make(map[string]solver.Input)}
}

// Builtin returns a catalog with the five built-in presets.
func Builtin() *Catalog {
	c := NewCatalog()
	for name, in := range builtinInputs() {
		c.inputs[name] = in
	}
	return c
}

func builtinInputs() map[string]solver.Input {
	return map[string]solver.Input{
		Default: {
			MaxBudget:            decimal.NewFromInt(25),
			StartingGuess:        decimalPtr(25),
			InHouseAdBudgets:     decimals(1, 1),
			ThirdPartyAdBudgets:  decimals(1, 1),
			AgencyFeePercent:     decimal.NewFromInt(5),
			ThirdPartyFeePercent: decimal.NewFromInt(5),
			HourCost:             decimal.NewFromInt(5),
		},
		Empty: {
			MaxBudget:     decimal.Zero,
			StartingGuess: decimalPtr(0),
		},
		HighBudgetLowGuess: {
			MaxBudget:            decimal.NewFromInt(100000000000),
			StartingGuess:        decimalPtr(0),
			InHouseAdBudgets:     decimals(5000, 5000, 5000, 5000),
			ThirdPartyAdBudgets:  decimals(5000, 5000, 5000, 5000),
			AgencyFeePercent:     decimal.NewFromInt(5),
			ThirdPartyFeePercent: decimal.NewFromInt(5),
			HourCost:             decimal.NewFromInt(12345),
		},
		ThirdParty: {
			MaxBudget:            decimal.NewFromInt(25000),
			StartingGuess:        decimalPtr(12500),
			InHouseAdBudgets:     decimals(100, 200, 400, 800),
			ThirdPartyAdBudgets:  decimals(100, 200, 400, 800),
			AgencyFeePercent:     decimal.NewFromInt(5),
			ThirdPartyFeePercent: decimal.NewFromInt(50),
			HourCost:             decimal.NewFromInt(1000),
			NewAdIsThirdParty:    true,
		},
		NoInHouse: {
			MaxBudget:            decimal.NewFromInt(500),
			StartingGuess:        decimalPtr(250),
			ThirdPartyAdBudgets:  decimals(50, 70, 20, 50),
			AgencyFeePercent:     decimal.NewFromInt(5),
			ThirdPartyFeePercent: decimal.NewFromInt(100),
			HourCost:             decimal.NewFromInt(20),
		},
	}
}

// Names returns the preset names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.inputs))
	for name := range c.inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of presets in the catalog.
func (c *Catalog) Len() int {
	return len(c.inputs)
}

// Get returns a copy of the named preset. An exact match wins; otherwise the
// name is matched case-insensitively.
func (c *Catalog) Get(name string) (solver.Input, bool) {
	if in, ok := c.inputs[name]; ok {
		return in.Clone(), true
	}
	for _, candidate := range c.Names() {
		if strings.EqualFold(candidate, name) {
			return c.inputs[candidate].Clone(), true
		}
	}
	return solver.Input{}, false
}

// Add stores a copy of in under name, replacing any preset with that name.
func (c *Catalog) Add(name string, in solver.Input) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	c.inputs[name] = in.Clone()
	return nil
}

// Merge copies every preset from other into c. Presets in other replace
// presets in c with the same name.
func (c *Catalog) Merge(other *Catalog) {
	if other == nil {
		return
	}
	for name, in := range other.inputs {
		c.inputs[name] = in.Clone()
	}
}

func decimalPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func decimals(values ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		out = append(out, decimal.NewFromInt(v))
	}
	return out
}
