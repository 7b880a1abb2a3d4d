package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/adbudget/internal/presets"
	"github.com/iwvelando/adbudget/internal/solver"
)

// Request field names, shared by the config file, environment overrides and
// CLI flags.
const (
	FieldMaxBudget            = "maxBudget"
	FieldStartingGuess        = "startingGuess"
	FieldInHouseAdBudgets     = "inHouseAdBudgets"
	FieldThirdPartyAdBudgets  = "thirdPartyAdBudgets"
	FieldAgencyFeePercent     = "agencyFeePercent"
	FieldThirdPartyFeePercent = "thirdPartyFeePercent"
	FieldHourCost             = "hourCost"
	FieldNewAdIsThirdParty    = "newAdIsThirdParty"
	FieldMaxIterations        = "maxIterations"
)

// AllFields lists every request field.
var AllFields = []string{
	FieldMaxBudget,
	FieldStartingGuess,
	FieldInHouseAdBudgets,
	FieldThirdPartyAdBudgets,
	FieldAgencyFeePercent,
	FieldThirdPartyFeePercent,
	FieldHourCost,
	FieldNewAdIsThirdParty,
	FieldMaxIterations,
}

// Overlay returns a copy of base with the named fields taken from override.
func Overlay(base, override solver.Input, fields []string) (solver.Input, error) {
	out := base.Clone()
	src := override.Clone()
	for _, field := range fields {
		switch field {
		case FieldMaxBudget:
			out.MaxBudget = src.MaxBudget
		case FieldStartingGuess:
			out.StartingGuess = src.StartingGuess
		case FieldInHouseAdBudgets:
			out.InHouseAdBudgets = src.InHouseAdBudgets
		case FieldThirdPartyAdBudgets:
			out.ThirdPartyAdBudgets = src.ThirdPartyAdBudgets
		case FieldAgencyFeePercent:
			out.AgencyFeePercent = src.AgencyFeePercent
		case FieldThirdPartyFeePercent:
			out.ThirdPartyFeePercent = src.ThirdPartyFeePercent
		case FieldHourCost:
			out.HourCost = src.HourCost
		case FieldNewAdIsThirdParty:
			out.NewAdIsThirdParty = src.NewAdIsThirdParty
		case FieldMaxIterations:
			out.MaxIterations = src.MaxIterations
		default:
			return out, fmt.Errorf("unknown request field %q", field)
		}
	}
	return out, nil
}

// ResolveInput builds the solver input described by the request. The preset
// named by the request, if any, is looked up in catalog and the configured
// fields are layered on top. The solver section's MaxIterations fills in
// when neither sets one.
func (c *Configuration) ResolveInput(catalog *presets.Catalog) (solver.Input, error) {
	in := c.Request.Input.Clone()

	if name := strings.TrimSpace(c.Request.Preset); name != "" {
		if catalog == nil {
			catalog = presets.Builtin()
		}
		base, ok := catalog.Get(name)
		if !ok {
			return solver.Input{}, fmt.Errorf("unknown preset %q, expected one of %s",
				name, strings.Join(catalog.Names(), ", "))
		}
		var err error
		in, err = Overlay(base, c.Request.Input, c.Request.fields)
		if err != nil {
			return solver.Input{}, err
		}
	}

	if in.MaxIterations == nil && c.Solver.MaxIterations != nil {
		iterations := *c.Solver.MaxIterations
		in.MaxIterations = &iterations
	}
	return in, nil
}

// SetRequestFields records which request fields were set explicitly. It is
// used when a Configuration is built in code rather than loaded.
func (c *Configuration) SetRequestFields(fields ...string) {
	c.Request.fields = append([]string(nil), fields...)
}
