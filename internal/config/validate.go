package config

import (
	"fmt"

	"github.com/iwvelando/adbudget/pkg/constants"
	"github.com/shopspring/decimal"
)

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Out-of-range request values are not errors because the
// solver clamps them, but the user should know their input was changed.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string
	warn := func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	in := c.Request.Input
	if in.MaxBudget.IsNegative() {
		warn("request.maxBudget of %s is negative and will be treated as 0", in.MaxBudget)
	}
	if in.StartingGuess != nil {
		guess := *in.StartingGuess
		if guess.IsNegative() || (!in.MaxBudget.IsNegative() && guess.GreaterThan(in.MaxBudget)) {
			warn("request.startingGuess of %s is outside 0-%s and will be clamped", guess, in.MaxBudget)
		}
	}
	for i, budget := range in.InHouseAdBudgets {
		if budget.IsNegative() {
			warn("request.inHouseAdBudgets[%d] of %s is negative and will be treated as 0", i, budget)
		}
	}
	for i, budget := range in.ThirdPartyAdBudgets {
		if budget.IsNegative() {
			warn("request.thirdPartyAdBudgets[%d] of %s is negative and will be treated as 0", i, budget)
		}
	}
	if !validPercent(in.AgencyFeePercent) {
		warn("request.agencyFeePercent of %s is outside 0-%d and will be clamped", in.AgencyFeePercent, constants.MaxPercentage)
	}
	if !validPercent(in.ThirdPartyFeePercent) {
		warn("request.thirdPartyFeePercent of %s is outside 0-%d and will be clamped", in.ThirdPartyFeePercent, constants.MaxPercentage)
	}
	if in.HourCost.IsNegative() {
		warn("request.hourCost of %s is negative and will be treated as 0", in.HourCost)
	}

	warnings = append(warnings, iterationWarnings("request.maxIterations", in.MaxIterations)...)
	warnings = append(warnings, iterationWarnings("solver.maxIterations", c.Solver.MaxIterations)...)

	return warnings
}

func validPercent(value decimal.Decimal) bool {
	return !value.IsNegative() && value.LessThanOrEqual(decimal.NewFromInt(constants.MaxPercentage))
}

func iterationWarnings(key string, iterations *int) []string {
	if iterations == nil {
		return nil
	}
	switch {
	case *iterations < 0:
		return []string{fmt.Sprintf("%s of %d is negative and will be treated as 0", key, *iterations)}
	case *iterations == 0:
		return []string{fmt.Sprintf("%s is 0, the starting guess will be returned without searching", key)}
	}
	return nil
}
