package solver

import (
	"slices"

	"github.com/iwvelando/adbudget/pkg/constants"
	"github.com/iwvelando/adbudget/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// DefaultMaxIterations is used when an Input leaves MaxIterations unset.
const DefaultMaxIterations = constants.DefaultMaxIterations

// Input is the raw description of a solve request as supplied by a caller.
// Configuration files, preset files and HTTP bodies all decode into it.
// Values are not sanitized until NewParameters is called.
type Input struct {
	MaxBudget            decimal.Decimal   `json:"maxBudget" yaml:"maxBudget" toml:"maxBudget" mapstructure:"maxBudget"`
	StartingGuess        *decimal.Decimal  `json:"startingGuess,omitempty" yaml:"startingGuess,omitempty" toml:"startingGuess,omitempty" mapstructure:"startingGuess"`
	InHouseAdBudgets     []decimal.Decimal `json:"inHouseAdBudgets" yaml:"inHouseAdBudgets" toml:"inHouseAdBudgets" mapstructure:"inHouseAdBudgets"`
	ThirdPartyAdBudgets  []decimal.Decimal `json:"thirdPartyAdBudgets" yaml:"thirdPartyAdBudgets" toml:"thirdPartyAdBudgets" mapstructure:"thirdPartyAdBudgets"`
	AgencyFeePercent     decimal.Decimal   `json:"agencyFeePercent" yaml:"agencyFeePercent" toml:"agencyFeePercent" mapstructure:"agencyFeePercent"`
	ThirdPartyFeePercent decimal.Decimal   `json:"thirdPartyFeePercent" yaml:"thirdPartyFeePercent" toml:"thirdPartyFeePercent" mapstructure:"thirdPartyFeePercent"`
	HourCost             decimal.Decimal   `json:"hourCost" yaml:"hourCost" toml:"hourCost" mapstructure:"hourCost"`
	NewAdIsThirdParty    bool              `json:"newAdIsThirdParty" yaml:"newAdIsThirdParty" toml:"newAdIsThirdParty" mapstructure:"newAdIsThirdParty"`
	MaxIterations        *int              `json:"maxIterations,omitempty" yaml:"maxIterations,omitempty" toml:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// Clone returns a deep copy of the input so callers can modify it freely.
func (in Input) Clone() Input {
	out := in
	out.InHouseAdBudgets = slices.Clone(in.InHouseAdBudgets)
	out.ThirdPartyAdBudgets = slices.Clone(in.ThirdPartyAdBudgets)
	if in.StartingGuess != nil {
		guess := *in.StartingGuess
		out.StartingGuess = &guess
	}
	if in.MaxIterations != nil {
		iterations := *in.MaxIterations
		out.MaxIterations = &iterations
	}
	return out
}

// Parameters is the sanitized, immutable form of an Input. Monetary values
// are non-negative and percentages lie in [0, 100].
type Parameters struct {
	maxBudget            decimal.Decimal
	startingGuess        decimal.Decimal
	hasStartingGuess     bool
	inHouseAdSum         decimal.Decimal
	thirdPartyAdSum      decimal.Decimal
	agencyFeePercent     decimal.Decimal
	thirdPartyFeePercent decimal.Decimal
	hourCost             decimal.Decimal
	newAdIsThirdParty    bool
	maxIterations        int
	initialized          bool
}

// NewParameters clamps every field of in and returns the resulting Parameters.
func NewParameters(in Input) Parameters {
	maxBudget := mathutil.NonNegative(in.MaxBudget)

	p := Parameters{
		maxBudget:            maxBudget,
		inHouseAdSum:         mathutil.SumNonNegative(in.InHouseAdBudgets),
		thirdPartyAdSum:      mathutil.SumNonNegative(in.ThirdPartyAdBudgets),
		agencyFeePercent:     mathutil.ClampPercent(in.AgencyFeePercent),
		thirdPartyFeePercent: mathutil.ClampPercent(in.ThirdPartyFeePercent),
		hourCost:             mathutil.NonNegative(in.HourCost),
		newAdIsThirdParty:    in.NewAdIsThirdParty,
		maxIterations:        DefaultMaxIterations,
		initialized:          true,
	}
	if in.StartingGuess != nil {
		p.startingGuess = mathutil.Clamp(*in.StartingGuess, decimal.Zero, maxBudget)
		p.hasStartingGuess = true
	}
	if in.MaxIterations != nil {
		p.maxIterations = max(*in.MaxIterations, 0)
	}
	return p
}

// MaxBudget is the ceiling on total spend.
func (p Parameters) MaxBudget() decimal.Decimal { return p.maxBudget }

// StartingGuess returns the explicit seed for the search, if one was given.
func (p Parameters) StartingGuess() (decimal.Decimal, bool) {
	return p.startingGuess, p.hasStartingGuess
}

// InHouseAdSum is the sum of existing in-house ad budgets.
func (p Parameters) InHouseAdSum() decimal.Decimal { return p.inHouseAdSum }

// ThirdPartyAdSum is the sum of existing third-party ad budgets.
func (p Parameters) ThirdPartyAdSum() decimal.Decimal { return p.thirdPartyAdSum }

// AgencyFeePercent applies to all ad spend.
func (p Parameters) AgencyFeePercent() decimal.Decimal { return p.agencyFeePercent }

// ThirdPartyFeePercent applies to third-party ad spend only.
func (p Parameters) ThirdPartyFeePercent() decimal.Decimal { return p.thirdPartyFeePercent }

// HourCost is the flat agency cost added to every total.
func (p Parameters) HourCost() decimal.Decimal { return p.hourCost }

// NewAdIsThirdParty reports whether the new allocation counts as third-party spend.
func (p Parameters) NewAdIsThirdParty() bool { return p.newAdIsThirdParty }

// MaxIterations caps the search loop.
func (p Parameters) MaxIterations() int { return p.maxIterations }
