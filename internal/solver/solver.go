// Package solver finds the largest budget a new ad can receive without total
// spend (existing ads, the new ad, agency and third-party fees, and a flat
// hour cost) exceeding a maximum budget. The search is a bisection over exact
// decimals that stops once spend sits within one cent below the budget.
package solver

import (
	"github.com/iwvelando/adbudget/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Status describes how a goal seek finished.
type Status string

const (
	// StatusConverged means total spend landed in [maxBudget-0.01, maxBudget].
	StatusConverged Status = "converged"
	// StatusNoHeadroom means existing spend already met or exceeded the budget.
	StatusNoHeadroom Status = "no_headroom"
	// StatusIterationLimit means the iteration cap was reached first. The
	// result holds the last evaluated allocation, which may be over budget.
	StatusIterationLimit Status = "iteration_limit"
)

// Result is the outcome of a goal seek. TotalSpent always equals
// TotalSpend(NewAdBudget) for the parameters that produced it.
type Result struct {
	NewAdBudget decimal.Decimal `json:"newAdBudget"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
	Headroom    decimal.Decimal `json:"headroom"`
	Iterations  int             `json:"iterations"`
	Status      Status          `json:"status"`
}

// Converged indicates whether the result satisfies the one cent tolerance.
func (r Result) Converged() bool {
	return r.Status == StatusConverged
}

// Solver runs the goal seek for one set of parameters. It holds no state
// beyond its parameters and observers, so GoalSeek may be called repeatedly.
type Solver struct {
	params    Parameters
	observers []Observer
}

// Option configures a Solver.
type Option func(*Solver)

// WithObserver registers o to be notified once per search iteration.
func WithObserver(o Observer) Option {
	return func(s *Solver) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// New returns a Solver for params. It panics if params was not built by
// NewParameters.
func New(params Parameters, opts ...Option) *Solver {
	if !params.initialized {
		panic("solver: parameters must be constructed with NewParameters")
	}
	s := &Solver{params: params}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parameters returns the parameters the solver was built with.
func (s *Solver) Parameters() Parameters {
	return s.params
}

// TotalSpend calculates total ad and fee spending when allocation is given
// to the new ad. The agency fee applies to all ad spend; the third-party fee
// applies to third-party spend only.
func (s *Solver) TotalSpend(allocation decimal.Decimal) decimal.Decimal {
	p := s.params

	thirdPartyAdSpend := p.thirdPartyAdSum
	inHouseAdSpend := p.inHouseAdSum
	if p.newAdIsThirdParty {
		thirdPartyAdSpend = thirdPartyAdSpend.Add(allocation)
	} else {
		inHouseAdSpend = inHouseAdSpend.Add(allocation)
	}
	adSpend := inHouseAdSpend.Add(thirdPartyAdSpend)

	return adSpend.
		Add(mathutil.ApplyPercentage(adSpend, p.agencyFeePercent)).
		Add(mathutil.ApplyPercentage(thirdPartyAdSpend, p.thirdPartyFeePercent)).
		Add(p.hourCost)
}

// GoalSeek finds the maximum new ad budget that keeps total spend at or
// under the max budget. It returns a zero allocation when existing spend
// already meets the budget.
func (s *Solver) GoalSeek() Result {
	p := s.params

	spend := s.TotalSpend(decimal.Zero)
	if spend.GreaterThanOrEqual(p.maxBudget) {
		return s.result(decimal.Zero, spend, 0, StatusNoHeadroom)
	}

	low := decimal.Zero
	high := p.maxBudget.Sub(spend)
	var allocation decimal.Decimal
	if guess, ok := p.StartingGuess(); ok {
		allocation = mathutil.Round(mathutil.Clamp(guess, low, high))
		if allocation.GreaterThan(high) {
			allocation = mathutil.FloorCent(high)
		}
	} else {
		// Fees on the new ad only shrink the answer, so twice the naive
		// headroom always brackets it and the first guess is the headroom.
		high = high.Add(high)
		allocation = guessFromRange(low, high)
	}
	spend = s.TotalSpend(allocation)

	for iteration := 0; iteration < p.maxIterations; iteration++ {
		if iteration > 0 {
			allocation = guessFromRange(low, high)
			spend = s.TotalSpend(allocation)
		}

		s.notify(Iteration{
			Index: iteration,
			Low:   low,
			High:  high,
			Spend: spend,
			Guess: allocation,
		})

		if withinBudget(p.maxBudget, spend) {
			return s.result(allocation, spend, iteration+1, StatusConverged)
		}

		if spend.GreaterThanOrEqual(p.maxBudget) {
			high = allocation
		} else {
			low = allocation
		}
	}

	return s.result(allocation, spend, p.maxIterations, StatusIterationLimit)
}

// GoalSeekAsync runs GoalSeek on a new goroutine and delivers its result on
// the returned channel, which is closed afterwards. Observers are invoked on
// that goroutine.
func (s *Solver) GoalSeekAsync() <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		out <- s.GoalSeek()
	}()
	return out
}

func (s *Solver) result(allocation, spend decimal.Decimal, iterations int, status Status) Result {
	return Result{
		NewAdBudget: allocation,
		TotalSpent:  spend,
		Headroom:    s.params.maxBudget.Sub(spend),
		Iterations:  iterations,
		Status:      status,
	}
}

func (s *Solver) notify(it Iteration) {
	for _, o := range s.observers {
		o.ObserveIteration(it)
	}
}

// guessFromRange returns the midpoint of [low, high] rounded to cents.
func guessFromRange(low, high decimal.Decimal) decimal.Decimal {
	return mathutil.Round(mathutil.Midpoint(low, high))
}

func withinBudget(maxBudget, spend decimal.Decimal) bool {
	return maxBudget.GreaterThanOrEqual(spend) && mathutil.WithinTolerance(maxBudget, spend, mathutil.Cent)
}
