package solver

import (
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Iteration is a snapshot of one goal seek step: the bracket [Low, High]
// before it is narrowed, the guess tested and the spend it produced.
type Iteration struct {
	Index int             `json:"index"`
	Low   decimal.Decimal `json:"low"`
	High  decimal.Decimal `json:"high"`
	Spend decimal.Decimal `json:"totalSpend"`
	Guess decimal.Decimal `json:"budgetAllocation"`
}

// Observer receives one call per goal seek iteration.
type Observer interface {
	ObserveIteration(Iteration)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Iteration)

// ObserveIteration calls f(it).
func (f ObserverFunc) ObserveIteration(it Iteration) {
	f(it)
}

// Recorder collects every iteration it observes. It is safe for use from
// the goroutine started by GoalSeekAsync.
type Recorder struct {
	mu         sync.Mutex
	iterations []Iteration
}

// ObserveIteration implements Observer.
func (r *Recorder) ObserveIteration(it Iteration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.iterations = append(r.iterations, it)
}

// Iterations returns a copy of the recorded trace.
func (r *Recorder) Iterations() []Iteration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Iteration(nil), r.iterations...)
}

// LogObserver writes each iteration to logger at info level. Attaching it is
// the debug switch, so the records show with the default logger level.
func LogObserver(logger *zap.Logger) Observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return ObserverFunc(func(it Iteration) {
		logger.Info("goal seek iteration",
			zap.String("op", "solver.GoalSeek"),
			zap.Int("iteration", it.Index),
			zap.String("low", it.Low.String()),
			zap.String("high", it.High.String()),
			zap.String("totalSpend", it.Spend.String()),
			zap.String("budgetAllocation", it.Guess.String()),
		)
	})
}
