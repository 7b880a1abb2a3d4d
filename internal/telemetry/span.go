// Package telemetry records goal seek runs as OpenTelemetry spans. Each
// iteration becomes a span event so a trace backend can replay the search.
package telemetry

import (
	"context"

	"github.com/iwvelando/adbudget/internal/solver"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies spans produced by this module.
const InstrumentationName = "github.com/iwvelando/adbudget"

const (
	spanName  = "goal_seek"
	eventName = "goal_seek.iteration"
)

// Tracer returns a tracer from the globally registered provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// SpanObserver adds one event per goal seek iteration to a span.
type SpanObserver struct {
	span trace.Span
}

// Start opens a goal seek span under ctx and returns an observer bound to it.
// The caller must call Finish once the solve completes.
func Start(ctx context.Context, tracer trace.Tracer, params solver.Parameters) (context.Context, *SpanObserver) {
	if tracer == nil {
		tracer = Tracer()
	}
	ctx, span := tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("params.max_budget", params.MaxBudget().String()),
		attribute.String("params.in_house_ad_sum", params.InHouseAdSum().String()),
		attribute.String("params.third_party_ad_sum", params.ThirdPartyAdSum().String()),
		attribute.String("params.agency_fee_percent", params.AgencyFeePercent().String()),
		attribute.String("params.third_party_fee_percent", params.ThirdPartyFeePercent().String()),
		attribute.String("params.hour_cost", params.HourCost().String()),
		attribute.Bool("params.new_ad_is_third_party", params.NewAdIsThirdParty()),
		attribute.Int("params.max_iterations", params.MaxIterations()),
	))
	return ctx, &SpanObserver{span: span}
}

// ObserveIteration implements solver.Observer.
func (o *SpanObserver) ObserveIteration(it solver.Iteration) {
	o.span.AddEvent(eventName, trace.WithAttributes(
		attribute.Int("iteration", it.Index),
		attribute.String("low", it.Low.String()),
		attribute.String("high", it.High.String()),
		attribute.String("total_spend", it.Spend.String()),
		attribute.String("budget_allocation", it.Guess.String()),
	))
}

// Finish records the result on the span and ends it. A result that did not
// converge marks the span as an error so it stands out in trace views.
func (o *SpanObserver) Finish(res solver.Result) {
	o.span.SetAttributes(
		attribute.String("result.new_ad_budget", res.NewAdBudget.String()),
		attribute.String("result.total_spent", res.TotalSpent.String()),
		attribute.Int("result.iterations", res.Iterations),
		attribute.String("result.status", string(res.Status)),
	)
	if res.Status == solver.StatusIterationLimit {
		o.span.SetStatus(codes.Error, "iteration limit reached before convergence")
	}
	o.span.End()
}

// Solve runs a traced goal seek for params.
func Solve(ctx context.Context, tracer trace.Tracer, params solver.Parameters, opts ...solver.Option) solver.Result {
	_, observer := Start(ctx, tracer, params)
	opts = append(opts, solver.WithObserver(observer))
	res := solver.New(params, opts...).GoalSeek()
	observer.Finish(res)
	return res
}
