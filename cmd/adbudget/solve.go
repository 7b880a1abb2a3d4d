package main

import (
	"fmt"

	"github.com/iwvelando/adbudget/internal/config"
	"github.com/iwvelando/adbudget/internal/solver"
	"github.com/iwvelando/adbudget/internal/telemetry"
	"github.com/iwvelando/adbudget/pkg/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type solveOptions struct {
	preset        string
	input         solver.Input
	startingGuess decimal.Decimal
	maxIterations int
	debug         bool
}

// flagFields maps request fields to the flags that set them.
var flagFields = map[string]string{
	config.FieldMaxBudget:            "max-budget",
	config.FieldStartingGuess:        "starting-guess",
	config.FieldInHouseAdBudgets:     "in-house",
	config.FieldThirdPartyAdBudgets:  "third-party",
	config.FieldAgencyFeePercent:     "agency-fee",
	config.FieldThirdPartyFeePercent: "third-party-fee",
	config.FieldHourCost:             "hour-cost",
	config.FieldNewAdIsThirdParty:    "third-party-ad",
	config.FieldMaxIterations:        "max-iterations",
}

func newSolveCmd(root *rootOptions) *cobra.Command {
	opts := &solveOptions{}

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve one request from the config file, a preset and flags",
		Long: "Solve builds a request from the config file's request section, the preset it names " +
			"(or --preset), and any flags given, in increasing order of precedence.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSolve(cmd, root, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.preset, "preset", "p", "", "named preset to start from")
	flags.Var(newDecimalValue(&opts.input.MaxBudget), "max-budget", "maximum total spend")
	flags.Var(newDecimalValue(&opts.startingGuess), "starting-guess", "first allocation to try")
	flags.Var(newDecimalSliceValue(&opts.input.InHouseAdBudgets), "in-house", "comma separated budgets of existing in-house ads")
	flags.Var(newDecimalSliceValue(&opts.input.ThirdPartyAdBudgets), "third-party", "comma separated budgets of existing third-party ads")
	flags.Var(newDecimalValue(&opts.input.AgencyFeePercent), "agency-fee", "agency fee percentage applied to all ad spend")
	flags.Var(newDecimalValue(&opts.input.ThirdPartyFeePercent), "third-party-fee", "fee percentage applied to third-party ad spend")
	flags.Var(newDecimalValue(&opts.input.HourCost), "hour-cost", "flat hour cost added to total spend")
	flags.BoolVar(&opts.input.NewAdIsThirdParty, "third-party-ad", false, "the new ad is run by a third party")
	flags.IntVar(&opts.maxIterations, "max-iterations", solver.DefaultMaxIterations, "maximum goal seek iterations")
	flags.BoolVar(&opts.debug, "debug", false, "log every goal seek iteration")

	return cmd
}

func runSolve(cmd *cobra.Command, root *rootOptions, opts *solveOptions) error {
	conf, logger, outputFormat, err := setup(cmd, root)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	if cmd.Flags().Changed("preset") {
		conf.Request.Preset = opts.preset
	}

	catalog, err := conf.Catalog()
	if err != nil {
		logger.Error("failed to load presets",
			zap.String("op", "main.solve"),
			zap.Error(err),
		)
		return err
	}

	in, err := conf.ResolveInput(catalog)
	if err != nil {
		return err
	}
	in, err = config.Overlay(in, opts.flagInput(), changedFields(cmd))
	if err != nil {
		return err
	}

	check := config.Configuration{Request: config.RequestConfig{Input: in}}
	for _, warning := range check.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.solve"),
		)
	}

	shutdown, err := telemetry.Setup(cmd.Context(), conf.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(cmd.Context()); err != nil {
			logger.Warn("failed to flush traces", zap.String("op", "main.solve"), zap.Error(err))
		}
	}()

	var solverOpts []solver.Option
	if opts.debug || conf.Solver.Debug {
		solverOpts = append(solverOpts, solver.WithObserver(solver.LogObserver(logger)))
	}
	res := telemetry.Solve(cmd.Context(), nil, solver.NewParameters(in), solverOpts...)

	if res.Status == solver.StatusIterationLimit {
		logger.Warn("goal seek did not converge",
			zap.String("op", "main.solve"),
			zap.Int("iterations", res.Iterations),
			zap.String("newAdBudget", res.NewAdBudget.String()),
			zap.String("totalSpent", res.TotalSpent.String()),
		)
	}

	name := conf.Request.Preset
	if name == "" {
		name = "request"
	}
	entries := []output.Entry{{Name: name, Input: in, Result: res}}
	if err := output.Write(cmd.OutOrStdout(), outputFormat, entries); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (o *solveOptions) flagInput() solver.Input {
	in := o.input.Clone()
	guess := o.startingGuess
	in.StartingGuess = &guess
	iterations := o.maxIterations
	in.MaxIterations = &iterations
	return in
}

func changedFields(cmd *cobra.Command) []string {
	var fields []string
	for _, field := range config.AllFields {
		if cmd.Flags().Changed(flagFields[field]) {
			fields = append(fields, field)
		}
	}
	return fields
}
