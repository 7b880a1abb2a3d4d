package main

import (
	"fmt"

	"github.com/iwvelando/adbudget/internal/presets"
	"github.com/iwvelando/adbudget/internal/solver"
	"github.com/iwvelando/adbudget/pkg/format"
	"github.com/iwvelando/adbudget/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPresetsCmd(root *rootOptions) *cobra.Command {
	var solve bool

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the available presets, or solve all of them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, logger, outputFormat, err := setup(cmd, root)
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			catalog, err := conf.Catalog()
			if err != nil {
				logger.Error("failed to load presets",
					zap.String("op", "main.presets"),
					zap.Error(err),
				)
				return err
			}

			if !solve {
				for _, name := range catalog.Names() {
					in, _ := catalog.Get(name)
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-20s max budget %s, agency fee %s, third-party fee %s\n",
						name, format.Currency(in.MaxBudget), format.Percent(in.AgencyFeePercent), format.Percent(in.ThirdPartyFeePercent)); err != nil {
						return err
					}
				}
				return nil
			}

			entries := solveAll(catalog, conf.Solver.MaxIterations)
			for _, entry := range entries {
				if entry.Result.Status == solver.StatusIterationLimit {
					logger.Warn("goal seek did not converge",
						zap.String("op", "main.presets"),
						zap.String("preset", entry.Name),
						zap.Int("iterations", entry.Result.Iterations),
					)
				}
			}
			return output.Write(cmd.OutOrStdout(), outputFormat, entries)
		},
	}

	cmd.Flags().BoolVar(&solve, "solve", false, "solve every preset concurrently and print the results")
	return cmd
}

// solveAll solves every preset in catalog on its own goroutine and returns
// the results in name order.
func solveAll(catalog *presets.Catalog, maxIterations *int) []output.Entry {
	names := catalog.Names()
	pending := make([]<-chan solver.Result, len(names))
	entries := make([]output.Entry, len(names))

	for i, name := range names {
		in, _ := catalog.Get(name)
		if in.MaxIterations == nil && maxIterations != nil {
			iterations := *maxIterations
			in.MaxIterations = &iterations
		}
		entries[i] = output.Entry{Name: name, Input: in}
		pending[i] = solver.New(solver.NewParameters(in)).GoalSeekAsync()
	}

	for i, results := range pending {
		entries[i].Result = <-results
	}
	return entries
}
