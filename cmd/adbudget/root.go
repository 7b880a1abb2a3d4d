package main

import (
	"errors"
	"io/fs"

	"github.com/iwvelando/adbudget/internal/config"
	"github.com/iwvelando/adbudget/pkg/constants"
	"github.com/iwvelando/adbudget/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath   string
	logLevel     string
	outputFormat string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "adbudget",
		Short: "Find the largest budget a new ad can take without exceeding a spend cap",
		Long: "adbudget bisects over the budget of a new advertisement until total spend, " +
			"including agency and third-party fees and a flat hour cost, lands within one cent of the maximum budget.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", constants.DefaultConfigFile, "path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	cmd.PersistentFlags().StringVarP(&opts.outputFormat, "output-format", "o", "", "type of output override: pretty, csv, json")

	cmd.AddCommand(
		newSolveCmd(opts),
		newPresetsCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadConfiguration reads the config file. A missing default config file is
// not an error, so the CLI works from flags and environment alone.
func loadConfiguration(cmd *cobra.Command, opts *rootOptions) (*config.Configuration, error) {
	conf, err := config.LoadConfiguration(opts.configPath)
	if err == nil {
		return conf, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.LoadEnvironment()
	}
	return nil, err
}

// setup loads configuration, builds the logger and resolves the output format.
func setup(cmd *cobra.Command, opts *rootOptions) (*config.Configuration, *zap.Logger, string, error) {
	conf, err := loadConfiguration(cmd, opts)
	if err != nil {
		return nil, nil, "", err
	}

	logger, err := initializeLogger(conf.Logging, opts.logLevel)
	if err != nil {
		return nil, nil, "", err
	}

	outputFormat := conf.Output.Format
	if opts.outputFormat != "" {
		outputFormat = opts.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		_ = logger.Sync()
		return nil, nil, "", err
	}

	return conf, logger, outputFormat, nil
}
