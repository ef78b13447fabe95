package main

import (
	"fmt"

	"github.com/iwvelando/calcmaster/internal/config"
	"github.com/iwvelando/calcmaster/internal/forecast"
	"github.com/iwvelando/calcmaster/pkg/constants"
	"github.com/iwvelando/calcmaster/pkg/output"
	"github.com/iwvelando/calcmaster/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	logLevel     string
	logFormat    string
	outputFormat string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "calcmaster",
		Short:         "Loan amortization, investment growth and retirement projections",
		Version:       fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format override (json, console)")
	pf.StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json")

	cmd.AddCommand(
		newRunCommand(opts),
		newLoanCommand(opts),
		newMortgageCommand(opts),
		newAutoLoanCommand(opts),
		newInvestCommand(opts),
		newRetireCommand(opts),
		newServeCommand(opts),
		newVersionCommand(),
	)

	return cmd
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	var configLocation string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every calculation in a calculation file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.LoadConfiguration(configLocation)
			if err != nil {
				return fmt.Errorf("failed to load configuration at %s: %w", configLocation, err)
			}
			return opts.execute(cmd, *conf)
		},
	}
	cmd.Flags().StringVar(&configLocation, "config", constants.DefaultConfigFile, "path to calculation file")

	return cmd
}

// execute validates conf, computes its forecasts and writes them to the
// command output.
func (opts *rootOptions) execute(cmd *cobra.Command, conf config.Configuration) error {
	logger, err := initializeLogger(conf.Logging, opts.logLevel, opts.logFormat)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if opts.outputFormat != "" {
		outputFormat = opts.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	results, err := forecast.GetForecast(logger, conf)
	if err != nil {
		return fmt.Errorf("failed to compute forecast: %w", err)
	}

	return output.Write(cmd.OutOrStdout(), outputFormat, results)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "calcmaster %s (commit: %s)\n", Version, GitCommit)
			return err
		},
	}
}
