package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/capmodel/capstack/internal/cascade"
	"github.com/capmodel/capstack/internal/config"
	"github.com/capmodel/capstack/internal/fees"
	"github.com/capmodel/capstack/internal/waterfall"
	"github.com/capmodel/capstack/pkg/constants"
	"github.com/capmodel/capstack/pkg/metrics"
	"github.com/capmodel/capstack/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configLocation   string
	outputFormatFlag string
	logLevel         string
)

var rootCmd = &cobra.Command{
	Use:   "capstack",
	Short: "Capital stack settlement for commercial real-estate deals",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the funding cascade and equity waterfall for a deal",
	RunE:  runSettlement,
}

func init() {
	runCmd.Flags().StringVar(&configLocation, "config", constants.DefaultConfigFile, "path to deal configuration file")
	runCmd.Flags().StringVar(&outputFormatFlag, "output-format", "", "type of output override: pretty, csv")
	runCmd.Flags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.AddCommand(runCmd)
}

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func runSettlement(cmd *cobra.Command, args []string) error {
	conf, err := config.LoadConfiguration(configLocation)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", configLocation, err)
	}

	logger, err := initializeLogger(conf.Logging, logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := conf.Validate(); err != nil {
		logger.Error("configuration validation failed",
			zap.String("op", "main.runSettlement"),
			zap.Error(err),
		)
		return err
	}

	deal := &conf.Deal
	tl, err := deal.Timeline()
	if err != nil {
		return err
	}
	structure := deal.CapitalStructure()

	uses, err := deal.UsesSeries(tl)
	if err != nil {
		return err
	}
	funding, err := cascade.NewEngine(logger).Run(uses, structure)
	if err != nil {
		return err
	}

	net, err := deal.NetCashFlowSeries(tl)
	if err != nil {
		return err
	}
	lines, err := deal.FeeLines(tl)
	if err != nil {
		return err
	}
	feeResult, err := fees.Apply(logger, net, lines)
	if err != nil {
		return err
	}

	method, err := waterfall.MethodFor(deal.Distribution)
	if err != nil {
		return err
	}
	dist, err := waterfall.NewEngine(logger, method).Distribute(feeResult.Residual, structure)
	if err != nil {
		return err
	}

	summaries := make([]metrics.PartnerSummary, 0, len(dist.Partners))
	for i, name := range dist.Partners {
		summaries = append(summaries, metrics.Summarize(name, tl, dist.Matrix[i]))
	}

	outputFormat := conf.Output.Format
	if outputFormatFlag != "" {
		outputFormat = outputFormatFlag
	}
	switch outputFormat {
	case "", constants.OutputFormatPretty:
		output.PrettyFormat(deal.Name, tl, funding, dist, summaries, feeResult.PayeeIncome)
	case constants.OutputFormatCSV:
		output.CsvFormat(tl, funding, dist)
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
