package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dealforge/lbo-forecast/internal/config"
	"github.com/dealforge/lbo-forecast/internal/engine"
	"github.com/dealforge/lbo-forecast/internal/sensitivity"
	"github.com/dealforge/lbo-forecast/pkg/constants"
	"github.com/dealforge/lbo-forecast/pkg/output"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

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

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
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

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to deal configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	mode := flag.String("mode", "run", "analysis mode: run, grid, montecarlo")
	writeExample := flag.String("write-example-config", "", "write an annotated example configuration to the given path and exit")
	flag.Parse()

	if *writeExample != "" {
		if err := config.WriteExample(*writeExample); err != nil {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to write example configuration\", \"error\": \"%v\"}\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote example configuration to %s\n", *writeExample)
		return
	}

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if outputFormat != constants.OutputFormatPretty && outputFormat != constants.OutputFormatCSV {
		logger.Fatal("invalid output format "+outputFormat,
			zap.String("op", "main"),
		)
	}

	// Apply defaults and validate assumptions; display any warnings.
	warnings, err := conf.Normalize()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}
	if err != nil {
		logger.Fatal("invalid deal configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	switch *mode {
	case "run":
		scenarios := conf.ActiveScenarios()
		results := make([]engine.Result, 0, len(scenarios))
		for _, scenario := range scenarios {
			result, err := engine.Run(logger, scenario.Name, scenario.Deal, conf.Waterfall)
			if err != nil {
				logger.Fatal("failed to simulate scenario",
					zap.String("op", "main"),
					zap.String("scenario", scenario.Name),
					zap.Error(err),
				)
			}
			results = append(results, result)
		}

		switch outputFormat {
		case constants.OutputFormatPretty:
			output.PrettyFormat(results)
		case constants.OutputFormatCSV:
			output.CsvFormat(results)
		}

	case "grid":
		grid, err := sensitivity.RunGrid(logger, conf.Deal, conf.Grid)
		if err != nil {
			logger.Fatal("failed to compute sensitivity grid",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		output.PrettyFormatGrid(grid)

	case "montecarlo":
		outcome := sensitivity.RunMonteCarlo(logger, conf.Deal, conf.MonteCarlo)
		output.PrettyFormatMonteCarlo(outcome, conf.Deal.SigmaGrowth, conf.Deal.SigmaMargin, conf.Deal.SigmaMultiple, conf.MonteCarlo.HurdleIRR)

	default:
		logger.Fatal("invalid mode "+*mode+", expected run, grid, or montecarlo",
			zap.String("op", "main"),
		)
	}
}
