// Command monthlyagg generates the per-loan, per-calendar-month
// transaction statistic grid from a raw relational bank extract. It
// shares the extract loading and transaction classification with
// featuregen but replaces the day-offset windows with calendar-month
// grouping over the full pre-issuance history.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"loanrisk/internal/config"
	"loanrisk/internal/dataset"
	"loanrisk/internal/exporter"
	"loanrisk/internal/features"
	"loanrisk/internal/infrastructure"
	"loanrisk/internal/operations"
)

func main() {
	var (
		dataDir = flag.String("data", "", "directory with the raw extract (overrides config)")
		outDir  = flag.String("out", "", "directory for generated artifacts (overrides config)")
	)
	flag.Parse()

	if flag.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "monthlyagg: unexpected positional arguments: %v\n", flag.Args())
		os.Exit(1)
	}

	if err := run(*dataDir, *outDir); err != nil {
		fmt.Fprintf(os.Stderr, "monthlyagg: %v\n", err)
		os.Exit(1)
	}
}

func run(dataDir, outDir string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.Paths.DataDir = dataDir
	}
	if outDir != "" {
		cfg.Paths.OutDir = outDir
	}

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	shutdownTracing, err := infrastructure.InitializeTracing(cfg.Tracing, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer shutdownTracing(context.Background())

	logger.Info("monthlyagg starting",
		slog.String("data_dir", paths.DataDir),
		slog.String("out_dir", paths.OutDir))

	return buildPipeline(logger, paths).Run(ctx)
}

func buildPipeline(logger *slog.Logger, paths *config.Paths) *operations.Runner {
	warnings := dataset.NewWarnings(logger)

	var (
		ds     *dataset.Dataset
		events []features.ClassifiedTransaction
		table  *features.FeatureTable
	)

	stages := []operations.Stage{
		operations.StageFunc{StageName: "load", Fn: func(ctx context.Context) error {
			var err error
			ds, err = dataset.NewLoader(logger, warnings).Load(paths.DataDir)
			return err
		}},
		operations.StageFunc{StageName: "classify", Fn: func(ctx context.Context) error {
			events = features.NewClassifier(logger, warnings).Classify(ds.Loans, ds.Transactions)
			return nil
		}},
		operations.StageFunc{StageName: "aggregate", Fn: func(ctx context.Context) error {
			monthly := features.NewMonthlyAggregator(logger).Aggregate(events)
			table = features.AssembleMonthlyTable(monthly)
			return nil
		}},
		operations.StageFunc{StageName: "export", Fn: func(ctx context.Context) error {
			csvPath := paths.GetOutputPath(config.MonthlyTableCSVName)
			if err := exporter.NewCSVWriter(logger).WriteTable(csvPath, table); err != nil {
				return err
			}
			gobPath := paths.GetOutputPath(config.MonthlyTableGobName)
			if err := exporter.NewArtifactWriter(logger).WriteTable(gobPath, table); err != nil {
				return err
			}
			warnings.LogSummary()
			return nil
		}},
	}

	return operations.NewRunner(logger, stages...)
}
