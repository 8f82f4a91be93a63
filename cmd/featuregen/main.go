// Command featuregen generates the loan-level credit-risk feature table
// from a raw relational bank extract.
//
// Usage:
//
//	featuregen [flags] [max_time min_time]
//
// The optional positional arguments override the configured day-offset
// window bounds: the long-run window covers offsets [min_time,
// max_time) before loan issuance, the recent window covers [0,
// min_time).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"loanrisk/internal/config"
	"loanrisk/internal/dataset"
	"loanrisk/internal/exporter"
	"loanrisk/internal/features"
	"loanrisk/internal/infrastructure"
	"loanrisk/internal/operations"
	"loanrisk/pkg/contracts/domain"
)

func main() {
	var (
		dataDir   = flag.String("data", "", "directory with the raw extract (overrides config)")
		outDir    = flag.String("out", "", "directory for generated artifacts (overrides config)")
		writeXLSX = flag.Bool("xlsx", false, "additionally export the feature table as xlsx")
	)
	flag.Usage = usage
	flag.Parse()

	if err := run(flag.Args(), *dataDir, *outDir, *writeXLSX); err != nil {
		fmt.Fprintf(os.Stderr, "featuregen: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] [max_time min_time]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Generates the loan feature table from a raw bank extract.\n")
	fmt.Fprintf(os.Stderr, "max_time and min_time bound the long-run transaction window\n")
	fmt.Fprintf(os.Stderr, "in days before loan issuance; defaults come from the config.\n\n")
	flag.PrintDefaults()
}

func run(args []string, dataDir, outDir string, writeXLSX bool) error {
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

	window, err := windowFromArgs(args, cfg.Window)
	if err != nil {
		return err
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

	logger.Info("featuregen starting",
		slog.String("data_dir", paths.DataDir),
		slog.String("out_dir", paths.OutDir),
		slog.Int("max_time", window.MaxDays),
		slog.Int("min_time", window.MinDays))

	return buildPipeline(logger, paths, window, writeXLSX).Run(ctx)
}

// windowFromArgs resolves the long-run window from the positional
// arguments, falling back to the configured bounds. Any other argument
// count is a usage error.
func windowFromArgs(args []string, cfg config.WindowConfig) (features.Window, error) {
	w := features.Window{MinDays: cfg.MinTime, MaxDays: cfg.MaxTime}
	switch len(args) {
	case 0:
	case 2:
		maxTime, err := strconv.Atoi(args[0])
		if err != nil {
			return w, fmt.Errorf("invalid max_time %q: %w", args[0], err)
		}
		minTime, err := strconv.Atoi(args[1])
		if err != nil {
			return w, fmt.Errorf("invalid min_time %q: %w", args[1], err)
		}
		w = features.Window{MinDays: minTime, MaxDays: maxTime}
	default:
		return w, fmt.Errorf("expected 0 or 2 positional arguments, got %d", len(args))
	}
	if w.MinDays < 0 || w.MaxDays <= w.MinDays {
		return w, fmt.Errorf("invalid window: need 0 <= min_time < max_time, got min=%d max=%d",
			w.MinDays, w.MaxDays)
	}
	return w, nil
}

// buildPipeline wires the stages. Stages communicate through the shared
// state struct; the runner guarantees strictly sequential execution.
func buildPipeline(logger *slog.Logger, paths *config.Paths, window features.Window, writeXLSX bool) *operations.Runner {
	warnings := dataset.NewWarnings(logger)

	var (
		ds      *dataset.Dataset
		static  []domain.LoanFeatures
		events  []features.ClassifiedTransaction
		longRun []domain.WindowAggregate
		recent  []domain.WindowAggregate
		table   *features.FeatureTable
	)

	stages := []operations.Stage{
		operations.StageFunc{StageName: "load", Fn: func(ctx context.Context) error {
			var err error
			ds, err = dataset.NewLoader(logger, warnings).Load(paths.DataDir)
			return err
		}},
		operations.StageFunc{StageName: "encode", Fn: func(ctx context.Context) error {
			join := features.BuildStaticJoin(ds, logger)
			static = features.NewEncoder(logger, warnings).EncodeLoans(join)
			return nil
		}},
		operations.StageFunc{StageName: "classify", Fn: func(ctx context.Context) error {
			events = features.NewClassifier(logger, warnings).Classify(ds.Loans, ds.Transactions)
			return nil
		}},
		operations.StageFunc{StageName: "aggregate", Fn: func(ctx context.Context) error {
			longRun = features.NewAggregator(logger, window).Aggregate(events)
			recentWindow := features.Window{MinDays: 0, MaxDays: window.MinDays}
			recent = features.NewAggregator(logger, recentWindow).Aggregate(events)
			return nil
		}},
		operations.StageFunc{StageName: "assemble", Fn: func(ctx context.Context) error {
			table = features.AssembleLoanTable(static, longRun, recent)
			return nil
		}},
		operations.StageFunc{StageName: "export", Fn: func(ctx context.Context) error {
			csvPath := paths.GetOutputPath(config.FeatureTableCSVName)
			if err := exporter.NewCSVWriter(logger).WriteTable(csvPath, table); err != nil {
				return err
			}
			gobPath := paths.GetOutputPath(config.FeatureTableGobName)
			if err := exporter.NewArtifactWriter(logger).WriteTable(gobPath, table); err != nil {
				return err
			}
			if writeXLSX {
				xlsxPath := paths.GetOutputPath(config.FeatureTableXLSXName)
				if err := exporter.NewXLSXWriter(logger).WriteTable(xlsxPath, table); err != nil {
					return err
				}
			}
			warnings.LogSummary()
			return nil
		}},
	}

	return operations.NewRunner(logger, stages...)
}
