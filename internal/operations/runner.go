package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"loanrisk/internal/infrastructure"
)

// Runner executes stages strictly in order under one run id. The
// pipeline is sequential; determinism of the outputs depends on it.
type Runner struct {
	logger *slog.Logger
	stages []Stage
}

// NewRunner creates a runner over the given stages.
func NewRunner(logger *slog.Logger, stages ...Stage) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger, stages: stages}
}

// Run executes every stage in order and stops at the first failure.
// Each stage runs inside its own trace span and is timed in the log.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.New().String()
	logger := r.logger.With(slog.String("run_id", runID))
	tracer := infrastructure.Tracer()

	ctx, span := tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("run.id", runID)))
	defer span.End()

	start := time.Now()
	logger.Info("pipeline started", slog.Int("stages", len(r.stages)))

	for i, stage := range r.stages {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, "canceled")
			return fmt.Errorf("pipeline canceled before stage %s: %w", stage.Name(), err)
		}

		stageStart := time.Now()
		stageCtx, stageSpan := tracer.Start(ctx, "stage."+stage.Name(),
			trace.WithAttributes(attribute.Int("stage.index", i)))
		err := stage.Run(stageCtx)
		stageSpan.End()

		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			logger.Error("stage failed",
				slog.String("stage", stage.Name()),
				slog.Duration("elapsed", time.Since(stageStart)),
				slog.String("error", err.Error()))
			return fmt.Errorf("stage %s: %w", stage.Name(), err)
		}

		logger.Info("stage completed",
			slog.String("stage", stage.Name()),
			slog.Duration("elapsed", time.Since(stageStart)))
	}

	logger.Info("pipeline completed", slog.Duration("elapsed", time.Since(start)))
	return nil
}
