package dataset

import (
	"log/slog"
	"sort"
)

// Warning kinds counted during a run. Consistency warnings are
// non-fatal: the affected row is retained, usually with a missing
// value, and the pipeline continues.
const (
	WarnUnmappedCategory   = "unmapped_category"
	WarnNegativeAge        = "negative_age"
	WarnMissingDemographic = "missing_demographic"
	WarnInvalidBirthNumber = "invalid_birth_number"
)

// Warnings collects data-consistency warnings across pipeline stages.
// Each warning is logged as it happens and counted by kind so the run
// summary can report totals.
type Warnings struct {
	logger *slog.Logger
	counts map[string]int
}

// NewWarnings creates a warning collector logging through logger.
func NewWarnings(logger *slog.Logger) *Warnings {
	if logger == nil {
		logger = slog.Default()
	}
	return &Warnings{logger: logger, counts: make(map[string]int)}
}

// Record logs a consistency warning and bumps the counter for kind.
func (w *Warnings) Record(kind, msg string, args ...any) {
	w.counts[kind]++
	w.logger.Warn(msg, append([]any{slog.String("warning_kind", kind)}, args...)...)
}

// Count returns the number of warnings recorded for kind.
func (w *Warnings) Count(kind string) int {
	return w.counts[kind]
}

// Total returns the number of warnings recorded across all kinds.
func (w *Warnings) Total() int {
	total := 0
	for _, n := range w.counts {
		total += n
	}
	return total
}

// LogSummary emits one summary line per warning kind, in sorted order.
func (w *Warnings) LogSummary() {
	kinds := make([]string, 0, len(w.counts))
	for kind := range w.counts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		w.logger.Info("consistency warnings",
			slog.String("warning_kind", kind),
			slog.Int("count", w.counts[kind]))
	}
}
