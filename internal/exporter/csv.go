package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"loanrisk/internal/features"
)

// CSVWriter exports feature tables as semicolon-free, comma-delimited
// CSV. NaN cells are written empty so downstream readers see a missing
// value rather than a "NaN" string.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a CSV writer logging through logger.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteTable writes the table to path atomically.
func (w *CSVWriter) WriteTable(path string, table *features.FeatureTable) error {
	w.logger.Info("writing csv artifact",
		slog.String("path", path),
		slog.Int("rows", len(table.Rows)),
		slog.Int("columns", len(table.Columns)))

	return writeAtomic(path, func(f *os.File) error {
		writer := csv.NewWriter(f)
		if err := writer.Write(table.Columns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		record := make([]string, len(table.Columns))
		for i, row := range table.Rows {
			if len(row) != len(table.Columns) {
				return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(table.Columns))
			}
			for j, v := range row {
				record[j] = formatCell(v)
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("write row %d: %w", i, err)
			}
		}
		writer.Flush()
		return writer.Error()
	})
}

// formatCell renders one numeric cell. Integral values print without a
// decimal point; NaN prints as the empty cell.
func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// writeAtomic writes through a temporary file in the target directory
// and renames it into place on success.
func writeAtomic(path string, write func(*os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
