package exporter

import (
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"

	"loanrisk/internal/features"
)

// ArtifactWriter persists feature tables in gob form for exact,
// lossless reloading by later runs. Unlike the CSV export, the binary
// artifact round-trips NaN cells and full float64 precision.
type ArtifactWriter struct {
	logger *slog.Logger
}

// NewArtifactWriter creates a binary artifact writer.
func NewArtifactWriter(logger *slog.Logger) *ArtifactWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArtifactWriter{logger: logger}
}

// WriteTable writes the table to path atomically.
func (w *ArtifactWriter) WriteTable(path string, table *features.FeatureTable) error {
	w.logger.Info("writing binary artifact",
		slog.String("path", path),
		slog.Int("rows", len(table.Rows)))

	return writeAtomic(path, func(f *os.File) error {
		if err := gob.NewEncoder(f).Encode(table); err != nil {
			return fmt.Errorf("encode table: %w", err)
		}
		return nil
	})
}

// ReadTable loads a table previously written by WriteTable.
func ReadTable(path string) (*features.FeatureTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	var table features.FeatureTable
	if err := gob.NewDecoder(f).Decode(&table); err != nil {
		return nil, fmt.Errorf("decode artifact %s: %w", path, err)
	}
	return &table, nil
}
