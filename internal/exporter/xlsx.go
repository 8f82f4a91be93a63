package exporter

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/xuri/excelize/v2"

	"loanrisk/internal/features"
)

const xlsxSheet = "Sheet1"

// XLSXWriter exports a feature table as a single-sheet workbook for
// manual inspection. NaN cells are left blank.
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates an xlsx writer.
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger}
}

// WriteTable writes the table to path. The workbook is built in memory
// and saved in one shot, so a failed save leaves no partial file.
func (w *XLSXWriter) WriteTable(path string, table *features.FeatureTable) error {
	w.logger.Info("writing xlsx artifact",
		slog.String("path", path),
		slog.Int("rows", len(table.Rows)))

	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	for i, row := range table.Rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			if math.IsNaN(v) {
				cells[j] = nil
				continue
			}
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d coordinates: %w", i, err)
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
