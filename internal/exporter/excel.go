package exporter

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"

	"salespulse/pkg/contracts/domain"
)

// SheetName is the worksheet that holds the fact table
const SheetName = "Data"

// WorkbookWriter writes fact tables as XLSX workbooks using the excelize
// stream writer, so memory stays flat for large tables.
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a new workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger}
}

// WriteTable writes the table to filePath with a bold header row
func (w *WorkbookWriter) WriteTable(filePath string, table *domain.FactTable) (err error) {
	w.logger.Debug("Writing workbook",
		slog.String("file_path", filePath),
		slog.Int("record_count", table.Len()))

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: col}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, rec := range table.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, sheetRow(table, rec)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	return saveWorkbook(f, filePath)
}

// saveWorkbook writes f to filePath through WriteTo, which unlike SaveAs
// accepts any file name. A failed write leaves no file behind.
func saveWorkbook(f *excelize.File, filePath string) error {
	out, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create workbook file: %w", err)
	}
	if _, err := f.WriteTo(out); err != nil {
		out.Close()
		os.Remove(filePath)
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(filePath)
		return fmt.Errorf("failed to sync workbook: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(filePath)
		return fmt.Errorf("failed to close workbook: %w", err)
	}
	return nil
}
