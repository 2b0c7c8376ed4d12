package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// ReadDataset parses one delimited text source with a header row. Short rows
// are padded to the header width; rows wider than the header are rejected.
func ReadDataset(name string, r io.Reader) (*domain.RawDataset, error) {
	if r == nil {
		return nil, apperrors.NewDataProcessingError(apperrors.StageParse, name, errors.New("source is missing"))
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewDataProcessingError(apperrors.StageParse, name, errors.New("no columns to parse from file"))
	}
	if err != nil {
		return nil, apperrors.NewDataProcessingError(apperrors.StageParse, name, err)
	}

	dataset := &domain.RawDataset{Name: name, Headers: headers}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewDataProcessingError(apperrors.StageParse, name, err)
		}

		row, err := fitRow(record, len(headers))
		if err != nil {
			return nil, apperrors.NewDataProcessingError(apperrors.StageParse, name, err).AtRow(len(dataset.Rows) + 1)
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	return dataset, nil
}

// ReadWorkbook parses the first sheet of an XLSX source the same way
// ReadDataset parses CSV: first row is the header.
func ReadWorkbook(name string, r io.Reader) (*domain.RawDataset, error) {
	if r == nil {
		return nil, apperrors.NewDataProcessingError(apperrors.StageParse, name, errors.New("source is missing"))
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewDataProcessingError(apperrors.StageParse, name, fmt.Errorf("failed to open workbook: %w", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewDataProcessingError(apperrors.StageParse, name, errors.New("workbook has no sheets"))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewDataProcessingError(apperrors.StageParse, name, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewDataProcessingError(apperrors.StageParse, name, errors.New("no columns to parse from file"))
	}

	dataset := &domain.RawDataset{Name: name, Headers: rows[0]}
	for i, record := range rows[1:] {
		// excelize omits trailing empty rows but keeps blank ones in between
		if isBlankRow(record) {
			continue
		}
		row, err := fitRow(record, len(dataset.Headers))
		if err != nil {
			return nil, apperrors.NewDataProcessingError(apperrors.StageParse, name, err).AtRow(i + 1)
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	return dataset, nil
}

// ReadSource picks the parser from the file extension of filename
func ReadSource(name, filename string, r io.Reader) (*domain.RawDataset, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return ReadWorkbook(name, r)
	default:
		return ReadDataset(name, r)
	}
}

func fitRow(record []string, width int) ([]string, error) {
	if len(record) > width {
		return nil, fmt.Errorf("expected %d fields, saw %d", width, len(record))
	}
	row := make([]string, width)
	copy(row, record)
	return row, nil
}

func isBlankRow(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
