package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ProcessingStage identifies where ingestion failed. Callers only need the
// error kind; the stage is kept for logs and tests.
type ProcessingStage string

const (
	StageParse  ProcessingStage = "parse"
	StageColumn ProcessingStage = "column"
	StageCoerce ProcessingStage = "coerce"
	StageJoin   ProcessingStage = "join"
)

// DataProcessingError is the single failure kind of the sanitize/merge step.
type DataProcessingError struct {
	Stage   ProcessingStage
	Dataset string
	Column  string
	Row     int // 1-based data row, 0 when not row specific
	Cause   error
}

// Error implements the error interface
func (e *DataProcessingError) Error() string {
	var b strings.Builder
	b.WriteString("Data Processing Failed: ")
	if e.Dataset != "" {
		b.WriteString(e.Dataset)
		if e.Column != "" {
			b.WriteString(".")
			b.WriteString(e.Column)
		}
		if e.Row > 0 {
			fmt.Fprintf(&b, " (row %d)", e.Row)
		}
		b.WriteString(": ")
	}
	if e.Cause != nil {
		b.WriteString(e.Cause.Error())
	} else {
		b.WriteString(string(e.Stage))
	}
	return b.String()
}

// Unwrap returns the underlying cause
func (e *DataProcessingError) Unwrap() error {
	return e.Cause
}

// NewDataProcessingError creates a processing error for the given stage
func NewDataProcessingError(stage ProcessingStage, dataset string, cause error) *DataProcessingError {
	return &DataProcessingError{Stage: stage, Dataset: dataset, Cause: cause}
}

// AtColumn sets the offending column
func (e *DataProcessingError) AtColumn(column string) *DataProcessingError {
	e.Column = column
	return e
}

// AtRow sets the offending 1-based data row
func (e *DataProcessingError) AtRow(row int) *DataProcessingError {
	e.Row = row
	return e
}

// EmptyDatasetError is returned when a computation needs at least one record
type EmptyDatasetError struct {
	Operation string
}

// Error implements the error interface
func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("empty dataset: cannot %s without records", e.Operation)
}

// NewEmptyDatasetError creates an empty dataset error for an operation
func NewEmptyDatasetError(operation string) *EmptyDatasetError {
	return &EmptyDatasetError{Operation: operation}
}

// ExportError wraps filesystem and archive failures of the report exporter
type ExportError struct {
	Op    string
	Path  string
	Cause error
}

// Error implements the error interface
func (e *ExportError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("export failed: %s %s: %v", e.Op, e.Path, e.Cause)
	}
	return fmt.Sprintf("export failed: %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates an export error
func NewExportError(op, path string, cause error) *ExportError {
	return &ExportError{Op: op, Path: path, Cause: cause}
}

// IsDataProcessing reports whether err is or wraps a DataProcessingError
func IsDataProcessing(err error) bool {
	var target *DataProcessingError
	return stderrors.As(err, &target)
}

// IsEmptyDataset reports whether err is or wraps an EmptyDatasetError
func IsEmptyDataset(err error) bool {
	var target *EmptyDatasetError
	return stderrors.As(err, &target)
}

// IsExport reports whether err is or wraps an ExportError
func IsExport(err error) bool {
	var target *ExportError
	return stderrors.As(err, &target)
}
