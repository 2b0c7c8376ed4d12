package exporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/files"
	"salespulse/internal/infrastructure"
	"salespulse/pkg/contracts/domain"
)

// Report file name patterns, formatted with the run id
const (
	CSVNamePattern     = "data_%s.csv"
	XLSXNamePattern    = "data_%s.xlsx"
	ArchiveNamePattern = "All_Reports_%s.zip"
)

// ReportFiles names the artifacts of one run
type ReportFiles struct {
	CSV     string
	XLSX    string
	Archive string
}

// ReportFileNames returns the artifact names for runID
func ReportFileNames(runID string) ReportFiles {
	return ReportFiles{
		CSV:     fmt.Sprintf(CSVNamePattern, runID),
		XLSX:    fmt.Sprintf(XLSXNamePattern, runID),
		Archive: fmt.Sprintf(ArchiveNamePattern, runID),
	}
}

// Option configures a ReportExporter
type Option func(*ReportExporter)

// WithBOM prefixes the CSV export with a UTF-8 byte order mark
func WithBOM(enabled bool) Option {
	return func(e *ReportExporter) {
		e.bom = enabled
	}
}

// ReportExporter writes the fact table of a run as CSV and XLSX and
// bundles both into a zip archive in the reports directory.
type ReportExporter struct {
	reportsDir  string
	stagingRoot string
	files       *files.Manager
	csv         *CSVWriter
	workbook    *WorkbookWriter
	logger      *slog.Logger
	bom         bool

	archive func(dst string, srcs []string) error
}

// NewReportExporter creates an exporter. reportsDir must exist and be
// writable; stagingRoot holds the per-run staging directories.
func NewReportExporter(reportsDir, stagingRoot string, fm *files.Manager, logger *slog.Logger, opts ...Option) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "exporter")

	e := &ReportExporter{
		reportsDir:  reportsDir,
		stagingRoot: stagingRoot,
		files:       fm,
		csv:         NewCSVWriter(logger),
		workbook:    NewWorkbookWriter(logger),
		logger:      logger,
		archive:     writeArchive,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes data_<runID>.csv and data_<runID>.xlsx to the reports
// directory, zips them through a run-scoped staging directory and returns
// the archive file name. The staging directory is removed on every path.
func (e *ReportExporter) Export(ctx context.Context, table *domain.FactTable, runID string) (string, error) {
	if err := validateRunID(runID); err != nil {
		return "", apperrors.NewExportError("validate run id", runID, err)
	}
	if table == nil {
		table = &domain.FactTable{}
	}

	names := ReportFileNames(runID)
	csvPath := filepath.Join(e.reportsDir, names.CSV)
	xlsxPath := filepath.Join(e.reportsDir, names.XLSX)
	archivePath := filepath.Join(e.reportsDir, names.Archive)

	if err := e.commit(csvPath, func(tmp string) error { return e.writeCSV(tmp, table) }); err != nil {
		return "", apperrors.NewExportError("write csv", csvPath, err)
	}
	if err := ctx.Err(); err != nil {
		return "", apperrors.NewExportError("write xlsx", xlsxPath, err)
	}
	if err := e.commit(xlsxPath, func(tmp string) error { return e.workbook.WriteTable(tmp, table) }); err != nil {
		return "", apperrors.NewExportError("write xlsx", xlsxPath, err)
	}
	if err := ctx.Err(); err != nil {
		return "", apperrors.NewExportError("stage archive", archivePath, err)
	}

	staging, err := os.MkdirTemp(e.stagingRoot, "temp_"+runID+"_")
	if err != nil {
		return "", apperrors.NewExportError("create staging", e.stagingRoot, err)
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			infrastructure.WithError(e.logger, err).Warn("Failed to remove staging directory",
				slog.String("staging", staging))
		}
	}()

	staged := make([]string, 0, 2)
	for _, src := range []string{csvPath, xlsxPath} {
		dst := filepath.Join(staging, filepath.Base(src))
		if err := e.files.CopyFile(src, dst); err != nil {
			return "", apperrors.NewExportError("stage file", src, err)
		}
		staged = append(staged, dst)
	}

	if err := e.commit(archivePath, func(tmp string) error { return e.archive(tmp, staged) }); err != nil {
		return "", apperrors.NewExportError("write archive", archivePath, err)
	}

	e.logger.Info("Report exported",
		slog.String("run_id", runID),
		slog.String("archive", names.Archive),
		slog.Int("record_count", table.Len()))

	return names.Archive, nil
}

func (e *ReportExporter) writeCSV(path string, table *domain.FactTable) error {
	sw, err := e.csv.CreateStreamWriter(path, csvHeaders(table), e.bom)
	if err != nil {
		return err
	}
	for i, rec := range table.Records {
		if err := sw.WriteRecord(csvRow(table.Columns, rec)); err != nil {
			sw.Abort()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return sw.Close()
}

// commit runs write against a hidden partial name next to final and
// renames it into place once write succeeds.
func (e *ReportExporter) commit(final string, write func(tmp string) error) error {
	tmp := partialPath(final)
	if err := write(tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := e.files.MoveFile(tmp, final); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// partialPath returns the hidden temporary name for final. The extension
// stays last so writers that check it accept the name.
func partialPath(final string) string {
	base := filepath.Base(final)
	ext := filepath.Ext(base)
	return filepath.Join(filepath.Dir(final), "."+strings.TrimSuffix(base, ext)+".partial"+ext)
}

var errBadRunID = errors.New("run id must be a single non-empty path element")

func validateRunID(runID string) error {
	if files.ValidateName(runID) != nil || strings.Contains(runID, "..") {
		return errBadRunID
	}
	return nil
}
