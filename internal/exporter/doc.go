// Package exporter writes the merged fact table of a pipeline run to disk.
//
// ReportExporter produces data_<runID>.csv and data_<runID>.xlsx in the
// reports directory and bundles both into All_Reports_<runID>.zip. Every
// file is written under a hidden partial name and renamed into place, and
// the archive is built from copies in a run-scoped staging directory that
// is removed whether the export succeeds or fails.
//
// Example usage:
//
//	exp := exporter.NewReportExporter(paths.ReportsDir, paths.StagingDir, fileManager, logger)
//	archive, err := exp.Export(ctx, table, runID)
package exporter
