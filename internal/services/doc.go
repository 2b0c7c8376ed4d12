// Package services implements the business logic layer between the HTTP
// handlers and the pipeline packages.
//
// AnalyticsService runs one sales analysis: it merges the three input
// datasets, estimates the revenue trend, builds the chart data, exports
// the report archive and computes the headline statistics. Every stage
// runs in its own OpenTelemetry span and records its duration.
//
// HealthService answers liveness and readiness probes. Readiness checks
// that the upload, report and staging directories are writable.
//
// # Common Service Pattern
//
//	svc := services.NewAnalyticsService(merger, exporter, metrics, logger)
//	result, err := svc.Run(ctx, sources, runID)
//	if err != nil {
//	    // typed errors from salespulse/internal/errors
//	}
package services
