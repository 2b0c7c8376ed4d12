// Package app wires the salespulse HTTP service together.
//
// NewApplication resolves and creates the data directories, installs
// OpenTelemetry, builds the analytics pipeline and mounts the routes:
//
//	POST /api/reports                     upload customers, orders, products
//	GET  /api/reports/download/{filename} fetch a generated report
//	GET  /api/health, /api/health/ready, /api/health/live
//	GET  /api/version
//	GET  /metrics
//
// Run serves until SIGINT or SIGTERM and then shuts the server and the
// telemetry providers down within Server.ShutdownTimeout. Errors are
// returned to the caller; the package never calls os.Exit.
package app
