// Package config loads SalesPulse configuration.
//
// Values come from, in increasing precedence: built-in defaults, an optional
// YAML file (SALESPULSE_CONFIG, ./config.yaml or ./configs/config.yaml) and
// SALESPULSE_* environment variables:
//
//	SALESPULSE_SERVER_PORT=8080
//	SALESPULSE_PATHS_REPORTS_DIR=/var/lib/salespulse/reports
//	SALESPULSE_LOGGING_LEVEL=debug
//	SALESPULSE_TELEMETRY_TRACE_EXPORTER=stdout
//
// The loaded Config is validated with go-playground/validator struct tags.
// ResolvePaths turns the configured directories into absolute Paths;
// EnsureDirectories creates them and is meant to run once at startup.
package config
