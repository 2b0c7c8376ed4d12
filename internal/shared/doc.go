// Package shared holds helpers used across the SalesPulse packages that do not
// belong to any single pipeline stage.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// structured logs and CSV fixtures for the customers, orders and products
// inputs.
package shared
