// Package dataprocessing turns the three raw sales inputs into one fact table.
//
// # Data Flow
//
//	customers, orders, products (CSV or XLSX)
//	    → ReadSource → RawDataset
//	    → header normalization (schema.NormalizeHeaders)
//	    → InspectHealth → HealthReport
//	    → key join on customer_id and product_id
//	    → FactTable with total_price = quantity × price
//
// Inputs are never modified; the merger works on normalized clones.
//
// # Usage
//
//	merger := dataprocessing.NewMerger(dataprocessing.WithLogger(logger))
//	table, health, err := merger.SanitizeAndMerge(ctx, dataprocessing.CSVSources(c, o, p))
//
// # Error Handling
//
// Failures are *errors.DataProcessingError values carrying the stage, the
// dataset and, when known, the column and row. A join that yields no records
// returns *errors.EmptyDatasetError.
//
// Health inspection only detects duplicates and missing cells; rows are kept
// as they are.
package dataprocessing
