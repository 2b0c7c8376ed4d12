package exporter

import (
	"math"

	"salespulse/pkg/contracts/domain"
)

// csvHeaders returns the header row of the fact export
func csvHeaders(table *domain.FactTable) []string {
	return append([]string(nil), table.Columns...)
}

// csvRow renders a record in column order. The order date is taken from
// the typed field so every file carries the same text.
func csvRow(columns []string, rec domain.FactRecord) []string {
	row := make([]string, len(columns))
	for i, col := range columns {
		if col == domain.ColumnOrderDate {
			row[i] = formatDate(rec)
			continue
		}
		row[i] = rec.Values[col]
	}
	return row
}

// sheetRow renders a record for the workbook. Quantity, the product price
// column and total price are written as numbers; a missing number leaves
// the cell empty. Other columns, an order-side price included, keep their text.
func sheetRow(table *domain.FactTable, rec domain.FactRecord) []interface{} {
	priceColumn := table.PriceColumnName()
	row := make([]interface{}, len(table.Columns))
	for i, col := range table.Columns {
		switch col {
		case domain.ColumnOrderDate:
			row[i] = formatDate(rec)
		case domain.ColumnQuantity:
			row[i] = numberCell(rec.Quantity)
		case priceColumn:
			row[i] = numberCell(rec.Price)
		case domain.ColumnTotalPrice:
			row[i] = numberCell(rec.TotalPrice)
		default:
			row[i] = rec.Values[col]
		}
	}
	return row
}

func formatDate(rec domain.FactRecord) string {
	return domain.FormatDate(rec.OrderDate)
}

func numberCell(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
