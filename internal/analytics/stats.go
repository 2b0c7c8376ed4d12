package analytics

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders v with thousands separators and two decimals, e.g. 1,234.50
func FormatMoney(v float64) string {
	return moneyPrinter.Sprintf("%.2f", v)
}

// ComputeStats derives the headline metrics. It fails on an empty table
// rather than returning partially filled stats.
func ComputeStats(table *domain.FactTable, report domain.HealthReport) (*domain.Stats, error) {
	if table.IsEmpty() {
		return nil, apperrors.NewEmptyDatasetError("compute average order value")
	}

	var revenue float64
	for _, rec := range table.Records {
		revenue += skipNaN(rec.TotalPrice)
	}
	count := table.Len()

	return &domain.Stats{
		TotalRevenue:      FormatMoney(revenue),
		RecordCount:       count,
		AverageOrderValue: FormatMoney(revenue / float64(count)),
		TopCustomer:       topCustomer(table),
		Health:            report.Notices(),
	}, nil
}

// topCustomer returns the name with the largest summed revenue; the first
// encountered name wins a tie.
func topCustomer(table *domain.FactTable) string {
	totals := groupSum(table, func(r domain.FactRecord) (string, float64) {
		return r.CustomerName, r.TotalPrice
	})

	best := totals[0]
	for _, t := range totals[1:] {
		if t.Value > best.Value {
			best = t
		}
	}
	return best.Label
}
