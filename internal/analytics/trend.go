package analytics

import (
	"math"
	"sort"
	"time"

	apperrors "salespulse/internal/errors"
	"salespulse/pkg/contracts/domain"
)

// EstimateTrend sums total price per order date, orders the dates ascending,
// indexes them 0..n-1 and fits an ordinary least-squares line over
// (index, revenue). Calendar gaps are not represented.
func EstimateTrend(table *domain.FactTable) (domain.TrendSeries, error) {
	if table.IsEmpty() {
		return domain.TrendSeries{}, apperrors.NewEmptyDatasetError("estimate trend")
	}

	totals := make(map[time.Time]float64)
	for _, rec := range table.Records {
		totals[rec.OrderDate] += skipNaN(rec.TotalPrice)
	}

	dates := make([]time.Time, 0, len(totals))
	for d := range totals {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	series := domain.TrendSeries{Points: make([]domain.TrendPoint, len(dates))}
	ys := make([]float64, len(dates))
	for i, d := range dates {
		ys[i] = totals[d]
		series.Points[i] = domain.TrendPoint{Date: d, Index: i, Observed: ys[i]}
	}

	series.Slope, series.Intercept = fitLine(ys)
	for i := range series.Points {
		series.Points[i].Predicted = series.Intercept + series.Slope*float64(i)
	}

	return series, nil
}

// fitLine returns slope and intercept of y = a*x + b with x = 0..n-1.
// A single point yields slope 0 so the prediction equals the observation.
func fitLine(ys []float64) (slope, intercept float64) {
	n := float64(len(ys))
	if len(ys) == 1 {
		return 0, ys[0]
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	// x values are distinct, so the denominator is positive for n >= 2
	slope = (n*sumXY - sumX*sumY) / (n*sumX2 - sumX*sumX)
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

func skipNaN(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
