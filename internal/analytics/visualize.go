package analytics

import (
	"math"
	"sort"

	"salespulse/pkg/contracts/domain"
)

// TopProductsLimit caps the top-products view
const TopProductsLimit = 5

// Series colors; observed and forecast keep their own fixed pair
var (
	observedColor = "#6366F1"
	forecastColor = "#EC4899"
	defaultColors = []string{
		"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
		"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
	}
)

// BuildVisualization computes the three aggregate views of a run
func BuildVisualization(table *domain.FactTable, trend domain.TrendSeries) domain.VisualizationBundle {
	return domain.VisualizationBundle{
		TimeTrend:     buildTimeTrend(trend),
		TopProducts:   buildTopProducts(table),
		CategoryShare: buildCategoryShare(table),
	}
}

func buildTimeTrend(trend domain.TrendSeries) domain.TimeTrendView {
	observed := make([]domain.ChartPoint, len(trend.Points))
	forecast := make([]domain.ChartPoint, len(trend.Points))
	for i, p := range trend.Points {
		label := domain.FormatDate(p.Date)
		observed[i] = domain.ChartPoint{Label: label, Value: roundTo2(p.Observed)}
		forecast[i] = domain.ChartPoint{Label: label, Value: roundTo2(p.Predicted)}
	}

	points := append([]domain.TrendPoint(nil), trend.Points...)
	if points == nil {
		points = []domain.TrendPoint{}
	}

	return domain.TimeTrendView{
		Points: points,
		Chart: domain.ChartConfig{
			ChartType: domain.ChartTypeLine,
			Title:     "Revenue & Trend Forecast",
			XAxis:     "Order Date",
			YAxis:     "Revenue",
			Series: []domain.ChartSeries{
				{Name: domain.SeriesObserved, Data: observed, Color: observedColor},
				{Name: domain.SeriesForecast, Data: forecast, Color: forecastColor, Dashed: true},
			},
			Colors:     []string{observedColor, forecastColor},
			ShowLegend: true,
			ShowGrid:   true,
		},
	}
}

// buildTopProducts sums quantity per product name and keeps the largest
// five. The sort is stable so exact ties keep first-encountered order.
func buildTopProducts(table *domain.FactTable) domain.RankedView {
	rows := groupSum(table, func(r domain.FactRecord) (string, float64) {
		return r.ProductName, r.Quantity
	})

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Value > rows[j].Value })
	if len(rows) > TopProductsLimit {
		rows = rows[:TopProductsLimit]
	}

	return domain.RankedView{
		Rows: rows,
		Chart: domain.ChartConfig{
			ChartType:  domain.ChartTypeBar,
			Title:      "Top Performing Products",
			XAxis:      "Product",
			YAxis:      "Quantity",
			Series:     []domain.ChartSeries{singleSeries(domain.SeriesQuantity, rows, defaultColors[0])},
			Colors:     assignColors(1),
			ShowLegend: false,
			ShowGrid:   true,
		},
	}
}

// buildCategoryShare sums revenue per category, one row per category in
// name order
func buildCategoryShare(table *domain.FactTable) domain.RankedView {
	rows := groupSum(table, func(r domain.FactRecord) (string, float64) {
		return r.Category, r.TotalPrice
	})

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Label < rows[j].Label })

	return domain.RankedView{
		Rows: rows,
		Chart: domain.ChartConfig{
			ChartType:  domain.ChartTypePie,
			Title:      "Revenue by Category",
			Series:     []domain.ChartSeries{singleSeries(domain.SeriesRevenue, rows, "")},
			Colors:     assignColors(len(rows)),
			ShowLegend: true,
			ShowGrid:   false,
		},
	}
}

// groupSum aggregates by key in first-encountered order, skipping NaN values
func groupSum(table *domain.FactTable, pick func(domain.FactRecord) (string, float64)) []domain.LabeledValue {
	rows := []domain.LabeledValue{}
	if table == nil {
		return rows
	}

	pos := make(map[string]int)
	for _, rec := range table.Records {
		key, v := pick(rec)
		i, ok := pos[key]
		if !ok {
			i = len(rows)
			pos[key] = i
			rows = append(rows, domain.LabeledValue{Label: key})
		}
		rows[i].Value += skipNaN(v)
	}
	return rows
}

func singleSeries(name string, rows []domain.LabeledValue, color string) domain.ChartSeries {
	points := make([]domain.ChartPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, domain.ChartPoint{Label: r.Label, Value: roundTo2(r.Value)})
	}
	return domain.ChartSeries{Name: name, Data: points, Color: color}
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}

// roundTo2 rounds chart values for display; aggregate rows keep full precision
func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
