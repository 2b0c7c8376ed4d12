package domain

// Chart types understood by renderers
const (
	ChartTypeLine = "line"
	ChartTypeBar  = "bar"
	ChartTypePie  = "pie"
)

// Series names used across views
const (
	SeriesObserved = "observed"
	SeriesForecast = "forecast"
	SeriesQuantity = "quantity"
	SeriesRevenue  = "revenue"
)

// ChartPoint is a single labelled value in a series
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartSeries is one named data series
type ChartSeries struct {
	Name   string       `json:"name"`
	Data   []ChartPoint `json:"data"`
	Color  string       `json:"color,omitempty"`
	Dashed bool         `json:"dashed,omitempty"`
}

// ChartConfig describes a chart without binding it to a rendering library
type ChartConfig struct {
	ChartType  string        `json:"chart_type"`
	Title      string        `json:"title"`
	XAxis      string        `json:"x_axis,omitempty"`
	YAxis      string        `json:"y_axis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"show_legend"`
	ShowGrid   bool          `json:"show_grid"`
}

// LabeledValue is a (label, value) aggregate row
type LabeledValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// TimeTrendView carries observed vs forecast revenue per date
type TimeTrendView struct {
	Points []TrendPoint `json:"points"`
	Chart  ChartConfig  `json:"chart"`
}

// RankedView carries a small ordered (label, value) table
type RankedView struct {
	Rows  []LabeledValue `json:"rows"`
	Chart ChartConfig    `json:"chart"`
}

// VisualizationBundle is the combined, serializable set of aggregate views
type VisualizationBundle struct {
	TimeTrend     TimeTrendView `json:"time_trend"`
	TopProducts   RankedView    `json:"top_products"`
	CategoryShare RankedView    `json:"category_share"`
}
