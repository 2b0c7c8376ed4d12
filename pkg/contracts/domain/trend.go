package domain

import (
	"time"
)

// TrendPoint is one aggregated date with its observed and fitted revenue
type TrendPoint struct {
	Date      time.Time `json:"date"`
	Index     int       `json:"index"`
	Observed  float64   `json:"observed"`
	Predicted float64   `json:"predicted"`
}

// TrendSeries is the per-date revenue aggregation plus its least-squares line.
// The line is fitted over Index, not over calendar time.
type TrendSeries struct {
	Points    []TrendPoint `json:"points"`
	Slope     float64      `json:"slope"`
	Intercept float64      `json:"intercept"`
}

// Len returns the number of distinct dates
func (s TrendSeries) Len() int {
	return len(s.Points)
}
