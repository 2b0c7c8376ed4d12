package domain

import (
	"encoding/json"
	"math"
)

// encoding/json rejects NaN and ±Inf, which a trend fitted over huge
// revenues can produce. These marshalers write such values as null.

// finite returns nil for NaN and ±Inf
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// MarshalJSON implements json.Marshaler
func (p TrendPoint) MarshalJSON() ([]byte, error) {
	type point TrendPoint
	return json.Marshal(struct {
		point
		Observed  *float64 `json:"observed"`
		Predicted *float64 `json:"predicted"`
	}{point(p), finite(p.Observed), finite(p.Predicted)})
}

// MarshalJSON implements json.Marshaler
func (s TrendSeries) MarshalJSON() ([]byte, error) {
	type series TrendSeries
	return json.Marshal(struct {
		series
		Slope     *float64 `json:"slope"`
		Intercept *float64 `json:"intercept"`
	}{series(s), finite(s.Slope), finite(s.Intercept)})
}

// MarshalJSON implements json.Marshaler
func (c ChartPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Label string   `json:"label"`
		Value *float64 `json:"value"`
	}{c.Label, finite(c.Value)})
}

// MarshalJSON implements json.Marshaler
func (v LabeledValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Label string   `json:"label"`
		Value *float64 `json:"value"`
	}{v.Label, finite(v.Value)})
}
