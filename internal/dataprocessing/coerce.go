package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// naTokens are the cell values read as missing, matching the pandas defaults
var naTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissing reports whether a raw cell holds no value
func IsMissing(value string) bool {
	_, ok := naTokens[value]
	return ok
}

// parseNumber converts a numeric cell. Missing values become NaN so they
// propagate through arithmetic.
func parseNumber(value string) (float64, error) {
	if IsMissing(value) {
		return math.NaN(), nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", value)
	}
	return f, nil
}

// parseDate tries each layout in order. Results are UTC.
func parseDate(value string, layouts []string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// joinKey returns the comparable form of an identifier. Integral numbers are
// canonicalized so "1", "01" and "1.0" match. Missing keys return "".
func joinKey(value string) string {
	if IsMissing(value) {
		return ""
	}
	v := strings.TrimSpace(value)
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return v
}

// formatNumber renders a float without trailing zeros, NaN as "NaN"
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
