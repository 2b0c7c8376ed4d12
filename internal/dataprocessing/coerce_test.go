package dataprocessing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/config"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{"2024-01-02", "01/02/2024", "2024/01/02", "02-Jan-2024", "Jan 2, 2024", " 2024-01-02 "} {
		got, err := parseDate(input, config.DefaultDateLayouts)
		require.NoError(t, err, input)
		assert.True(t, want.Equal(got), input)
	}

	withTime, err := parseDate("2024-01-02T10:30:00+02:00", config.DefaultDateLayouts)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 8, 30, 0, 0, time.UTC), withTime)

	for _, input := range []string{"", "yesterday", "2024-13-01"} {
		_, err := parseDate(input, config.DefaultDateLayouts)
		assert.Error(t, err, input)
	}
}

func TestParseNumber(t *testing.T) {
	got, err := parseNumber(" 2.5 ")
	require.NoError(t, err)
	assert.Equal(t, 2.5, got)

	got, err = parseNumber("NA")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))

	_, err = parseNumber("two")
	assert.Error(t, err)
}

func TestJoinKey(t *testing.T) {
	tests := map[string]string{
		"1":     "1",
		"1.0":   "1",
		"01":    "1",
		" 7 ":   "7",
		"2.50":  "2.5",
		"C-001": "C-001",
		"":      "",
		"NaN":   "",
		"Inf":   "Inf",
	}

	for input, want := range tests {
		assert.Equal(t, want, joinKey(input), "input %q", input)
	}
}
