package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim and lower", " Customer_ID ", "customer_id"},
		{"already normal", "order_date", "order_date"},
		{"bom prefix", "\uFEFFProduct_ID", "product_id"},
		{"tabs and newlines", "\tQuantity\n", "quantity"},
		{"inner spaces kept", " Unit Price ", "unit price"},
		{"decomposed accent composed", "Cafe\u0301", "caf\u00e9"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeHeader(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeHeader(got), "idempotent")
		})
	}
}

func TestNormalizeHeaders(t *testing.T) {
	input := []string{" Customer_ID ", "Customer_Name"}

	got := NormalizeHeaders(input)

	assert.Equal(t, []string{"customer_id", "customer_name"}, got)
	assert.Equal(t, []string{" Customer_ID ", "Customer_Name"}, input, "input untouched")
	assert.Equal(t, got, NormalizeHeaders(got))
	assert.Empty(t, NormalizeHeaders(nil))
}
