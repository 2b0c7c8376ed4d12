package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"salespulse/pkg/contracts/domain"
)

func TestInspectHealth(t *testing.T) {
	cleanCustomers := &domain.RawDataset{Headers: []string{"customer_id", "customer_name"}, Rows: [][]string{{"1", "Ann"}, {"2", "Bob"}}}
	cleanOrders := &domain.RawDataset{Headers: []string{"order_id", "customer_id"}, Rows: [][]string{{"1", "1"}, {"2", "1"}}}

	tests := []struct {
		name      string
		customers *domain.RawDataset
		orders    *domain.RawDataset
		want      domain.HealthReport
	}{
		{
			name:      "clean",
			customers: cleanCustomers,
			orders:    cleanOrders,
			want:      nil,
		},
		{
			name:      "empty customer cell",
			customers: &domain.RawDataset{Rows: [][]string{{"1", ""}}},
			orders:    cleanOrders,
			want:      domain.HealthReport{NoticeMissingCustomerCells},
		},
		{
			name:      "NA token in customers",
			customers: &domain.RawDataset{Rows: [][]string{{"1", "N/A"}}},
			orders:    cleanOrders,
			want:      domain.HealthReport{NoticeMissingCustomerCells},
		},
		{
			name:      "duplicate order row",
			customers: cleanCustomers,
			orders:    &domain.RawDataset{Rows: [][]string{{"1", "1"}, {"2", "1"}, {"1", "1"}}},
			want:      domain.HealthReport{NoticeDuplicateOrders},
		},
		{
			name:      "cells that concatenate equally are not duplicates",
			customers: cleanCustomers,
			orders:    &domain.RawDataset{Rows: [][]string{{"1", "12"}, {"11", "2"}}},
			want:      nil,
		},
		{
			name:      "both anomalies in fixed order",
			customers: &domain.RawDataset{Rows: [][]string{{"", "Ann"}}},
			orders:    &domain.RawDataset{Rows: [][]string{{"1"}, {"1"}}},
			want:      domain.HealthReport{NoticeMissingCustomerCells, NoticeDuplicateOrders},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InspectHealth(tt.customers, tt.orders))
		})
	}
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "NA", "N/A", "null", "NULL", "NaN", "nan", "None", "<NA>", "#N/A"} {
		assert.True(t, IsMissing(v), v)
	}
	for _, v := range []string{"0", " ", "none", "Ann", "n.a."} {
		assert.False(t, IsMissing(v), v)
	}
}
