// Package api contains the HTTP contract of the report endpoints.
package api

import (
	"salespulse/pkg/contracts/domain"
)

// Upload field names of POST /api/reports
const (
	FieldCustomers = "customers"
	FieldOrders    = "orders"
	FieldProducts  = "products"
)

// UploadFields lists the required multipart fields in processing order
var UploadFields = []string{FieldCustomers, FieldOrders, FieldProducts}

// ReportResponse is returned by POST /api/reports
type ReportResponse struct {
	Status      string `json:"status"`
	DownloadURL string `json:"download_url"`
	domain.RunResult
}

// DownloadRequest identifies a report file to download
type DownloadRequest struct {
	Filename string `validate:"required,max=255,excludesall=/\\"`
}
