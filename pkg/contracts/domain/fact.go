package domain

import (
	"time"
)

// Layouts used by FormatDate
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// FormatDate renders an order date for reports and chart labels. Dates at
// midnight print as YYYY-MM-DD; any other time of day keeps its clock part
// so two orders on the same day stay distinct.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	h, m, s := t.Clock()
	if h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0 {
		return t.Format(DateLayout)
	}
	return t.Format(DateTimeLayout)
}

// Canonical column names of the merged fact table
const (
	ColumnOrderID      = "order_id"
	ColumnCustomerID   = "customer_id"
	ColumnProductID    = "product_id"
	ColumnCustomerName = "customer_name"
	ColumnProductName  = "product_name"
	ColumnCategory     = "category"
	ColumnOrderDate    = "order_date"
	ColumnQuantity     = "quantity"
	ColumnPrice        = "price"
	ColumnTotalPrice   = "total_price"
)

// FactRecord is one merged order line with its customer and product attributes.
// Values holds every merged column as text, keyed by normalized column name.
type FactRecord struct {
	OrderID      string            `json:"order_id,omitempty"`
	CustomerID   string            `json:"customer_id"`
	ProductID    string            `json:"product_id"`
	CustomerName string            `json:"customer_name"`
	ProductName  string            `json:"product_name"`
	Category     string            `json:"category"`
	OrderDate    time.Time         `json:"order_date"`
	Quantity     float64           `json:"quantity"`
	Price        float64           `json:"price"`
	TotalPrice   float64           `json:"total_price"`
	Values       map[string]string `json:"values,omitempty"`
}

// FactTable is the denormalized result of one pipeline run.
// Columns lists the merged columns in output order; total_price is always last.
// PriceColumn names the column that carries the product price, which is
// price_product when the orders input has its own price column.
type FactTable struct {
	Columns     []string     `json:"columns"`
	Records     []FactRecord `json:"records"`
	PriceColumn string       `json:"price_column,omitempty"`
}

// PriceColumnName returns PriceColumn, or price when it is unset
func (t *FactTable) PriceColumnName() string {
	if t == nil || t.PriceColumn == "" {
		return ColumnPrice
	}
	return t.PriceColumn
}

// Len returns the number of fact records
func (t *FactTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// IsEmpty reports whether the table holds no records
func (t *FactTable) IsEmpty() bool {
	return t.Len() == 0
}
