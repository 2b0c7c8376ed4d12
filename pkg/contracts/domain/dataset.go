package domain

// Dataset names used in notices, errors and logs
const (
	DatasetCustomers = "customers"
	DatasetOrders    = "orders"
	DatasetProducts  = "products"
)

// RawDataset is one parsed tabular input before any normalization.
// Rows are padded to the header width.
type RawDataset struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex returns the position of the named column, or -1.
func (d *RawDataset) ColumnIndex(name string) int {
	for i, h := range d.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows
func (d *RawDataset) Len() int {
	return len(d.Rows)
}

// Clone returns a deep copy so callers can normalize without touching the source.
func (d *RawDataset) Clone() *RawDataset {
	out := &RawDataset{
		Name:    d.Name,
		Headers: append([]string(nil), d.Headers...),
		Rows:    make([][]string, len(d.Rows)),
	}
	for i, row := range d.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}
