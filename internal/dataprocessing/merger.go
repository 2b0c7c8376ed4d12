package dataprocessing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"salespulse/internal/config"
	apperrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
	"salespulse/internal/schema"
	"salespulse/pkg/contracts/domain"
)

// Required columns per dataset, after header normalization
var requiredColumns = map[string][]string{
	domain.DatasetCustomers: {domain.ColumnCustomerID, domain.ColumnCustomerName},
	domain.DatasetOrders:    {domain.ColumnCustomerID, domain.ColumnProductID, domain.ColumnOrderDate, domain.ColumnQuantity},
	domain.DatasetProducts:  {domain.ColumnProductID, domain.ColumnProductName, domain.ColumnPrice, domain.ColumnCategory},
}

// Source is one named input stream. Filename selects the parser; an empty
// name or any extension other than .xlsx/.xlsm is read as CSV.
type Source struct {
	Filename string
	Reader   io.Reader
}

// Sources are the three inputs of one run
type Sources struct {
	Customers Source
	Orders    Source
	Products  Source
}

// CSVSources wraps three CSV readers
func CSVSources(customers, orders, products io.Reader) Sources {
	return Sources{
		Customers: Source{Reader: customers},
		Orders:    Source{Reader: orders},
		Products:  Source{Reader: products},
	}
}

// Merger sanitizes and joins the three datasets into a fact table
type Merger struct {
	dateLayouts []string
	logger      *slog.Logger
}

// MergerOption configures a Merger
type MergerOption func(*Merger)

// WithDateLayouts overrides the order_date layouts tried in order
func WithDateLayouts(layouts []string) MergerOption {
	return func(m *Merger) {
		if len(layouts) > 0 {
			m.dateLayouts = append([]string(nil), layouts...)
		}
	}
}

// WithLogger sets the logger used for merge diagnostics
func WithLogger(logger *slog.Logger) MergerOption {
	return func(m *Merger) {
		m.logger = logger
	}
}

// NewMerger creates a merger with the default date layouts
func NewMerger(opts ...MergerOption) *Merger {
	m := &Merger{
		dateLayouts: append([]string(nil), config.DefaultDateLayouts...),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = infrastructure.WithComponent(m.logger, "merger")
	return m
}

// SanitizeAndMerge reads the three sources and merges them. Every failure is
// a *errors.DataProcessingError.
func (m *Merger) SanitizeAndMerge(ctx context.Context, src Sources) (*domain.FactTable, domain.HealthReport, error) {
	customers, err := ReadSource(domain.DatasetCustomers, src.Customers.Filename, src.Customers.Reader)
	if err != nil {
		return nil, nil, err
	}
	orders, err := ReadSource(domain.DatasetOrders, src.Orders.Filename, src.Orders.Reader)
	if err != nil {
		return nil, nil, err
	}
	products, err := ReadSource(domain.DatasetProducts, src.Products.Filename, src.Products.Reader)
	if err != nil {
		return nil, nil, err
	}

	return m.Merge(ctx, customers, orders, products)
}

// Merge runs anomaly detection, header normalization, both inner joins and
// the derived fields on already parsed datasets. Inputs are not modified.
func (m *Merger) Merge(ctx context.Context, customers, orders, products *domain.RawDataset) (*domain.FactTable, domain.HealthReport, error) {
	report := InspectHealth(customers, orders)

	cust, err := normalizeDataset(customers)
	if err != nil {
		return nil, nil, err
	}
	ord, err := normalizeDataset(orders)
	if err != nil {
		return nil, nil, err
	}
	prod, err := normalizeDataset(products)
	if err != nil {
		return nil, nil, err
	}

	for _, d := range []*domain.RawDataset{cust, ord, prod} {
		if err := requireColumns(d); err != nil {
			return nil, nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, apperrors.NewDataProcessingError(apperrors.StageJoin, "", err)
	}

	layout := newMergeLayout(ord, cust, prod)
	custIndex := buildKeyIndex(cust, cust.ColumnIndex(domain.ColumnCustomerID))
	prodIndex := buildKeyIndex(prod, prod.ColumnIndex(domain.ColumnProductID))

	ordCustomer := ord.ColumnIndex(domain.ColumnCustomerID)
	ordProduct := ord.ColumnIndex(domain.ColumnProductID)

	table := &domain.FactTable{Columns: layout.columns, PriceColumn: layout.priceColumn}
	var droppedUnmatched, droppedAmbiguous int

	for i, row := range ord.Rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, apperrors.NewDataProcessingError(apperrors.StageJoin, domain.DatasetOrders, err)
			}
		}

		custRows := custIndex[joinKey(row[ordCustomer])]
		prodRows := prodIndex[joinKey(row[ordProduct])]

		if len(custRows) == 0 || len(prodRows) == 0 {
			droppedUnmatched++
			continue
		}
		if len(custRows) > 1 {
			report = report.Add(NoticeAmbiguousCustomers)
			droppedAmbiguous++
			continue
		}
		if len(prodRows) > 1 {
			report = report.Add(NoticeAmbiguousProducts)
			droppedAmbiguous++
			continue
		}

		record, err := m.buildRecord(layout, rowRef{order: i + 1, product: prodRows[0] + 1}, row, cust.Rows[custRows[0]], prod.Rows[prodRows[0]])
		if err != nil {
			return nil, nil, err
		}
		table.Records = append(table.Records, record)
	}

	m.logger.DebugContext(ctx, "datasets merged",
		slog.Int("orders", ord.Len()),
		slog.Int("records", table.Len()),
		slog.Int("dropped_unmatched", droppedUnmatched),
		slog.Int("dropped_ambiguous", droppedAmbiguous),
		slog.Int("notices", len(report)))

	return table, report, nil
}

// rowRef holds 1-based data row numbers for error reporting
type rowRef struct {
	order   int
	product int
}

// buildRecord assembles one fact record and coerces its typed fields
func (m *Merger) buildRecord(layout *mergeLayout, ref rowRef, ord, cust, prod []string) (domain.FactRecord, error) {
	values := make(map[string]string, len(layout.columns))
	for _, src := range layout.sources {
		switch src.dataset {
		case domain.DatasetOrders:
			values[src.column] = ord[src.index]
		case domain.DatasetCustomers:
			values[src.column] = cust[src.index]
		case domain.DatasetProducts:
			values[src.column] = prod[src.index]
		}
	}

	record := domain.FactRecord{
		CustomerID:   ord[layout.ordCustomerID],
		ProductID:    ord[layout.ordProductID],
		CustomerName: cust[layout.custName],
		ProductName:  prod[layout.prodName],
		Category:     prod[layout.prodCategory],
		Values:       values,
	}
	if layout.ordOrderID >= 0 {
		record.OrderID = ord[layout.ordOrderID]
	}

	var err error
	record.OrderDate, err = parseDate(ord[layout.ordDate], m.dateLayouts)
	if err != nil {
		return record, coerceError(domain.DatasetOrders, domain.ColumnOrderDate, ref.order, err)
	}
	record.Quantity, err = parseNumber(ord[layout.ordQuantity])
	if err != nil {
		return record, coerceError(domain.DatasetOrders, domain.ColumnQuantity, ref.order, err)
	}
	record.Price, err = parseNumber(prod[layout.prodPrice])
	if err != nil {
		return record, coerceError(domain.DatasetProducts, domain.ColumnPrice, ref.product, err)
	}

	record.TotalPrice = record.Quantity * record.Price
	values[domain.ColumnTotalPrice] = formatTotal(record.TotalPrice)

	return record, nil
}

func coerceError(dataset, column string, row int, cause error) error {
	return apperrors.NewDataProcessingError(apperrors.StageCoerce, dataset, cause).AtColumn(column).AtRow(row)
}

func formatTotal(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return formatNumber(f)
}

// normalizeDataset returns a view with normalized headers sharing the
// source rows. Rows are never written through the view.
func normalizeDataset(d *domain.RawDataset) (*domain.RawDataset, error) {
	headers := schema.NormalizeHeaders(d.Headers)

	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		if seen[h] {
			return nil, apperrors.NewDataProcessingError(apperrors.StageColumn, d.Name,
				fmt.Errorf("duplicate column %q after normalization", h)).AtColumn(h)
		}
		seen[h] = true
	}

	return &domain.RawDataset{Name: d.Name, Headers: headers, Rows: d.Rows}, nil
}

func requireColumns(d *domain.RawDataset) error {
	for _, col := range requiredColumns[d.Name] {
		if d.ColumnIndex(col) < 0 {
			return apperrors.NewDataProcessingError(apperrors.StageColumn, d.Name,
				fmt.Errorf("missing required column %q", col)).AtColumn(col)
		}
	}
	return nil
}

// buildKeyIndex maps each join key to the rows holding it. Missing keys are
// not indexed so they never match.
func buildKeyIndex(d *domain.RawDataset, col int) map[string][]int {
	index := make(map[string][]int, len(d.Rows))
	for i, row := range d.Rows {
		key := joinKey(row[col])
		if key == "" {
			continue
		}
		index[key] = append(index[key], i)
	}
	return index
}

type columnSource struct {
	column  string
	dataset string
	index   int
}

// mergeLayout fixes the output columns and where each value comes from
type mergeLayout struct {
	columns []string
	sources []columnSource

	ordOrderID, ordCustomerID, ordProductID, ordDate, ordQuantity int
	custName                                                       int
	prodName, prodCategory, prodPrice                              int

	// priceColumn is the output name of the product price column
	priceColumn string
}

// newMergeLayout orders columns as orders, then customers without its key,
// then products without its key, then total_price. A right-hand column whose
// name is taken gets a _customer or _product suffix.
func newMergeLayout(ord, cust, prod *domain.RawDataset) *mergeLayout {
	l := &mergeLayout{
		ordOrderID:    ord.ColumnIndex(domain.ColumnOrderID),
		ordCustomerID: ord.ColumnIndex(domain.ColumnCustomerID),
		ordProductID:  ord.ColumnIndex(domain.ColumnProductID),
		ordDate:       ord.ColumnIndex(domain.ColumnOrderDate),
		ordQuantity:   ord.ColumnIndex(domain.ColumnQuantity),
		custName:      cust.ColumnIndex(domain.ColumnCustomerName),
		prodName:      prod.ColumnIndex(domain.ColumnProductName),
		prodCategory:  prod.ColumnIndex(domain.ColumnCategory),
		prodPrice:     prod.ColumnIndex(domain.ColumnPrice),
	}

	taken := make(map[string]bool)
	add := func(name, dataset string, index int) {
		l.columns = append(l.columns, name)
		l.sources = append(l.sources, columnSource{column: name, dataset: dataset, index: index})
		taken[name] = true
	}

	for i, h := range ord.Headers {
		add(h, domain.DatasetOrders, i)
	}

	appendRight := func(d *domain.RawDataset, key, suffix string) {
		for i, h := range d.Headers {
			if h == key {
				continue
			}
			name := h
			for taken[name] {
				name += suffix
			}
			if d == prod && i == l.prodPrice {
				l.priceColumn = name
			}
			add(name, d.Name, i)
		}
	}
	appendRight(cust, domain.ColumnCustomerID, "_customer")
	appendRight(prod, domain.ColumnProductID, "_product")

	if !taken[domain.ColumnTotalPrice] {
		l.columns = append(l.columns, domain.ColumnTotalPrice)
	} else {
		// computed total replaces an input column of the same name
		filtered := l.sources[:0]
		for _, s := range l.sources {
			if s.column != domain.ColumnTotalPrice {
				filtered = append(filtered, s)
			}
		}
		l.sources = filtered
		for i, c := range l.columns {
			if c == domain.ColumnTotalPrice {
				l.columns = append(append(l.columns[:i:i], l.columns[i+1:]...), domain.ColumnTotalPrice)
				break
			}
		}
	}

	return l
}
