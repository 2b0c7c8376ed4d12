package dataprocessing

import (
	"strconv"

	"github.com/zeebo/xxh3"

	"salespulse/pkg/contracts/domain"
)

// Health notices raised during sanitation
const (
	NoticeMissingCustomerCells = "Detected missing Customer cells"
	NoticeDuplicateOrders      = "Detected duplicate Order entries"
	NoticeAmbiguousCustomers   = "Excluded orders with ambiguous Customer keys"
	NoticeAmbiguousProducts    = "Excluded orders with ambiguous Product keys"
)

// InspectHealth runs anomaly detection on the raw, un-normalized datasets.
// It only reports; no cell is filled and no row is removed.
func InspectHealth(customers, orders *domain.RawDataset) domain.HealthReport {
	var report domain.HealthReport

	if customers != nil && hasMissingCells(customers) {
		report = report.Add(NoticeMissingCustomerCells)
	}
	if orders != nil && hasDuplicateRows(orders) {
		report = report.Add(NoticeDuplicateOrders)
	}

	return report
}

func hasMissingCells(d *domain.RawDataset) bool {
	for _, row := range d.Rows {
		for _, cell := range row {
			if IsMissing(cell) {
				return true
			}
		}
	}
	return false
}

// hasDuplicateRows hashes each row and confirms hash hits by exact comparison
func hasDuplicateRows(d *domain.RawDataset) bool {
	seen := make(map[uint64][]int, len(d.Rows))
	for i, row := range d.Rows {
		h := rowHash(row)
		for _, j := range seen[h] {
			if equalRows(d.Rows[j], row) {
				return true
			}
		}
		seen[h] = append(seen[h], i)
	}
	return false
}

// rowHash length-prefixes every cell so ("a,b") and ("a","b") differ
func rowHash(row []string) uint64 {
	buf := make([]byte, 0, 64)
	for _, cell := range row {
		buf = strconv.AppendInt(buf, int64(len(cell)), 10)
		buf = append(buf, ':')
		buf = append(buf, cell...)
	}
	return xxh3.Hash(buf)
}

func equalRows(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
