package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SalesFixtures holds the three CSV inputs of one analytics run
type SalesFixtures struct {
	Customers string
	Orders    string
	Products  string
}

// DefaultSalesFixtures returns a small consistent data set with messy headers.
// Orders on 2024-01-01 (revenue 40) and 2024-01-02 (revenue 30).
func DefaultSalesFixtures() SalesFixtures {
	return SalesFixtures{
		Customers: " Customer_ID ,Customer_Name\n1,Ann\n2,Bob\n",
		Orders:    "order_id,customer_id,product_id,order_date,quantity\n100,1,10,2024-01-01,2\n101,2,11,2024-01-02,3\n",
		Products:  "product_id,product_name,price,category\n10,Pen,20,Office\n11,Cup,10,Kitchen\n",
	}
}

// Readers returns fresh readers over the fixture contents
func (f SalesFixtures) Readers() (customers, orders, products *strings.Reader) {
	return strings.NewReader(f.Customers), strings.NewReader(f.Orders), strings.NewReader(f.Products)
}

// WriteFiles writes the fixtures into dir and returns the paths in
// customers, orders, products order.
func (f SalesFixtures) WriteFiles(t *testing.T, dir string) (string, string, string) {
	t.Helper()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write fixture %s: %v", name, err)
		}
		return path
	}

	return write("customers.csv", f.Customers),
		write("orders.csv", f.Orders),
		write("products.csv", f.Products)
}
