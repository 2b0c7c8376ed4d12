package domain

// Stats holds the headline metrics of a run. Money values are pre-formatted.
type Stats struct {
	TotalRevenue      string   `json:"total_revenue"`
	RecordCount       int      `json:"record_count"`
	AverageOrderValue string   `json:"average_order_value"`
	TopCustomer       string   `json:"top_customer"`
	Health            []string `json:"health"`
}

// RunResult is everything a caller receives from one pipeline run
type RunResult struct {
	RunID       string              `json:"run_id"`
	Stats       Stats               `json:"stats"`
	Visuals     VisualizationBundle `json:"visuals"`
	ArchiveName string              `json:"archive_name"`
}
