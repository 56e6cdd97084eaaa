package models

// UsageSummary aggregates account-wide consumption for the usage, cost and
// billing dashboards. Computed server-side; never derived locally.
type UsageSummary struct {
	TotalRequests int64   `json:"totalRequests"`
	TotalTokens   int64   `json:"totalTokens"`
	TotalCost     float64 `json:"totalCost"`
	PeriodStart   string  `json:"periodStart"`
	PeriodEnd     string  `json:"periodEnd"`
}
