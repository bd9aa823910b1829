package domain

// Stock status categories, ordered from most to least urgent.
const (
	StockStatusReorderNow = "REORDER_NOW"
	StockStatusLowStock   = "LOW_STOCK"
	StockStatusMonitor    = "MONITOR"
	StockStatusOK         = "OK"
)

// Alert types emitted by the pipeline.
const (
	AlertTypeStockLow    = "stock_low"
	AlertTypeDemandSpike = "demand_spike"
)

// Alert severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

var severityRanks = map[string]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
}

// SeverityRank returns the sort rank for a severity, most urgent first.
// Unknown severities rank after all known ones.
func SeverityRank(severity string) int {
	if rank, ok := severityRanks[severity]; ok {
		return rank
	}

	return len(severityRanks)
}

// RunStatus values for ForecastRun.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ClassifyStock maps a product's stock posture to a status category.
// Rules are checked in urgency order and the first match wins, so a
// product at its reorder point is REORDER_NOW even when its projected
// runway would also qualify as LOW_STOCK. Zero demand means unbounded
// runway and classifies as OK.
func ClassifyStock(currentStock, reorderPoint int, avgDailyDemand float64) string {
	if currentStock <= reorderPoint {
		return StockStatusReorderNow
	}

	if avgDailyDemand > 0 {
		runway := float64(currentStock) / avgDailyDemand
		switch {
		case runway <= 7:
			return StockStatusLowStock
		case runway <= 14:
			return StockStatusMonitor
		}
	}

	return StockStatusOK
}
