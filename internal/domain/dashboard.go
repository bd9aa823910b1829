package domain

import "time"

// ProductStats is the aggregate row behind the overview metrics.
type ProductStats struct {
	TotalProducts       int     `db:"total_products"`
	LowStockProducts    int     `db:"low_stock_products"`
	TotalInventoryValue float64 `db:"total_inventory_value"`
}

// DashboardOverview is the headline metric set for the dashboard landing
// page.
type DashboardOverview struct {
	TotalProducts       int       `json:"total_products"`
	LowStockProducts    int       `json:"low_stock_products"`
	CriticalAlerts      int       `json:"critical_alerts"`
	TotalInventoryValue float64   `json:"total_inventory_value"`
	ForecastRecords     int       `json:"forecast_records"`
	LastUpdated         time.Time `json:"last_updated"`
}

// AlertItem is an unresolved alert joined with product and supplier
// context.
type AlertItem struct {
	ID           int64     `json:"id" db:"id"`
	Type         string    `json:"type" db:"type"`
	Severity     string    `json:"severity" db:"severity"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	ProductName  string    `json:"product_name" db:"product_name"`
	SKU          string    `json:"sku" db:"sku"`
	SupplierName *string   `json:"supplier_name" db:"supplier_name"`
}

// StockStatusItem is one product's current stock posture with its
// near-term demand outlook. DaysUntilStockout is nil when there is no
// measurable demand.
type StockStatusItem struct {
	ID                int64    `json:"id"`
	ProductName       string   `json:"product_name"`
	SKU               string   `json:"sku"`
	Category          string   `json:"category"`
	CurrentStock      int      `json:"current_stock"`
	ReorderPoint      int      `json:"reorder_point"`
	UnitCost          float64  `json:"unit_cost"`
	AvgDailyDemand    float64  `json:"avg_daily_demand"`
	DaysUntilStockout *float64 `json:"days_until_stockout"`
	StockStatus       string   `json:"stock_status"`
	SupplierName      *string  `json:"supplier_name"`
	LeadTimeDays      *int     `json:"lead_time_days"`
	ReliabilityScore  float64  `json:"reliability_score"`
}

// ForecastItem is one forecast-day row joined with product context.
type ForecastItem struct {
	ProductName             string    `json:"product_name" db:"product_name"`
	SKU                     string    `json:"sku" db:"sku"`
	Category                string    `json:"category" db:"category"`
	CurrentStock            *int      `json:"current_stock" db:"current_stock"`
	ForecastDate            string    `json:"forecast_date" db:"forecast_date"`
	PredictedDemand         float64   `json:"predicted_demand" db:"predicted_demand"`
	ConfidenceIntervalLower float64   `json:"confidence_interval_lower" db:"confidence_interval_lower"`
	ConfidenceIntervalUpper float64   `json:"confidence_interval_upper" db:"confidence_interval_upper"`
	ForecastCreated         time.Time `json:"forecast_created" db:"forecast_created"`
}

// TrendItem compares a forecast day against the same product roughly one
// week earlier. The baseline fields are nil for the first point of each
// product's window.
type TrendItem struct {
	ProductName        string   `json:"product_name"`
	SKU                string   `json:"sku"`
	Category           string   `json:"category"`
	Date               string   `json:"date"`
	PredictedDemand    float64  `json:"predicted_demand"`
	DemandSevenDaysAgo *float64 `json:"demand_7_days_ago"`
	ChangePercentage   *float64 `json:"change_percentage"`
}

// TrendRow is the raw forecast row feeding trend computation.
type TrendRow struct {
	ProductID       int64   `db:"product_id"`
	ProductName     string  `db:"product_name"`
	SKU             string  `db:"sku"`
	Category        string  `db:"category"`
	Date            string  `db:"date"`
	PredictedDemand float64 `db:"predicted_demand"`
}

// ChartHistoryPoint is one day of observed outbound demand.
type ChartHistoryPoint struct {
	Date         string  `json:"date" db:"date"`
	ActualDemand float64 `json:"actual_demand" db:"actual_demand"`
}

// ChartForecastPoint is one forecast day for the chart view.
type ChartForecastPoint struct {
	Date                    string  `json:"date" db:"date"`
	PredictedDemand         float64 `json:"predicted_demand" db:"predicted_demand"`
	ConfidenceIntervalLower float64 `json:"confidence_interval_lower" db:"confidence_interval_lower"`
	ConfidenceIntervalUpper float64 `json:"confidence_interval_upper" db:"confidence_interval_upper"`
}

// ChartData is the combined history and forecast payload for one SKU.
type ChartData struct {
	ProductSKU string               `json:"product_sku"`
	Historical []ChartHistoryPoint  `json:"historical"`
	Forecasts  []ChartForecastPoint `json:"forecasts"`
}

// ForecastReportRow is one line of the exported forecast report: a future
// forecast day joined with its product and supplier reference data.
type ForecastReportRow struct {
	ProductName             string    `db:"product_name"`
	SKU                     string    `db:"sku"`
	Category                string    `db:"category"`
	CurrentStock            *int      `db:"current_stock"`
	ReorderPoint            int       `db:"reorder_point"`
	UnitCost                float64   `db:"unit_cost"`
	SupplierName            *string   `db:"supplier_name"`
	LeadTimeDays            *int      `db:"lead_time_days"`
	ReliabilityScore        *float64  `db:"reliability_score"`
	ForecastDate            string    `db:"forecast_date"`
	PredictedDemand         float64   `db:"predicted_demand"`
	ConfidenceIntervalLower float64   `db:"confidence_interval_lower"`
	ConfidenceIntervalUpper float64   `db:"confidence_interval_upper"`
	ForecastCreated         time.Time `db:"forecast_created"`
}
