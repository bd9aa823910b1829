// backend-go/internal/domain/models.go
package domain

import "time"

// Transaction directions as stored in inventory_transactions.type.
const (
	TransactionInbound  = "inbound"
	TransactionOutbound = "outbound"
)

// Supplier represents a product supplier
type Supplier struct {
	ID               int64     `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	LeadTimeDays     int       `json:"lead_time_days" db:"lead_time_days"`
	ReliabilityScore float64   `json:"reliability_score" db:"reliability_score"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// Product represents a tracked inventory item. CurrentStock is nullable in
// the store; a nil value is treated as zero stock by the pipeline.
type Product struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	SKU          string    `json:"sku" db:"sku"`
	Category     string    `json:"category" db:"category"`
	UnitCost     float64   `json:"unit_cost" db:"unit_cost"`
	CurrentStock *int      `json:"current_stock" db:"current_stock"`
	ReorderPoint int       `json:"reorder_point" db:"reorder_point"`
	SupplierID   *int64    `json:"supplier_id" db:"supplier_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// StockLevel returns the current stock, treating null as zero.
func (p Product) StockLevel() int {
	if p.CurrentStock == nil {
		return 0
	}
	return *p.CurrentStock
}

// ProductWithSupplier is a product row joined with its supplier, when one
// is assigned.
type ProductWithSupplier struct {
	Product
	SupplierName     *string  `json:"supplier_name" db:"supplier_name"`
	LeadTimeDays     *int     `json:"lead_time_days" db:"lead_time_days"`
	ReliabilityScore *float64 `json:"reliability_score" db:"reliability_score"`
}

// Transaction represents a single inventory movement. Append-only.
type Transaction struct {
	ID              int64     `json:"id" db:"id"`
	ProductID       int64     `json:"product_id" db:"product_id"`
	Type            string    `json:"type" db:"type"`
	Quantity        int       `json:"quantity" db:"quantity"`
	ReferenceNumber string    `json:"reference_number" db:"reference_number"`
	Notes           string    `json:"notes" db:"notes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// ForecastRecord is one predicted day of demand for one product. The store
// holds at most one record per (product, date); future-dated records are
// replaced wholesale on every pipeline run.
type ForecastRecord struct {
	ID                      int64     `json:"id" db:"id"`
	ProductID               int64     `json:"product_id" db:"product_id"`
	Date                    time.Time `json:"date" db:"date"`
	PredictedDemand         float64   `json:"predicted_demand" db:"predicted_demand"`
	ConfidenceIntervalLower float64   `json:"confidence_interval_lower" db:"confidence_interval_lower"`
	ConfidenceIntervalUpper float64   `json:"confidence_interval_upper" db:"confidence_interval_upper"`
	CreatedAt               time.Time `json:"created_at" db:"created_at"`
}

// AlertRecord is an operational alert emitted by the pipeline. Resolution
// is owned by an external collaborator via IsResolved.
type AlertRecord struct {
	ID          int64     `json:"id" db:"id"`
	ProductID   int64     `json:"product_id" db:"product_id"`
	Type        string    `json:"type" db:"type"`
	Severity    string    `json:"severity" db:"severity"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	IsResolved  bool      `json:"is_resolved" db:"is_resolved"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ForecastRun records one pipeline execution for auditing.
type ForecastRun struct {
	ID                 int64      `json:"id" db:"id"`
	Status             string     `json:"status" db:"status"`
	ForecastDays       int        `json:"forecast_days" db:"forecast_days"`
	ProductsForecasted int        `json:"products_forecasted" db:"products_forecasted"`
	AlertsGenerated    int        `json:"alerts_generated" db:"alerts_generated"`
	SyntheticSeries    int        `json:"synthetic_series" db:"synthetic_series"`
	Error              *string    `json:"error,omitempty" db:"error"`
	StartedAt          time.Time  `json:"started_at" db:"started_at"`
	FinishedAt         *time.Time `json:"finished_at,omitempty" db:"finished_at"`
}
