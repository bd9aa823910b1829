package domain

import "time"

// MinSeriesPoints is the forecasting service's hard minimum input length.
const MinSeriesPoints = 5

// Demand series provenance. Padded and synthetic series carry fabricated
// values and are surfaced in the run summary so consumers can audit them.
const (
	SeriesReal      = "real"
	SeriesPadded    = "padded"
	SeriesSynthetic = "synthetic"
)

// DemandPoint is one day of aggregated outbound demand.
type DemandPoint struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
}

// DemandSeries is the ordered daily demand history for one product,
// rebuilt on every pipeline run. Dates ascend; days without outbound
// activity are absent rather than zero-filled.
type DemandSeries struct {
	ProductID  int64         `json:"product_id"`
	SKU        string        `json:"sku"`
	Points     []DemandPoint `json:"points"`
	Provenance string        `json:"provenance"`
}

// Values returns the demand quantities in date order.
func (s DemandSeries) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Quantity
	}
	return values
}

// Len returns the number of points in the series.
func (s DemandSeries) Len() int { return len(s.Points) }
