package pipeline

import (
	"context"

	"github.com/velocityiq/backend-go/internal/domain"
	"github.com/velocityiq/backend-go/internal/forecast"
)

// Config holds settings for one pipeline run.
type Config struct {
	// HorizonDays is the number of future days each forecast covers.
	HorizonDays int
	// LookbackDays is the transaction history window fed to the series
	// builder.
	LookbackDays int
}

// DefaultConfig returns the standard two-week horizon over ninety days
// of history.
func DefaultConfig() Config {
	return Config{
		HorizonDays:  14,
		LookbackDays: 90,
	}
}

// RunSummary is the structured result of one pipeline run. It is always
// returned, including on failure.
type RunSummary struct {
	Success            bool   `json:"success"`
	ProductsForecasted int    `json:"products_forecasted"`
	ForecastDays       int    `json:"forecast_days"`
	AlertsGenerated    int    `json:"alerts_generated"`
	SyntheticSeries    int    `json:"synthetic_series"`
	ForecastPeriod     string `json:"forecast_period,omitempty"`
	Error              string `json:"error,omitempty"`
}

// SeriesBuilder produces a demand series for a product. Implementations
// must not fail; degraded series stand in for missing history.
type SeriesBuilder interface {
	Build(ctx context.Context, product domain.Product) domain.DemandSeries
}

// Forecaster is the client side of the forecasting service contract.
type Forecaster interface {
	Ping(ctx context.Context) error
	Forecast(ctx context.Context, series []domain.DemandSeries, horizon int) (map[int64]forecast.Forecast, error)
}

// Assessment is the classifier's view of one product after forecasting.
type Assessment struct {
	Product           domain.Product
	Forecast          forecast.Forecast
	AvgDailyDemand    float64
	DaysUntilStockout float64
	Status            string
}
