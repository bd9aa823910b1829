// backend-go/internal/repository/forecast_repository.go
package repository

import (
	"context"
	"time"

	"github.com/velocityiq/backend-go/internal/domain"
)

type ForecastRepository interface {
	// ReplaceForecasts atomically deletes every stored forecast dated
	// strictly after runDate and writes the given records in their place.
	ReplaceForecasts(ctx context.Context, runDate time.Time, records []domain.ForecastRecord) error
	CountFrom(ctx context.Context, from time.Time) (int, error)
	ListItems(ctx context.Context, from, to time.Time) ([]domain.ForecastItem, error)
	ListTrendRows(ctx context.Context, since time.Time) ([]domain.TrendRow, error)
	// AvgDailyDemandSince returns the mean predicted demand per product
	// over forecasts dated at or after since. Products without forecasts
	// are absent from the map.
	AvgDailyDemandSince(ctx context.Context, since time.Time) (map[int64]float64, error)
	ListChartForecasts(ctx context.Context, productID int64, from, to time.Time) ([]domain.ChartForecastPoint, error)
	// ListReportRows returns forecasts dated at or after from, joined
	// with product and supplier data, for report export.
	ListReportRows(ctx context.Context, from time.Time) ([]domain.ForecastReportRow, error)
}
