package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/velocityiq/backend-go/internal/cache"
	"github.com/velocityiq/backend-go/internal/domain"
	"github.com/velocityiq/backend-go/internal/repository"
)

const (
	defaultForecastWindowDays = 14
	demandLookbackDays        = 7
	trendWindowDays           = 14
	chartHistoryDays          = 30
	chartForecastDays         = 14
)

// Deps bundles the repositories the dashboard reads from.
type Deps struct {
	Products     repository.ProductRepository
	Transactions repository.TransactionRepository
	Forecasts    repository.ForecastRepository
	Alerts       repository.AlertRepository
	Runs         repository.RunRepository
}

// DashboardService assembles the read models behind the dashboard API.
// The overview and stock status views aggregate across every product, so
// both sit behind the cache; the rest hit the store directly.
type DashboardService struct {
	deps  Deps
	cache cache.DashboardCache
	now   func() time.Time
}

func NewDashboardService(deps Deps, cacheImpl cache.DashboardCache) *DashboardService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &DashboardService{deps: deps, cache: cacheImpl, now: time.Now}
}

func (s *DashboardService) Overview(ctx context.Context) (*domain.DashboardOverview, error) {
	if overview, ok, err := s.cache.GetOverview(ctx); err == nil && ok {
		return overview, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("dashboard: cache get overview failed")
	}

	stats, err := s.deps.Products.Stats(ctx)
	if err != nil {
		return nil, err
	}

	criticalAlerts, err := s.deps.Alerts.CountUnresolvedSevere(ctx)
	if err != nil {
		return nil, err
	}

	forecastRecords, err := s.deps.Forecasts.CountFrom(ctx, dateOnly(s.now()))
	if err != nil {
		return nil, err
	}

	overview := &domain.DashboardOverview{
		TotalProducts:       stats.TotalProducts,
		LowStockProducts:    stats.LowStockProducts,
		CriticalAlerts:      criticalAlerts,
		TotalInventoryValue: stats.TotalInventoryValue,
		ForecastRecords:     forecastRecords,
		LastUpdated:         s.now(),
	}

	if err := s.cache.SetOverview(ctx, overview); err != nil {
		log.Warn().Err(err).Msg("dashboard: cache set overview failed")
	}

	return overview, nil
}

// Alerts returns unresolved alerts, most urgent severity first and newest
// first within a severity.
func (s *DashboardService) Alerts(ctx context.Context, limit int) ([]domain.AlertItem, error) {
	alerts, err := s.deps.Alerts.ListUnresolved(ctx, limit)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return domain.SeverityRank(alerts[i].Severity) < domain.SeverityRank(alerts[j].Severity)
	})

	return alerts, nil
}

// StockStatus classifies every product against its recent forecast demand.
// Demand is the mean predicted demand over the trailing week; products
// without forecasts count as zero demand.
func (s *DashboardService) StockStatus(ctx context.Context) ([]domain.StockStatusItem, error) {
	if items, ok, err := s.cache.GetStockStatus(ctx); err == nil && ok {
		return items, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("dashboard: cache get stock status failed")
	}

	products, err := s.deps.Products.ListWithSuppliers(ctx)
	if err != nil {
		return nil, err
	}

	since := dateOnly(s.now()).AddDate(0, 0, -demandLookbackDays)
	demand, err := s.deps.Forecasts.AvgDailyDemandSince(ctx, since)
	if err != nil {
		return nil, err
	}

	items := make([]domain.StockStatusItem, 0, len(products))
	for _, p := range products {
		avg := demand[p.ID]
		stock := p.StockLevel()

		var daysUntilStockout *float64
		if avg > 0 {
			days := round1(float64(stock) / avg)
			daysUntilStockout = &days
		}

		reliability := 0.0
		if p.ReliabilityScore != nil {
			reliability = *p.ReliabilityScore
		}

		items = append(items, domain.StockStatusItem{
			ID:                p.ID,
			ProductName:       p.Name,
			SKU:               p.SKU,
			Category:          p.Category,
			CurrentStock:      stock,
			ReorderPoint:      p.ReorderPoint,
			UnitCost:          p.UnitCost,
			AvgDailyDemand:    round2(avg),
			DaysUntilStockout: daysUntilStockout,
			StockStatus:       domain.ClassifyStock(stock, p.ReorderPoint, avg),
			SupplierName:      p.SupplierName,
			LeadTimeDays:      p.LeadTimeDays,
			ReliabilityScore:  reliability,
		})
	}

	if err := s.cache.SetStockStatus(ctx, items); err != nil {
		log.Warn().Err(err).Msg("dashboard: cache set stock status failed")
	}

	return items, nil
}

// Forecasts returns forecast rows from today through today+days inclusive.
func (s *DashboardService) Forecasts(ctx context.Context, days int) ([]domain.ForecastItem, error) {
	if days <= 0 {
		days = defaultForecastWindowDays
	}

	from := dateOnly(s.now())
	to := from.AddDate(0, 0, days)

	return s.deps.Forecasts.ListItems(ctx, from, to)
}

// DemandTrends compares each forecast day in the trailing window against
// the same product's value roughly one week earlier. The first point of a
// product's window has no baseline; points within the first week fall back
// to the window start.
func (s *DashboardService) DemandTrends(ctx context.Context) ([]domain.TrendItem, error) {
	since := dateOnly(s.now()).AddDate(0, 0, -trendWindowDays)
	rows, err := s.deps.Forecasts.ListTrendRows(ctx, since)
	if err != nil {
		return nil, err
	}

	var order []int64
	grouped := make(map[int64][]domain.TrendRow)
	for _, row := range rows {
		if _, seen := grouped[row.ProductID]; !seen {
			order = append(order, row.ProductID)
		}
		grouped[row.ProductID] = append(grouped[row.ProductID], row)
	}

	trends := make([]domain.TrendItem, 0, len(rows))
	for _, productID := range order {
		series := grouped[productID]
		for i, row := range series {
			var baseline, change *float64
			if i > 0 {
				lag := i - demandLookbackDays
				if lag < 0 {
					lag = 0
				}
				prev := series[lag].PredictedDemand
				baseline = &prev

				pct := 0.0
				if prev > 0 {
					pct = round1((row.PredictedDemand - prev) / prev * 100)
				}
				change = &pct
			}

			trends = append(trends, domain.TrendItem{
				ProductName:        row.ProductName,
				SKU:                row.SKU,
				Category:           row.Category,
				Date:               row.Date,
				PredictedDemand:    row.PredictedDemand,
				DemandSevenDaysAgo: baseline,
				ChangePercentage:   change,
			})
		}
	}

	return trends, nil
}

// ChartData returns observed demand history and the forward forecast for
// one SKU. It returns (nil, nil) when the SKU is unknown.
func (s *DashboardService) ChartData(ctx context.Context, sku string) (*domain.ChartData, error) {
	product, err := s.deps.Products.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}

	today := dateOnly(s.now())

	historical, err := s.deps.Transactions.DailyOutboundDemand(ctx, product.ID, today.AddDate(0, 0, -chartHistoryDays))
	if err != nil {
		return nil, err
	}
	if historical == nil {
		historical = make([]domain.ChartHistoryPoint, 0)
	}

	forecasts, err := s.deps.Forecasts.ListChartForecasts(ctx, product.ID, today, today.AddDate(0, 0, chartForecastDays))
	if err != nil {
		return nil, err
	}
	if forecasts == nil {
		forecasts = make([]domain.ChartForecastPoint, 0)
	}

	return &domain.ChartData{
		ProductSKU: product.SKU,
		Historical: historical,
		Forecasts:  forecasts,
	}, nil
}

// Runs returns recent pipeline executions, newest first.
func (s *DashboardService) Runs(ctx context.Context, limit int) ([]domain.ForecastRun, error) {
	return s.deps.Runs.ListRecent(ctx, limit)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
