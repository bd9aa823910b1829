package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/velocityiq/backend-go/internal/domain"
)

type fakeProductRepo struct {
	stats              domain.ProductStats
	statsErr           error
	withSuppliers      []domain.ProductWithSupplier
	withSuppliersCalls int
	bySKU              map[string]*domain.Product
}

func (f *fakeProductRepo) ListForecastable(ctx context.Context) ([]domain.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) ListWithSuppliers(ctx context.Context) ([]domain.ProductWithSupplier, error) {
	f.withSuppliersCalls++
	return f.withSuppliers, nil
}

func (f *fakeProductRepo) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return f.bySKU[sku], nil
}

func (f *fakeProductRepo) Stats(ctx context.Context) (domain.ProductStats, error) {
	return f.stats, f.statsErr
}

type fakeTransactionRepo struct {
	daily      []domain.ChartHistoryPoint
	dailySince time.Time
}

func (f *fakeTransactionRepo) ListByProduct(ctx context.Context, productID int64, since time.Time) ([]domain.Transaction, error) {
	return nil, nil
}

func (f *fakeTransactionRepo) DailyOutboundDemand(ctx context.Context, productID int64, since time.Time) ([]domain.ChartHistoryPoint, error) {
	f.dailySince = since
	return f.daily, nil
}

type fakeForecastRepo struct {
	countFrom    int
	gotCountFrom time.Time
	items        []domain.ForecastItem
	gotItemsFrom time.Time
	gotItemsTo   time.Time
	trendRows    []domain.TrendRow
	avgDemand    map[int64]float64
	gotAvgSince  time.Time
	chartPoints  []domain.ChartForecastPoint
	gotChartTo   time.Time
}

func (f *fakeForecastRepo) ReplaceForecasts(ctx context.Context, runDate time.Time, records []domain.ForecastRecord) error {
	return nil
}

func (f *fakeForecastRepo) CountFrom(ctx context.Context, from time.Time) (int, error) {
	f.gotCountFrom = from
	return f.countFrom, nil
}

func (f *fakeForecastRepo) ListItems(ctx context.Context, from, to time.Time) ([]domain.ForecastItem, error) {
	f.gotItemsFrom, f.gotItemsTo = from, to
	return f.items, nil
}

func (f *fakeForecastRepo) ListTrendRows(ctx context.Context, since time.Time) ([]domain.TrendRow, error) {
	return f.trendRows, nil
}

func (f *fakeForecastRepo) AvgDailyDemandSince(ctx context.Context, since time.Time) (map[int64]float64, error) {
	f.gotAvgSince = since
	return f.avgDemand, nil
}

func (f *fakeForecastRepo) ListChartForecasts(ctx context.Context, productID int64, from, to time.Time) ([]domain.ChartForecastPoint, error) {
	f.gotChartTo = to
	return f.chartPoints, nil
}

func (f *fakeForecastRepo) ListReportRows(ctx context.Context, from time.Time) ([]domain.ForecastReportRow, error) {
	return nil, nil
}

type fakeAlertRepo struct {
	severe     int
	unresolved []domain.AlertItem
}

func (f *fakeAlertRepo) InsertAlerts(ctx context.Context, alerts []domain.AlertRecord) error {
	return nil
}

func (f *fakeAlertRepo) ListUnresolved(ctx context.Context, limit int) ([]domain.AlertItem, error) {
	return f.unresolved, nil
}

func (f *fakeAlertRepo) CountUnresolvedSevere(ctx context.Context) (int, error) {
	return f.severe, nil
}

type fakeRunRepo struct {
	runs     []domain.ForecastRun
	gotLimit int
}

func (f *fakeRunRepo) Create(ctx context.Context, run *domain.ForecastRun) (int64, error) {
	return 0, nil
}

func (f *fakeRunRepo) Finish(ctx context.Context, run *domain.ForecastRun) error {
	return nil
}

func (f *fakeRunRepo) ListRecent(ctx context.Context, limit int) ([]domain.ForecastRun, error) {
	f.gotLimit = limit
	return f.runs, nil
}

type fakeCache struct {
	overview     *domain.DashboardOverview
	stock        []domain.StockStatusItem
	overviewSets int
	stockSets    int
	getErr       error
}

func (c *fakeCache) GetOverview(ctx context.Context) (*domain.DashboardOverview, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.overview, c.overview != nil, nil
}

func (c *fakeCache) SetOverview(ctx context.Context, overview *domain.DashboardOverview) error {
	c.overview = overview
	c.overviewSets++
	return nil
}

func (c *fakeCache) GetStockStatus(ctx context.Context) ([]domain.StockStatusItem, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.stock, c.stock != nil, nil
}

func (c *fakeCache) SetStockStatus(ctx context.Context, items []domain.StockStatusItem) error {
	c.stock = items
	c.stockSets++
	return nil
}

func (c *fakeCache) InvalidateAll(ctx context.Context) error {
	c.overview = nil
	c.stock = nil
	return nil
}

type serviceFixture struct {
	products  *fakeProductRepo
	txns      *fakeTransactionRepo
	forecasts *fakeForecastRepo
	alerts    *fakeAlertRepo
	runs      *fakeRunRepo
	cache     *fakeCache
	svc       *DashboardService
}

func newTestService() *serviceFixture {
	fx := &serviceFixture{
		products:  &fakeProductRepo{},
		txns:      &fakeTransactionRepo{},
		forecasts: &fakeForecastRepo{},
		alerts:    &fakeAlertRepo{},
		runs:      &fakeRunRepo{},
		cache:     &fakeCache{},
	}

	fx.svc = NewDashboardService(Deps{
		Products:     fx.products,
		Transactions: fx.txns,
		Forecasts:    fx.forecasts,
		Alerts:       fx.alerts,
		Runs:         fx.runs,
	}, fx.cache)
	fx.svc.now = func() time.Time { return time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC) }

	return fx
}

func TestOverviewComposesMetrics(t *testing.T) {
	fx := newTestService()
	fx.products.stats = domain.ProductStats{
		TotalProducts:       25,
		LowStockProducts:    4,
		TotalInventoryValue: 15234.5678,
	}
	fx.alerts.severe = 3
	fx.forecasts.countFrom = 350

	overview, err := fx.svc.Overview(context.Background())
	require.NoError(t, err)

	require.Equal(t, 25, overview.TotalProducts)
	require.Equal(t, 4, overview.LowStockProducts)
	require.Equal(t, 3, overview.CriticalAlerts)
	// The inventory value passes through unrounded.
	require.Equal(t, 15234.5678, overview.TotalInventoryValue)
	require.Equal(t, 350, overview.ForecastRecords)
	require.Equal(t, time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC), overview.LastUpdated)

	require.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), fx.forecasts.gotCountFrom)
	require.Equal(t, 1, fx.cache.overviewSets)
}

func TestOverviewServedFromCache(t *testing.T) {
	fx := newTestService()
	fx.cache.overview = &domain.DashboardOverview{TotalProducts: 99}
	fx.products.statsErr = errors.New("store unreachable")

	overview, err := fx.svc.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, 99, overview.TotalProducts)
}

func TestOverviewCacheFailureFallsThroughToStore(t *testing.T) {
	fx := newTestService()
	fx.cache.getErr = errors.New("redis: connection refused")
	fx.products.stats = domain.ProductStats{TotalProducts: 12}

	overview, err := fx.svc.Overview(context.Background())
	require.NoError(t, err)
	require.Equal(t, 12, overview.TotalProducts)
}

func TestAlertsSortBySeverityKeepingRecencyWithinRank(t *testing.T) {
	fx := newTestService()
	// Repository order is newest first.
	fx.alerts.unresolved = []domain.AlertItem{
		{ID: 1, Severity: domain.SeverityMedium},
		{ID: 2, Severity: domain.SeverityCritical},
		{ID: 3, Severity: domain.SeverityHigh},
		{ID: 4, Severity: domain.SeverityMedium},
	}

	alerts, err := fx.svc.Alerts(context.Background(), 20)
	require.NoError(t, err)

	ids := make([]int64, len(alerts))
	for i, a := range alerts {
		ids[i] = a.ID
	}
	require.Equal(t, []int64{2, 3, 1, 4}, ids)
}

func TestStockStatusClassifiesOnRawDemand(t *testing.T) {
	fx := newTestService()
	supplier := "Acme Supply Co"
	leadTime := 7
	reliability := 0.92
	fx.products.withSuppliers = []domain.ProductWithSupplier{
		{
			Product:          domain.Product{ID: 1, Name: "Wireless Headphones", SKU: "WH-001", Category: "electronics", UnitCost: 45.5, CurrentStock: intPtr(74), ReorderPoint: 10},
			SupplierName:     &supplier,
			LeadTimeDays:     &leadTime,
			ReliabilityScore: &reliability,
		},
		{
			Product: domain.Product{ID: 2, Name: "Phone Case", SKU: "PC-002", CurrentStock: intPtr(50), ReorderPoint: 10},
		},
	}
	fx.forecasts.avgDemand = map[int64]float64{1: 10.572}

	items, err := fx.svc.StockStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	// 74 units at 10.572/day is 6.9996 days of runway. Classification uses
	// the raw average; only the displayed fields are rounded.
	headphones := items[0]
	require.Equal(t, domain.StockStatusLowStock, headphones.StockStatus)
	require.Equal(t, 10.57, headphones.AvgDailyDemand)
	require.NotNil(t, headphones.DaysUntilStockout)
	require.Equal(t, 7.0, *headphones.DaysUntilStockout)
	require.Equal(t, &supplier, headphones.SupplierName)
	require.Equal(t, 0.92, headphones.ReliabilityScore)

	// No forecast rows means zero demand: no stockout estimate, OK status.
	phoneCase := items[1]
	require.Equal(t, domain.StockStatusOK, phoneCase.StockStatus)
	require.Zero(t, phoneCase.AvgDailyDemand)
	require.Nil(t, phoneCase.DaysUntilStockout)
	require.Nil(t, phoneCase.SupplierName)
	require.Zero(t, phoneCase.ReliabilityScore)

	require.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), fx.forecasts.gotAvgSince)
}

func TestStockStatusServedFromCacheOnSecondCall(t *testing.T) {
	fx := newTestService()
	fx.products.withSuppliers = []domain.ProductWithSupplier{
		{Product: domain.Product{ID: 1, Name: "Wireless Headphones", SKU: "WH-001", CurrentStock: intPtr(100)}},
	}

	_, err := fx.svc.StockStatus(context.Background())
	require.NoError(t, err)
	_, err = fx.svc.StockStatus(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, fx.products.withSuppliersCalls)
	require.Equal(t, 1, fx.cache.stockSets)
}

func TestForecastsDefaultsToTwoWeekWindow(t *testing.T) {
	fx := newTestService()
	fx.forecasts.items = []domain.ForecastItem{{SKU: "WH-001"}}

	items, err := fx.svc.Forecasts(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), fx.forecasts.gotItemsFrom)
	require.Equal(t, time.Date(2025, 6, 24, 0, 0, 0, 0, time.UTC), fx.forecasts.gotItemsTo)
}

func TestForecastsHonorsRequestedWindow(t *testing.T) {
	fx := newTestService()

	_, err := fx.svc.Forecasts(context.Background(), 7)
	require.NoError(t, err)

	require.Equal(t, time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC), fx.forecasts.gotItemsTo)
}

func trendRow(productID int64, sku, date string, demand float64) domain.TrendRow {
	return domain.TrendRow{
		ProductID:       productID,
		ProductName:     "Product " + sku,
		SKU:             sku,
		Category:        "electronics",
		Date:            date,
		PredictedDemand: demand,
	}
}

func TestDemandTrendsBaselinesAgainstWeekEarlier(t *testing.T) {
	fx := newTestService()
	fx.forecasts.trendRows = []domain.TrendRow{
		trendRow(1, "WH-001", "2025-06-01", 10),
		trendRow(1, "WH-001", "2025-06-02", 20),
		trendRow(1, "WH-001", "2025-06-03", 30),
		trendRow(1, "WH-001", "2025-06-04", 30),
		trendRow(1, "WH-001", "2025-06-05", 30),
		trendRow(1, "WH-001", "2025-06-06", 30),
		trendRow(1, "WH-001", "2025-06-07", 30),
		trendRow(1, "WH-001", "2025-06-08", 15),
		trendRow(1, "WH-001", "2025-06-09", 25),
		trendRow(2, "PC-002", "2025-06-01", 3),
		trendRow(2, "PC-002", "2025-06-02", 7),
		trendRow(3, "UC-003", "2025-06-01", 0),
		trendRow(3, "UC-003", "2025-06-02", 5),
	}

	trends, err := fx.svc.DemandTrends(context.Background())
	require.NoError(t, err)
	require.Len(t, trends, 13)

	// Products keep their first-seen order.
	require.Equal(t, "WH-001", trends[0].SKU)
	require.Equal(t, "PC-002", trends[9].SKU)
	require.Equal(t, "UC-003", trends[11].SKU)

	// The first point of each product has no baseline.
	require.Nil(t, trends[0].DemandSevenDaysAgo)
	require.Nil(t, trends[0].ChangePercentage)

	// Points within the first week baseline against the window start.
	require.Equal(t, 10.0, *trends[1].DemandSevenDaysAgo)
	require.Equal(t, 100.0, *trends[1].ChangePercentage)
	require.Equal(t, 10.0, *trends[7].DemandSevenDaysAgo)
	require.Equal(t, 50.0, *trends[7].ChangePercentage)

	// Past one week the baseline slides forward.
	require.Equal(t, 20.0, *trends[8].DemandSevenDaysAgo)
	require.Equal(t, 25.0, *trends[8].ChangePercentage)

	// Change percentages round to one decimal.
	require.Equal(t, 133.3, *trends[10].ChangePercentage)

	// A zero baseline reports zero change rather than dividing by it.
	require.Equal(t, 0.0, *trends[12].DemandSevenDaysAgo)
	require.Equal(t, 0.0, *trends[12].ChangePercentage)
}

func TestChartDataUnknownSKU(t *testing.T) {
	fx := newTestService()

	chart, err := fx.svc.ChartData(context.Background(), "NOPE-404")
	require.NoError(t, err)
	require.Nil(t, chart)
}

func TestChartDataCombinesHistoryAndForecast(t *testing.T) {
	fx := newTestService()
	fx.products.bySKU = map[string]*domain.Product{
		"WH-001": {ID: 7, SKU: "WH-001", Name: "Wireless Headphones"},
	}
	fx.txns.daily = []domain.ChartHistoryPoint{{Date: "2025-06-09", ActualDemand: 12}}

	chart, err := fx.svc.ChartData(context.Background(), "WH-001")
	require.NoError(t, err)
	require.NotNil(t, chart)

	require.Equal(t, "WH-001", chart.ProductSKU)
	require.Len(t, chart.Historical, 1)
	// Missing forecasts serialize as an empty list, not null.
	require.NotNil(t, chart.Forecasts)
	require.Empty(t, chart.Forecasts)

	require.Equal(t, time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC), fx.txns.dailySince)
	require.Equal(t, time.Date(2025, 6, 24, 0, 0, 0, 0, time.UTC), fx.forecasts.gotChartTo)
}

func TestRunsDelegatesToRepository(t *testing.T) {
	fx := newTestService()
	fx.runs.runs = []domain.ForecastRun{{ID: 2}, {ID: 1}}

	runs, err := fx.svc.Runs(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, 5, fx.runs.gotLimit)
}

func intPtr(v int) *int { return &v }
