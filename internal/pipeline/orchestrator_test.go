package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/velocityiq/backend-go/internal/domain"
	"github.com/velocityiq/backend-go/internal/forecast"
)

type fakeProductRepo struct {
	products []domain.Product
	err      error
}

func (f *fakeProductRepo) ListForecastable(ctx context.Context) ([]domain.Product, error) {
	return f.products, f.err
}

func (f *fakeProductRepo) ListWithSuppliers(ctx context.Context) ([]domain.ProductWithSupplier, error) {
	return nil, nil
}

func (f *fakeProductRepo) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) Stats(ctx context.Context) (domain.ProductStats, error) {
	return domain.ProductStats{}, nil
}

type fakeRunRepo struct {
	nextID    int64
	createErr error
	finishErr error
	created   *domain.ForecastRun
	finished  *domain.ForecastRun
}

func (f *fakeRunRepo) Create(ctx context.Context, run *domain.ForecastRun) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	snapshot := *run
	f.created = &snapshot
	return f.nextID, nil
}

func (f *fakeRunRepo) Finish(ctx context.Context, run *domain.ForecastRun) error {
	snapshot := *run
	f.finished = &snapshot
	return f.finishErr
}

func (f *fakeRunRepo) ListRecent(ctx context.Context, limit int) ([]domain.ForecastRun, error) {
	return nil, nil
}

type fakeBuilder struct {
	synthetic map[int64]bool
}

func (f *fakeBuilder) Build(ctx context.Context, product domain.Product) domain.DemandSeries {
	provenance := domain.SeriesReal
	if f.synthetic[product.ID] {
		provenance = domain.SeriesSynthetic
	}
	return domain.DemandSeries{ProductID: product.ID, SKU: product.SKU, Provenance: provenance}
}

type fakeForecaster struct {
	pingErr     error
	forecastErr error
	forecasts   map[int64]forecast.Forecast
}

func (f *fakeForecaster) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeForecaster) Forecast(ctx context.Context, series []domain.DemandSeries, horizon int) (map[int64]forecast.Forecast, error) {
	if f.forecastErr != nil {
		return nil, f.forecastErr
	}
	return f.forecasts, nil
}

type orchestratorFixture struct {
	products   *fakeProductRepo
	runs       *fakeRunRepo
	builder    *fakeBuilder
	forecaster *fakeForecaster
	forecastDB *fakeForecastRepo
	alertDB    *fakeAlertRepo
	orch       *Orchestrator
}

func newTestOrchestrator(products []domain.Product, forecasts map[int64]forecast.Forecast) *orchestratorFixture {
	started := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	fx := &orchestratorFixture{
		products:   &fakeProductRepo{products: products},
		runs:       &fakeRunRepo{nextID: 42},
		builder:    &fakeBuilder{synthetic: map[int64]bool{}},
		forecaster: &fakeForecaster{forecasts: forecasts},
		forecastDB: &fakeForecastRepo{},
		alertDB:    &fakeAlertRepo{},
	}

	writer := NewWriter(fx.forecastDB)
	writer.now = func() time.Time { return started }
	alerts := NewAlertGenerator(fx.alertDB)
	alerts.now = func() time.Time { return started }

	fx.orch = NewOrchestrator(Deps{
		Products:   fx.products,
		Runs:       fx.runs,
		Builder:    fx.builder,
		Forecaster: fx.forecaster,
		Writer:     writer,
		Alerts:     alerts,
	}, Config{HorizonDays: 7, LookbackDays: 30})
	fx.orch.now = func() time.Time { return started }

	return fx
}

func TestNewOrchestratorAppliesDefaults(t *testing.T) {
	o := NewOrchestrator(Deps{}, Config{})

	require.Equal(t, 14, o.cfg.HorizonDays)
	require.Equal(t, 90, o.cfg.LookbackDays)
}

func TestRunHappyPath(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "Wireless Headphones", SKU: "WH-001", CurrentStock: intPtr(3), ReorderPoint: 10},
		{ID: 2, Name: "USB-C Cable", SKU: "UC-002", CurrentStock: intPtr(1000), ReorderPoint: 0},
	}
	forecasts := map[int64]forecast.Forecast{
		1: flatForecast(5, 7),
		2: flatForecast(5, 7),
	}

	fx := newTestOrchestrator(products, forecasts)
	fx.builder.synthetic[2] = true

	summary := fx.orch.Run(context.Background())

	require.True(t, summary.Success)
	require.Empty(t, summary.Error)
	require.Equal(t, 2, summary.ProductsForecasted)
	require.Equal(t, 7, summary.ForecastDays)
	require.Equal(t, 1, summary.SyntheticSeries)
	require.Equal(t, "2025-06-11 to 2025-06-17", summary.ForecastPeriod)

	// Product 1 sits below its reorder point with under a week of runway,
	// so it raises both a stock alert and a reorder breach.
	require.Equal(t, 2, summary.AlertsGenerated)
	require.Len(t, fx.alertDB.inserted, 1)
	require.Len(t, fx.alertDB.inserted[0], 2)

	require.Len(t, fx.forecastDB.store, 14)

	require.NotNil(t, fx.runs.created)
	require.Equal(t, domain.RunStatusRunning, fx.runs.created.Status)
	require.Equal(t, 7, fx.runs.created.ForecastDays)

	require.NotNil(t, fx.runs.finished)
	require.Equal(t, int64(42), fx.runs.finished.ID)
	require.Equal(t, domain.RunStatusCompleted, fx.runs.finished.Status)
	require.Equal(t, 2, fx.runs.finished.ProductsForecasted)
	require.Equal(t, 2, fx.runs.finished.AlertsGenerated)
	require.Equal(t, 1, fx.runs.finished.SyntheticSeries)
	require.Nil(t, fx.runs.finished.Error)
	require.NotNil(t, fx.runs.finished.FinishedAt)
}

func TestRunProductListFailure(t *testing.T) {
	fx := newTestOrchestrator(nil, nil)
	fx.products.err = errors.New("connection refused")

	summary := fx.orch.Run(context.Background())

	require.False(t, summary.Success)
	require.Equal(t, "Database connection failed", summary.Error)
	require.NotNil(t, fx.runs.finished)
	require.Equal(t, domain.RunStatusFailed, fx.runs.finished.Status)
	require.NotNil(t, fx.runs.finished.Error)
	require.Equal(t, "Database connection failed", *fx.runs.finished.Error)
}

func TestRunPingFailure(t *testing.T) {
	fx := newTestOrchestrator([]domain.Product{{ID: 1, SKU: "WH-001"}}, nil)
	fx.forecaster.pingErr = errors.New("dial tcp: connection refused")

	summary := fx.orch.Run(context.Background())

	require.False(t, summary.Success)
	require.Equal(t, "Forecast service connection failed", summary.Error)
	require.Equal(t, domain.RunStatusFailed, fx.runs.finished.Status)
}

func TestRunEmptyForecastSetFails(t *testing.T) {
	fx := newTestOrchestrator([]domain.Product{{ID: 1, SKU: "WH-001"}}, map[int64]forecast.Forecast{})

	summary := fx.orch.Run(context.Background())

	require.False(t, summary.Success)
	require.Equal(t, "No forecasts generated", summary.Error)
	require.Equal(t, domain.RunStatusFailed, fx.runs.finished.Status)
}

func TestRunWriterFailure(t *testing.T) {
	fx := newTestOrchestrator(
		[]domain.Product{{ID: 1, SKU: "WH-001", CurrentStock: intPtr(100)}},
		map[int64]forecast.Forecast{1: flatForecast(5, 7)},
	)
	fx.forecastDB.replaceErr = errors.New("deadlock detected")

	summary := fx.orch.Run(context.Background())

	require.False(t, summary.Success)
	require.Equal(t, "persist forecast replacement: deadlock detected", summary.Error)
	require.Equal(t, domain.RunStatusFailed, fx.runs.finished.Status)
	require.Empty(t, fx.alertDB.inserted)
}

func TestRunAlertSaveFailureDoesNotFailRun(t *testing.T) {
	fx := newTestOrchestrator(
		[]domain.Product{{ID: 1, SKU: "WH-001", CurrentStock: intPtr(3), ReorderPoint: 10}},
		map[int64]forecast.Forecast{1: flatForecast(5, 7)},
	)
	fx.alertDB.err = errors.New("unique violation")

	summary := fx.orch.Run(context.Background())

	require.True(t, summary.Success)
	require.Equal(t, 2, summary.AlertsGenerated)
	require.Equal(t, domain.RunStatusCompleted, fx.runs.finished.Status)
}

func TestRunProceedsWhenRunTrackingFails(t *testing.T) {
	fx := newTestOrchestrator(
		[]domain.Product{{ID: 1, SKU: "WH-001", CurrentStock: intPtr(100)}},
		map[int64]forecast.Forecast{1: flatForecast(5, 7)},
	)
	fx.runs.createErr = errors.New("relation does not exist")

	summary := fx.orch.Run(context.Background())

	require.True(t, summary.Success)
	require.Equal(t, 1, summary.ProductsForecasted)
	// Without a run row there is nothing to finish.
	require.Nil(t, fx.runs.finished)
}
