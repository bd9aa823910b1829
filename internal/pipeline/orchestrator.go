package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/velocityiq/backend-go/internal/domain"
	"github.com/velocityiq/backend-go/internal/forecast"
	"github.com/velocityiq/backend-go/internal/repository"
)

// Failure messages surfaced in run summaries.
const (
	errDatabaseConnection = "Database connection failed"
	errServiceConnection  = "Forecast service connection failed"
	errNoForecasts        = "No forecasts generated"
)

// Deps are the collaborators one pipeline run needs. Everything is
// scoped to the run; the orchestrator holds no process-wide state.
type Deps struct {
	Products   repository.ProductRepository
	Runs       repository.RunRepository
	Builder    SeriesBuilder
	Forecaster Forecaster
	Writer     *Writer
	Alerts     *AlertGenerator
}

// Orchestrator sequences one forecasting run: load products, build
// series, request forecasts, persist them, then classify and alert.
// Run always returns a summary; failures land in its Error field
// instead of escaping.
type Orchestrator struct {
	deps Deps
	cfg  Config
	now  func() time.Time
}

func NewOrchestrator(deps Deps, cfg Config) *Orchestrator {
	defaults := DefaultConfig()
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = defaults.HorizonDays
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = defaults.LookbackDays
	}

	return &Orchestrator{
		deps: deps,
		cfg:  cfg,
		now:  time.Now,
	}
}

func (o *Orchestrator) Run(ctx context.Context) *RunSummary {
	started := o.now()
	summary := &RunSummary{ForecastDays: o.cfg.HorizonDays}

	log.Info().Int("horizon_days", o.cfg.HorizonDays).Msg("starting forecasting pipeline")

	// Run tracking is best-effort; a failure here never blocks the run.
	run := &domain.ForecastRun{
		Status:       domain.RunStatusRunning,
		ForecastDays: o.cfg.HorizonDays,
		StartedAt:    started,
	}
	if id, err := o.deps.Runs.Create(ctx, run); err != nil {
		log.Warn().Err(err).Msg("failed to record forecast run start")
	} else {
		run.ID = id
	}

	products, err := o.deps.Products.ListForecastable(ctx)
	if err != nil {
		return o.fail(ctx, run, summary, errDatabaseConnection, err)
	}

	if err := o.deps.Forecaster.Ping(ctx); err != nil {
		return o.fail(ctx, run, summary, errServiceConnection, err)
	}

	series := make([]domain.DemandSeries, 0, len(products))
	productByID := make(map[int64]domain.Product, len(products))
	for _, product := range products {
		s := o.deps.Builder.Build(ctx, product)
		if s.Provenance == domain.SeriesSynthetic {
			summary.SyntheticSeries++
		}
		series = append(series, s)
		productByID[product.ID] = product
	}

	forecasts, err := o.deps.Forecaster.Forecast(ctx, series, o.cfg.HorizonDays)
	if err != nil {
		return o.fail(ctx, run, summary, err.Error(), err)
	}
	if len(forecasts) == 0 {
		return o.fail(ctx, run, summary, errNoForecasts, nil)
	}

	written, err := o.deps.Writer.Write(ctx, forecasts, o.cfg.HorizonDays)
	if err != nil {
		return o.fail(ctx, run, summary, err.Error(), err)
	}
	log.Info().Int("records", written).Int("products", len(forecasts)).Msg("forecasts stored")

	alerts := o.deps.Alerts.Generate(o.assess(productByID, forecasts))
	if err := o.deps.Alerts.Save(ctx, alerts); err != nil {
		// Partial alert loss does not fail the run.
		log.Warn().Err(err).Msg("some alert batches were not saved")
	}

	runDate := dateOnly(started)
	summary.Success = true
	summary.ProductsForecasted = len(forecasts)
	summary.AlertsGenerated = len(alerts)
	summary.ForecastPeriod = fmt.Sprintf("%s to %s",
		runDate.AddDate(0, 0, 1).Format("2006-01-02"),
		runDate.AddDate(0, 0, o.cfg.HorizonDays).Format("2006-01-02"))

	o.finishRun(ctx, run, summary, domain.RunStatusCompleted, nil)

	log.Info().
		Int("products_forecasted", summary.ProductsForecasted).
		Int("alerts_generated", summary.AlertsGenerated).
		Int("synthetic_series", summary.SyntheticSeries).
		Str("forecast_period", summary.ForecastPeriod).
		Msg("forecasting pipeline completed")

	return summary
}

// assess classifies every forecast product in a stable order.
func (o *Orchestrator) assess(products map[int64]domain.Product, forecasts map[int64]forecast.Forecast) []Assessment {
	ids := make([]int64, 0, len(forecasts))
	for id := range forecasts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	assessments := make([]Assessment, 0, len(ids))
	for _, id := range ids {
		product, ok := products[id]
		if !ok {
			continue
		}
		assessments = append(assessments, Assess(product, forecasts[id]))
	}

	return assessments
}

func (o *Orchestrator) fail(ctx context.Context, run *domain.ForecastRun, summary *RunSummary, msg string, err error) *RunSummary {
	if err != nil {
		log.Error().Err(err).Msg(msg)
	} else {
		log.Error().Msg(msg)
	}

	summary.Error = msg
	o.finishRun(ctx, run, summary, domain.RunStatusFailed, &msg)

	return summary
}

func (o *Orchestrator) finishRun(ctx context.Context, run *domain.ForecastRun, summary *RunSummary, status string, errMsg *string) {
	if run.ID == 0 {
		return
	}

	finished := o.now()
	run.Status = status
	run.ProductsForecasted = summary.ProductsForecasted
	run.AlertsGenerated = summary.AlertsGenerated
	run.SyntheticSeries = summary.SyntheticSeries
	run.Error = errMsg
	run.FinishedAt = &finished

	if err := o.deps.Runs.Finish(ctx, run); err != nil {
		log.Warn().Err(err).Msg("failed to record forecast run result")
	}
}
