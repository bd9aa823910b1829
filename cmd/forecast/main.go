package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"github.com/velocityiq/backend-go/internal/cache"
	"github.com/velocityiq/backend-go/internal/config"
	"github.com/velocityiq/backend-go/internal/forecast"
	"github.com/velocityiq/backend-go/internal/pipeline"
	"github.com/velocityiq/backend-go/internal/report"
	"github.com/velocityiq/backend-go/internal/repository/postgres"
	"github.com/velocityiq/backend-go/internal/storage"
	"github.com/velocityiq/backend-go/internal/timeseries"
	"github.com/velocityiq/backend-go/pkg/logger"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	app := &cli.App{
		Name:  "forecast",
		Usage: "Demand forecasting pipeline",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Generate forecasts and alerts for every product",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "forecast-url",
						Usage:   "Forecasting service base URL",
						Value:   "http://localhost:8000",
						EnvVars: []string{"FORECAST_SERVICE_URL"},
					},
					&cli.IntFlag{
						Name:    "horizon",
						Usage:   "Forecast horizon in days",
						Value:   14,
						EnvVars: []string{"FORECAST_HORIZON_DAYS"},
					},
					&cli.IntFlag{
						Name:    "lookback",
						Usage:   "Transaction history window in days",
						Value:   90,
						EnvVars: []string{"FORECAST_HISTORY_DAYS"},
					},
					&cli.IntFlag{
						Name:    "timeout",
						Usage:   "Forecasting service timeout in seconds",
						Value:   300,
						EnvVars: []string{"FORECAST_TIMEOUT_SECONDS"},
					},
				},
				Action: runPipeline,
			},
			{
				Name:  "report",
				Usage: "Export stored forecasts to a CSV report",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:    "dir",
						Usage:   "Directory to write the report into",
						Value:   "./data/reports",
						EnvVars: []string{"REPORT_DIR"},
					},
				},
				Action: exportReport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("command failed")
	}
}

func runPipeline(c *cli.Context) error {
	db, err := postgres.NewDBFromURL(c.String("db-url"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to connect to database: %v", err), 1)
	}
	defer db.Close()

	forecastCfg := config.ForecastConfig{
		ServiceURL:     c.String("forecast-url"),
		HorizonDays:    c.Int("horizon"),
		HistoryDays:    c.Int("lookback"),
		TimeoutSeconds: c.Int("timeout"),
	}

	transactions := postgres.NewTransactionRepository(db)
	forecasts := postgres.NewForecastRepository(db)

	orchestrator := pipeline.NewOrchestrator(pipeline.Deps{
		Products:   postgres.NewProductRepository(db),
		Runs:       postgres.NewRunRepository(db),
		Builder:    timeseries.NewBuilder(transactions, forecastCfg.HistoryDays),
		Forecaster: forecast.NewClient(forecastCfg),
		Writer:     pipeline.NewWriter(forecasts),
		Alerts:     pipeline.NewAlertGenerator(postgres.NewAlertRepository(db)),
	}, pipeline.Config{
		HorizonDays:  forecastCfg.HorizonDays,
		LookbackDays: forecastCfg.HistoryDays,
	})

	summary := orchestrator.Run(c.Context)

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to encode run summary: %v", err), 1)
	}
	fmt.Println(string(out))

	if !summary.Success {
		return cli.Exit("pipeline run failed", 1)
	}

	invalidateDashboardCache(c.Context)

	return nil
}

// invalidateDashboardCache drops cached dashboard views after a successful
// run so fresh forecasts surface immediately. Best-effort.
func invalidateDashboardCache(ctx context.Context) {
	dashboardCache, err := cache.NewDashboardCache(config.Load().Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("cache unavailable, skipping invalidation")
		return
	}

	if err := dashboardCache.InvalidateAll(ctx); err != nil {
		logger.Log.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}

func exportReport(c *cli.Context) error {
	db, err := postgres.NewDBFromURL(c.String("db-url"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to connect to database: %v", err), 1)
	}
	defer db.Close()

	var store storage.ObjectStorage
	if storageCfg := config.Load().Storage; storageCfg.Enabled {
		client, err := storage.NewMinioClient(storageCfg)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to initialize object storage: %v", err), 1)
		}
		store = client
	}

	exporter := report.NewExporter(postgres.NewForecastRepository(db), store, c.String("dir"))

	path, rows, err := exporter.Export(c.Context)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to export report: %v", err), 1)
	}

	logger.Log.Info().Str("path", path).Int("rows", rows).Msg("forecast report exported")

	return nil
}
