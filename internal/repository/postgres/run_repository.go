// backend-go/internal/repository/postgres/run_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/velocityiq/backend-go/internal/domain"
)

type runRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *runRepository {
	return &runRepository{db: db}
}

func (r *runRepository) Create(ctx context.Context, run *domain.ForecastRun) (int64, error) {
	query := `
		INSERT INTO forecast_runs (status, forecast_days, started_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, run.Status, run.ForecastDays, run.StartedAt).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create forecast run: %w", err)
	}

	return id, nil
}

func (r *runRepository) Finish(ctx context.Context, run *domain.ForecastRun) error {
	query := `
		UPDATE forecast_runs
		SET status = $2,
			products_forecasted = $3,
			alerts_generated = $4,
			synthetic_series = $5,
			error = $6,
			finished_at = $7
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query,
		run.ID, run.Status, run.ProductsForecasted, run.AlertsGenerated,
		run.SyntheticSeries, run.Error, run.FinishedAt); err != nil {
		return fmt.Errorf("failed to finish forecast run: %w", err)
	}

	return nil
}

func (r *runRepository) ListRecent(ctx context.Context, limit int) ([]domain.ForecastRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, status, forecast_days, products_forecasted, alerts_generated,
			synthetic_series, error, started_at, finished_at
		FROM forecast_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	var runs []domain.ForecastRun
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list forecast runs: %w", err)
	}

	return runs, nil
}
