// backend-go/internal/repository/postgres/forecast_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/velocityiq/backend-go/internal/domain"
)

// forecastInsertBatchSize bounds the size of a single multi-row insert.
const forecastInsertBatchSize = 100

type forecastRepository struct {
	db *DB
}

func NewForecastRepository(db *DB) *forecastRepository {
	return &forecastRepository{db: db}
}

// ReplaceForecasts clears every forecast dated strictly after runDate and
// writes the new records, all inside one transaction so a failed run
// cannot leave the future window half-written.
func (r *forecastRepository) ReplaceForecasts(ctx context.Context, runDate time.Time, records []domain.ForecastRecord) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM forecast_data WHERE date > $1`, runDate); err != nil {
			return fmt.Errorf("failed to clear future forecasts: %w", err)
		}

		for start := 0; start < len(records); start += forecastInsertBatchSize {
			end := min(start+forecastInsertBatchSize, len(records))
			if err := upsertForecastBatch(ctx, tx, records[start:end]); err != nil {
				return err
			}
		}

		return nil
	})
}

func upsertForecastBatch(ctx context.Context, tx *sql.Tx, batch []domain.ForecastRecord) error {
	placeholders := make([]string, 0, len(batch))
	args := make([]interface{}, 0, len(batch)*6)

	for i, rec := range batch {
		base := i * 6
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args,
			rec.ProductID, rec.Date, rec.PredictedDemand,
			rec.ConfidenceIntervalLower, rec.ConfidenceIntervalUpper, rec.CreatedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO forecast_data (
			product_id, date, predicted_demand,
			confidence_interval_lower, confidence_interval_upper, created_at
		) VALUES %s
		ON CONFLICT (product_id, date)
		DO UPDATE SET
			predicted_demand = EXCLUDED.predicted_demand,
			confidence_interval_lower = EXCLUDED.confidence_interval_lower,
			confidence_interval_upper = EXCLUDED.confidence_interval_upper,
			created_at = EXCLUDED.created_at
	`, strings.Join(placeholders, ", "))

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert forecast batch: %w", err)
	}

	return nil
}

func (r *forecastRepository) CountFrom(ctx context.Context, from time.Time) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM forecast_data WHERE date >= $1`, from); err != nil {
		return 0, fmt.Errorf("failed to count forecasts: %w", err)
	}

	return count, nil
}

func (r *forecastRepository) ListItems(ctx context.Context, from, to time.Time) ([]domain.ForecastItem, error) {
	query := `
		SELECT
			p.name AS product_name,
			p.sku,
			p.category,
			p.current_stock,
			to_char(f.date, 'YYYY-MM-DD') AS forecast_date,
			f.predicted_demand,
			f.confidence_interval_lower,
			f.confidence_interval_upper,
			f.created_at AS forecast_created
		FROM forecast_data f
		JOIN products p ON f.product_id = p.id
		WHERE f.date >= $1 AND f.date <= $2
		ORDER BY f.date, p.name
	`

	var items []domain.ForecastItem
	if err := r.db.SelectContext(ctx, &items, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to list forecast items: %w", err)
	}

	return items, nil
}

func (r *forecastRepository) ListTrendRows(ctx context.Context, since time.Time) ([]domain.TrendRow, error) {
	query := `
		SELECT
			f.product_id,
			p.name AS product_name,
			p.sku,
			p.category,
			to_char(f.date, 'YYYY-MM-DD') AS date,
			f.predicted_demand
		FROM forecast_data f
		JOIN products p ON f.product_id = p.id
		WHERE f.date >= $1
		ORDER BY f.date
	`

	var rows []domain.TrendRow
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("failed to list trend rows: %w", err)
	}

	return rows, nil
}

func (r *forecastRepository) AvgDailyDemandSince(ctx context.Context, since time.Time) (map[int64]float64, error) {
	query := `
		SELECT product_id, AVG(predicted_demand)::float8 AS avg_demand
		FROM forecast_data
		WHERE date >= $1
		GROUP BY product_id
	`

	rows, err := r.db.QueryxContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query average demand: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]float64)
	for rows.Next() {
		var productID int64
		var avg float64

		if err := rows.Scan(&productID, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan average demand: %w", err)
		}

		result[productID] = avg
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate average demand: %w", err)
	}

	return result, nil
}

func (r *forecastRepository) ListReportRows(ctx context.Context, from time.Time) ([]domain.ForecastReportRow, error) {
	query := `
		SELECT
			p.name AS product_name,
			p.sku,
			p.category,
			p.current_stock,
			p.reorder_point,
			p.unit_cost,
			s.name AS supplier_name,
			s.lead_time_days,
			s.reliability_score,
			to_char(f.date, 'YYYY-MM-DD') AS forecast_date,
			f.predicted_demand,
			f.confidence_interval_lower,
			f.confidence_interval_upper,
			f.created_at AS forecast_created
		FROM forecast_data f
		JOIN products p ON f.product_id = p.id
		LEFT JOIN suppliers s ON p.supplier_id = s.id
		WHERE f.date >= $1
		ORDER BY f.date, p.name
	`

	var rows []domain.ForecastReportRow
	if err := r.db.SelectContext(ctx, &rows, query, from); err != nil {
		return nil, fmt.Errorf("failed to list report rows: %w", err)
	}

	return rows, nil
}

func (r *forecastRepository) ListChartForecasts(ctx context.Context, productID int64, from, to time.Time) ([]domain.ChartForecastPoint, error) {
	query := `
		SELECT
			to_char(date, 'YYYY-MM-DD') AS date,
			predicted_demand,
			confidence_interval_lower,
			confidence_interval_upper
		FROM forecast_data
		WHERE product_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date
	`

	var points []domain.ChartForecastPoint
	if err := r.db.SelectContext(ctx, &points, query, productID, from, to); err != nil {
		return nil, fmt.Errorf("failed to list chart forecasts: %w", err)
	}

	return points, nil
}
