// backend-go/internal/repository/postgres/alert_repository.go
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/velocityiq/backend-go/internal/domain"
)

// alertInsertBatchSize bounds the size of a single multi-row insert.
const alertInsertBatchSize = 50

type alertRepository struct {
	db *DB
}

func NewAlertRepository(db *DB) *alertRepository {
	return &alertRepository{db: db}
}

// InsertAlerts writes alerts in batches. A failing batch does not abort
// the remaining ones; the error reports how many batches were lost.
func (r *alertRepository) InsertAlerts(ctx context.Context, alerts []domain.AlertRecord) error {
	var (
		failed  int
		batches int
		lastErr error
	)

	for start := 0; start < len(alerts); start += alertInsertBatchSize {
		end := min(start+alertInsertBatchSize, len(alerts))
		batches++

		if err := r.insertBatch(ctx, alerts[start:end]); err != nil {
			failed++
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("%d of %d alert batches failed: %w", failed, batches, lastErr)
	}

	return nil
}

func (r *alertRepository) insertBatch(ctx context.Context, batch []domain.AlertRecord) error {
	placeholders := make([]string, 0, len(batch))
	args := make([]interface{}, 0, len(batch)*7)

	for i, alert := range batch {
		base := i * 7
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		args = append(args,
			alert.ProductID, alert.Type, alert.Severity,
			alert.Title, alert.Description, alert.IsResolved, alert.CreatedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO alerts (
			product_id, type, severity, title, description, is_resolved, created_at
		) VALUES %s
	`, strings.Join(placeholders, ", "))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert alert batch: %w", err)
	}

	return nil
}

func (r *alertRepository) ListUnresolved(ctx context.Context, limit int) ([]domain.AlertItem, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT
			a.id,
			a.type,
			a.severity,
			a.title,
			a.description,
			a.created_at,
			p.name AS product_name,
			p.sku,
			s.name AS supplier_name
		FROM alerts a
		JOIN products p ON a.product_id = p.id
		LEFT JOIN suppliers s ON p.supplier_id = s.id
		WHERE a.is_resolved = false
		ORDER BY a.created_at DESC
		LIMIT $1
	`

	var alerts []domain.AlertItem
	if err := r.db.SelectContext(ctx, &alerts, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list unresolved alerts: %w", err)
	}

	return alerts, nil
}

func (r *alertRepository) CountUnresolvedSevere(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM alerts
		WHERE is_resolved = false AND severity = ANY($1::text[])
	`

	var count int
	severities := []string{domain.SeverityHigh, domain.SeverityCritical}
	if err := r.db.GetContext(ctx, &count, query, pq.Array(severities)); err != nil {
		return 0, fmt.Errorf("failed to count severe alerts: %w", err)
	}

	return count, nil
}
