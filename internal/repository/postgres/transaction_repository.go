// backend-go/internal/repository/postgres/transaction_repository.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/velocityiq/backend-go/internal/domain"
)

type transactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *transactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) ListByProduct(ctx context.Context, productID int64, since time.Time) ([]domain.Transaction, error) {
	query := `
		SELECT id, product_id, type, quantity,
			COALESCE(reference_number, '') AS reference_number,
			COALESCE(notes, '') AS notes,
			created_at
		FROM inventory_transactions
		WHERE product_id = $1 AND created_at >= $2
		ORDER BY created_at
	`

	var transactions []domain.Transaction
	if err := r.db.SelectContext(ctx, &transactions, query, productID, since); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, nil
}

func (r *transactionRepository) DailyOutboundDemand(ctx context.Context, productID int64, since time.Time) ([]domain.ChartHistoryPoint, error) {
	query := `
		SELECT
			to_char(created_at, 'YYYY-MM-DD') AS date,
			SUM(quantity)::float8 AS actual_demand
		FROM inventory_transactions
		WHERE product_id = $1 AND type = 'outbound' AND created_at >= $2
		GROUP BY to_char(created_at, 'YYYY-MM-DD')
		ORDER BY date
	`

	var points []domain.ChartHistoryPoint
	if err := r.db.SelectContext(ctx, &points, query, productID, since); err != nil {
		return nil, fmt.Errorf("failed to aggregate daily demand: %w", err)
	}

	return points, nil
}
