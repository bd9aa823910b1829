// backend-go/internal/repository/transaction_repository.go
package repository

import (
	"context"
	"time"

	"github.com/velocityiq/backend-go/internal/domain"
)

type TransactionRepository interface {
	// ListByProduct returns all transactions for a product created at or
	// after the cutoff, oldest first. Direction filtering is left to the
	// caller.
	ListByProduct(ctx context.Context, productID int64, since time.Time) ([]domain.Transaction, error)
	// DailyOutboundDemand aggregates outbound quantity per calendar day.
	DailyOutboundDemand(ctx context.Context, productID int64, since time.Time) ([]domain.ChartHistoryPoint, error)
}
