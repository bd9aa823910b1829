// backend-go/internal/repository/alert_repository.go
package repository

import (
	"context"

	"github.com/velocityiq/backend-go/internal/domain"
)

type AlertRepository interface {
	// InsertAlerts writes alerts in fixed-size batches. A failed batch
	// does not stop the remaining ones; the returned error reports how
	// many batches failed.
	InsertAlerts(ctx context.Context, alerts []domain.AlertRecord) error
	ListUnresolved(ctx context.Context, limit int) ([]domain.AlertItem, error)
	// CountUnresolvedSevere counts unresolved alerts with high or
	// critical severity.
	CountUnresolvedSevere(ctx context.Context) (int, error)
}
