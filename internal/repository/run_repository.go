// backend-go/internal/repository/run_repository.go
package repository

import (
	"context"

	"github.com/velocityiq/backend-go/internal/domain"
)

type RunRepository interface {
	Create(ctx context.Context, run *domain.ForecastRun) (int64, error)
	Finish(ctx context.Context, run *domain.ForecastRun) error
	ListRecent(ctx context.Context, limit int) ([]domain.ForecastRun, error)
}
